package mission

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/orionvoice/orion/internal/bus"
)

// Log is the conversation log over a Store. It tracks the active
// mission and writes every exchange through to storage as it happens,
// so a switch can never lose a message. The gateway switches missions
// from its read loop while the orchestrator appends, so active is
// mutex-guarded.
type Log struct {
	store        Store
	historyLimit int
	eventBus     *bus.EventBus
	logger       zerolog.Logger

	mu     sync.RWMutex
	active Mission
}

// NewLog opens the conversation log, ensuring the default mission
// exists and starting with it active.
func NewLog(store Store, defaultTitle string, historyLimit int, eventBus *bus.EventBus, logger zerolog.Logger) (*Log, error) {
	def, err := store.EnsureDefault(defaultTitle)
	if err != nil {
		return nil, err
	}
	return &Log{
		store:        store,
		historyLimit: historyLimit,
		eventBus:     eventBus,
		logger:       logger.With().Str("component", "mission").Logger(),
		active:       def,
	}, nil
}

// Active returns the currently active mission.
func (l *Log) Active() Mission {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.active
}

// Missions lists all missions.
func (l *Log) Missions() ([]Mission, error) { return l.store.Missions() }

// History returns the active mission's recent messages.
func (l *Log) History() ([]Message, error) {
	return l.store.Messages(l.Active().ID, l.historyLimit)
}

// Append records one utterance in the active mission.
func (l *Log) Append(sender Sender, text string) error {
	msg := Message{
		ID:        uuid.NewString(),
		MissionID: l.Active().ID,
		Sender:    sender,
		Text:      text,
		Timestamp: time.Now(),
	}
	if err := l.store.AppendMessage(msg); err != nil {
		l.logger.Error().Err(err).Msg("Failed to append message")
		return err
	}
	l.publish(bus.EventTypeMessageAppended, map[string]any{"message": msg})
	return nil
}

// Switch makes another mission active and returns its history. Prior
// messages are already persisted, so nothing is flushed or lost.
func (l *Log) Switch(id string) ([]Message, error) {
	m, err := l.store.Mission(id)
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	l.active = m
	l.mu.Unlock()
	l.logger.Info().Str("id", id).Str("title", m.Title).Msg("Mission switched")

	history, err := l.store.Messages(id, l.historyLimit)
	if err != nil {
		return nil, err
	}
	l.publish(bus.EventTypeMissionSwitched, map[string]any{"mission": m})
	return history, nil
}

// Create starts a new mission and switches to it.
func (l *Log) Create(title string) (Mission, error) {
	m, err := l.store.CreateMission(title)
	if err != nil {
		return Mission{}, err
	}
	if _, err := l.Switch(m.ID); err != nil {
		return Mission{}, err
	}
	return m, nil
}

// Delete removes a mission. The default mission is refused; deleting
// the active mission falls back to the default.
func (l *Log) Delete(id string) error {
	if err := l.store.DeleteMission(id); err != nil {
		return err
	}
	if l.Active().ID == id {
		if _, err := l.Switch(DefaultMissionID); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the underlying store.
func (l *Log) Close() error { return l.store.Close() }

func (l *Log) publish(t bus.EventType, data map[string]any) {
	if l.eventBus != nil {
		l.eventBus.Publish(bus.Event{Type: t, Data: data})
	}
}
