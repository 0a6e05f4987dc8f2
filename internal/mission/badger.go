package mission

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Key layout:
//
//	mission:<id>                     -> Mission JSON
//	msg:<missionID>:<nano>:<uuid>    -> Message JSON
//
// The zero-padded nanosecond segment keeps messages in append order
// under badger's lexicographic iteration.
const (
	missionPrefix = "mission:"
	messagePrefix = "msg:"
)

// BadgerStore persists missions in an embedded badger database.
type BadgerStore struct {
	db     *badger.DB
	logger zerolog.Logger
}

// OpenBadger opens (or creates) the mission database at path.
func OpenBadger(path string, logger zerolog.Logger) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening mission database: %w", err)
	}
	return &BadgerStore{
		db:     db,
		logger: logger.With().Str("component", "mission-store").Logger(),
	}, nil
}

func missionKey(id string) []byte { return []byte(missionPrefix + id) }

func messageKey(m Message) []byte {
	return []byte(fmt.Sprintf("%s%s:%020d:%s", messagePrefix, m.MissionID, m.Timestamp.UnixNano(), m.ID))
}

func messageScanPrefix(missionID string) []byte {
	return []byte(messagePrefix + missionID + ":")
}

// EnsureDefault creates the default mission if it does not exist yet.
func (s *BadgerStore) EnsureDefault(title string) (Mission, error) {
	var m Mission
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(missionKey(DefaultMissionID))
		if err == nil {
			return item.Value(func(val []byte) error {
				return json.Unmarshal(val, &m)
			})
		}
		if err != badger.ErrKeyNotFound {
			return err
		}

		now := time.Now()
		m = Mission{ID: DefaultMissionID, Title: title, CreatedAt: now, LastActivity: now}
		data, err := json.Marshal(m)
		if err != nil {
			return err
		}
		return txn.Set(missionKey(m.ID), data)
	})
	if err != nil {
		return Mission{}, fmt.Errorf("ensuring default mission: %w", err)
	}
	return m, nil
}

// CreateMission creates a new mission with a fresh id.
func (s *BadgerStore) CreateMission(title string) (Mission, error) {
	now := time.Now()
	m := Mission{ID: uuid.NewString(), Title: title, CreatedAt: now, LastActivity: now}
	data, err := json.Marshal(m)
	if err != nil {
		return Mission{}, err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(missionKey(m.ID), data)
	})
	if err != nil {
		return Mission{}, fmt.Errorf("creating mission: %w", err)
	}
	s.logger.Info().Str("id", m.ID).Str("title", title).Msg("Mission created")
	return m, nil
}

// Missions lists all missions, most recently active first.
func (s *BadgerStore) Missions() ([]Mission, error) {
	var out []Mission
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(missionPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var m Mission
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &m)
			})
			if err != nil {
				return err
			}
			out = append(out, m)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing missions: %w", err)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastActivity.After(out[j].LastActivity)
	})
	return out, nil
}

// Mission fetches one mission by id.
func (s *BadgerStore) Mission(id string) (Mission, error) {
	var m Mission
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(missionKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &m)
		})
	})
	if err == badger.ErrKeyNotFound {
		return Mission{}, ErrMissionNotFound
	}
	if err != nil {
		return Mission{}, err
	}
	return m, nil
}

// DeleteMission removes a mission and its messages.
func (s *BadgerStore) DeleteMission(id string) error {
	if id == DefaultMissionID {
		return ErrDefaultMission
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(missionKey(id)); err == badger.ErrKeyNotFound {
			return ErrMissionNotFound
		} else if err != nil {
			return err
		}
		if err := txn.Delete(missionKey(id)); err != nil {
			return err
		}

		it := txn.NewIterator(badger.IteratorOptions{PrefetchValues: false})
		defer it.Close()

		prefix := messageScanPrefix(id)
		var keys [][]byte
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		for _, k := range keys {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil && err != ErrMissionNotFound && err != ErrDefaultMission {
		return fmt.Errorf("deleting mission %s: %w", id, err)
	}
	if err == nil {
		s.logger.Info().Str("id", id).Msg("Mission deleted")
	}
	return err
}

// AppendMessage stores one message and bumps the mission's activity.
func (s *BadgerStore) AppendMessage(msg Message) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(missionKey(msg.MissionID))
		if err == badger.ErrKeyNotFound {
			return ErrMissionNotFound
		}
		if err != nil {
			return err
		}

		var m Mission
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &m)
		}); err != nil {
			return err
		}
		m.LastActivity = msg.Timestamp
		mdata, err := json.Marshal(m)
		if err != nil {
			return err
		}
		if err := txn.Set(missionKey(m.ID), mdata); err != nil {
			return err
		}
		return txn.Set(messageKey(msg), data)
	})
	if err != nil && err != ErrMissionNotFound {
		return fmt.Errorf("appending message: %w", err)
	}
	return err
}

// Messages returns the last limit messages in chronological order.
func (s *BadgerStore) Messages(missionID string, limit int) ([]Message, error) {
	var out []Message
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := messageScanPrefix(missionID)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var m Message
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &m)
			})
			if err != nil {
				return err
			}
			out = append(out, m)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading messages: %w", err)
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

// Close flushes and closes the database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
