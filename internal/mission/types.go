// Package mission persists Orion's conversation history. A mission is
// one named conversation thread; every user/assistant exchange is
// appended to the active mission and survives restarts.
package mission

import (
	"errors"
	"time"
)

// Sender identifies who produced a message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// DefaultMissionID is the mission that always exists and cannot be
// deleted.
const DefaultMissionID = "default"

var (
	ErrMissionNotFound = errors.New("mission not found")
	ErrDefaultMission  = errors.New("the default mission cannot be deleted")
)

// Message is one utterance in a mission.
type Message struct {
	ID        string    `json:"id"`
	MissionID string    `json:"mission_id"`
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Mission is one conversation thread.
type Mission struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
}

// Store persists missions and their messages. Messages come back in
// append order.
type Store interface {
	// EnsureDefault creates the default mission if missing and returns it.
	EnsureDefault(title string) (Mission, error)
	CreateMission(title string) (Mission, error)
	Missions() ([]Mission, error)
	Mission(id string) (Mission, error)
	// DeleteMission removes a mission and all its messages. Deleting the
	// default mission fails with ErrDefaultMission.
	DeleteMission(id string) error
	AppendMessage(msg Message) error
	// Messages returns the last limit messages of a mission in
	// chronological order; limit <= 0 means all.
	Messages(missionID string, limit int) ([]Message, error)
	Close() error
}
