// Package events carries store change notifications to subscribers in this
// process and, optionally, to other instances through Redis.
package events

import "time"

// Op names the kind of mutation.
type Op string

const (
	OpAdd    Op = "add"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
	OpReset  Op = "reset"
)

// Event describes one successful mutation of a collection.
type Event struct {
	Collection string `json:"collection"`
	Op         Op     `json:"op"`
	ID         string `json:"id,omitempty"`
	StudentID  string `json:"studentId,omitempty"`
	// Participants is set for records owned by several users, such as messages.
	Participants []string  `json:"participants,omitempty"`
	At           time.Time `json:"at"`
	Origin       string    `json:"origin,omitempty"`
}

// Involves reports whether userID is the event's student or one of its
// participants.
func (e Event) Involves(userID string) bool {
	if e.StudentID == userID {
		return true
	}
	for _, p := range e.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// Personal reports whether the event concerns specific users.
func (e Event) Personal() bool { return e.StudentID != "" || len(e.Participants) > 0 }

// Publisher accepts events. Implementations must not block the caller on slow
// consumers.
type Publisher interface {
	Publish(e Event)
}

// Discard drops every event.
type Discard struct{}

func (Discard) Publish(Event) {}
