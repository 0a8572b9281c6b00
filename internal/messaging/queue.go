// Package messaging implements the priority-ordered inter-role message
// protocol. The queue is independent of the state record's conversation
// log; it is a building block for message-driven coordination and must
// round-trip losslessly through its list form.
package messaging

import (
	"fmt"

	"github.com/google/uuid"
)

// Type classifies a message for routing and handling.
type Type string

const (
	TypeRequest      Type = "request"
	TypeResponse     Type = "response"
	TypeNotification Type = "notification"
	TypeHandoff      Type = "handoff"
)

// Priority orders queue processing; higher values dequeue first.
type Priority int

const (
	PriorityLow    Priority = 1
	PriorityNormal Priority = 2
	PriorityHigh   Priority = 3
)

// Message is one structured message between roles.
type Message struct {
	ID       string         `json:"id"`
	Sender   string         `json:"sender"`
	Receiver string         `json:"receiver"`
	Content  string         `json:"content"`
	Type     Type           `json:"message_type"`
	Priority Priority       `json:"priority"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// NewMessage builds a normal-priority message with a fresh identifier.
func NewMessage(sender, receiver, content string, msgType Type) Message {
	return Message{
		ID:       uuid.NewString(),
		Sender:   sender,
		Receiver: receiver,
		Content:  content,
		Type:     msgType,
		Priority: PriorityNormal,
	}
}

// Queue is a priority queue of pending messages. Dequeue order is by
// priority descending, ties broken by insertion order.
type Queue struct {
	messages []Message
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Enqueue appends a message. Messages without an ID get one assigned, and
// a zero priority defaults to normal.
func (q *Queue) Enqueue(msg Message) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Priority == 0 {
		msg.Priority = PriorityNormal
	}
	q.messages = append(q.messages, msg)
}

// Dequeue removes and returns the highest-priority message. The boolean is
// false when the queue is empty; an empty queue is not an error.
func (q *Queue) Dequeue() (Message, bool) {
	idx, ok := q.head()
	if !ok {
		return Message{}, false
	}
	msg := q.messages[idx]
	q.messages = append(q.messages[:idx], q.messages[idx+1:]...)
	return msg, true
}

// Peek returns the next message without removing it.
func (q *Queue) Peek() (Message, bool) {
	idx, ok := q.head()
	if !ok {
		return Message{}, false
	}
	return q.messages[idx], true
}

// ForReceiver returns all pending messages addressed to the receiver
// without removing them.
func (q *Queue) ForReceiver(receiver string) []Message {
	var out []Message
	for _, msg := range q.messages {
		if msg.Receiver == receiver {
			out = append(out, msg)
		}
	}
	return out
}

// Len returns the number of pending messages.
func (q *Queue) Len() int {
	return len(q.messages)
}

// Empty reports whether the queue has no messages.
func (q *Queue) Empty() bool {
	return len(q.messages) == 0
}

// ToList snapshots the queue in insertion order for serialization.
func (q *Queue) ToList() []Message {
	return append([]Message(nil), q.messages...)
}

// FromList reconstructs a queue from its serialized list form.
func FromList(messages []Message) (*Queue, error) {
	q := NewQueue()
	for i, msg := range messages {
		if err := validate(msg); err != nil {
			return nil, fmt.Errorf("messaging: entry %d: %w", i, err)
		}
		q.Enqueue(msg)
	}
	return q, nil
}

// head finds the first message with the highest priority. Scanning in
// insertion order keeps ties stable.
func (q *Queue) head() (int, bool) {
	if len(q.messages) == 0 {
		return 0, false
	}
	best := 0
	for i := 1; i < len(q.messages); i++ {
		if q.messages[i].Priority > q.messages[best].Priority {
			best = i
		}
	}
	return best, true
}

func validate(msg Message) error {
	switch msg.Type {
	case TypeRequest, TypeResponse, TypeNotification, TypeHandoff:
	default:
		return fmt.Errorf("unknown message type %q", msg.Type)
	}
	switch msg.Priority {
	case PriorityLow, PriorityNormal, PriorityHigh:
	default:
		return fmt.Errorf("unknown priority %d", msg.Priority)
	}
	return nil
}
