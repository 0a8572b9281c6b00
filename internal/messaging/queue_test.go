package messaging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessageDefaults(t *testing.T) {
	msg := NewMessage("coder", "reviewer", "ready for review", TypeRequest)

	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, "coder", msg.Sender)
	assert.Equal(t, "reviewer", msg.Receiver)
	assert.Equal(t, TypeRequest, msg.Type)
	assert.Equal(t, PriorityNormal, msg.Priority)
}

func TestDequeuePriorityOrder(t *testing.T) {
	q := NewQueue()
	low := NewMessage("a", "b", "low", TypeNotification)
	low.Priority = PriorityLow
	high := NewMessage("a", "b", "high", TypeRequest)
	high.Priority = PriorityHigh
	normal := NewMessage("a", "b", "normal", TypeResponse)

	q.Enqueue(low)
	q.Enqueue(normal)
	q.Enqueue(high)

	got, ok := q.Dequeue()
	require.True(t, ok)
	assert.Equal(t, "high", got.Content)

	got, ok = q.Dequeue()
	require.True(t, ok)
	assert.Equal(t, "normal", got.Content)

	got, ok = q.Dequeue()
	require.True(t, ok)
	assert.Equal(t, "low", got.Content)
}

func TestDequeueStableForEqualPriorities(t *testing.T) {
	q := NewQueue()
	for _, content := range []string{"first", "second", "third"} {
		q.Enqueue(NewMessage("a", "b", content, TypeRequest))
	}

	for _, want := range []string{"first", "second", "third"} {
		got, ok := q.Dequeue()
		require.True(t, ok)
		assert.Equal(t, want, got.Content)
	}
}

func TestDequeueEmptyIsNotAnError(t *testing.T) {
	q := NewQueue()
	_, ok := q.Dequeue()
	assert.False(t, ok)
	_, ok = q.Peek()
	assert.False(t, ok)
	assert.True(t, q.Empty())
}

func TestEnqueueAssignsDefaults(t *testing.T) {
	q := NewQueue()
	q.Enqueue(Message{Sender: "a", Receiver: "b", Content: "bare", Type: TypeHandoff})

	got, ok := q.Peek()
	require.True(t, ok)
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, PriorityNormal, got.Priority)
}

func TestPeekDoesNotRemove(t *testing.T) {
	q := NewQueue()
	q.Enqueue(NewMessage("a", "b", "stay", TypeRequest))

	_, ok := q.Peek()
	require.True(t, ok)
	assert.Equal(t, 1, q.Len())
}

func TestForReceiver(t *testing.T) {
	q := NewQueue()
	q.Enqueue(NewMessage("coder", "reviewer", "one", TypeRequest))
	q.Enqueue(NewMessage("coder", "tester", "two", TypeRequest))
	q.Enqueue(NewMessage("reviewer", "tester", "three", TypeResponse))

	got := q.ForReceiver("tester")
	require.Len(t, got, 2)
	assert.Equal(t, "two", got[0].Content)
	assert.Equal(t, "three", got[1].Content)
	assert.Equal(t, 3, q.Len())
}

func TestListRoundTripIsLossless(t *testing.T) {
	q := NewQueue()
	high := NewMessage("a", "b", "urgent", TypeRequest)
	high.Priority = PriorityHigh
	q.Enqueue(NewMessage("a", "b", "routine", TypeNotification))
	q.Enqueue(high)

	restored, err := FromList(q.ToList())
	require.NoError(t, err)

	assert.Equal(t, q.Len(), restored.Len())
	want, _ := q.Peek()
	got, ok := restored.Peek()
	require.True(t, ok)
	assert.Equal(t, want, got)
	assert.Equal(t, q.ToList(), restored.ToList())
}

func TestFromListRejectsInvalidEntries(t *testing.T) {
	_, err := FromList([]Message{{ID: "x", Type: "telegram", Priority: PriorityNormal}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown message type")

	_, err = FromList([]Message{{ID: "x", Type: TypeRequest, Priority: 9}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown priority")
}
