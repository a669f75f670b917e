package mailbox

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "worker.jsonl"))
}

func TestAppendDrain_SendOrderPreserved(t *testing.T) {
	store := newTestStore(t)

	for i := 0; i < 5; i++ {
		err := store.Append(Message{
			From:    "lead",
			Type:    TypeMessage,
			Content: fmt.Sprintf("msg-%d", i),
		})
		require.NoError(t, err)
	}

	messages, err := store.Drain()
	require.NoError(t, err)
	require.Len(t, messages, 5)
	for i, msg := range messages {
		assert.Equal(t, fmt.Sprintf("msg-%d", i), msg.Content)
		assert.NotEmpty(t, msg.ID)
		assert.False(t, msg.Timestamp.IsZero())
	}
}

func TestDrain_SecondDrainEmpty(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Append(Message{From: "lead", Type: TypeMessage, Content: "hi"}))

	first, err := store.Drain()
	require.NoError(t, err)
	assert.Len(t, first, 1)

	second, err := store.Drain()
	require.NoError(t, err)
	assert.Empty(t, second)
}

func TestDrain_MissingFileIsEmptyInbox(t *testing.T) {
	store := newTestStore(t)

	messages, err := store.Drain()
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestAppend_InvalidTypeRejectedWithoutTouchingStore(t *testing.T) {
	store := newTestStore(t)

	err := store.Append(Message{From: "lead", Type: "bogus", Content: "nope"})
	assert.ErrorIs(t, err, ErrInvalidType)

	pending, err := store.Pending()
	require.NoError(t, err)
	assert.Equal(t, 0, pending)
}

func TestAppend_AllFiveTypesAccepted(t *testing.T) {
	store := newTestStore(t)

	for _, mt := range Types() {
		assert.NoError(t, store.Append(Message{From: "lead", Type: mt, Content: "x"}))
	}

	pending, err := store.Pending()
	require.NoError(t, err)
	assert.Equal(t, 5, pending)
}

func TestStore_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inbox.jsonl")

	writer := NewStore(path)
	require.NoError(t, writer.Append(Message{From: "lead", Type: TypeStatus, Content: "halfway"}))

	// A second store over the same file sees the message: recipients need not
	// be polling (or even running) at send time.
	reader := NewStore(path)
	messages, err := reader.Drain()
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, TypeStatus, messages[0].Type)
	assert.Equal(t, "halfway", messages[0].Content)
}

func TestStore_ConcurrentAppendAndDrainLosesNothing(t *testing.T) {
	store := newTestStore(t)

	const total = 200
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < total; i++ {
			_ = store.Append(Message{From: "lead", Type: TypeMessage, Content: fmt.Sprintf("m%d", i)})
		}
	}()

	seen := make(map[string]bool)
	collect := func(messages []Message) {
		for _, m := range messages {
			assert.False(t, seen[m.Content], "message %s consumed twice", m.Content)
			seen[m.Content] = true
		}
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	for {
		messages, err := store.Drain()
		require.NoError(t, err)
		collect(messages)
		select {
		case <-done:
			final, err := store.Drain()
			require.NoError(t, err)
			collect(final)
			assert.Len(t, seen, total, "every appended message observed exactly once")
			return
		default:
		}
	}
}

func TestRemove_MissingFileOK(t *testing.T) {
	store := newTestStore(t)
	assert.NoError(t, store.Remove())

	require.NoError(t, store.Append(Message{From: "a", Type: TypeMessage, Content: "x"}))
	assert.NoError(t, store.Remove())

	pending, err := store.Pending()
	require.NoError(t, err)
	assert.Equal(t, 0, pending)
}
