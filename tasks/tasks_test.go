package tasks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(t.TempDir())
	require.NoError(t, err)
	return m
}

func TestCreateAndGet(t *testing.T) {
	m := newTestManager(t)

	created, err := m.Create("Write docs")
	require.NoError(t, err)
	assert.Equal(t, "1", created.ID)
	assert.Equal(t, StatusPending, created.Status)

	got, err := m.Get("1")
	require.NoError(t, err)
	assert.Equal(t, "Write docs", got.Subject)

	_, err = m.Get("99")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdate_Status(t *testing.T) {
	m := newTestManager(t)
	_, err := m.Create("Task")
	require.NoError(t, err)

	updated, err := m.Update("1", Update{Status: StatusInProgress})
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, updated.Status)

	_, err = m.Update("1", Update{Status: "bogus"})
	assert.Error(t, err)
}

func TestUpdate_DependenciesBidirectional(t *testing.T) {
	m := newTestManager(t)
	_, err := m.Create("Parent")
	require.NoError(t, err)
	_, err = m.Create("Child")
	require.NoError(t, err)

	_, err = m.Update("2", Update{AddBlockedBy: []string{"1"}})
	require.NoError(t, err)

	child, err := m.Get("2")
	require.NoError(t, err)
	assert.Contains(t, child.BlockedBy, "1")

	parent, err := m.Get("1")
	require.NoError(t, err)
	assert.Contains(t, parent.Blocks, "2")
}

func TestUpdate_CompleteClearsDependencies(t *testing.T) {
	m := newTestManager(t)
	_, err := m.Create("Blocker")
	require.NoError(t, err)
	_, err = m.Create("Waiter")
	require.NoError(t, err)
	_, err = m.Update("2", Update{AddBlockedBy: []string{"1"}})
	require.NoError(t, err)

	_, err = m.Update("1", Update{Status: StatusCompleted})
	require.NoError(t, err)

	waiter, err := m.Get("2")
	require.NoError(t, err)
	assert.Empty(t, waiter.BlockedBy, "completing the blocker unblocks dependents")
}

func TestList_OrderedByID(t *testing.T) {
	m := newTestManager(t)
	for _, subject := range []string{"a", "b", "c"} {
		_, err := m.Create(subject)
		require.NoError(t, err)
	}

	list := m.List()
	require.Len(t, list, 3)
	assert.Equal(t, []string{"1", "2", "3"}, []string{list[0].ID, list[1].ID, list[2].ID})
}

func TestPersistence_AcrossManagers(t *testing.T) {
	dir := t.TempDir()

	m1, err := NewManager(dir)
	require.NoError(t, err)
	_, err = m1.Create("Persisted")
	require.NoError(t, err)
	_, err = m1.Update("1", Update{Status: StatusInProgress})
	require.NoError(t, err)

	m2, err := NewManager(dir)
	require.NoError(t, err)

	got, err := m2.Get("1")
	require.NoError(t, err)
	assert.Equal(t, "Persisted", got.Subject)
	assert.Equal(t, StatusInProgress, got.Status)

	// New ids continue past the loaded ones.
	next, err := m2.Create("Another")
	require.NoError(t, err)
	assert.Equal(t, "2", next.ID)
}

func TestDelete_DropsLinks(t *testing.T) {
	m := newTestManager(t)
	_, err := m.Create("Blocker")
	require.NoError(t, err)
	_, err = m.Create("Waiter")
	require.NoError(t, err)
	_, err = m.Update("2", Update{AddBlockedBy: []string{"1"}})
	require.NoError(t, err)

	require.NoError(t, m.Delete("1"))

	_, err = m.Get("1")
	assert.ErrorIs(t, err, ErrNotFound)

	waiter, err := m.Get("2")
	require.NoError(t, err)
	assert.Empty(t, waiter.BlockedBy)

	assert.ErrorIs(t, m.Delete("1"), ErrNotFound)
}
