package todo

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdate_Basic(t *testing.T) {
	m := NewManager()

	rendered, err := m.Update([]Item{
		{Content: "Task 1", Status: StatusPending, ActiveForm: "Doing task 1"},
		{Content: "Task 2", Status: StatusInProgress, ActiveForm: "Doing task 2"},
	})
	require.NoError(t, err)

	assert.Contains(t, rendered, "Task 1")
	assert.Contains(t, rendered, "Task 2")
	assert.Contains(t, rendered, "Doing task 2")
	assert.Len(t, m.Items(), 2)
}

func TestUpdate_OnlyOneInProgress(t *testing.T) {
	m := NewManager()

	_, err := m.Update([]Item{
		{Content: "Task 1", Status: StatusInProgress, ActiveForm: "Doing 1"},
		{Content: "Task 2", Status: StatusInProgress, ActiveForm: "Doing 2"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "in_progress")
	assert.Empty(t, m.Items(), "failed update must not replace the list")
}

func TestUpdate_MaxItems(t *testing.T) {
	m := NewManager()

	var items []Item
	for i := 0; i < 25; i++ {
		items = append(items, Item{Content: fmt.Sprintf("Task %d", i), Status: StatusPending, ActiveForm: fmt.Sprintf("Doing %d", i)})
	}
	_, err := m.Update(items)
	require.Error(t, err)
	assert.LessOrEqual(t, len(m.Items()), MaxItems)
}

func TestUpdate_MissingFieldsAndInvalidStatus(t *testing.T) {
	m := NewManager()

	_, err := m.Update([]Item{{Status: StatusPending, ActiveForm: "x"}})
	assert.Error(t, err)

	_, err = m.Update([]Item{{Content: "x", Status: StatusPending}})
	assert.Error(t, err)

	_, err = m.Update([]Item{{Content: "x", Status: "paused", ActiveForm: "y"}})
	assert.Error(t, err)
}

func TestUpdate_EmptyListAllowed(t *testing.T) {
	m := NewManager()

	_, err := m.Update([]Item{{Content: "x", Status: StatusPending, ActiveForm: "y"}})
	require.NoError(t, err)

	rendered, err := m.Update(nil)
	require.NoError(t, err)
	assert.Contains(t, rendered, "empty")
	assert.Empty(t, m.Items())
}

func TestRender_Format(t *testing.T) {
	m := NewManager()

	_, err := m.Update([]Item{
		{Content: "Done task", Status: StatusCompleted, ActiveForm: "Doing done"},
		{Content: "Active task", Status: StatusInProgress, ActiveForm: "Working on it"},
		{Content: "Later task", Status: StatusPending, ActiveForm: "Doing later"},
	})
	require.NoError(t, err)

	rendered := m.Render()
	assert.Contains(t, rendered, "[x] Done task")
	assert.Contains(t, rendered, "[~] Active task <- Working on it")
	assert.Contains(t, rendered, "[ ] Later task")
}
