package team

import (
	"os"
	"sync"
	"testing"

	"github.com/crewmesh/crewmesh/mailbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDirectory(t *testing.T) *Directory {
	t.Helper()
	return NewDirectory(t.TempDir())
}

func TestCreateTeam_DuplicateReportsAlreadyExists(t *testing.T) {
	dir := newTestDirectory(t)

	require.NoError(t, dir.CreateTeam("t"))

	err := dir.CreateTeam("t")
	assert.ErrorIs(t, err, ErrTeamExists)

	// Roster unchanged by the failed create.
	assert.Equal(t, []string{"t"}, dir.Teams())
}

func TestRegister_DuplicateTeammate(t *testing.T) {
	dir := newTestDirectory(t)
	require.NoError(t, dir.CreateTeam("t1"))

	_, err := dir.Register("t1", "w")
	require.NoError(t, err)

	_, err = dir.Register("t1", "w")
	assert.ErrorIs(t, err, ErrTeammateExists)
}

func TestRegister_UnknownTeam(t *testing.T) {
	dir := newTestDirectory(t)

	_, err := dir.Register("ghosts", "w")
	assert.ErrorIs(t, err, ErrTeamNotFound)
}

func TestSendCheckInbox_RoundTrip(t *testing.T) {
	dir := newTestDirectory(t)
	require.NoError(t, dir.CreateTeam("t1"))
	_, err := dir.Register("t1", "w")
	require.NoError(t, err)

	require.NoError(t, dir.Send("t1", "w", "lead", "hi", mailbox.TypeMessage))

	messages, err := dir.CheckInbox("t1", "w")
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "hi", messages[0].Content)
	assert.Equal(t, mailbox.TypeMessage, messages[0].Type)
	assert.Equal(t, "lead", messages[0].From)

	// Consumed on check: a repeat call returns empty.
	messages, err = dir.CheckInbox("t1", "w")
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestSend_InvalidTypeLeavesMailboxUntouched(t *testing.T) {
	dir := newTestDirectory(t)
	require.NoError(t, dir.CreateTeam("t1"))
	mate, err := dir.Register("t1", "w")
	require.NoError(t, err)

	err = dir.Send("t1", "w", "lead", "hi", "bogus")
	assert.ErrorIs(t, err, mailbox.ErrInvalidType)

	pending, err := mate.Inbox().Pending()
	require.NoError(t, err)
	assert.Equal(t, 0, pending)
}

func TestSend_InvalidTypeCheckedBeforeLookup(t *testing.T) {
	dir := newTestDirectory(t)

	// Neither team nor target exist; the type error still wins.
	err := dir.Send("nowhere", "nobody", "lead", "x", "bogus")
	assert.ErrorIs(t, err, mailbox.ErrInvalidType)
}

func TestSend_UnknownTeamAndTarget(t *testing.T) {
	dir := newTestDirectory(t)
	require.NoError(t, dir.CreateTeam("t1"))

	err := dir.Send("t2", "w", "lead", "x", mailbox.TypeMessage)
	assert.ErrorIs(t, err, ErrTeamNotFound)

	err = dir.Send("t1", "w", "lead", "x", mailbox.TypeMessage)
	assert.ErrorIs(t, err, ErrTeammateNotFound)
}

func TestDeleteTeam_RemovesMailboxFilesAndAllowsRecreate(t *testing.T) {
	dir := newTestDirectory(t)
	require.NoError(t, dir.CreateTeam("del"))
	mate, err := dir.Register("del", "w1")
	require.NoError(t, err)
	require.NoError(t, dir.Send("del", "w1", "lead", "pending msg", mailbox.TypeMessage))

	inboxPath := mate.InboxPath()
	_, statErr := os.Stat(inboxPath)
	require.NoError(t, statErr)

	require.NoError(t, dir.DeleteTeam("del"))

	_, statErr = os.Stat(inboxPath)
	assert.True(t, os.IsNotExist(statErr), "mailbox file should be removed")
	assert.Empty(t, dir.Teams())

	// The name is re-creatable and starts empty.
	require.NoError(t, dir.CreateTeam("del"))
	status, err := dir.Status("del")
	require.NoError(t, err)
	assert.Contains(t, status, "0 teammates")
}

func TestDeleteTeam_Unknown(t *testing.T) {
	dir := newTestDirectory(t)
	assert.ErrorIs(t, dir.DeleteTeam("ghosts"), ErrTeamNotFound)
}

func TestStatus_EmptyState(t *testing.T) {
	dir := newTestDirectory(t)

	status, err := dir.Status("")
	require.NoError(t, err)
	assert.Equal(t, "No teams registered.", status)
}

func TestStatus_RosterAndPendingCounts(t *testing.T) {
	dir := newTestDirectory(t)
	require.NoError(t, dir.CreateTeam("status-team"))
	_, err := dir.Register("status-team", "w")
	require.NoError(t, err)
	require.NoError(t, dir.Send("status-team", "w", "lead", "one", mailbox.TypeMessage))
	require.NoError(t, dir.Send("status-team", "w", "lead", "two", mailbox.TypeStatus))

	status, err := dir.Status("status-team")
	require.NoError(t, err)
	assert.Contains(t, status, "status-team")
	assert.Contains(t, status, "w (2 pending)")

	_, err = dir.Status("missing")
	assert.ErrorIs(t, err, ErrTeamNotFound)
}

func TestStatus_AggregatesAcrossTeams(t *testing.T) {
	dir := newTestDirectory(t)
	require.NoError(t, dir.CreateTeam("alpha"))
	require.NoError(t, dir.CreateTeam("beta"))

	status, err := dir.Status("")
	require.NoError(t, err)
	assert.Contains(t, status, "alpha")
	assert.Contains(t, status, "beta")
}

func TestDirectory_ConcurrentMutationsAndLookups(t *testing.T) {
	dir := newTestDirectory(t)
	require.NoError(t, dir.CreateTeam("busy"))
	_, err := dir.Register("busy", "w")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = dir.Send("busy", "w", "lead", "ping", mailbox.TypeMessage)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_, _ = dir.Status("")
				_, _ = dir.CheckInbox("busy", "w")
			}
		}()
	}
	wg.Wait()

	// Whatever was not consumed mid-flight is still there, exactly once each.
	remaining, err := dir.CheckInbox("busy", "w")
	require.NoError(t, err)
	assert.LessOrEqual(t, len(remaining), 200)
}
