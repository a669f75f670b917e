package team

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/crewmesh/crewmesh/logging"
	"github.com/crewmesh/crewmesh/mailbox"
)

// Sentinel errors returned by directory operations.
var (
	// ErrTeamNotFound is returned when the named team does not exist.
	ErrTeamNotFound = errors.New("team not found")

	// ErrTeamExists is returned when creating a team whose name is taken.
	ErrTeamExists = errors.New("team already exists")

	// ErrTeammateNotFound is returned when the named teammate is not on the team.
	ErrTeammateNotFound = errors.New("teammate not found")

	// ErrTeammateExists is returned when registering a duplicate teammate name.
	ErrTeammateExists = errors.New("teammate already exists")
)

// Teammate is a named participant in a team, reachable through its own
// persistent mailbox.
type Teammate struct {
	Name     string
	TeamName string

	inbox *mailbox.Store
}

// Inbox returns the teammate's mailbox store.
func (t *Teammate) Inbox() *mailbox.Store { return t.inbox }

// InboxPath returns the location of the teammate's mailbox file.
func (t *Teammate) InboxPath() string { return t.inbox.Path() }

// Options configures a Directory.
type Options struct {
	// Logger receives structured lifecycle logs. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Directory tracks teams and their rosters, and routes sends and inbox checks
// to the addressed teammate's mailbox. All methods are safe for concurrent use.
type Directory struct {
	root   string
	logger logging.Logger

	mu    sync.RWMutex
	teams map[string]map[string]*Teammate // team name -> teammate name -> teammate
}

// NewDirectory creates a Directory whose mailbox files live under root.
func NewDirectory(root string, optFns ...func(o *Options)) *Directory {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Directory{
		root:   root,
		logger: logging.OrNoOp(opts.Logger),
		teams:  make(map[string]map[string]*Teammate),
	}
}

// CreateTeam creates an empty team. Creating a name that already exists
// returns ErrTeamExists without mutating state.
func (d *Directory) CreateTeam(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.teams[name]; ok {
		return fmt.Errorf("%w: %s", ErrTeamExists, name)
	}
	d.teams[name] = make(map[string]*Teammate)
	d.logger.Info("team.created", "team", name)
	return nil
}

// DeleteTeam removes the team, all its teammates, and their mailbox files.
// The name becomes re-creatable afterward.
func (d *Directory) DeleteTeam(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	mates, ok := d.teams[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTeamNotFound, name)
	}

	for _, mate := range mates {
		if err := mate.inbox.Remove(); err != nil {
			d.logger.Warn("team.mailbox_cleanup_failed", "team", name, "teammate", mate.Name, "error", err)
		}
	}
	// Best effort: the team dir only holds mailbox files.
	_ = os.RemoveAll(filepath.Join(d.root, name))

	delete(d.teams, name)
	d.logger.Info("team.deleted", "team", name)
	return nil
}

// Register associates a teammate name with a fresh persistent mailbox inside
// the team. Duplicate names within a team return ErrTeammateExists.
func (d *Directory) Register(teamName, name string) (*Teammate, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	mates, ok := d.teams[teamName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTeamNotFound, teamName)
	}
	if _, ok := mates[name]; ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrTeammateExists, teamName, name)
	}

	mate := &Teammate{
		Name:     name,
		TeamName: teamName,
		inbox:    mailbox.NewStore(filepath.Join(d.root, teamName, name+".jsonl")),
	}
	mates[name] = mate
	d.logger.Info("team.registered", "team", teamName, "teammate", name)
	return mate, nil
}

// Lookup returns the teammate registered under team/name.
func (d *Directory) Lookup(teamName, name string) (*Teammate, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.lookupLocked(teamName, name)
}

func (d *Directory) lookupLocked(teamName, name string) (*Teammate, error) {
	mates, ok := d.teams[teamName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTeamNotFound, teamName)
	}
	mate, ok := mates[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrTeammateNotFound, teamName, name)
	}
	return mate, nil
}

// Send validates the message type and appends a timestamped message to the
// target teammate's mailbox. The type is checked before any lookup so an
// unrecognized type never touches a mailbox; unknown team or target yields a
// not-found error.
func (d *Directory) Send(teamName, target, from, content string, msgType mailbox.MessageType) error {
	if !mailbox.ValidType(msgType) {
		return fmt.Errorf("%w: %q (valid: %v)", mailbox.ErrInvalidType, msgType, mailbox.Types())
	}

	mate, err := d.Lookup(teamName, target)
	if err != nil {
		return err
	}

	if err := mate.Inbox().Append(mailbox.Message{
		From:    from,
		Type:    msgType,
		Content: content,
	}); err != nil {
		return err
	}

	d.logger.Debug("team.sent", "team", teamName, "to", target, "from", from, "type", msgType)
	return nil
}

// CheckInbox reads every stored message for the teammate in send order and
// clears the store, as a single atomic consume.
func (d *Directory) CheckInbox(teamName, name string) ([]mailbox.Message, error) {
	mate, err := d.Lookup(teamName, name)
	if err != nil {
		return nil, err
	}
	return mate.Inbox().Drain()
}

// Status reports the directory state as human-readable text. With an empty
// name it aggregates across all teams (or reports the empty state); with a
// team name it reports that team's roster and pending-message counts.
func (d *Directory) Status(name string) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if name != "" {
		if _, ok := d.teams[name]; !ok {
			return "", fmt.Errorf("%w: %s", ErrTeamNotFound, name)
		}
		return d.teamStatusLocked(name), nil
	}

	if len(d.teams) == 0 {
		return "No teams registered.", nil
	}

	names := make([]string, 0, len(d.teams))
	for n := range d.teams {
		names = append(names, n)
	}
	sort.Strings(names)

	blocks := make([]string, 0, len(names))
	for _, n := range names {
		blocks = append(blocks, d.teamStatusLocked(n))
	}
	return strings.Join(blocks, "\n"), nil
}

// teamStatusLocked renders one team's roster. Caller must hold d.mu.
func (d *Directory) teamStatusLocked(name string) string {
	mates := d.teams[name]

	var b strings.Builder
	fmt.Fprintf(&b, "Team %s (%d teammates)", name, len(mates))

	mateNames := make([]string, 0, len(mates))
	for n := range mates {
		mateNames = append(mateNames, n)
	}
	sort.Strings(mateNames)

	for _, n := range mateNames {
		pending, err := mates[n].Inbox().Pending()
		if err != nil {
			fmt.Fprintf(&b, "\n  - %s (inbox unreadable)", n)
			continue
		}
		fmt.Fprintf(&b, "\n  - %s (%d pending)", n, pending)
	}
	return b.String()
}

// Teams returns the registered team names in sorted order.
func (d *Directory) Teams() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.teams))
	for n := range d.teams {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
