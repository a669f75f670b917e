package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/crewmesh/crewmesh/core"
	"github.com/crewmesh/crewmesh/mailbox"
	"github.com/crewmesh/crewmesh/model"
	"github.com/crewmesh/crewmesh/team"
	"github.com/crewmesh/crewmesh/tool"
)

// Teammate is an Agent registered in a team directory. Before every model
// turn it drains its inbox and injects the messages into the conversation; a
// shutdown message ends the run cooperatively after the current turn.
type Teammate struct {
	agent    *Agent
	dir      *team.Directory
	teamName string
	name     string
}

// NewTeammate registers name in the team and wraps the tool-calling loop
// with inbox handling. Registration fails if the team does not exist or the
// name is taken.
func NewTeammate(
	teamName, name string,
	m model.Model,
	tools *tool.Registry,
	dir *team.Directory,
	optFns ...func(o *Options),
) (*Teammate, error) {
	if _, err := dir.Register(teamName, name); err != nil {
		return nil, err
	}

	tm := &Teammate{dir: dir, teamName: teamName, name: name}
	tm.agent = New(name, m, tools, append(optFns, func(o *Options) {
		o.Preamble = tm.drainInbox
	})...)
	return tm, nil
}

// Name returns the teammate's name.
func (t *Teammate) Name() string { return t.name }

// Team returns the team the teammate belongs to.
func (t *Teammate) Team() string { return t.teamName }

// Run executes the loop for a prompt. A shutdown message ends the run with
// the text accumulated so far and no error.
func (t *Teammate) Run(ctx context.Context, prompt string) (string, error) {
	result, err := t.agent.Run(ctx, prompt)
	if errors.Is(err, ErrShutdown) {
		return "shutting down", nil
	}
	return result, err
}

// drainInbox empties the teammate's mailbox and renders each message as a
// conversation part. A shutdown message stops the loop; any messages drained
// alongside it stay consumed, matching the mailbox's read-and-clear contract.
func (t *Teammate) drainInbox(ctx context.Context) ([]core.Part, error) {
	msgs, err := t.dir.CheckInbox(t.teamName, t.name)
	if err != nil {
		return nil, err
	}

	var parts []core.Part
	for _, m := range msgs {
		if m.Type == mailbox.TypeShutdown {
			return nil, fmt.Errorf("teammate %s: %w", t.name, ErrShutdown)
		}
		parts = append(parts, core.TextPart{
			Text: fmt.Sprintf("[%s from %s] %s", m.Type, m.From, m.Content),
		})
	}
	return parts, nil
}
