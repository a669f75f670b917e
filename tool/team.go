package tool

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/crewmesh/crewmesh/mailbox"
	"github.com/crewmesh/crewmesh/team"
)

// messageTypeEnum renders the recognized message types for the schema enum.
func messageTypeEnum() []any {
	types := mailbox.Types()
	out := make([]any, len(types))
	for i, t := range types {
		out[i] = string(t)
	}
	return out
}

// NewTeamCreateTool returns the team-create tool. Creating an existing name
// reports "already exists" as an ordinary result so the loop can branch on it.
func NewTeamCreateTool(dir *team.Directory) Tool {
	return NewFunctionTool(
		"TeamCreate",
		"Create a new team that teammates can be spawned into.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"team_name": map[string]any{
					"type":        "string",
					"description": "Unique team name",
				},
			},
			"required": []string{"team_name"},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			name, _ := args["team_name"].(string)
			if err := dir.CreateTeam(name); err != nil {
				if errors.Is(err, team.ErrTeamExists) {
					return fmt.Sprintf("Team %q already exists", name), nil
				}
				return nil, err
			}
			return fmt.Sprintf("Team %q created", name), nil
		},
	)
}

// NewTeamDeleteTool returns the team-delete tool.
func NewTeamDeleteTool(dir *team.Directory) Tool {
	return NewFunctionTool(
		"TeamDelete",
		"Delete a team and all its teammates' mailboxes.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"team_name": map[string]any{
					"type":        "string",
					"description": "Name of the team to delete",
				},
			},
			"required": []string{"team_name"},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			name, _ := args["team_name"].(string)
			if err := dir.DeleteTeam(name); err != nil {
				return nil, err
			}
			return fmt.Sprintf("Team %q deleted", name), nil
		},
	)
}

// NewSendMessageTool returns the send-message tool for the given sender
// identity. An unrecognized message type is rejected without touching any
// mailbox.
func NewSendMessageTool(dir *team.Directory, from string) Tool {
	return NewFunctionTool(
		"SendMessage",
		fmt.Sprintf("Send a message to a teammate's mailbox. Valid types: %s.",
			joinTypes()),
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"team_name": map[string]any{
					"type":        "string",
					"description": "Team the recipient belongs to",
				},
				"recipient": map[string]any{
					"type":        "string",
					"description": "Teammate name to deliver to",
				},
				"content": map[string]any{
					"type":        "string",
					"description": "Message text",
				},
				"msg_type": map[string]any{
					"type":        "string",
					"enum":        messageTypeEnum(),
					"description": "Kind of message",
				},
			},
			"required": []string{"team_name", "recipient", "content", "msg_type"},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			teamName, _ := args["team_name"].(string)
			recipient, _ := args["recipient"].(string)
			content, _ := args["content"].(string)
			msgType, _ := args["msg_type"].(string)

			if err := dir.Send(teamName, recipient, from, content, mailbox.MessageType(msgType)); err != nil {
				return nil, err
			}
			return fmt.Sprintf("Message delivered to %s/%s", teamName, recipient), nil
		},
	)
}

// NewTeamStatusTool returns the roster/pending-count reporting tool.
func NewTeamStatusTool(dir *team.Directory) Tool {
	return NewFunctionTool(
		"TeamStatus",
		"Report team rosters and pending-message counts. Omit team_name to "+
			"aggregate across all teams.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"team_name": map[string]any{
					"type":        "string",
					"description": "Optional team to report on",
				},
			},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			name, _ := args["team_name"].(string)
			return dir.Status(name)
		},
	)
}

func joinTypes() string {
	types := mailbox.Types()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
