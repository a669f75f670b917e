package tool

import (
	"context"
	"fmt"

	"github.com/crewmesh/crewmesh/skill"
)

// NewSkillTool returns the skill invocation tool. The loaded skills are
// enumerated in the description so the model can pick by name without a
// separate listing call.
func NewSkillTool(loader *skill.Loader) Tool {
	return NewFunctionTool(
		"Skill",
		fmt.Sprintf("Load a skill's instructions into the conversation. Available skills:\n%s",
			loader.Describe()),
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"name": map[string]any{
					"type":        "string",
					"description": "Name of the skill to load",
				},
			},
			"required": []string{"name"},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			name, _ := args["name"].(string)
			s, err := loader.Get(name)
			if err != nil {
				return nil, err
			}
			return s.Content, nil
		},
	)
}
