// Package crewmesh provides a high-level façade over the background task
// executor, team directory and supporting stores, enabling rapid construction
// of tool-using agents that delegate work to background tasks and teammates.
// Most applications interact with this package by:
//  1. Creating a CrewMesh via New() (pointing it at a working directory)
//  2. Building a lead agent with NewLead, or teammates with NewTeammate
//  3. Running prompts; the agents drive the shared executor and mailboxes
//     through their tool registries
//
// The façade wires defaults that are safe for local development and testing;
// supply a model and a structured logger for real runs. There are no global
// registries: every CrewMesh owns its executor, directory and stores, so
// tests can construct isolated instances freely.
package crewmesh

import (
	"context"
	"path/filepath"

	"github.com/crewmesh/crewmesh/agent"
	"github.com/crewmesh/crewmesh/background"
	"github.com/crewmesh/crewmesh/logging"
	"github.com/crewmesh/crewmesh/model"
	"github.com/crewmesh/crewmesh/skill"
	"github.com/crewmesh/crewmesh/tasks"
	"github.com/crewmesh/crewmesh/team"
	"github.com/crewmesh/crewmesh/todo"
	"github.com/crewmesh/crewmesh/tool"
)

// Options configures the CrewMesh instance.
type Options struct {
	// WorkDir roots all persistent state: team mailboxes, the task store,
	// skills and transcripts live in subdirectories of it.
	WorkDir string

	// Model drives the agents built by NewLead / NewTeammate.
	Model model.Model

	// System is the system prompt given to agents built by this instance.
	System string

	// Logger defaults to NoOp when nil.
	Logger logging.Logger
}

// CrewMesh is the high-level façade aggregating the executor, directory and
// stores shared by every agent it builds.
type CrewMesh struct {
	opts       Options
	executor   *background.Executor
	directory  *team.Directory
	todos      *todo.Manager
	skills     *skill.Loader
	taskStore  *tasks.Manager
	contextMgr *agent.ContextManager
}

// New creates a CrewMesh instance rooted at the configured working directory.
// Skills are loaded from {WorkDir}/skills; a missing directory just means no
// skills.
func New(optFns ...func(o *Options)) (*CrewMesh, error) {
	opts := Options{
		WorkDir: ".crewmesh",
		Logger:  logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	taskStore, err := tasks.NewManager(filepath.Join(opts.WorkDir, "tasks"))
	if err != nil {
		return nil, err
	}

	skills := skill.NewLoader(filepath.Join(opts.WorkDir, "skills"))
	if err := skills.Load(); err != nil {
		return nil, err
	}

	return &CrewMesh{
		opts: opts,
		executor: background.NewExecutor(func(o *background.Options) {
			o.Logger = opts.Logger
		}),
		directory: team.NewDirectory(filepath.Join(opts.WorkDir, "teams"),
			func(o *team.Options) { o.Logger = opts.Logger }),
		todos:      todo.NewManager(),
		skills:     skills,
		taskStore:  taskStore,
		contextMgr: agent.NewContextManager(filepath.Join(opts.WorkDir, "transcripts")),
	}, nil
}

// Executor returns the shared background executor.
func (c *CrewMesh) Executor() *background.Executor { return c.executor }

// Directory returns the shared team directory.
func (c *CrewMesh) Directory() *team.Directory { return c.directory }

// Todos returns the shared todo manager.
func (c *CrewMesh) Todos() *todo.Manager { return c.todos }

// Skills returns the skill loader.
func (c *CrewMesh) Skills() *skill.Loader { return c.skills }

// Tasks returns the persistent task store.
func (c *CrewMesh) Tasks() *tasks.Manager { return c.taskStore }

// AllTools returns the full tool registry for the named agent: glue tools,
// planning tools, background task tools and the complete team surface.
// The name becomes the sender identity on outgoing messages.
func (c *CrewMesh) AllTools(name string) *tool.Registry {
	r := c.TeammateTools(name)
	r.Register(tool.NewTeamCreateTool(c.directory))
	r.Register(tool.NewTeamDeleteTool(c.directory))
	return r
}

// TeammateTools returns the registry handed to teammates: everything except
// team lifecycle management (TeamCreate, TeamDelete), which stays with the
// lead.
func (c *CrewMesh) TeammateTools(name string) *tool.Registry {
	return tool.NewRegistry(
		tool.NewBashTool(),
		tool.NewReadFileTool(c.opts.WorkDir),
		tool.NewWriteFileTool(c.opts.WorkDir),
		tool.NewEditFileTool(c.opts.WorkDir),
		tool.NewTodoWriteTool(c.todos),
		tool.NewSkillTool(c.skills),
		tool.NewTaskCreateTool(c.taskStore),
		tool.NewTaskGetTool(c.taskStore),
		tool.NewTaskUpdateTool(c.taskStore),
		tool.NewTaskListTool(c.taskStore),
		tool.NewTaskTool(c.executor, c.subAgentRunner(name)),
		tool.NewTaskOutputTool(c.executor),
		tool.NewTaskStopTool(c.executor),
		tool.NewSendMessageTool(c.directory, name),
		tool.NewTeamStatusTool(c.directory),
	)
}

// NewLead builds the lead agent: full tool surface plus context management.
func (c *CrewMesh) NewLead(name string, optFns ...func(o *agent.Options)) *agent.Agent {
	return agent.New(name, c.opts.Model, c.AllTools(name),
		append([]func(o *agent.Options){c.agentDefaults}, optFns...)...)
}

// NewTeammate builds a teammate registered in teamName with the restricted
// tool surface. The team must already exist.
func (c *CrewMesh) NewTeammate(teamName, name string, optFns ...func(o *agent.Options)) (*agent.Teammate, error) {
	return agent.NewTeammate(teamName, name, c.opts.Model, c.TeammateTools(name), c.directory,
		append([]func(o *agent.Options){c.agentDefaults}, optFns...)...)
}

func (c *CrewMesh) agentDefaults(o *agent.Options) {
	o.Logger = c.opts.Logger
	o.System = c.opts.System
	o.ContextManager = c.contextMgr
}

// subAgentRunner executes nested agent prompts spawned through the Task tool.
// Sub-agents get the file and shell tools only: no spawn tools (no unbounded
// recursion) and no team surface.
func (c *CrewMesh) subAgentRunner(parent string) tool.AgentRunner {
	return func(ctx context.Context, prompt string) (string, error) {
		sub := agent.New(parent+"-sub", c.opts.Model, tool.NewRegistry(
			tool.NewBashTool(),
			tool.NewReadFileTool(c.opts.WorkDir),
			tool.NewWriteFileTool(c.opts.WorkDir),
			tool.NewEditFileTool(c.opts.WorkDir),
		), c.agentDefaults)
		return sub.Run(ctx, prompt)
	}
}
