// Package skill loads reusable prompt skills from markdown files. A skill is
// a markdown document with a YAML frontmatter block declaring its name and
// description; the body is injected into the conversation when the model
// invokes the skill by name.
package skill

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when no skill with the requested name is loaded.
var ErrNotFound = errors.New("skill not found")

const frontmatterFence = "---"

// Skill is one loaded skill: frontmatter metadata plus the markdown body.
type Skill struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`

	Content string `yaml:"-"`
	Path    string `yaml:"-"`
}

// Loader scans a directory of *.md files and indexes valid skills by name.
type Loader struct {
	dir    string
	skills map[string]Skill
}

// NewLoader creates a Loader for dir without scanning it yet.
func NewLoader(dir string) *Loader {
	return &Loader{dir: dir, skills: make(map[string]Skill)}
}

// Load scans the directory and parses every markdown file. Files without a
// valid frontmatter block are skipped, not fatal: a broken skill should not
// take down the whole library. A missing directory yields an empty loader.
func (l *Loader) Load() error {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("skill: read dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		path := filepath.Join(l.dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		s, err := Parse(string(data))
		if err != nil {
			continue
		}
		s.Path = path
		l.skills[s.Name] = s
	}
	return nil
}

// Parse extracts a Skill from markdown text. The document must start with a
// frontmatter block fenced by "---" lines containing at least a name and
// description; everything after the closing fence is the skill content.
func Parse(text string) (Skill, error) {
	trimmed := strings.TrimLeft(text, "\n\r \t")
	if !strings.HasPrefix(trimmed, frontmatterFence) {
		return Skill{}, fmt.Errorf("skill: missing frontmatter block")
	}

	rest := trimmed[len(frontmatterFence):]
	idx := strings.Index(rest, "\n"+frontmatterFence)
	if idx < 0 {
		return Skill{}, fmt.Errorf("skill: unterminated frontmatter block")
	}

	var s Skill
	if err := yaml.Unmarshal([]byte(rest[:idx]), &s); err != nil {
		return Skill{}, fmt.Errorf("skill: parse frontmatter: %w", err)
	}
	if s.Name == "" {
		return Skill{}, fmt.Errorf("skill: frontmatter missing name")
	}
	if s.Description == "" {
		return Skill{}, fmt.Errorf("skill: frontmatter missing description")
	}

	body := rest[idx+len(frontmatterFence)+1:]
	body = strings.TrimPrefix(body, "\n")
	s.Content = body
	return s, nil
}

// Get returns the named skill.
func (l *Loader) Get(name string) (Skill, error) {
	s, ok := l.skills[name]
	if !ok {
		return Skill{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return s, nil
}

// List returns all loaded skills sorted by name.
func (l *Loader) List() []Skill {
	out := make([]Skill, 0, len(l.skills))
	for _, s := range l.skills {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Describe renders a one-line-per-skill summary for tool descriptions.
func (l *Loader) Describe() string {
	skills := l.List()
	if len(skills) == 0 {
		return "(no skills available)"
	}
	lines := make([]string, len(skills))
	for i, s := range skills {
		lines[i] = fmt.Sprintf("- %s: %s", s.Name, s.Description)
	}
	return strings.Join(lines, "\n")
}
