package skill

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validSkill = `---
name: commit-helper
description: Writes conventional commit messages
---
# Commit helper

Use imperative mood.
`

func TestParse_Valid(t *testing.T) {
	s, err := Parse(validSkill)
	require.NoError(t, err)

	assert.Equal(t, "commit-helper", s.Name)
	assert.Equal(t, "Writes conventional commit messages", s.Description)
	assert.Contains(t, s.Content, "# Commit helper")
	assert.Contains(t, s.Content, "imperative mood")
}

func TestParse_Invalid(t *testing.T) {
	cases := map[string]string{
		"no frontmatter":      "# Just markdown\n",
		"unterminated":        "---\nname: x\ndescription: y\n",
		"missing name":        "---\ndescription: y\n---\nbody",
		"missing description": "---\nname: x\n---\nbody",
		"bad yaml":            "---\nname: [unclosed\n---\nbody",
	}
	for label, text := range cases {
		_, err := Parse(text)
		assert.Error(t, err, label)
	}
}

func TestLoader_LoadAndList(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "commit.md"), []byte(validSkill), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.md"), []byte("no frontmatter"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	l := NewLoader(dir)
	require.NoError(t, l.Load())

	skills := l.List()
	require.Len(t, skills, 1, "broken and non-markdown files are skipped")
	assert.Equal(t, "commit-helper", skills[0].Name)

	s, err := l.Get("commit-helper")
	require.NoError(t, err)
	assert.Contains(t, s.Content, "imperative mood")

	_, err = l.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoader_MissingDirIsEmpty(t *testing.T) {
	l := NewLoader(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, l.Load())
	assert.Empty(t, l.List())
	assert.Contains(t, l.Describe(), "no skills")
}
