package tool

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// safePath resolves path relative to root and rejects escapes. All file tools
// are confined to the workspace root they were constructed with.
func safePath(root, path string) (string, error) {
	resolved := filepath.Clean(filepath.Join(root, path))
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	resolvedAbs, err := filepath.Abs(resolved)
	if err != nil {
		return "", err
	}
	if resolvedAbs != rootAbs && !strings.HasPrefix(resolvedAbs, rootAbs+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes the workspace", path)
	}
	return resolvedAbs, nil
}

// NewReadFileTool returns the read_file tool rooted at root.
func NewReadFileTool(root string) Tool {
	return NewFunctionTool(
		"read_file",
		"Read a file from the workspace and return its contents.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"path": map[string]any{
					"type":        "string",
					"description": "Path relative to the workspace root",
				},
			},
			"required": []string{"path"},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			path, _ := args["path"].(string)
			resolved, err := safePath(root, path)
			if err != nil {
				return nil, err
			}
			data, err := os.ReadFile(resolved)
			if err != nil {
				return nil, err
			}
			return string(data), nil
		},
	)
}

// NewWriteFileTool returns the write_file tool rooted at root.
func NewWriteFileTool(root string) Tool {
	return NewFunctionTool(
		"write_file",
		"Create or overwrite a file in the workspace.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"path": map[string]any{
					"type":        "string",
					"description": "Path relative to the workspace root",
				},
				"content": map[string]any{
					"type":        "string",
					"description": "Full file contents to write",
				},
			},
			"required": []string{"path", "content"},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			path, _ := args["path"].(string)
			content, _ := args["content"].(string)
			resolved, err := safePath(root, path)
			if err != nil {
				return nil, err
			}
			if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
				return nil, err
			}
			if err := os.WriteFile(resolved, []byte(content), 0o644); err != nil {
				return nil, err
			}
			return fmt.Sprintf("Wrote %d bytes to %s", len(content), path), nil
		},
	)
}

// NewEditFileTool returns the edit_file tool rooted at root. The old text
// must match exactly once so edits stay unambiguous.
func NewEditFileTool(root string) Tool {
	return NewFunctionTool(
		"edit_file",
		"Replace an exact text snippet in a file. The snippet must occur exactly once.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"path": map[string]any{
					"type":        "string",
					"description": "Path relative to the workspace root",
				},
				"old_text": map[string]any{
					"type":        "string",
					"description": "Exact text to replace (must be unique in the file)",
				},
				"new_text": map[string]any{
					"type":        "string",
					"description": "Replacement text",
				},
			},
			"required": []string{"path", "old_text", "new_text"},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			path, _ := args["path"].(string)
			oldText, _ := args["old_text"].(string)
			newText, _ := args["new_text"].(string)

			resolved, err := safePath(root, path)
			if err != nil {
				return nil, err
			}
			data, err := os.ReadFile(resolved)
			if err != nil {
				return nil, err
			}
			content := string(data)

			switch strings.Count(content, oldText) {
			case 0:
				return nil, fmt.Errorf("old_text not found in %s", path)
			case 1:
			default:
				return nil, fmt.Errorf("old_text occurs more than once in %s", path)
			}

			content = strings.Replace(content, oldText, newText, 1)
			if err := os.WriteFile(resolved, []byte(content), 0o644); err != nil {
				return nil, err
			}
			return fmt.Sprintf("Edited %s", path), nil
		},
	)
}
