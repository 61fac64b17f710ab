package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/irislabs/agentshell/internal/shared/types"
)

// Provider exposes simple file tools for agents that need to inspect or
// produce files without going through a shell session.
type Provider struct {
	root string
}

// NewProvider creates a filesystem provider. Relative paths in tool
// parameters resolve against root; an empty root means the process working
// directory.
func NewProvider(root string) *Provider {
	return &Provider{root: root}
}

// Definition returns service metadata
func (p *Provider) Definition() types.Service {
	return types.Service{
		ID:          "filesystem",
		Name:        "Filesystem Service",
		Description: "Read, write, and list files on the local filesystem",
		Category:    types.CategoryFilesystem,
		Capabilities: []string{
			"read",
			"write",
			"glob",
		},
		Tools: p.getTools(),
	}
}

// Execute routes to the appropriate operation
func (p *Provider) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	switch toolID {
	case "fs_read":
		return p.read(params)
	case "fs_write":
		return p.write(params)
	case "fs_list":
		return p.list(params)
	default:
		return nil, fmt.Errorf("unknown tool: %s", toolID)
	}
}

func (p *Provider) getTools() []types.Tool {
	return []types.Tool{
		{
			ID:          "fs_read",
			Name:        "Read File",
			Description: "Read a file's contents as text",
			Parameters: []types.Parameter{
				{Name: "path", Type: "string", Description: "File path", Required: true},
			},
			Returns: "object",
		},
		{
			ID:          "fs_write",
			Name:        "Write File",
			Description: "Write text to a file, creating parent directories as needed (overwrites existing)",
			Parameters: []types.Parameter{
				{Name: "path", Type: "string", Description: "File path", Required: true},
				{Name: "content", Type: "string", Description: "Text to write", Required: true},
			},
			Returns: "object",
		},
		{
			ID:          "fs_list",
			Name:        "List Files",
			Description: "List directory entries, or match files with a glob pattern such as **/*.go",
			Parameters: []types.Parameter{
				{Name: "path", Type: "string", Description: "Directory to list. Defaults to the working directory", Required: false},
				{Name: "pattern", Type: "string", Description: "Optional doublestar glob applied relative to path", Required: false},
			},
			Returns: "object",
		},
	}
}

func (p *Provider) read(params map[string]interface{}) (*types.Result, error) {
	path, ok := params["path"].(string)
	if !ok || path == "" {
		return types.Failure("path is required"), nil
	}

	data, err := os.ReadFile(p.resolve(path))
	if err != nil {
		return types.Failure(fmt.Sprintf("read failed: %v", err)), nil
	}

	return types.Ok(map[string]interface{}{
		"path":    path,
		"content": string(data),
		"size":    len(data),
	}), nil
}

func (p *Provider) write(params map[string]interface{}) (*types.Result, error) {
	path, ok := params["path"].(string)
	if !ok || path == "" {
		return types.Failure("path is required"), nil
	}
	content, ok := params["content"].(string)
	if !ok {
		return types.Failure("content is required"), nil
	}

	full := p.resolve(path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return types.Failure(fmt.Sprintf("write failed: %v", err)), nil
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		return types.Failure(fmt.Sprintf("write failed: %v", err)), nil
	}

	return types.Ok(map[string]interface{}{
		"path":    path,
		"written": true,
		"size":    len(content),
	}), nil
}

func (p *Provider) list(params map[string]interface{}) (*types.Result, error) {
	path, _ := params["path"].(string)
	if path == "" {
		path = "."
	}
	pattern, _ := params["pattern"].(string)

	base := p.resolve(path)
	if pattern != "" {
		matches, err := doublestar.Glob(os.DirFS(base), pattern)
		if err != nil {
			return types.Failure(fmt.Sprintf("invalid pattern %q: %v", pattern, err)), nil
		}
		sort.Strings(matches)
		return types.Ok(map[string]interface{}{
			"path":    path,
			"pattern": pattern,
			"entries": matches,
			"count":   len(matches),
		}), nil
	}

	entries, err := os.ReadDir(base)
	if err != nil {
		return types.Failure(fmt.Sprintf("list failed: %v", err)), nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	sort.Strings(names)

	return types.Ok(map[string]interface{}{
		"path":    path,
		"entries": names,
		"count":   len(names),
	}), nil
}

func (p *Provider) resolve(path string) string {
	if filepath.IsAbs(path) || p.root == "" {
		return path
	}
	return filepath.Join(p.root, path)
}
