package recipe

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vk/calcgrid/internal/computer"
	"github.com/vk/calcgrid/internal/ctxlog"
	"github.com/vk/calcgrid/internal/graph"
)

// Recipe is the loaded form of one or more recipe files: insertion requests
// for the computer plus settings destined for the reserved config node.
type Recipe struct {
	Items  []computer.QueueItem
	Config map[string]any
}

// item builds the standard strict queue item for a recipe definition.
// Strict insertion is what lets the queue retry forward references.
func item(key string, n graph.Node) computer.QueueItem {
	return computer.QueueItem{Key: key, Node: n, Strict: true}
}

// Load reads the recipe at path — a single file or a directory searched
// recursively for .hcl, .yaml, and .yml files — and translates it into
// queue items. Definitions may reference keys from later files; Apply
// resolves the ordering.
func Load(ctx context.Context, path string) (*Recipe, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := findFiles(path)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("recipe: no recipe files found at %s", path)
	}
	logger.Debug("Discovered recipe files.", "count", len(files))

	out := &Recipe{Config: make(map[string]any)}
	for _, file := range files {
		src, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("recipe: reading %s: %w", file, err)
		}
		switch strings.ToLower(filepath.Ext(file)) {
		case ".hcl":
			err = parseHCL(file, src, out)
		case ".yaml", ".yml":
			err = parseYAML(file, src, out)
		default:
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("recipe: %w", err)
		}
	}
	logger.Debug("Recipe loaded.", "items", len(out.Items), "config_keys", len(out.Config))
	return out, nil
}

// Apply inserts the recipe into the computer. Items are applied through the
// tolerant queue with enough attempts for any insertion order to converge;
// config settings merge into the reserved config node first so tasks may
// depend on it.
func (r *Recipe) Apply(ctx context.Context, c *computer.Computer) error {
	c.Graph().SetConfig(r.Config)

	// Each pass inserts at least one item or fails, so len(items) attempts
	// always suffice.
	tries := len(r.Items)
	if tries < 1 {
		tries = 1
	}
	_, err := c.AddQueue(ctx, r.Items,
		computer.MaxTries(tries), computer.OnFail(computer.FailRaise))
	return err
}

// findFiles returns the recipe files under path in deterministic order.
func findFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("recipe: %w", err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(d.Name())) {
		case ".hcl", ".yaml", ".yml":
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("recipe: %w", err)
	}
	sort.Strings(files)
	return files, nil
}
