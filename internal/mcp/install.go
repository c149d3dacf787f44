package mcp

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hpungsan/hl/internal/errors"
)

// serverName is the key hl registers under in .mcp.json.
const serverName = "hl"

// mcpJSONPath returns the registration file for the given project directory.
func mcpJSONPath(dir string) string {
	return filepath.Join(dir, ".mcp.json")
}

// loadMCPJSON reads .mcp.json into a generic map so keys hl does not know
// about survive a rewrite. A missing file is an empty config.
func loadMCPJSON(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("read %s: %w", path, err))
	}

	var root map[string]any
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, errors.NewValidation(fmt.Sprintf("cannot parse %s: %v", path, err))
	}
	if root == nil {
		root = map[string]any{}
	}
	return root, nil
}

// saveMCPJSON writes the config back with two-space indentation and a
// trailing newline, matching what editors and other tools produce.
func saveMCPJSON(path string, root map[string]any) error {
	data, err := json.MarshalIndent(root, "", "  ")
	if err != nil {
		return errors.NewInternal(fmt.Errorf("marshal %s: %w", path, err))
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.NewInternal(fmt.Errorf("write %s: %w", path, err))
	}
	return nil
}

// Install registers the hl MCP server in <dir>/.mcp.json, creating the file
// if needed. Other registered servers are left untouched. It returns the
// path written.
func Install(dir string) (string, error) {
	path := mcpJSONPath(dir)
	root, err := loadMCPJSON(path)
	if err != nil {
		return "", err
	}

	servers, _ := root["mcpServers"].(map[string]any)
	if servers == nil {
		servers = map[string]any{}
	}
	servers[serverName] = map[string]any{
		"command": "hl",
		"args":    []string{"mcp", "serve"},
	}
	root["mcpServers"] = servers

	if err := saveMCPJSON(path, root); err != nil {
		return "", err
	}
	return path, nil
}

// Uninstall removes the hl registration from <dir>/.mcp.json. It reports
// whether a registration was actually present. An empty mcpServers object
// is dropped rather than written back.
func Uninstall(dir string) (string, bool, error) {
	path := mcpJSONPath(dir)
	root, err := loadMCPJSON(path)
	if err != nil {
		return "", false, err
	}

	servers, _ := root["mcpServers"].(map[string]any)
	if _, registered := servers[serverName]; !registered {
		return path, false, nil
	}

	delete(servers, serverName)
	if len(servers) == 0 {
		delete(root, "mcpServers")
	} else {
		root["mcpServers"] = servers
	}

	if err := saveMCPJSON(path, root); err != nil {
		return "", false, err
	}
	return path, true, nil
}
