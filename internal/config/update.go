package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rileyhilliard/expml/internal/errors"
	"gopkg.in/yaml.v3"
)

// WriteDefault writes DefaultConfig to path as YAML. It refuses to overwrite
// an existing file unless force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return errors.New(errors.ErrConfig,
				"Config already exists: "+path,
				"Pass --force to overwrite it")
		}
	}

	data, err := yaml.Marshal(defaultDocument())
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "Failed to encode default config", "")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot create config directory "+dir,
				"Check directory permissions")
		}
	}

	header := "# expml dashboard configuration\n"
	if err := os.WriteFile(path, append([]byte(header), data...), 0o644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot write config file "+path,
			"Check directory permissions")
	}
	return nil
}

// defaultDocument mirrors DefaultConfig with durations as strings so the
// written file reads "1s" instead of nanoseconds.
func defaultDocument() map[string]interface{} {
	d := DefaultConfig()
	return map[string]interface{}{
		"version":          d.Version,
		"runs_dir":         d.RunsDir,
		"refresh_interval": d.RefreshInterval.String(),
		"layout":           d.Layout,
		"display":          d.Display,
		"log":              d.Log,
	}
}

// SetValue updates a dotted key (e.g. "layout.sidebar_width") in an existing
// config file, keeping the rest of the document and its comments intact.
// Missing intermediate mappings are created.
func SetValue(configPath, key, value string) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return fmt.Errorf("invalid YAML document structure")
	}

	node := root.Content[0]
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("expected mapping at document root")
	}

	parts := strings.Split(key, ".")
	for _, part := range parts[:len(parts)-1] {
		child := findMapValue(node, part)
		if child == nil {
			child = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
			node.Content = append(node.Content, scalar(part), child)
		}
		if child.Kind != yaml.MappingNode {
			return fmt.Errorf("'%s' is not a mapping", part)
		}
		node = child
	}

	leaf := parts[len(parts)-1]
	if existing := findMapValue(node, leaf); existing != nil {
		if existing.Kind != yaml.ScalarNode {
			return fmt.Errorf("'%s' is not a scalar value", key)
		}
		existing.Value = value
		existing.Tag = ""
		existing.Style = 0
	} else {
		node.Content = append(node.Content, scalar(leaf), &yaml.Node{Kind: yaml.ScalarNode, Value: value})
	}

	out, err := yaml.Marshal(&root)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(configPath, out, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// findMapValue finds the value node for a key in a YAML mapping node.
func findMapValue(mapNode *yaml.Node, key string) *yaml.Node {
	if mapNode.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(mapNode.Content); i += 2 {
		if mapNode.Content[i].Value == key {
			return mapNode.Content[i+1]
		}
	}
	return nil
}

func scalar(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}
