// Copyright (c) 2026 Sentra. All rights reserved.
// Author: platform@sentrahq.io

package authz

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// # Role Configuration File

// Definition is the on-disk shape of the role configuration file.
//
// Hierarchy entries use the "PARENT > CHILD" form, meaning the parent role
// inherits every privilege of the child role, transitively.
type Definition struct {
	Roles     []Role   `json:"roles"`
	Hierarchy []string `json:"hierarchy"`
}

// LoadDefinition reads and parses a role configuration file.
func LoadDefinition(path string) (*Definition, error) {

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("authz_read_roles_file_failed: %w", err)
	}

	var definition Definition
	if err := json.Unmarshal(raw, &definition); err != nil {
		return nil, fmt.Errorf("authz_parse_roles_file_failed: %w", err)
	}

	return &definition, nil
}

// ParseEdges converts "PARENT > CHILD" hierarchy strings into edges.
func ParseEdges(hierarchy []string) ([]Edge, error) {

	edges := make([]Edge, 0, len(hierarchy))
	for _, entry := range hierarchy {
		parent, child, found := strings.Cut(entry, ">")
		if !found {
			return nil, fmt.Errorf("authz: malformed hierarchy entry %q, expected \"PARENT > CHILD\"", entry)
		}

		parent = strings.TrimSpace(parent)
		child = strings.TrimSpace(child)
		if parent == "" || child == "" {
			return nil, fmt.Errorf("authz: malformed hierarchy entry %q, expected \"PARENT > CHILD\"", entry)
		}

		edges = append(edges, Edge{Parent: parent, Child: child})
	}

	return edges, nil
}

// CompileDefinition compiles a parsed definition into a hierarchy.
func CompileDefinition(definition *Definition) (*Hierarchy, error) {

	edges, err := ParseEdges(definition.Hierarchy)
	if err != nil {
		return nil, err
	}

	return Compile(definition.Roles, edges)
}

// CompileFile loads, parses and compiles a role configuration file in one step.
func CompileFile(path string) (*Hierarchy, error) {

	definition, err := LoadDefinition(path)
	if err != nil {
		return nil, err
	}

	return CompileDefinition(definition)
}
