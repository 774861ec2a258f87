// Copyright (c) 2026 Sentra. All rights reserved.
// Author: platform@sentrahq.io

/*
Package authz implements role-based privilege expansion for the platform.

It compiles a role→privilege map plus role-inheritance edges into an immutable,
queryable expansion table.

Architecture:

  - Compile: Validates the configuration (duplicate roles, inheritance cycles)
    and precomputes the transitive privilege closure of every role.
  - Resolve: A pure, allocation-light union over the cached closures.
  - Provider: An atomic holder that supports whole-table hot reload.

Compilation failures are fatal at startup: the service never authorizes
requests against a partially-compiled hierarchy.
*/
package authz

import (
	"fmt"

	"github.com/sentrahq/sentra/internal/platform/apperr"
)

// # Contracts & Types

// Privileges the platform's own endpoints gate on. The role configuration
// file decides which roles carry them.
const (
	PrivManageUsers  = "manage_users"
	PrivManageRoles  = "manage_roles"
	PrivManageTokens = "manage_tokens"
)

// Role declares a named role and its directly granted privileges.
type Role struct {
	Name       string   `json:"name"`
	Privileges []string `json:"privileges"`
}

// Edge declares that Parent inherits all privileges and inherited roles of Child.
type Edge struct {
	Parent string
	Child  string
}

// Hierarchy is the compiled, immutable expansion table.
//
// # Concurrency
//
// A Hierarchy is never mutated after [Compile] returns, so it is safe for
// unlimited concurrent readers without locking. Hot reload replaces the whole
// value atomically via [Provider].
type Hierarchy struct {
	// closures maps each role name to the union of the declared privileges of
	// every role reachable from it (including itself).
	closures map[string]map[string]struct{}
}

// DFS colors for cycle detection.
const (
	colorWhite = iota // not visited
	colorGray         // on the current traversal stack
	colorBlack        // fully explored
)

// # Compilation

/*
Compile validates the raw role configuration and builds the expansion table.

Description: Rejects duplicate role definitions, builds an adjacency structure
from the inheritance edges, rejects inheritance cycles (a partially valid
hierarchy is never returned), then computes each role's
transitive closure of reachable roles and caches the union of their declared
privileges.

Parameters:
  - roles: role definitions (name + directly declared privileges)
  - edges: inheritance relationships (parent inherits child)

Returns:
  - *Hierarchy: Immutable expansion table
  - error: apperr.DuplicateRole or apperr.CyclicHierarchy
*/
func Compile(roles []Role, edges []Edge) (*Hierarchy, error) {

	// Index declared privileges per role, rejecting duplicate definitions.
	declared := make(map[string]map[string]struct{}, len(roles))
	for _, role := range roles {
		if _, exists := declared[role.Name]; exists {
			return nil, apperr.DuplicateRole(role.Name)
		}
		set := make(map[string]struct{}, len(role.Privileges))
		for _, privilege := range role.Privileges {
			set[privilege] = struct{}{}
		}
		declared[role.Name] = set
	}

	// Build the adjacency list. Every edge endpoint must be a declared role
	// so a typo in the hierarchy cannot silently create an empty role.
	adjacency := make(map[string][]string, len(roles))
	for _, edge := range edges {
		if _, ok := declared[edge.Parent]; !ok {
			return nil, fmt.Errorf("authz: hierarchy edge references undeclared role %q", edge.Parent)
		}
		if _, ok := declared[edge.Child]; !ok {
			return nil, fmt.Errorf("authz: hierarchy edge references undeclared role %q", edge.Child)
		}
		adjacency[edge.Parent] = append(adjacency[edge.Parent], edge.Child)
	}

	// Cycle detection via iterative three-color depth-first traversal.
	colors := make(map[string]int, len(roles))
	for name := range declared {
		if colors[name] != colorWhite {
			continue
		}
		if cycleRole, found := findCycle(name, adjacency, colors); found {
			return nil, apperr.CyclicHierarchy(cycleRole)
		}
	}

	// Compute the transitive closure of every role exactly once. Memoization
	// is safe here because the graph is proven acyclic above.
	hierarchy := &Hierarchy{closures: make(map[string]map[string]struct{}, len(roles))}
	for name := range declared {
		hierarchy.closureOf(name, declared, adjacency)
	}

	return hierarchy, nil
}

// findCycle runs a DFS from start and reports the first role found on the
// traversal stack twice.
func findCycle(start string, adjacency map[string][]string, colors map[string]int) (string, bool) {

	type frame struct {
		role string
		next int
	}

	stack := []frame{{role: start}}
	colors[start] = colorGray

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		children := adjacency[top.role]

		if top.next >= len(children) {
			// All children explored; retire this role.
			colors[top.role] = colorBlack
			stack = stack[:len(stack)-1]
			continue
		}

		child := children[top.next]
		top.next++

		switch colors[child] {
		case colorGray:
			// Back edge: the child is already on the stack.
			return child, true
		case colorWhite:
			colors[child] = colorGray
			stack = append(stack, frame{role: child})
		}
	}

	return "", false
}

// closureOf memoizes the privilege closure of a role.
func (hierarchy *Hierarchy) closureOf(role string, declared map[string]map[string]struct{}, adjacency map[string][]string) map[string]struct{} {
	if cached, ok := hierarchy.closures[role]; ok {
		return cached
	}

	closure := make(map[string]struct{}, len(declared[role]))
	for privilege := range declared[role] {
		closure[privilege] = struct{}{}
	}

	for _, child := range adjacency[role] {
		for privilege := range hierarchy.closureOf(child, declared, adjacency) {
			closure[privilege] = struct{}{}
		}
	}

	hierarchy.closures[role] = closure
	return closure
}

// # Resolution

/*
Resolve expands a set of granted role names into the effective privilege set.

Description: A pure union over the cached closures. Unknown role names are
ignored (not an error) so that stale role references in an account's mutable
role set degrade safely rather than block authorization entirely. The same
inputs always produce the same set; there are no side effects.

Parameters:
  - grantedRoles: role names granted to the subject

Returns:
  - map[string]struct{}: The effective privilege set (caller-owned copy)
*/
func (hierarchy *Hierarchy) Resolve(grantedRoles []string) map[string]struct{} {

	effective := make(map[string]struct{})
	for _, role := range grantedRoles {
		for privilege := range hierarchy.closures[role] {
			effective[privilege] = struct{}{}
		}
	}

	return effective
}

// HasPrivilege reports whether the granted roles expand to a set containing
// the privilege. Cheaper than [Resolve] when only one privilege matters.
func (hierarchy *Hierarchy) HasPrivilege(grantedRoles []string, privilege string) bool {
	for _, role := range grantedRoles {
		if _, ok := hierarchy.closures[role][privilege]; ok {
			return true
		}
	}
	return false
}

// Roles returns the names of all compiled roles.
func (hierarchy *Hierarchy) Roles() []string {
	names := make([]string, 0, len(hierarchy.closures))
	for name := range hierarchy.closures {
		names = append(names, name)
	}
	return names
}
