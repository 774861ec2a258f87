// Copyright (c) 2026 Sentra. All rights reserved.
// Author: platform@sentrahq.io

package authz_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentrahq/sentra/internal/authz"
	"github.com/sentrahq/sentra/internal/platform/apperr"
)

// standardRoles mirrors a typical three-tier deployment configuration.
func standardRoles() []authz.Role {
	return []authz.Role{
		{Name: "ADMIN", Privileges: []string{"manage_users", "manage_roles"}},
		{Name: "MODERATOR", Privileges: []string{"review_reports"}},
		{Name: "USER", Privileges: []string{"read_profile", "update_profile"}},
	}
}

func standardEdges() []authz.Edge {
	return []authz.Edge{
		{Parent: "ADMIN", Child: "MODERATOR"},
		{Parent: "MODERATOR", Child: "USER"},
	}
}

/*
TestCompile_TransitiveInheritance verifies that a parent role inherits its
children's privileges through the full chain.
*/
func TestCompile_TransitiveInheritance(t *testing.T) {
	hierarchy, err := authz.Compile(standardRoles(), standardEdges())
	require.NoError(t, err)

	// 1. ADMIN reaches everything, including USER's privileges two hops away.
	effective := hierarchy.Resolve([]string{"ADMIN"})
	assert.Contains(t, effective, "manage_users")
	assert.Contains(t, effective, "review_reports")
	assert.Contains(t, effective, "read_profile")
	assert.Contains(t, effective, "update_profile")

	// 2. USER gets only its own declared privileges.
	effective = hierarchy.Resolve([]string{"USER"})
	assert.Len(t, effective, 2)
	assert.NotContains(t, effective, "review_reports")
}

/*
TestCompile_CycleRejected verifies that a two-role inheritance cycle fails
compilation instead of producing a partial hierarchy.
*/
func TestCompile_CycleRejected(t *testing.T) {
	roles := []authz.Role{
		{Name: "A", Privileges: []string{"p1"}},
		{Name: "B", Privileges: []string{"p2"}},
	}
	edges := []authz.Edge{
		{Parent: "A", Child: "B"},
		{Parent: "B", Child: "A"},
	}

	hierarchy, err := authz.Compile(roles, edges)
	assert.Nil(t, hierarchy)
	assert.True(t, apperr.IsCode(err, "CYCLIC_HIERARCHY"))
}

/*
TestCompile_SelfCycleRejected verifies that a role inheriting itself is a cycle.
*/
func TestCompile_SelfCycleRejected(t *testing.T) {
	roles := []authz.Role{{Name: "A", Privileges: []string{"p1"}}}
	edges := []authz.Edge{{Parent: "A", Child: "A"}}

	_, err := authz.Compile(roles, edges)
	assert.True(t, apperr.IsCode(err, "CYCLIC_HIERARCHY"))
}

/*
TestCompile_DuplicateRoleRejected verifies that defining the same role twice
fails compilation.
*/
func TestCompile_DuplicateRoleRejected(t *testing.T) {
	roles := []authz.Role{
		{Name: "USER", Privileges: []string{"read_profile"}},
		{Name: "USER", Privileges: []string{"update_profile"}},
	}

	_, err := authz.Compile(roles, nil)
	assert.True(t, apperr.IsCode(err, "DUPLICATE_ROLE"))
}

/*
TestCompile_UndeclaredEdgeRole verifies that a hierarchy entry referencing an
unknown role fails compilation rather than silently creating an empty role.
*/
func TestCompile_UndeclaredEdgeRole(t *testing.T) {
	roles := []authz.Role{{Name: "USER", Privileges: []string{"read_profile"}}}
	edges := []authz.Edge{{Parent: "ADMIN", Child: "USER"}}

	_, err := authz.Compile(roles, edges)
	assert.Error(t, err)
}

/*
TestResolve_UnknownRolesIgnored verifies that stale role names in the granted
set degrade to an empty contribution instead of an error.
*/
func TestResolve_UnknownRolesIgnored(t *testing.T) {
	hierarchy, err := authz.Compile(standardRoles(), standardEdges())
	require.NoError(t, err)

	effective := hierarchy.Resolve([]string{"GHOST", "USER"})
	assert.Len(t, effective, 2)
	assert.Contains(t, effective, "read_profile")

	assert.Empty(t, hierarchy.Resolve([]string{"GHOST"}))
	assert.Empty(t, hierarchy.Resolve(nil))
}

/*
TestResolve_UnionOfMultipleRoles verifies that resolving several granted roles
produces the union of their closures without duplicates.
*/
func TestResolve_UnionOfMultipleRoles(t *testing.T) {
	hierarchy, err := authz.Compile(standardRoles(), standardEdges())
	require.NoError(t, err)

	effective := hierarchy.Resolve([]string{"MODERATOR", "USER"})
	assert.Len(t, effective, 3)
	assert.Contains(t, effective, "review_reports")
	assert.Contains(t, effective, "read_profile")
}

/*
TestHasPrivilege verifies the single-privilege fast path.
*/
func TestHasPrivilege(t *testing.T) {
	hierarchy, err := authz.Compile(standardRoles(), standardEdges())
	require.NoError(t, err)

	assert.True(t, hierarchy.HasPrivilege([]string{"ADMIN"}, "read_profile"))
	assert.False(t, hierarchy.HasPrivilege([]string{"USER"}, "manage_users"))
	assert.False(t, hierarchy.HasPrivilege([]string{"GHOST"}, "read_profile"))
}

/*
TestParseEdges verifies parsing of "PARENT > CHILD" hierarchy strings.
*/
func TestParseEdges(t *testing.T) {
	edges, err := authz.ParseEdges([]string{"ADMIN > MODERATOR", "MODERATOR>USER"})
	require.NoError(t, err)
	assert.Equal(t, []authz.Edge{
		{Parent: "ADMIN", Child: "MODERATOR"},
		{Parent: "MODERATOR", Child: "USER"},
	}, edges)

	// Malformed entries
	_, err = authz.ParseEdges([]string{"ADMIN"})
	assert.Error(t, err)

	_, err = authz.ParseEdges([]string{"ADMIN >"})
	assert.Error(t, err)
}

/*
TestCompileFile verifies the end-to-end load of a role configuration file.
*/
func TestCompileFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roles.json")
	content := `{
		"roles": [
			{"name": "ADMIN", "privileges": ["manage_users"]},
			{"name": "USER", "privileges": ["read_profile"]}
		],
		"hierarchy": ["ADMIN > USER"]
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	hierarchy, err := authz.CompileFile(path)
	require.NoError(t, err)

	effective := hierarchy.Resolve([]string{"ADMIN"})
	assert.Contains(t, effective, "manage_users")
	assert.Contains(t, effective, "read_profile")

	// Missing file
	_, err = authz.CompileFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
