package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Registry_MissingFileIsEmpty(t *testing.T) {
	registry, err := LoadRegistry(filepath.Join(t.TempDir(), "projects.toml"))
	require.NoError(t, err)
	assert.Empty(t, registry.List())
}

func Test_Registry_AddRemoveSave(t *testing.T) {
	dir := t.TempDir()
	registryPath := filepath.Join(dir, "state", "projects.toml")
	rootA := filepath.Join(dir, "a")
	rootB := filepath.Join(dir, "b")
	require.NoError(t, os.Mkdir(rootA, 0755))
	require.NoError(t, os.Mkdir(rootB, 0755))

	registry, err := LoadRegistry(registryPath)
	require.NoError(t, err)

	projectB := Default().NewProject(rootB)
	projectB.Exclude = []string{"fixtures"}
	assert.True(t, registry.Add(projectB))
	assert.True(t, registry.Add(Default().NewProject(rootA)))
	assert.False(t, registry.Add(Default().NewProject(rootA)), "duplicate add must be rejected")
	require.NoError(t, registry.Save())

	reloaded, err := LoadRegistry(registryPath)
	require.NoError(t, err)
	projects := reloaded.List()
	require.Len(t, projects, 2)
	assert.Equal(t, rootA, projects[0].Path)
	assert.Equal(t, rootB, projects[1].Path)
	assert.Equal(t, []string{"fixtures"}, projects[1].Exclude)

	assert.True(t, reloaded.Remove(rootA))
	assert.False(t, reloaded.Remove(rootA))
	_, ok := reloaded.Get(rootA)
	assert.False(t, ok)
}

func Test_Registry_EnabledAndPut(t *testing.T) {
	registry, err := LoadRegistry(filepath.Join(t.TempDir(), "projects.toml"))
	require.NoError(t, err)

	project := Project{Path: "/one", Enabled: true}
	registry.Add(project)
	registry.Add(Project{Path: "/two", Enabled: false})
	assert.Len(t, registry.Enabled(), 1)

	project.Enabled = false
	registry.Put(project)
	assert.Empty(t, registry.Enabled())
}

func Test_Registry_CleanupStale(t *testing.T) {
	dir := t.TempDir()
	live := filepath.Join(dir, "live")
	require.NoError(t, os.Mkdir(live, 0755))

	registry, err := LoadRegistry(filepath.Join(dir, "projects.toml"))
	require.NoError(t, err)
	registry.Add(Project{Path: live, Enabled: true})
	registry.Add(Project{Path: filepath.Join(dir, "gone"), Enabled: true})

	removed := registry.CleanupStale()
	assert.Equal(t, []string{filepath.Join(dir, "gone")}, removed)
	assert.Len(t, registry.List(), 1)
}
