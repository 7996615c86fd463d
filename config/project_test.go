package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Project_Validate(t *testing.T) {
	root := t.TempDir()
	project := Default().NewProject(root)
	require.NoError(t, project.Validate())

	missing := Default().NewProject(filepath.Join(root, "missing"))
	assert.ErrorIs(t, missing.Validate(), ErrInvalidRoot)

	file := filepath.Join(root, "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
	assert.ErrorIs(t, Default().NewProject(file).Validate(), ErrInvalidRoot)

	badGlob := Default().NewProject(root)
	badGlob.Include = []string{"src/[a-"}
	assert.ErrorIs(t, badGlob.Validate(), ErrInvalidPattern)

	escaping := Default().NewProject(root)
	escaping.OutputFile = "../CLAUDE.md"
	assert.Error(t, escaping.Validate())
}

func Test_Project_DebounceDelay(t *testing.T) {
	project := Project{UpdateDelay: 0.25}
	assert.Equal(t, 250*time.Millisecond, project.DebounceDelay())

	project.UpdateDelay = 0
	assert.Equal(t, 2*time.Second, project.DebounceDelay())
}

func Test_Project_OutputPath(t *testing.T) {
	project := Project{Path: "/repo", OutputFile: "docs/INDEX.md"}
	assert.Equal(t, filepath.Join("/repo", "docs", "INDEX.md"), project.OutputPath())

	project.OutputFile = ""
	assert.Equal(t, filepath.Join("/repo", "CLAUDE.md"), project.OutputPath())
}

func Test_Global_NewProjectCopiesDefaults(t *testing.T) {
	cfg := Default()
	cfg.IgnorePatterns = []string{"fixtures"}
	project := cfg.NewProject("/repo/../repo")

	assert.Equal(t, filepath.Clean("/repo"), project.Path)
	assert.True(t, project.Enabled)
	assert.True(t, project.IncludeConfigFiles)
	assert.Equal(t, []string{"fixtures"}, project.Exclude)

	// The copy is independent of the global slice.
	cfg.IgnorePatterns[0] = "changed"
	assert.Equal(t, "fixtures", project.Exclude[0])
}
