package versionfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestApplyText(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, "version.py", `__version__ = "0.6.0"`+"\n")
	require.NoError(t, Apply(path, FormatText, "", "0.6.0", "0.7.0"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `__version__ = "0.7.0"`+"\n", string(data))
}

func TestApplyTextReplacesAllOccurrences(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, "README.md", "Install 0.6.0:\n\n    tool@0.6.0\n")
	require.NoError(t, Apply(path, FormatText, "", "0.6.0", "0.7.0"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Install 0.7.0:\n\n    tool@0.7.0\n", string(data))
}

func TestApplyTextVersionMissing(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, "version.txt", "1.0.0\n")
	err := Apply(path, FormatText, "", "0.6.0", "0.7.0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"0.6.0" not found`)
}

func TestApplyTOML(t *testing.T) {
	t.Parallel()

	content := `# package manifest
[project]
name = "demo"   # keep this comment
version = "0.6.0"

[project.urls]
homepage = "https://example.com/0.6.0"
`
	path := writeTemp(t, "pyproject.toml", content)
	require.NoError(t, Apply(path, FormatTOML, "project.version", "0.6.0", "0.7.0"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	// Only the first quoted occurrence changes; comments and layout survive.
	got := string(data)
	assert.Contains(t, got, `version = "0.7.0"`)
	assert.Contains(t, got, "# keep this comment")
	assert.Contains(t, got, `homepage = "https://example.com/0.6.0"`)
}

func TestApplyTOMLFieldMismatch(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, "pyproject.toml", "[project]\nversion = \"1.0.0\"\n")
	err := Apply(path, FormatTOML, "project.version", "0.6.0", "0.7.0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `expected "0.6.0"`)
}

func TestApplyUnknownFormat(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, "version.ini", "version=0.6.0\n")
	err := Apply(path, Format("ini"), "", "0.6.0", "0.7.0")
	assert.Error(t, err)
}

func TestApplyEmptyFormatDefaultsToText(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, "VERSION", "0.6.0\n")
	require.NoError(t, Apply(path, "", "", "0.6.0", "0.7.0"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "0.7.0\n", string(data))
}

func TestReadTOMLVersion(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, "Cargo.toml", "[package]\nname = \"demo\"\nversion = \"0.6.0\"\n")

	tests := map[string]struct {
		field   string
		want    string
		wantErr string
	}{
		"nested field":    {field: "package.version", want: "0.6.0"},
		"missing field":   {field: "package.edition", wantErr: "not found"},
		"missing table":   {field: "workspace.version", wantErr: "not found"},
		"non-string leaf": {field: "package", wantErr: "not a string"},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got, err := ReadTOMLVersion(path, tt.field)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWriteBackPreservesMode(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "release.sh")
	require.NoError(t, os.WriteFile(path, []byte("VERSION=0.6.0\n"), 0o755))

	require.NoError(t, Apply(path, FormatText, "", "0.6.0", "0.7.0"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
}
