package changelog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const extractFixture = `# Changelog

## 0.3.0

- Third change ([#3](u))

## 0.2.0

- Second change ([#2](u))

## 0.1.0

- First change ([#1](u))
`

func TestExtractEntry(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		version string
		want    string
		found   bool
	}{
		"middle version": {
			version: "0.2.0",
			want:    "## 0.2.0\n\n- Second change ([#2](u))\n\n",
			found:   true,
		},
		"newest version": {
			version: "0.3.0",
			want:    "## 0.3.0\n\n- Third change ([#3](u))\n\n",
			found:   true,
		},
		"oldest version runs to end of text": {
			version: "0.1.0",
			want:    "## 0.1.0\n\n- First change ([#1](u))\n",
			found:   true,
		},
		"absent version": {
			version: "9.9.9",
			found:   false,
		},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got, ok := ExtractEntry(extractFixture, tt.version, 2)
			require.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestExtractEntryByteExact(t *testing.T) {
	t.Parallel()

	// The extraction is textual: odd spacing inside the slice must survive
	// byte for byte.
	text := "## 0.2.0\n\n- entry  with  double  spaces\n\n\n## 0.1.0\n\n- one\n"
	got, ok := ExtractEntry(text, "0.2.0", 2)
	require.True(t, ok)
	assert.Equal(t, "## 0.2.0\n\n- entry  with  double  spaces\n\n\n", got)
}

func TestExtractEntryVPrefixedHeadings(t *testing.T) {
	t.Parallel()

	text := "## v0.2.0\n\n- two\n\n## v0.1.0\n\n- one\n"
	got, ok := ExtractEntry(text, "0.2.0", 2)
	require.True(t, ok)
	assert.Equal(t, "## v0.2.0\n\n- two\n\n", got)
}

func TestVersionsFromText(t *testing.T) {
	t.Parallel()

	got := VersionsFromText(extractFixture, 2)
	require.Len(t, got, 3)

	var rendered []string
	for _, v := range got {
		rendered = append(rendered, v.String())
	}
	assert.Equal(t, []string{"0.3.0", "0.2.0", "0.1.0"}, rendered)
}

func TestVersionsFromTextSkipsUnparseable(t *testing.T) {
	t.Parallel()

	got := VersionsFromText("## Unreleased\n\n## 0.1.0\n", 2)
	require.Len(t, got, 1)
	assert.Equal(t, "0.1.0", got[0].String())
}

func TestEntryToStandalone(t *testing.T) {
	t.Parallel()

	entry := "## 0.2.0\n\n### Bug fixes\n\n- one ([#1](u))\n"
	got := EntryToStandalone(entry, 2)
	assert.Equal(t, "## Changes\n<!-- Generated from the CHANGELOG file -->\n\n### Bug fixes\n\n- one ([#1](u))\n", got)
}

func TestEntryToStandaloneVPrefixedHeading(t *testing.T) {
	t.Parallel()

	got := EntryToStandalone("## v0.2.0\n\n- one\n", 2)
	assert.Equal(t, "## Changes\n<!-- Generated from the CHANGELOG file -->\n\n- one\n", got)
}

func TestEntryToStandaloneOnlyRewritesFirstLine(t *testing.T) {
	t.Parallel()

	entry := "## 0.2.0\n\n- mentions 0.2.0 in a line\n"
	got := EntryToStandalone(entry, 2)
	assert.Contains(t, got, "- mentions 0.2.0 in a line")
	assert.NotContains(t, got, "## 0.2.0")
}
