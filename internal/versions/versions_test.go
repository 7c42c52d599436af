package versions

import (
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBumpType(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		in      string
		want    BumpType
		wantErr bool
	}{
		"major":      {in: "major", want: BumpMajor},
		"minor":      {in: "minor", want: BumpMinor},
		"patch":      {in: "patch", want: BumpPatch},
		"upper case": {in: "MAJOR", want: BumpMajor},
		"unknown":    {in: "huge", wantErr: true},
		"empty":      {in: "", wantErr: true},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseBumpType(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		in      string
		want    Format
		wantErr bool
	}{
		"semver":           {in: "semver", want: FormatSemver},
		"gomod":            {in: "gomod", want: FormatGomod},
		"empty is semver":  {in: "", want: FormatSemver},
		"unknown rejected": {in: "calver", wantErr: true},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRender(t *testing.T) {
	t.Parallel()

	v := semver.MustParse("1.2.3")
	assert.Equal(t, "1.2.3", Render(v, FormatSemver))
	assert.Equal(t, "v1.2.3", Render(v, FormatGomod))
}

func TestParse(t *testing.T) {
	t.Parallel()

	v, err := Parse("v1.2.3")
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", v.String())

	v, err = Parse("  0.6.0 ")
	require.NoError(t, err)
	assert.Equal(t, "0.6.0", v.String())

	_, err = Parse("not-a-version")
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		in   string
		want string
	}{
		"bare":        {in: "0.6.0", want: "0.6.0"},
		"v prefix":    {in: "v0.6.0", want: "0.6.0"},
		"V prefix":    {in: "V0.6.0", want: "0.6.0"},
		"whitespace":  {in: " v0.6.0 ", want: "0.6.0"},
		"non-version": {in: "Unreleased", want: "Unreleased"},
		"empty":       {in: "", want: ""},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestFromStringsSkipsInvalidAndSorts(t *testing.T) {
	t.Parallel()

	got := FromStrings([]string{"v0.1.0", "nightly", "1.0.0", "", "0.2.0"})
	require.Len(t, got, 3)
	assert.Equal(t, "1.0.0", got[0].String())
	assert.Equal(t, "0.2.0", got[1].String())
	assert.Equal(t, "0.1.0", got[2].String())
}

func TestLatest(t *testing.T) {
	t.Parallel()

	assert.Nil(t, Latest(nil))

	vs := FromStrings([]string{"0.1.0", "1.0.0", "0.9.9"})
	assert.Equal(t, "1.0.0", Latest(vs).String())
}

func TestPrevious(t *testing.T) {
	t.Parallel()

	vs := FromStrings([]string{"0.3.0", "0.1.0", "0.2.0"})

	tests := map[string]struct {
		of   string
		want string
	}{
		"middle":          {of: "0.2.0", want: "0.1.0"},
		"newest":          {of: "0.3.0", want: "0.2.0"},
		"oldest has none": {of: "0.1.0", want: ""},
		"absent from set": {of: "0.2.5", want: "0.2.0"},
		"older than all":  {of: "0.0.1", want: ""},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got := Previous(vs, semver.MustParse(tt.of))
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestBump(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		from string
		bump BumpType
		want string
	}{
		"major":             {from: "1.2.3", bump: BumpMajor, want: "2.0.0"},
		"minor":             {from: "1.2.3", bump: BumpMinor, want: "1.3.0"},
		"patch":             {from: "1.2.3", bump: BumpPatch, want: "1.2.4"},
		"drops pre-release": {from: "1.2.3-rc.1", bump: BumpPatch, want: "1.2.3"},
		"from zero":         {from: "0.0.0", bump: BumpMinor, want: "0.1.0"},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got, err := Bump(semver.MustParse(tt.from), tt.bump)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}

	_, err := Bump(semver.MustParse("1.0.0"), BumpType("huge"))
	assert.Error(t, err)
}

func TestZero(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "0.0.0", Zero().String())
}
