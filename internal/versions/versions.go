// Package versions wraps semantic version parsing, ordering, and bumping for
// relnote. Version strings come from git tags and changelog headings; invalid
// strings are skipped rather than failing the whole operation, so one
// malformed tag never blocks a release.
package versions

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// BumpType identifies which version component a release increments.
type BumpType string

const (
	BumpMajor BumpType = "major"
	BumpMinor BumpType = "minor"
	BumpPatch BumpType = "patch"
)

// ParseBumpType validates a bump type string.
func ParseBumpType(s string) (BumpType, error) {
	switch BumpType(strings.ToLower(s)) {
	case BumpMajor:
		return BumpMajor, nil
	case BumpMinor:
		return BumpMinor, nil
	case BumpPatch:
		return BumpPatch, nil
	default:
		return "", fmt.Errorf("invalid bump type %q (expected: major, minor, or patch)", s)
	}
}

// Format selects how versions are rendered in changelog headings and tags.
type Format string

const (
	// FormatSemver renders bare versions, e.g. "1.2.3".
	FormatSemver Format = "semver"
	// FormatGomod renders Go-module-style versions, e.g. "v1.2.3".
	FormatGomod Format = "gomod"
)

// ParseFormat validates a version format string.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatSemver, "":
		return FormatSemver, nil
	case FormatGomod:
		return FormatGomod, nil
	default:
		return "", fmt.Errorf("invalid version format %q (expected: semver or gomod)", s)
	}
}

// Render formats a version per the configured scheme.
func Render(v *semver.Version, f Format) string {
	if f == FormatGomod {
		return "v" + v.String()
	}
	return v.String()
}

// Parse parses a version string. Both "1.2.3" and "v1.2.3" are accepted.
func Parse(s string) (*semver.Version, error) {
	v, err := semver.NewVersion(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("parsing version %q: %w", s, err)
	}
	return v, nil
}

// Normalize strips a leading "v" or "V" so that "v0.6.0" and "0.6.0" compare
// equal as strings.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 0 && (s[0] == 'v' || s[0] == 'V') {
		return s[1:]
	}
	return s
}

// FromStrings parses a list of version strings, silently skipping values
// that are not valid versions (e.g. non-version git tags). The result is
// sorted newest first.
func FromStrings(values []string) []*semver.Version {
	var out []*semver.Version
	for _, s := range values {
		v, err := semver.NewVersion(strings.TrimSpace(s))
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	sort.Sort(sort.Reverse(semver.Collection(out)))
	return out
}

// Latest returns the newest version, or nil for an empty collection.
func Latest(vs []*semver.Version) *semver.Version {
	var latest *semver.Version
	for _, v := range vs {
		if latest == nil || v.GreaterThan(latest) {
			latest = v
		}
	}
	return latest
}

// Previous returns the version immediately preceding the given one, or nil
// when none exists. The given version need not be present in the collection.
func Previous(vs []*semver.Version, v *semver.Version) *semver.Version {
	all := make([]*semver.Version, 0, len(vs)+1)
	found := false
	for _, x := range vs {
		all = append(all, x)
		if x.Equal(v) {
			found = true
		}
	}
	if !found {
		all = append(all, v)
	}
	sort.Sort(semver.Collection(all))
	for i, x := range all {
		if x.Equal(v) {
			if i == 0 {
				return nil
			}
			return all[i-1]
		}
	}
	return nil
}

// Bump creates a new version from a preceding one, incrementing the given
// component. Pre-release and build metadata are dropped: the result is
// always a plain release version.
func Bump(v *semver.Version, bump BumpType) (*semver.Version, error) {
	var next semver.Version
	switch bump {
	case BumpMajor:
		next = v.IncMajor()
	case BumpMinor:
		next = v.IncMinor()
	case BumpPatch:
		next = v.IncPatch()
	default:
		return nil, fmt.Errorf("invalid bump type %q", bump)
	}
	return &next, nil
}

// Zero is the starting point for projects with no prior version tags.
func Zero() *semver.Version {
	return semver.MustParse("0.0.0")
}
