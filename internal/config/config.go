// Package config provides hierarchical configuration management for relnote
// using koanf. Configuration is loaded with priority: environment variables >
// project config (.relnote.yml) > user config (~/.config/relnote/config.yml)
// > defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// ProjectConfigName is the project-level configuration file name, looked up
// in the repository root.
const ProjectConfigName = ".relnote.yml"

// envPrefix is the prefix for environment variable overrides,
// e.g. RELNOTE_CHANGELOG_FILE.
const envPrefix = "RELNOTE_"

// LabelSection maps a single pull-request label to a changelog section title.
// Entries are ordered: earlier entries take precedence when a pull request
// carries several section labels.
type LabelSection struct {
	Label string `koanf:"label" yaml:"label"`
	Title string `koanf:"title" yaml:"title"`
}

// SectionSpec maps a changelog section title to the set of labels that route
// a pull request into it. Like LabelSection entries, order is precedence.
type SectionSpec struct {
	Title  string   `koanf:"title" yaml:"title"`
	Labels []string `koanf:"labels" yaml:"labels"`
}

// VersionFile declares a file whose version string is rewritten on release.
type VersionFile struct {
	// Path is relative to the repository root.
	Path string `koanf:"path" yaml:"path"`
	// Format is "text" (literal substitution) or "toml" (field-checked
	// substitution). Defaults to "text".
	Format string `koanf:"format" yaml:"format,omitempty"`
	// Field is the dotted TOML key holding the version, e.g.
	// "package.version". Only used with the "toml" format.
	Field string `koanf:"field" yaml:"field,omitempty"`
}

// Config holds all relnote settings.
type Config struct {
	// ChangelogFile is the changelog file name, relative to the repo root.
	ChangelogFile string `koanf:"changelog_file" yaml:"changelog_file"`

	// HeadingLevel is the heading level marking version sections.
	HeadingLevel int `koanf:"heading_level" yaml:"heading_level"`

	// ChangelogSections maps single labels to section titles, in precedence
	// order.
	ChangelogSections []LabelSection `koanf:"changelog_sections" yaml:"changelog_sections,omitempty"`

	// SectionLabels maps section titles to label sets, in precedence order.
	// These take precedence over ChangelogSections entries.
	SectionLabels []SectionSpec `koanf:"section_labels" yaml:"section_labels,omitempty"`

	// UnknownSectionTitle names the catch-all section for pull requests that
	// match no configured section.
	UnknownSectionTitle string `koanf:"unknown_section_title" yaml:"unknown_section_title"`

	// ChangelogContributors toggles the Contributors section.
	ChangelogContributors bool `koanf:"changelog_contributors" yaml:"changelog_contributors"`

	// ChangelogReleaseDate toggles the "Released on YYYY-MM-DD." line at the
	// top of each generated version section.
	ChangelogReleaseDate bool `koanf:"changelog_release_date" yaml:"changelog_release_date"`

	// ChangelogIgnoreLabels excludes pull requests from the changelog.
	ChangelogIgnoreLabels []string `koanf:"changelog_ignore_labels" yaml:"changelog_ignore_labels,omitempty"`

	// ChangelogIgnoreAuthors excludes authors from the Contributors section.
	ChangelogIgnoreAuthors []string `koanf:"changelog_ignore_authors" yaml:"changelog_ignore_authors,omitempty"`

	// IgnoreLabels excludes pull requests from all processing, including
	// version bump detection.
	IgnoreLabels []string `koanf:"ignore_labels" yaml:"ignore_labels,omitempty"`

	// RequireLabels, when set, limits processing to pull requests carrying
	// at least one of these labels.
	RequireLabels []string `koanf:"require_labels" yaml:"require_labels,omitempty"`

	// MajorLabels/MinorLabels/PatchLabels drive version bump detection.
	MajorLabels []string `koanf:"major_labels" yaml:"major_labels,omitempty"`
	MinorLabels []string `koanf:"minor_labels" yaml:"minor_labels,omitempty"`
	PatchLabels []string `koanf:"patch_labels" yaml:"patch_labels,omitempty"`

	// ChangeTemplate renders one changelog line per pull request. Supported
	// placeholders: {title}, {number}, {url}, {author}.
	ChangeTemplate string `koanf:"change_template" yaml:"change_template"`

	// TrimTitlePrefixes are stripped from pull request titles before
	// rendering (e.g. conventional-commit prefixes like "fix:").
	TrimTitlePrefixes []string `koanf:"trim_title_prefixes" yaml:"trim_title_prefixes,omitempty"`

	// VersionFormat is "semver" (bare "1.2.3") or "gomod" ("v1.2.3").
	VersionFormat string `koanf:"version_format" yaml:"version_format"`

	// VersionTagPrefix identifies git tags as versions, e.g. "v" or
	// "release/".
	VersionTagPrefix string `koanf:"version_tag_prefix" yaml:"version_tag_prefix,omitempty"`

	// VersionFiles lists files to rewrite with the new version on release.
	VersionFiles []VersionFile `koanf:"version_files" yaml:"version_files,omitempty"`

	// DefaultBump is used when no bump labels are found: major, minor, or
	// patch.
	DefaultBump string `koanf:"default_bump" yaml:"default_bump"`

	// CacheDir stores cached GitHub API responses. Relative paths are
	// resolved against the repository root.
	CacheDir string `koanf:"cache_dir" yaml:"cache_dir"`
}

// Defaults returns the built-in configuration values.
func Defaults() map[string]any {
	return map[string]any{
		"changelog_file":           "CHANGELOG.md",
		"heading_level":            2,
		"unknown_section_title":    "Other changes",
		"changelog_contributors":   true,
		"changelog_release_date":   false,
		"changelog_ignore_authors": []string{"dependabot"},
		"major_labels":             []string{"breaking"},
		"minor_labels":             []string{"feature"},
		"patch_labels":             []string{"fix"},
		"change_template":          "- {title} ([#{number}]({url}))",
		"version_format":           "semver",
		"default_bump":             "patch",
		"cache_dir":                ".cache/relnote",
	}
}

// Load loads configuration for a repository directory.
// Priority: environment variables > project config > user config > defaults.
func Load(repoDir string) (*Config, error) {
	k := koanf.New(".")

	for key, value := range Defaults() {
		_ = k.Set(key, value)
	}

	if path, ok := userConfigPath(); ok {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading user config %s: %w", path, err)
		}
	}

	projectPath := filepath.Join(repoDir, ProjectConfigName)
	if fileExists(projectPath) {
		if err := k.Load(file.Provider(projectPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading project config %s: %w", projectPath, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment config: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// userConfigPath returns the XDG-style user config path if the file exists.
func userConfigPath() (string, bool) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", false
	}
	path := filepath.Join(home, ".config", "relnote", "config.yml")
	return path, fileExists(path)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// OrderedSections merges the two section mappings into one precedence-ordered
// list: multi-label mappings first, then single-label mappings as singleton
// label sets.
func (c *Config) OrderedSections() []SectionSpec {
	out := make([]SectionSpec, 0, len(c.SectionLabels)+len(c.ChangelogSections))
	out = append(out, c.SectionLabels...)
	for _, ls := range c.ChangelogSections {
		out = append(out, SectionSpec{Title: ls.Title, Labels: []string{ls.Label}})
	}
	return out
}

// GlobalIgnoredLabels is the union of ignore_labels and
// changelog_ignore_labels.
func (c *Config) GlobalIgnoredLabels() map[string]struct{} {
	out := make(map[string]struct{}, len(c.IgnoreLabels)+len(c.ChangelogIgnoreLabels))
	for _, l := range c.IgnoreLabels {
		out[l] = struct{}{}
	}
	for _, l := range c.ChangelogIgnoreLabels {
		out[l] = struct{}{}
	}
	return out
}

// IgnoredAuthors returns the contributor exclusion set.
func (c *Config) IgnoredAuthors() map[string]struct{} {
	out := make(map[string]struct{}, len(c.ChangelogIgnoreAuthors))
	for _, a := range c.ChangelogIgnoreAuthors {
		out[a] = struct{}{}
	}
	return out
}
