package config

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError reports an invalid configuration value with the field that
// caused it.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// IsValidationError returns true if the error is a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Validate checks that the configuration satisfies all constraints.
func (c *Config) Validate() error {
	if c.ChangelogFile == "" {
		return &ValidationError{Field: "changelog_file", Message: "required field is empty"}
	}
	if c.HeadingLevel < 1 || c.HeadingLevel > 6 {
		return &ValidationError{
			Field:   "heading_level",
			Message: fmt.Sprintf("must be between 1 and 6, got %d", c.HeadingLevel),
		}
	}

	switch strings.ToLower(c.VersionFormat) {
	case "", "semver", "gomod":
	default:
		return &ValidationError{
			Field:   "version_format",
			Message: fmt.Sprintf("invalid format %q (expected: semver or gomod)", c.VersionFormat),
		}
	}

	switch strings.ToLower(c.DefaultBump) {
	case "", "major", "minor", "patch":
	default:
		return &ValidationError{
			Field:   "default_bump",
			Message: fmt.Sprintf("invalid bump type %q (expected: major, minor, or patch)", c.DefaultBump),
		}
	}

	for i, ls := range c.ChangelogSections {
		if ls.Label == "" {
			return &ValidationError{
				Field:   fmt.Sprintf("changelog_sections[%d].label", i),
				Message: "required field is empty",
			}
		}
		if ls.Title == "" {
			return &ValidationError{
				Field:   fmt.Sprintf("changelog_sections[%d].title", i),
				Message: "required field is empty",
			}
		}
	}

	for i, spec := range c.SectionLabels {
		if spec.Title == "" {
			return &ValidationError{
				Field:   fmt.Sprintf("section_labels[%d].title", i),
				Message: "required field is empty",
			}
		}
		if len(spec.Labels) == 0 {
			return &ValidationError{
				Field:   fmt.Sprintf("section_labels[%d].labels", i),
				Message: "at least one label is required",
			}
		}
	}

	for i, vf := range c.VersionFiles {
		if vf.Path == "" {
			return &ValidationError{
				Field:   fmt.Sprintf("version_files[%d].path", i),
				Message: "required field is empty",
			}
		}
		switch vf.Format {
		case "", "text":
		case "toml":
			if vf.Field == "" {
				return &ValidationError{
					Field:   fmt.Sprintf("version_files[%d].field", i),
					Message: "field is required for the toml format",
				}
			}
		default:
			return &ValidationError{
				Field:   fmt.Sprintf("version_files[%d].format", i),
				Message: fmt.Sprintf("invalid format %q (expected: text or toml)", vf.Format),
			}
		}
	}

	return nil
}
