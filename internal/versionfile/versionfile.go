// Package versionfile rewrites version strings recorded in project files
// when a release bumps the version. Two formats are supported: plain text
// (literal substitution of the old version) and TOML (the dotted field is
// verified against the old version before a targeted substitution, which
// keeps the file's formatting and comments intact).
package versionfile

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Format names a supported version file format.
type Format string

const (
	FormatText Format = "text"
	FormatTOML Format = "toml"
)

// Apply replaces old with new in the file at path. For TOML files, field is
// the dotted path of the key holding the version (for example
// "project.version") and its current value must equal old.
func Apply(path string, format Format, field, old, new string) error {
	switch format {
	case FormatText, "":
		return applyText(path, old, new)
	case FormatTOML:
		return applyTOML(path, field, old, new)
	default:
		return fmt.Errorf("unsupported version file format %q", format)
	}
}

func applyText(path, old, new string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading version file: %w", err)
	}

	content := string(data)
	if !strings.Contains(content, old) {
		return fmt.Errorf("version %q not found in %s", old, path)
	}

	updated := strings.ReplaceAll(content, old, new)
	if err := writeBack(path, updated); err != nil {
		return err
	}
	return nil
}

func applyTOML(path, field, old, new string) error {
	current, err := ReadTOMLVersion(path, field)
	if err != nil {
		return err
	}
	if current != old {
		return fmt.Errorf("%s in %s is %q, expected %q", field, path, current, old)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading version file: %w", err)
	}

	// The field value was verified above, so a quoted literal substitution
	// is safe and preserves the rest of the file byte for byte.
	content := string(data)
	quoted := `"` + old + `"`
	if !strings.Contains(content, quoted) {
		return fmt.Errorf("quoted version %s not found in %s", quoted, path)
	}

	updated := strings.Replace(content, quoted, `"`+new+`"`, 1)
	return writeBack(path, updated)
}

// ReadTOMLVersion reads the string value at a dotted field path in a TOML
// file.
func ReadTOMLVersion(path, field string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading version file: %w", err)
	}

	var parsed map[string]any
	if err := toml.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("parsing %s: %w", path, err)
	}

	var node any = parsed
	for _, key := range strings.Split(field, ".") {
		table, ok := node.(map[string]any)
		if !ok {
			return "", fmt.Errorf("field %s not found in %s", field, path)
		}
		node, ok = table[key]
		if !ok {
			return "", fmt.Errorf("field %s not found in %s", field, path)
		}
	}

	value, ok := node.(string)
	if !ok {
		return "", fmt.Errorf("field %s in %s is not a string", field, path)
	}
	return value, nil
}

func writeBack(path, content string) error {
	info, err := os.Stat(path)
	mode := os.FileMode(0o644)
	if err == nil {
		mode = info.Mode()
	}
	if err := os.WriteFile(path, []byte(content), mode); err != nil {
		return fmt.Errorf("writing version file: %w", err)
	}
	return nil
}
