package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// starterHeader is prepended to generated config files.
const starterHeader = `# relnote configuration.
# Section order is precedence order: a pull request carrying labels for
# several sections lands in the first one listed here.
`

// WriteDefault writes a starter project config with the default values and a
// small example section mapping. It refuses to overwrite an existing file.
func WriteDefault(path string) error {
	if fileExists(path) {
		return fmt.Errorf("config file already exists: %s", path)
	}

	cfg := Config{
		ChangelogFile: "CHANGELOG.md",
		HeadingLevel:  2,
		ChangelogSections: []LabelSection{
			{Label: "breaking", Title: "Breaking changes"},
			{Label: "feature", Title: "New features"},
			{Label: "fix", Title: "Bug fixes"},
		},
		UnknownSectionTitle:    "Other changes",
		ChangelogContributors:  true,
		ChangelogIgnoreAuthors: []string{"dependabot"},
		MajorLabels:            []string{"breaking"},
		MinorLabels:            []string{"feature"},
		PatchLabels:            []string{"fix"},
		ChangeTemplate:         "- {title} ([#{number}]({url}))",
		VersionFormat:          "semver",
		DefaultBump:            "patch",
		CacheDir:               ".cache/relnote",
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshaling default config: %w", err)
	}

	if err := os.WriteFile(path, append([]byte(starterHeader), data...), 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
