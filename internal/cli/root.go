// Package cli implements the relnote command surface.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	relerrors "github.com/ariel-frischer/relnote/internal/errors"
	"github.com/ariel-frischer/relnote/internal/version"
)

// Command group IDs for help output organization.
const (
	GroupRelease = "release"
	GroupQuery   = "query"
)

var rootCmd = &cobra.Command{
	Use:   "relnote",
	Short: "Changelog and release notes generator backed by GitHub pull requests",
	Long: `relnote generates changelog entries from the pull requests merged
between two releases, grouped into sections by label, and keeps the
changelog file, version files, and GitHub release notes in sync.

Repository paths default to the current directory. Configuration is read
from .relnote.yml in the repository root (see 'relnote init').`,
	Version:       fmt.Sprintf("%s (%s, built %s)", version.Version, version.Commit, version.BuildDate),
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: GroupRelease, Title: "Release Commands:"},
		&cobra.Group{ID: GroupQuery, Title: "Query Commands:"},
	)
}

// Execute runs the root command, printing structured errors and resolving
// the process exit code.
func Execute() error {
	err := rootCmd.Execute()
	if err == nil {
		return nil
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		os.Exit(exitErr.Code)
	}

	if cliErr := relerrors.AsCLIError(err); cliErr != nil {
		relerrors.PrintError(cliErr)
	} else {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}
