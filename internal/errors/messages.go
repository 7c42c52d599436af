package errors

import "fmt"

// Common error messages for the relnote CLI.
// These templates keep failure output consistent and actionable.

// NotARepository creates an error when the target is not a git repository.
func NotARepository(path string) *CLIError {
	return NewRepositoryError(
		fmt.Sprintf("no git repository found at %s", path),
		"Run relnote from inside a repository, or pass its path as an argument",
		"Initialize one with: git init",
	)
}

// NoRemoteConfigured creates an error when the repository has no usable remote.
func NoRemoteConfigured(remote string) *CLIError {
	return NewRepositoryError(
		fmt.Sprintf("remote %q is not configured", remote),
		"Add one with: git remote add origin <url>",
		"relnote needs a GitHub remote to resolve pull requests",
	)
}

// RemoteNotGitHub creates an error when the remote URL cannot be parsed as GitHub.
func RemoteNotGitHub(url string) *CLIError {
	return NewRepositoryError(
		fmt.Sprintf("remote URL %q does not look like a GitHub repository", url),
		"Supported forms: git@github.com:owner/repo.git and https://github.com/owner/repo",
	)
}

// MissingToken creates an error when no GitHub token is available.
func MissingToken() *CLIError {
	return NewNetworkError(
		"no GitHub token available",
		"Set the GITHUB_TOKEN environment variable",
		"Or authenticate the gh CLI: gh auth login",
	)
}

// VersionNotFound creates an error when a changelog has no entry for a version.
func VersionNotFound(version, changelogFile string) *CLIError {
	return NewArgumentError(
		fmt.Sprintf("no entry for version %s in %s", version, changelogFile),
		"Generate one with: relnote changelog --version "+version,
		"Check existing versions with: relnote changelog --list",
	)
}

// InvalidVersion creates an error for an unparseable version argument.
func InvalidVersion(version string) *CLIError {
	return NewArgumentErrorWithUsage(
		fmt.Sprintf("invalid version: %s", version),
		"relnote <command> --version <x.y.z>",
		"Versions must be semantic versions, optionally v-prefixed (e.g. 1.2.0 or v1.2.0)",
	)
}

// InvalidBump creates an error for an unknown bump type.
func InvalidBump(bump string) *CLIError {
	return NewArgumentError(
		fmt.Sprintf("invalid bump type: %s", bump),
		"Valid bump types: major, minor, patch",
		"Example: relnote release --bump minor",
	)
}

// ConfigParseError creates an error for an invalid config file.
func ConfigParseError(path string, err error) *CLIError {
	return WrapWithMessage(err, Configuration,
		fmt.Sprintf("failed to parse config file: %s", path),
		"Check the file for YAML syntax errors",
		"Regenerate a starter config with: relnote init",
	)
}

// NoCommitsFound creates an error when no commits exist between two releases.
func NoCommitsFound(older, newer string) *CLIError {
	return NewRepositoryError(
		fmt.Sprintf("no commits found between %s and %s", older, newer),
		"Check that both tags exist and are on the same branch",
	)
}

// ReleaseNotFound creates an error when GitHub has no release for a tag.
func ReleaseNotFound(tag string) *CLIError {
	return NewNetworkError(
		fmt.Sprintf("no GitHub release found for tag %s", tag),
		"Create the release first, then re-run sync",
		"Or check the version_tag_prefix setting in .relnote.yml",
	)
}

// FileNotWritable creates an error when a file cannot be written.
func FileNotWritable(path string) *CLIError {
	return NewRuntimeError(
		fmt.Sprintf("cannot write to file: %s", path),
		"Check file permissions: ls -la "+path,
		"Ensure parent directory exists and is writable",
	)
}
