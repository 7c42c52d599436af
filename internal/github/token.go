package github

import (
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"sync"
)

var tokenPattern = regexp.MustCompile(`Token:\s*(\S+)`)

var (
	tokenOnce  sync.Once
	tokenValue string
	tokenErr   error
)

// Token resolves a GitHub access token, preferring the GITHUB_TOKEN
// environment variable and falling back to the gh CLI's stored credentials.
// The result is cached for the lifetime of the process.
func Token() (string, error) {
	tokenOnce.Do(func() {
		tokenValue, tokenErr = resolveToken()
	})
	return tokenValue, tokenErr
}

func resolveToken() (string, error) {
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		return token, nil
	}

	if _, err := exec.LookPath("gh"); err != nil {
		return "", fmt.Errorf("no GitHub token available: set GITHUB_TOKEN or install the gh CLI")
	}

	out, err := exec.Command("gh", "auth", "status", "--show-token").CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("retrieving token from gh CLI: %w: %s", err, out)
	}

	match := tokenPattern.FindSubmatch(out)
	if match == nil {
		return "", fmt.Errorf("no token found in gh CLI output")
	}
	return string(match[1]), nil
}
