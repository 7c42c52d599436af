// Package github retrieves pull-request and release metadata from the GitHub
// API for changelog generation. GraphQL responses are cached on disk and
// transient failures are retried with backoff, so repeated relnote runs stay
// cheap and resilient.
package github

import (
	"fmt"
	"strings"
)

// PullRequest is the atomic input to changelog generation: one merged change
// with its title, number, labels, and author. Pull requests are identified by
// number; two records with the same number describe the same pull request.
type PullRequest struct {
	Title     string
	Number    int
	Labels    []string
	Author    string
	RepoOwner string
	RepoName  string
}

// URL returns the pull request's GitHub URL.
func (pr PullRequest) URL() string {
	return fmt.Sprintf("https://github.com/%s/%s/pull/%d", pr.RepoOwner, pr.RepoName, pr.Number)
}

// HasLabel reports whether the pull request carries the given label.
func (pr PullRequest) HasLabel(label string) bool {
	for _, l := range pr.Labels {
		if l == label {
			return true
		}
	}
	return false
}

// HasAnyLabel reports whether any of the pull request's labels is in the set.
func (pr PullRequest) HasAnyLabel(set map[string]struct{}) bool {
	for _, l := range pr.Labels {
		if _, ok := set[l]; ok {
			return true
		}
	}
	return false
}

// Release is a GitHub release attached to a tag.
type Release struct {
	ID         int64
	Name       string
	Tag        string
	Body       string
	Draft      bool
	Prerelease bool
}

// ParseRemoteURL splits a git remote URL into owner and repository name.
// Both SSH (git@github.com:owner/repo.git) and HTTPS forms are supported.
func ParseRemoteURL(remote string) (owner, repo string, err error) {
	const sshPrefix = "git@github.com:"

	var path string
	if strings.HasPrefix(remote, sshPrefix) {
		path = strings.TrimPrefix(remote, sshPrefix)
	} else {
		parts := strings.Split(strings.TrimSuffix(remote, "/"), "/")
		if len(parts) < 2 {
			return "", "", fmt.Errorf("cannot parse remote URL %q", remote)
		}
		path = parts[len(parts)-2] + "/" + parts[len(parts)-1]
	}

	parts := strings.Split(path, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("cannot parse remote URL %q", remote)
	}
	return parts[0], strings.TrimSuffix(parts[1], ".git"), nil
}
