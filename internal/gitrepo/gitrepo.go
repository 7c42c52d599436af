// Package gitrepo reads release history out of a local git repository: tags
// carrying versions, the commits between two releases, and the configured
// remote URL. It uses go-git exclusively, so no git binary is required.
package gitrepo

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	"github.com/ariel-frischer/relnote/internal/versions"
)

// Commit is the subset of commit data needed to resolve pull requests.
type Commit struct {
	Hash    string
	Summary string
}

// LookupError reports a git object that could not be found where it was
// expected, such as a release tag on a different branch.
type LookupError struct {
	Message string
}

func (e *LookupError) Error() string { return e.Message }

// openRepo opens the repository containing path, traversing up the directory
// tree to find the repository root.
func openRepo(path string) (*git.Repository, error) {
	if path == "" {
		path = "."
	}
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", path, err)
	}
	return repo, nil
}

// Tags lists the tag names carrying the given prefix, with the prefix
// stripped. The result is unordered; callers parse and sort as versions.
func Tags(path, tagPrefix string) ([]string, error) {
	repo, err := openRepo(path)
	if err != nil {
		return nil, err
	}

	iter, err := repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}

	var tags []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name().Short()
		if !strings.HasPrefix(name, tagPrefix) {
			return nil
		}
		tags = append(tags, strings.TrimPrefix(name, tagPrefix))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterating tags: %w", err)
	}
	return tags, nil
}

// TagVersions lists the parseable versions among the repository's tags, in
// descending order.
func TagVersions(path, tagPrefix string) ([]*semver.Version, error) {
	tags, err := Tags(path, tagPrefix)
	if err != nil {
		return nil, err
	}
	return versions.FromStrings(tags), nil
}

// CommitsBetween returns the commits reachable from the newer version's tag
// but not from the older version's tag, newest first. A nil newer version
// means the tip of main (falling back to HEAD); a nil older version walks
// all the way back to the root commit. The tag for each version is
// tagPrefix + the rendered version.
func CommitsBetween(path, tagPrefix string, format versions.Format, older, newer *semver.Version) ([]Commit, error) {
	repo, err := openRepo(path)
	if err != nil {
		return nil, err
	}

	var olderHash *plumbing.Hash
	if older != nil {
		h, err := resolveTag(repo, tagPrefix+versions.Render(older, format))
		if err != nil {
			return nil, err
		}
		olderHash = &h
	}

	var newerHash plumbing.Hash
	if newer != nil {
		newerHash, err = resolveTag(repo, tagPrefix+versions.Render(newer, format))
	} else {
		newerHash, err = resolveTip(repo)
	}
	if err != nil {
		return nil, err
	}

	iter, err := repo.Log(&git.LogOptions{From: newerHash})
	if err != nil {
		return nil, fmt.Errorf("walking history from %s: %w", newerHash, err)
	}

	var commits []Commit
	foundOlder := false
	err = iter.ForEach(func(c *object.Commit) error {
		if olderHash != nil && c.Hash == *olderHash {
			foundOlder = true
			return storer.ErrStop
		}
		commits = append(commits, Commit{
			Hash:    c.Hash.String(),
			Summary: summaryLine(c.Message),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking history: %w", err)
	}

	if olderHash != nil && !foundOlder {
		return nil, &LookupError{Message: fmt.Sprintf(
			"commit %s (%s) is not an ancestor of %s; is the %s tag on a different branch?",
			olderHash, older, newerHash, older,
		)}
	}
	return commits, nil
}

// RemoteURL returns the URL of the named remote, or "" when the remote is
// not configured.
func RemoteURL(path, name string) (string, error) {
	repo, err := openRepo(path)
	if err != nil {
		return "", err
	}

	remote, err := repo.Remote(name)
	if err == git.ErrRemoteNotFound {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("looking up remote %s: %w", name, err)
	}

	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", nil
	}
	return urls[0], nil
}

// resolveTag resolves a tag name to the commit it points at, peeling
// annotated tags.
func resolveTag(repo *git.Repository, name string) (plumbing.Hash, error) {
	h, err := repo.ResolveRevision(plumbing.Revision("refs/tags/" + name))
	if err != nil {
		return plumbing.ZeroHash, &LookupError{Message: fmt.Sprintf("tag %s not found", name)}
	}
	return *h, nil
}

// resolveTip resolves the main branch, falling back to HEAD when no branch
// named main exists.
func resolveTip(repo *git.Repository) (plumbing.Hash, error) {
	if h, err := repo.ResolveRevision("refs/heads/main"); err == nil {
		return *h, nil
	}
	h, err := repo.ResolveRevision("HEAD")
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("resolving HEAD: %w", err)
	}
	return *h, nil
}

// summaryLine returns the first line of a commit message.
func summaryLine(message string) string {
	if i := strings.IndexByte(message, '\n'); i >= 0 {
		return strings.TrimSpace(message[:i])
	}
	return strings.TrimSpace(message)
}
