package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// releaseResponse mirrors the REST release object.
type releaseResponse struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	TagName    string `json:"tag_name"`
	Body       string `json:"body"`
	Draft      bool   `json:"draft"`
	Prerelease bool   `json:"prerelease"`
}

// GetRelease fetches the release attached to a tag. A missing release is not
// an error: the result is nil.
func (c *Client) GetRelease(ctx context.Context, owner, repo, tag string) (*Release, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/releases/tags/%s", c.restURL, owner, repo, tag)
	data, err := c.doWithRetry(ctx, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	})
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("fetching release for tag %s: %w", tag, err)
	}

	var resp releaseResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decoding release: %w", err)
	}
	return &Release{
		ID:         resp.ID,
		Name:       resp.Name,
		Tag:        resp.TagName,
		Body:       resp.Body,
		Draft:      resp.Draft,
		Prerelease: resp.Prerelease,
	}, nil
}

// UpdateReleaseNotes replaces the body of an existing release.
func (c *Client) UpdateReleaseNotes(ctx context.Context, owner, repo string, releaseID int64, content string) error {
	body, err := json.Marshal(map[string]string{"body": content})
	if err != nil {
		return fmt.Errorf("encoding release update: %w", err)
	}

	url := fmt.Sprintf("%s/repos/%s/%s/releases/%d", c.restURL, owner, repo, releaseID)
	_, err = c.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return fmt.Errorf("updating release notes: %w", err)
	}
	return nil
}
