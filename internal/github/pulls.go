package github

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
)

// associatedPullRequestsQuery walks a commit's history and collects the pull
// request associated with each commit. GitHub pages history at ~100 commits,
// so several requests may be needed.
const associatedPullRequestsQuery = `
query associatedPullRequests(
    $repo: String!, $owner: String!, $commit: String!, $after: String
) {
    repository(name: $repo, owner: $owner) {
        commit: object(expression: $commit) {
            ... on Commit {
                id
                history(after: $after) {
                    nodes {
                        oid
                        associatedPullRequests(first: 1) {
                            edges {
                                node {
                                    title
                                    number
                                    author {
                                        login
                                    }
                                    labels(first: 10) {
                                        edges {
                                            node {
                                                name
                                            }
                                        }
                                    }
                                }
                            }
                        }
                    }
                    pageInfo {
                        hasNextPage
                        endCursor
                    }
                }
            }
        }
    }
}`

// historyResponse mirrors the shape of associatedPullRequestsQuery's data.
type historyResponse struct {
	Repository struct {
		Commit struct {
			History struct {
				Nodes []struct {
					OID                    string `json:"oid"`
					AssociatedPullRequests struct {
						Edges []struct {
							Node *struct {
								Title  string `json:"title"`
								Number int    `json:"number"`
								Author struct {
									Login string `json:"login"`
								} `json:"author"`
								Labels struct {
									Edges []struct {
										Node struct {
											Name string `json:"name"`
										} `json:"node"`
									} `json:"edges"`
								} `json:"labels"`
							} `json:"node"`
						} `json:"edges"`
					} `json:"associatedPullRequests"`
				} `json:"nodes"`
				PageInfo struct {
					HasNextPage bool   `json:"hasNextPage"`
					EndCursor   string `json:"endCursor"`
				} `json:"pageInfo"`
			} `json:"history"`
		} `json:"commit"`
	} `json:"repository"`
}

// PullRequestsForCommits retrieves the pull requests associated with the
// given commit hashes. History is walked from the first commit; commits
// outside the expected set (reachable but not requested) are skipped.
// Commits without an associated pull request are skipped too.
func (c *Client) PullRequestsForCommits(ctx context.Context, owner, repo string, commits []string) ([]PullRequest, error) {
	if len(commits) == 0 {
		return nil, nil
	}

	expected := make(map[string]struct{}, len(commits))
	for _, hash := range commits {
		expected[hash] = struct{}{}
	}

	var pulls []PullRequest
	seen := 0
	var after any // null on the first page

	for seen < len(commits) {
		data, err := c.graphql(ctx, associatedPullRequestsQuery, map[string]any{
			"owner":  owner,
			"repo":   repo,
			"commit": commits[0],
			"after":  after,
		})
		if err != nil {
			return nil, fmt.Errorf("retrieving pull requests for %s/%s: %w", owner, repo, err)
		}

		var resp historyResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			return nil, fmt.Errorf("decoding pull request history: %w", err)
		}

		history := resp.Repository.Commit.History
		seen += len(history.Nodes)
		for _, node := range history.Nodes {
			if _, ok := expected[node.OID]; !ok {
				continue
			}
			for _, edge := range node.AssociatedPullRequests.Edges {
				pr := edge.Node
				if pr == nil {
					continue
				}
				labels := make([]string, 0, len(pr.Labels.Edges))
				for _, l := range pr.Labels.Edges {
					labels = append(labels, l.Node.Name)
				}
				sort.Strings(labels)
				pulls = append(pulls, PullRequest{
					Title:     pr.Title,
					Number:    pr.Number,
					Labels:    labels,
					Author:    pr.Author.Login,
					RepoOwner: owner,
					RepoName:  repo,
				})
			}
		}

		if !history.PageInfo.HasNextPage {
			break
		}
		after = history.PageInfo.EndCursor
	}

	return pulls, nil
}
