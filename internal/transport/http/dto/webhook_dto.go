package dto

import "encoding/json"

type GitHubRepository struct {
	FullName string `json:"full_name"`
	CloneURL string `json:"clone_url"`
}

type GitHubPushEvent struct {
	Ref        string            `json:"ref"`
	Commits    []json.RawMessage `json:"commits"`
	Repository GitHubRepository  `json:"repository"`
}

type GitHubPullRequestEvent struct {
	Action      string `json:"action"`
	Number      int    `json:"number"`
	PullRequest struct {
		Head struct {
			Ref string `json:"ref"`
		} `json:"head"`
	} `json:"pull_request"`
	Repository GitHubRepository `json:"repository"`
}

type WebhookResponse struct {
	Message string `json:"message"`
	ScanID  string `json:"scanId,omitempty"`
	Skipped string `json:"skipped,omitempty"`
}
