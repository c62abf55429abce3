package git

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/syntonize/corekit/internal/configuration"
)

// GitHubClient handles GitHub API operations
type GitHubClient struct {
	Token   string
	BaseURL string
	RepoURL string
	Owner   string
	Repo    string

	httpClient *http.Client
}

// NewGitHubClient creates a new GitHub client
func NewGitHubClient(repoURL string, targetActor *configuration.TargetActor) (*GitHubClient, error) {
	owner, repo, err := parseGitHubURL(repoURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse GitHub URL: %w", err)
	}

	token := targetActor.Token
	if token == "" {
		return nil, fmt.Errorf("GitHub token is required for merge request creation")
	}

	return &GitHubClient{
		Token:      token,
		BaseURL:    extractAPIBaseURL(repoURL),
		RepoURL:    repoURL,
		Owner:      owner,
		Repo:       repo,
		httpClient: &http.Client{},
	}, nil
}

// hostAndPath splits a repository URL into its host and owner/repo path,
// handling HTTPS URLs (with or without embedded credentials) and SSH URLs.
func hostAndPath(repoURL string) (host, path string, ok bool) {
	if remainder, found := strings.CutPrefix(repoURL, "https://"); found {
		// Strip embedded credentials: user:token@host/owner/repo
		if _, after, hasCreds := strings.Cut(remainder, "@"); hasCreds {
			remainder = after
		}
		return strings.Cut(remainder, "/")
	}

	if remainder, found := strings.CutPrefix(repoURL, "git@"); found {
		return strings.Cut(remainder, ":")
	}

	return "", "", false
}

// extractAPIBaseURL extracts the API base URL from a repository URL.
// Enterprise GitHub serves the API under /api/v3 on the instance host.
func extractAPIBaseURL(repoURL string) string {
	host, _, ok := hostAndPath(repoURL)
	if !ok || host == "github.com" {
		return "https://api.github.com"
	}
	return fmt.Sprintf("https://%s/api/v3", host)
}

// parseGitHubURL parses a GitHub URL to extract owner and repo
func parseGitHubURL(repoURL string) (string, string, error) {
	_, path, ok := hostAndPath(repoURL)
	if !ok {
		return "", "", fmt.Errorf("unsupported GitHub URL format: %s", repoURL)
	}

	path = strings.TrimSuffix(path, ".git")
	parts := strings.Split(path, "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("unsupported GitHub URL format: %s", repoURL)
	}

	return parts[0], parts[1], nil
}

func (c *GitHubClient) doRequest(method, url string, body interface{}) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		bodyJSON, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewBuffer(bodyJSON)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", fmt.Sprintf("token %s", c.Token))
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response: %w", err)
	}

	return resp.StatusCode, responseBody, nil
}

// PullRequest represents a GitHub pull request
type PullRequest struct {
	Number  int    `json:"number"`
	HTMLURL string `json:"html_url"`
	State   string `json:"state"`
	Head    struct {
		Ref string `json:"ref"`
	} `json:"head"`
	Base struct {
		Ref string `json:"ref"`
	} `json:"base"`
}

// CreatePullRequest creates a pull request on GitHub and returns its URL
func (c *GitHubClient) CreatePullRequest(options *PullRequestOptions) (string, error) {
	log.Debug().
		Str("title", options.Title).
		Str("base", options.BaseBranch).
		Str("head", options.HeadBranch).
		Msg("Creating GitHub pull request")

	requestBody := map[string]interface{}{
		"title": options.Title,
		"body":  options.Body,
		"base":  options.BaseBranch,
		"head":  options.HeadBranch,
	}

	url := fmt.Sprintf("%s/repos/%s/%s/pulls", c.BaseURL, c.Owner, c.Repo)
	status, responseBody, err := c.doRequest("POST", url, requestBody)
	if err != nil {
		return "", err
	}

	if status != http.StatusCreated {
		return "", fmt.Errorf("failed to create PR, status: %d, body: %s", status, string(responseBody))
	}

	var prResponse struct {
		HTMLURL string `json:"html_url"`
		Number  int    `json:"number"`
	}
	if err := json.Unmarshal(responseBody, &prResponse); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	log.Debug().
		Str("url", prResponse.HTMLURL).
		Int("number", prResponse.Number).
		Msg("Created pull request")

	if len(options.Labels) > 0 {
		if err := c.addLabels(prResponse.Number, options.Labels); err != nil {
			log.Warn().Err(err).Msg("Failed to add labels to PR")
		}
	}

	return prResponse.HTMLURL, nil
}

// FindOpenPullRequest finds an open PR from the given head branch towards the
// given base branch. Returns nil when no matching PR exists.
func (c *GitHubClient) FindOpenPullRequest(headBranch, baseBranch string) (*PullRequest, error) {
	log.Debug().
		Str("headBranch", headBranch).
		Str("baseBranch", baseBranch).
		Msg("Searching for open pull request")

	url := fmt.Sprintf("%s/repos/%s/%s/pulls?state=open&head=%s:%s&base=%s",
		c.BaseURL, c.Owner, c.Repo, c.Owner, headBranch, baseBranch)

	status, responseBody, err := c.doRequest("GET", url, nil)
	if err != nil {
		return nil, err
	}

	if status != http.StatusOK {
		return nil, fmt.Errorf("failed to search PRs, status: %d, body: %s", status, string(responseBody))
	}

	var prs []PullRequest
	if err := json.Unmarshal(responseBody, &prs); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(prs) > 0 {
		log.Debug().
			Int("number", prs[0].Number).
			Str("url", prs[0].HTMLURL).
			Msg("Found existing open pull request")
		return &prs[0], nil
	}

	log.Debug().Msg("No existing open pull request found")
	return nil, nil
}

// addLabels adds labels to a pull request
func (c *GitHubClient) addLabels(prNumber int, labels []string) error {
	log.Debug().
		Int("pr", prNumber).
		Strs("labels", labels).
		Msg("Adding labels to pull request")

	requestBody := map[string]interface{}{
		"labels": labels,
	}

	url := fmt.Sprintf("%s/repos/%s/%s/issues/%d/labels", c.BaseURL, c.Owner, c.Repo, prNumber)
	status, responseBody, err := c.doRequest("POST", url, requestBody)
	if err != nil {
		return err
	}

	if status != http.StatusOK {
		return fmt.Errorf("failed to add labels, status: %d, body: %s", status, string(responseBody))
	}

	return nil
}
