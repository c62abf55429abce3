package git

import "github.com/syntonize/corekit/internal/configuration"

// Repository represents a git repository
type Repository struct {
	WorkingDirectory string
	TargetActor      *configuration.TargetActor
	RepoURL          string
	BranchName       string
}

// CommitOptions represents options for creating a commit
type CommitOptions struct {
	Message string
	Files   []string
}

// PullRequestOptions represents options for creating a pull request
type PullRequestOptions struct {
	Title      string
	Body       string
	BaseBranch string
	HeadBranch string
	Labels     []string
}
