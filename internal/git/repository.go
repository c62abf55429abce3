package git

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/syntonize/corekit/internal/configuration"
)

// NewRepository creates a new repository instance
func NewRepository(workingDirectory string, targetActor *configuration.TargetActor) *Repository {
	return &Repository{
		WorkingDirectory: workingDirectory,
		TargetActor:      targetActor,
	}
}

// DetectRepository detects git repository information starting from a path
func (r *Repository) DetectRepository(path string) error {
	log.Debug().Str("path", path).Msg("Detecting git repository")

	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	gitRoot, err := r.findGitRoot(absPath)
	if err != nil {
		return fmt.Errorf("failed to find git root: %w", err)
	}

	r.WorkingDirectory = gitRoot
	log.Debug().Str("gitRoot", gitRoot).Msg("Found git repository root")

	remoteURL, err := r.getRemoteURL()
	if err != nil {
		return fmt.Errorf("failed to get remote URL: %w", err)
	}

	r.RepoURL = remoteURL
	log.Debug().Str("remoteURL", remoteURL).Msg("Found remote URL")

	branch, err := r.CurrentBranch()
	if err != nil {
		return fmt.Errorf("failed to get current branch: %w", err)
	}
	r.BranchName = branch
	log.Debug().Str("branch", branch).Msg("Found current branch")

	return nil
}

// findGitRoot finds the root directory of a git repository
func (r *Repository) findGitRoot(startPath string) (string, error) {
	dir := startPath
	if !isDirectory(startPath) {
		dir = filepath.Dir(startPath)
	}

	for {
		gitDir := filepath.Join(dir, ".git")
		if exists(gitDir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not a git repository (or any parent up to mount point)")
		}
		dir = parent
	}
}

// getRemoteURL gets the remote URL for origin
func (r *Repository) getRemoteURL() (string, error) {
	cmd := exec.Command("git", "remote", "get-url", "origin")
	cmd.Dir = r.WorkingDirectory

	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("failed to get remote URL: %w", err)
	}

	return strings.TrimSpace(string(output)), nil
}

// CurrentBranch gets the current branch name
func (r *Repository) CurrentBranch() (string, error) {
	cmd := exec.Command("git", "rev-parse", "--abbrev-ref", "HEAD")
	cmd.Dir = r.WorkingDirectory

	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("failed to get current branch: %w", err)
	}

	return strings.TrimSpace(string(output)), nil
}

// CreateBranch creates a new branch from the current HEAD and checks it out
func (r *Repository) CreateBranch(branchName string) error {
	log.Debug().Str("branch", branchName).Msg("Creating new branch")

	cmd := exec.Command("git", "checkout", "-b", branchName)
	cmd.Dir = r.WorkingDirectory

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to create branch: %w, output: %s", err, string(output))
	}

	r.BranchName = branchName
	log.Debug().Str("branch", branchName).Msg("Created and checked out new branch")

	return nil
}

// CheckoutBranch checks out an existing branch
func (r *Repository) CheckoutBranch(branchName string) error {
	cmd := exec.Command("git", "checkout", branchName)
	cmd.Dir = r.WorkingDirectory

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to checkout branch %s: %w, output: %s", branchName, err, string(output))
	}

	r.BranchName = branchName
	return nil
}

// BranchExists checks whether a local branch is already present
func (r *Repository) BranchExists(branchName string) (bool, error) {
	cmd := exec.Command("git", "branch", "--list", branchName)
	cmd.Dir = r.WorkingDirectory

	output, err := cmd.Output()
	if err != nil {
		return false, fmt.Errorf("failed to list branches: %w", err)
	}

	return strings.TrimSpace(string(output)) != "", nil
}

// Commit creates a commit with the specified changes
func (r *Repository) Commit(options *CommitOptions) error {
	log.Debug().
		Str("message", options.Message).
		Int("files", len(options.Files)).
		Msg("Creating commit")

	if r.TargetActor == nil {
		return fmt.Errorf("target actor not configured")
	}

	for _, file := range options.Files {
		if err := r.stageFile(file); err != nil {
			return fmt.Errorf("failed to stage file %s: %w", file, err)
		}
	}

	// Commit with environment variables to avoid persisting git config changes
	cmd := exec.Command("git", "commit", "-m", options.Message)
	cmd.Dir = r.WorkingDirectory
	cmd.Env = append(os.Environ(),
		fmt.Sprintf("GIT_AUTHOR_NAME=%s", r.TargetActor.Name),
		fmt.Sprintf("GIT_AUTHOR_EMAIL=%s", r.TargetActor.Email),
		fmt.Sprintf("GIT_COMMITTER_NAME=%s", r.TargetActor.Name),
		fmt.Sprintf("GIT_COMMITTER_EMAIL=%s", r.TargetActor.Email),
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to commit: %w, output: %s", err, string(output))
	}

	log.Debug().Str("message", options.Message).Msg("Created commit")

	return nil
}

// stageFile stages a file for commit
func (r *Repository) stageFile(filePath string) error {
	cmd := exec.Command("git", "add", filePath)
	cmd.Dir = r.WorkingDirectory

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to stage file: %w, output: %s", err, string(output))
	}

	return nil
}

// Tag creates an annotated tag on the current HEAD. Creating a tag that
// already points at the same commit is a no-op.
func (r *Repository) Tag(tagName, message string) error {
	log.Debug().Str("tag", tagName).Msg("Creating tag")

	tagExists, err := r.TagExists(tagName)
	if err != nil {
		return err
	}
	if tagExists {
		log.Debug().Str("tag", tagName).Msg("Tag already exists, skipping")
		return nil
	}

	if r.TargetActor == nil {
		return fmt.Errorf("target actor not configured")
	}

	cmd := exec.Command("git", "tag", "-a", tagName, "-m", message)
	cmd.Dir = r.WorkingDirectory
	cmd.Env = append(os.Environ(),
		fmt.Sprintf("GIT_COMMITTER_NAME=%s", r.TargetActor.Name),
		fmt.Sprintf("GIT_COMMITTER_EMAIL=%s", r.TargetActor.Email),
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to create tag: %w, output: %s", err, string(output))
	}

	log.Debug().Str("tag", tagName).Msg("Created tag")

	return nil
}

// TagExists checks whether a tag is already present in the repository
func (r *Repository) TagExists(tagName string) (bool, error) {
	cmd := exec.Command("git", "tag", "--list", tagName)
	cmd.Dir = r.WorkingDirectory

	output, err := cmd.Output()
	if err != nil {
		return false, fmt.Errorf("failed to list tags: %w", err)
	}

	return strings.TrimSpace(string(output)) == tagName, nil
}

// Push pushes the named branch and all tags to remote
func (r *Repository) Push(branchName string) error {
	log.Debug().Str("branch", branchName).Msg("Pushing branch to remote")

	cmd := exec.Command("git", "push", "--follow-tags", "-u", "origin", branchName)
	cmd.Dir = r.WorkingDirectory

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to push: %w, output: %s", err, string(output))
	}

	log.Debug().Str("branch", branchName).Msg("Pushed branch to remote")

	return nil
}

// HasUncommittedChanges checks if there are uncommitted changes in the working directory
func (r *Repository) HasUncommittedChanges() (bool, error) {
	cmd := exec.Command("git", "status", "--porcelain")
	cmd.Dir = r.WorkingDirectory

	output, err := cmd.Output()
	if err != nil {
		return false, fmt.Errorf("failed to check git status: %w", err)
	}

	return len(strings.TrimSpace(string(output))) > 0, nil
}

// isDirectory checks if a path is a directory
func isDirectory(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// exists checks if a path exists
func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
