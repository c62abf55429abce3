package executor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/syntonize/corekit/internal/configuration"
	"github.com/syntonize/corekit/internal/git"
	"github.com/syntonize/corekit/internal/notify"
	"github.com/syntonize/corekit/internal/release"
	"github.com/syntonize/corekit/internal/versionfile"
)

// Executor performs the side effects for a planned action sequence. Actions
// run in order; the first failure aborts the remaining actions without
// rolling back completed ones. Version-control commit atomicity per action is
// what limits the damage of a partial sequence.
type Executor struct {
	config   *configuration.Config
	store    *versionfile.Store
	repo     *git.Repository
	github   *git.GitHubClient
	notifier *notify.Notifier
}

// New creates an executor bound to a repository and version store
func New(config *configuration.Config, store *versionfile.Store, repo *git.Repository) *Executor {
	e := &Executor{
		config: config,
		store:  store,
		repo:   repo,
	}
	if config.Notify != nil {
		e.notifier = notify.NewNotifier(config.Notify)
	}
	return e
}

// Execute runs the action sequence. The returned error is an
// ActionExecutionError wrapping the first collaborator failure.
func (e *Executor) Execute(ctx context.Context, actions []*release.Action) error {
	bar := progressbar.NewOptions(len(actions),
		progressbar.OptionSetDescription("executing actions"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionClearOnFinish(),
	)

	for _, action := range actions {
		log.Info().Str("action", string(action.Kind)).Msg(action.Describe())

		if err := e.execute(ctx, action); err != nil {
			// Notifications are best-effort and never abort the run
			if action.Kind == release.ActionKindNotify {
				log.Warn().Err(err).Msg("Notification failed")
				_ = bar.Add(1)
				continue
			}
			return &release.ActionExecutionError{Kind: string(action.Kind), Err: err}
		}

		_ = bar.Add(1)
	}

	_ = bar.Finish()
	return nil
}

func (e *Executor) execute(ctx context.Context, action *release.Action) error {
	switch action.Kind {
	case release.ActionKindRunTests:
		return e.runTests(ctx)
	case release.ActionKindUpdateVersionFiles:
		return e.store.WriteVersion(action.Version)
	case release.ActionKindCommit:
		return e.commitVersionFiles(action.Message)
	case release.ActionKindTag:
		return e.repo.Tag("v"+action.Version, fmt.Sprintf("Release %s", action.Version))
	case release.ActionKindPush:
		return e.repo.Push(action.Branch)
	case release.ActionKindCreateBranch:
		return e.createBranch(action.Branch)
	case release.ActionKindBuildPackage:
		return e.buildPackage(ctx, action.Version)
	case release.ActionKindPublishPackage:
		return e.publishPackage(ctx, action.Version)
	case release.ActionKindOpenMergeRequest:
		return e.openMergeRequest(action)
	case release.ActionKindNotify:
		return e.sendNotification(ctx, action.Message)
	}
	return fmt.Errorf("unknown action kind: %s", action.Kind)
}

func (e *Executor) runTests(ctx context.Context) error {
	command := "go test ./..."
	if e.config.Commands != nil && e.config.Commands.Test != "" {
		command = e.config.Commands.Test
	}
	return e.runCommand(ctx, command, "")
}

func (e *Executor) buildPackage(ctx context.Context, version string) error {
	if e.config.Commands == nil || e.config.Commands.Build == "" {
		return fmt.Errorf("no build command configured (commands.build)")
	}
	return e.runCommand(ctx, e.config.Commands.Build, version)
}

// publishPackage uploads the built artifact. The configured command is
// expected to treat an already-published version as a no-op; the version is
// passed in COREKIT_VERSION so the command can check before uploading.
func (e *Executor) publishPackage(ctx context.Context, version string) error {
	if e.config.Commands == nil || e.config.Commands.Publish == "" {
		return fmt.Errorf("no publish command configured (commands.publish)")
	}
	return e.runCommand(ctx, e.config.Commands.Publish, version)
}

// runCommand executes a configured command line through the shell in the
// repository working directory
func (e *Executor) runCommand(ctx context.Context, command, version string) error {
	log.Debug().Str("command", command).Msg("Running command")

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = e.repo.WorkingDirectory
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = os.Environ()
	if version != "" {
		cmd.Env = append(cmd.Env, fmt.Sprintf("COREKIT_VERSION=%s", version))
	}

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("command %q failed: %w", command, err)
	}

	return nil
}

// createBranch creates the branch, or checks it out when a previous run
// already created it
func (e *Executor) createBranch(branchName string) error {
	branchExists, err := e.repo.BranchExists(branchName)
	if err != nil {
		return err
	}
	if branchExists {
		log.Debug().Str("branch", branchName).Msg("Branch already exists, checking out")
		return e.repo.CheckoutBranch(branchName)
	}
	return e.repo.CreateBranch(branchName)
}

// commitVersionFiles commits the two version artifacts. A clean working tree
// means a previous run already committed them; nothing to do then.
func (e *Executor) commitVersionFiles(message string) error {
	dirty, err := e.repo.HasUncommittedChanges()
	if err != nil {
		return err
	}
	if !dirty {
		log.Debug().Msg("Working tree clean, skipping commit")
		return nil
	}

	files := make([]string, 0, 2)
	for _, file := range e.store.Files() {
		relPath, err := filepath.Rel(e.repo.WorkingDirectory, file)
		if err != nil {
			relPath = file
		}
		files = append(files, relPath)
	}

	return e.repo.Commit(&git.CommitOptions{
		Message: message,
		Files:   files,
	})
}

// openMergeRequest creates a merge request unless one is already open for the
// same source and target, making re-runs of a failed stage safe
func (e *Executor) openMergeRequest(action *release.Action) error {
	client, err := e.githubClient()
	if err != nil {
		return err
	}

	existing, err := client.FindOpenPullRequest(action.SourceBranch, action.TargetBranch)
	if err != nil {
		return err
	}
	if existing != nil {
		log.Info().
			Str("url", existing.HTMLURL).
			Str("target", action.TargetBranch).
			Msg("Merge request already open, skipping")
		return nil
	}

	url, err := client.CreatePullRequest(&git.PullRequestOptions{
		Title:      fmt.Sprintf("Merge %s into %s", action.SourceBranch, action.TargetBranch),
		Body:       fmt.Sprintf("Automated release promotion from `%s`.", action.SourceBranch),
		BaseBranch: action.TargetBranch,
		HeadBranch: action.SourceBranch,
		Labels:     []string{"release"},
	})
	if err != nil {
		return err
	}

	log.Info().Str("url", url).Str("target", action.TargetBranch).Msg("Opened merge request")

	return nil
}

func (e *Executor) githubClient() (*git.GitHubClient, error) {
	if e.github != nil {
		return e.github, nil
	}

	client, err := git.NewGitHubClient(e.repo.RepoURL, e.config.TargetActor)
	if err != nil {
		return nil, err
	}

	e.github = client
	return client, nil
}

func (e *Executor) sendNotification(ctx context.Context, message string) error {
	if e.notifier == nil {
		log.Debug().Msg("No notifier configured, skipping notification")
		return nil
	}
	return e.notifier.Send(ctx, message)
}
