package release

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/syntonize/corekit/internal/configuration"
	"github.com/syntonize/corekit/internal/semver"
)

// Engine plans the actions for one pipeline invocation. It is a pure planner:
// each invocation computes a full action list from freshly read inputs and
// never performs a side effect itself.
type Engine struct {
	developBranch string
	mainBranch    string
	releasePrefix string
	notify        bool
}

// NewEngine creates an engine from the release configuration
func NewEngine(config *configuration.Config) *Engine {
	return &Engine{
		developBranch: config.DevelopBranchName(),
		mainBranch:    config.MainBranchName(),
		releasePrefix: config.ReleasePrefix(),
		notify:        config.Notify != nil,
	}
}

// Invocation is the trigger context of a single pipeline run
type Invocation struct {
	// Branch is the branch the trigger fired on
	Branch string

	// Event distinguishes a pull request gate from a branch push
	Event Event

	// CurrentVersion is the version string currently recorded in the
	// version files
	CurrentVersion string

	// BumpKind selects the component to bump on the develop stage; empty
	// means the default
	BumpKind semver.BumpKind
}

// Plan computes the action list for an invocation. Any parse, bump or
// finalize failure aborts before a single action is returned, so the executor
// either receives the complete sequence or nothing.
func (e *Engine) Plan(invocation *Invocation) ([]*Action, error) {
	state := e.ClassifyBranch(invocation.Branch)

	log.Debug().
		Str("branch", invocation.Branch).
		Str("state", string(state)).
		Str("event", string(invocation.Event)).
		Str("currentVersion", invocation.CurrentVersion).
		Msg("Planning pipeline invocation")

	// Pull request events are always the validation gate, no version mutation
	if invocation.Event == EventPullRequest {
		return []*Action{{Kind: ActionKindRunTests}}, nil
	}

	switch state {
	case BranchStateFeature:
		// A push to an unclassified branch gets the same gate as a PR
		return []*Action{{Kind: ActionKindRunTests}}, nil
	case BranchStateDevelop:
		return e.planDevelop(invocation)
	case BranchStateRelease:
		return e.planRelease(invocation)
	case BranchStateMain:
		return e.planMain(invocation)
	}

	return nil, fmt.Errorf("unhandled branch state: %s", state)
}

// planDevelop starts a new release cycle: bump the stored version to the next
// pre-release and cut a release branch carrying it.
func (e *Engine) planDevelop(invocation *Invocation) ([]*Action, error) {
	current, err := semver.Parse(invocation.CurrentVersion)
	if err != nil {
		return nil, err
	}

	// Bumping a version that still carries a marker would skip finalization
	if current.IsPrerelease() {
		return nil, &UnfinalizedVersionError{Version: current.String()}
	}

	kind := invocation.BumpKind
	if kind == "" {
		kind = semver.DefaultBumpKind
	}

	next, err := semver.Bump(current, kind)
	if err != nil {
		return nil, err
	}

	releaseBranch := e.releasePrefix + next.String()

	actions := []*Action{
		{Kind: ActionKindRunTests},
		{Kind: ActionKindUpdateVersionFiles, Version: next.String()},
		{Kind: ActionKindCommit, Message: fmt.Sprintf("chore(release): bump version to %s", next)},
		{Kind: ActionKindTag, Version: next.String()},
		{Kind: ActionKindPush, Branch: invocation.Branch},
		{Kind: ActionKindCreateBranch, Branch: releaseBranch},
	}

	return e.withNotify(actions, fmt.Sprintf("release cycle %s started from %s", next, invocation.Branch)), nil
}

// planRelease finalizes the version carried in the branch name and proposes
// the result to develop and main. The branch itself stays put until both
// merge requests land.
func (e *Engine) planRelease(invocation *Invocation) ([]*Action, error) {
	branchVersion := e.ReleaseBranchVersion(invocation.Branch)

	version, err := semver.Parse(branchVersion)
	if err != nil {
		return nil, err
	}

	final, err := semver.Finalize(version)
	if err != nil {
		return nil, err
	}

	actions := []*Action{
		{Kind: ActionKindUpdateVersionFiles, Version: final.String()},
		{Kind: ActionKindCommit, Message: fmt.Sprintf("chore(release): finalize version %s", final)},
		{Kind: ActionKindPush, Branch: invocation.Branch},
		{Kind: ActionKindOpenMergeRequest, SourceBranch: invocation.Branch, TargetBranch: e.developBranch},
		{Kind: ActionKindOpenMergeRequest, SourceBranch: invocation.Branch, TargetBranch: e.mainBranch},
	}

	return e.withNotify(actions, fmt.Sprintf("release %s proposed to %s and %s", final, e.developBranch, e.mainBranch)), nil
}

// planMain tags and publishes the finalized version. Main never rewrites the
// version files; the release branch merge already landed the final version.
func (e *Engine) planMain(invocation *Invocation) ([]*Action, error) {
	current, err := semver.Parse(invocation.CurrentVersion)
	if err != nil {
		return nil, err
	}

	final := current
	if current.IsPrerelease() {
		final, err = semver.Finalize(current)
		if err != nil {
			return nil, err
		}
	}

	actions := []*Action{
		{Kind: ActionKindTag, Version: final.String()},
		{Kind: ActionKindPush, Branch: invocation.Branch},
		{Kind: ActionKindBuildPackage, Version: final.String()},
		{Kind: ActionKindPublishPackage, Version: final.String()},
	}

	return e.withNotify(actions, fmt.Sprintf("version %s published", final)), nil
}

func (e *Engine) withNotify(actions []*Action, message string) []*Action {
	if !e.notify {
		return actions
	}
	return append(actions, &Action{Kind: ActionKindNotify, Message: message})
}
