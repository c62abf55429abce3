package release

import "fmt"

// ActionKind names a side-effecting directive emitted by the engine
type ActionKind string

const (
	ActionKindRunTests           ActionKind = "run-tests"
	ActionKindCreateBranch       ActionKind = "create-branch"
	ActionKindUpdateVersionFiles ActionKind = "update-version-files"
	ActionKindCommit             ActionKind = "commit"
	ActionKindTag                ActionKind = "tag"
	ActionKindPush               ActionKind = "push"
	ActionKindBuildPackage       ActionKind = "build-package"
	ActionKindPublishPackage     ActionKind = "publish-package"
	ActionKindOpenMergeRequest   ActionKind = "open-merge-request"
	ActionKindNotify             ActionKind = "notify"
)

// Action is a single side-effecting directive. It is produced by the engine
// and consumed immediately by the executor; the engine itself never performs
// the side effect.
type Action struct {
	Kind ActionKind `yaml:"kind" json:"kind"`

	// Version carries the version string for update-version-files, tag,
	// build-package and publish-package actions.
	Version string `yaml:"version,omitempty" json:"version,omitempty"`

	// Branch names the branch to create or push.
	Branch string `yaml:"branch,omitempty" json:"branch,omitempty"`

	// Message is the commit message or notification text.
	Message string `yaml:"message,omitempty" json:"message,omitempty"`

	// SourceBranch and TargetBranch describe an open-merge-request action.
	SourceBranch string `yaml:"sourceBranch,omitempty" json:"sourceBranch,omitempty"`
	TargetBranch string `yaml:"targetBranch,omitempty" json:"targetBranch,omitempty"`
}

// Describe renders a short human readable summary for plan output
func (a *Action) Describe() string {
	switch a.Kind {
	case ActionKindRunTests:
		return "run test suite"
	case ActionKindCreateBranch:
		return fmt.Sprintf("create branch %s", a.Branch)
	case ActionKindUpdateVersionFiles:
		return fmt.Sprintf("update version files to %s", a.Version)
	case ActionKindCommit:
		return fmt.Sprintf("commit %q", a.Message)
	case ActionKindTag:
		return fmt.Sprintf("tag v%s", a.Version)
	case ActionKindPush:
		return fmt.Sprintf("push %s", a.Branch)
	case ActionKindBuildPackage:
		return fmt.Sprintf("build package %s", a.Version)
	case ActionKindPublishPackage:
		return fmt.Sprintf("publish package %s", a.Version)
	case ActionKindOpenMergeRequest:
		return fmt.Sprintf("open merge request %s -> %s", a.SourceBranch, a.TargetBranch)
	case ActionKindNotify:
		return "send notification"
	}
	return string(a.Kind)
}
