package release

import "strings"

// BranchState identifies which of the four pipeline stages a branch belongs to
type BranchState string

const (
	BranchStateFeature BranchState = "feature"
	BranchStateDevelop BranchState = "develop"
	BranchStateRelease BranchState = "release"
	BranchStateMain    BranchState = "main"
)

// Event is the pipeline trigger kind
type Event string

const (
	EventPullRequest Event = "pull-request"
	EventPush        Event = "push"
)

// ClassifyBranch maps a branch name to its pipeline stage. The most specific
// match wins: the release prefix is checked before plain branch equality, and
// anything unmatched is a feature branch.
func (e *Engine) ClassifyBranch(branch string) BranchState {
	if strings.HasPrefix(branch, e.releasePrefix) {
		return BranchStateRelease
	}
	switch branch {
	case e.developBranch:
		return BranchStateDevelop
	case e.mainBranch:
		return BranchStateMain
	}
	return BranchStateFeature
}

// ReleaseBranchVersion extracts the version suffix from a release branch name,
// e.g. "release/1.5.0b0" yields "1.5.0b0". The empty string is returned for
// branches outside the release prefix.
func (e *Engine) ReleaseBranchVersion(branch string) string {
	if !strings.HasPrefix(branch, e.releasePrefix) {
		return ""
	}
	return strings.TrimPrefix(branch, e.releasePrefix)
}
