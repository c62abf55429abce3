package release

import (
	"errors"
	"testing"

	"github.com/syntonize/corekit/internal/configuration"
	"github.com/syntonize/corekit/internal/semver"
)

func testConfig() *configuration.Config {
	return &configuration.Config{}
}

func kinds(actions []*Action) []ActionKind {
	result := make([]ActionKind, 0, len(actions))
	for _, action := range actions {
		result = append(result, action.Kind)
	}
	return result
}

func countKind(actions []*Action, kind ActionKind) int {
	count := 0
	for _, action := range actions {
		if action.Kind == kind {
			count++
		}
	}
	return count
}

func TestPlanPullRequestGate(t *testing.T) {
	engine := NewEngine(testConfig())

	actions, err := engine.Plan(&Invocation{
		Branch:         "feature/add-masking",
		Event:          EventPullRequest,
		CurrentVersion: "1.4.2",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(actions) != 1 || actions[0].Kind != ActionKindRunTests {
		t.Errorf("Expected single run-tests action, got %v", kinds(actions))
	}
}

func TestPlanDevelop(t *testing.T) {
	engine := NewEngine(testConfig())

	actions, err := engine.Plan(&Invocation{
		Branch:         "develop",
		Event:          EventPush,
		CurrentVersion: "1.4.2",
		BumpKind:       semver.BumpKindMinor,
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	expected := []ActionKind{
		ActionKindRunTests,
		ActionKindUpdateVersionFiles,
		ActionKindCommit,
		ActionKindTag,
		ActionKindPush,
		ActionKindCreateBranch,
	}

	got := kinds(actions)
	if len(got) != len(expected) {
		t.Fatalf("Expected %d actions, got %d: %v", len(expected), len(got), got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("Action %d: expected %s, got %s", i, expected[i], got[i])
		}
	}

	for _, action := range actions {
		switch action.Kind {
		case ActionKindUpdateVersionFiles, ActionKindTag:
			if action.Version != "1.5.0b0" {
				t.Errorf("Expected version 1.5.0b0 on %s, got %s", action.Kind, action.Version)
			}
		case ActionKindCreateBranch:
			if action.Branch != "release/1.5.0b0" {
				t.Errorf("Expected branch release/1.5.0b0, got %s", action.Branch)
			}
		}
	}
}

func TestPlanDevelopDefaultBumpKind(t *testing.T) {
	engine := NewEngine(testConfig())

	actions, err := engine.Plan(&Invocation{
		Branch:         "develop",
		Event:          EventPush,
		CurrentVersion: "2.0.3",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	for _, action := range actions {
		if action.Kind == ActionKindUpdateVersionFiles && action.Version != "2.1.0b0" {
			t.Errorf("Expected default minor bump to 2.1.0b0, got %s", action.Version)
		}
	}
}

func TestPlanDevelopMajorBump(t *testing.T) {
	engine := NewEngine(testConfig())

	actions, err := engine.Plan(&Invocation{
		Branch:         "develop",
		Event:          EventPush,
		CurrentVersion: "2.0.3",
		BumpKind:       semver.BumpKindMajor,
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	for _, action := range actions {
		if action.Kind == ActionKindCreateBranch && action.Branch != "release/3.0.0b0" {
			t.Errorf("Expected release/3.0.0b0, got %s", action.Branch)
		}
	}
}

func TestPlanDevelopRejectsPrereleaseInput(t *testing.T) {
	engine := NewEngine(testConfig())

	actions, err := engine.Plan(&Invocation{
		Branch:         "develop",
		Event:          EventPush,
		CurrentVersion: "1.5.0b0",
	})
	if err == nil {
		t.Fatalf("Expected error but got none")
	}
	if actions != nil {
		t.Errorf("Expected no actions on failure, got %v", kinds(actions))
	}

	var unfinalized *UnfinalizedVersionError
	if !errors.As(err, &unfinalized) {
		t.Errorf("Expected UnfinalizedVersionError, got: %v", err)
	}
}

func TestPlanDevelopMalformedVersion(t *testing.T) {
	engine := NewEngine(testConfig())

	actions, err := engine.Plan(&Invocation{
		Branch:         "develop",
		Event:          EventPush,
		CurrentVersion: "not-a-version",
	})
	if err == nil {
		t.Fatalf("Expected error but got none")
	}
	if actions != nil {
		t.Errorf("Expected no actions on failure, got %v", kinds(actions))
	}

	var malformed *semver.MalformedVersionError
	if !errors.As(err, &malformed) {
		t.Errorf("Expected MalformedVersionError, got: %v", err)
	}
}

func TestPlanReleaseBranch(t *testing.T) {
	engine := NewEngine(testConfig())

	actions, err := engine.Plan(&Invocation{
		Branch:         "release/1.5.0b0",
		Event:          EventPush,
		CurrentVersion: "1.5.0b0",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if got := countKind(actions, ActionKindOpenMergeRequest); got != 2 {
		t.Errorf("Expected exactly 2 open-merge-request actions, got %d", got)
	}
	if got := countKind(actions, ActionKindTag); got != 0 {
		t.Errorf("Expected zero tag actions on release branch, got %d", got)
	}

	targets := map[string]bool{}
	for _, action := range actions {
		switch action.Kind {
		case ActionKindUpdateVersionFiles:
			if action.Version != "1.5.0" {
				t.Errorf("Expected finalized version 1.5.0, got %s", action.Version)
			}
		case ActionKindOpenMergeRequest:
			if action.SourceBranch != "release/1.5.0b0" {
				t.Errorf("Expected merge request source release/1.5.0b0, got %s", action.SourceBranch)
			}
			targets[action.TargetBranch] = true
		}
	}

	if !targets["develop"] || !targets["main"] {
		t.Errorf("Expected merge requests towards develop and main, got %v", targets)
	}
}

func TestPlanReleaseBranchAlreadyFinal(t *testing.T) {
	engine := NewEngine(testConfig())

	// A release branch carrying a final version means finalization already
	// happened; the stage must fail instead of double-finalizing
	actions, err := engine.Plan(&Invocation{
		Branch:         "release/1.5.0",
		Event:          EventPush,
		CurrentVersion: "1.5.0",
	})
	if err == nil {
		t.Fatalf("Expected error but got none")
	}
	if actions != nil {
		t.Errorf("Expected no actions on failure, got %v", kinds(actions))
	}

	var notPrerelease *semver.NotAPrereleaseError
	if !errors.As(err, &notPrerelease) {
		t.Errorf("Expected NotAPrereleaseError, got: %v", err)
	}
}

func TestPlanMain(t *testing.T) {
	engine := NewEngine(testConfig())

	actions, err := engine.Plan(&Invocation{
		Branch:         "main",
		Event:          EventPush,
		CurrentVersion: "1.5.0",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if got := countKind(actions, ActionKindTag); got != 1 {
		t.Errorf("Expected exactly 1 tag action, got %d", got)
	}
	if got := countKind(actions, ActionKindUpdateVersionFiles); got != 0 {
		t.Errorf("Expected no update-version-files action on main, got %d", got)
	}

	for _, action := range actions {
		if action.Kind == ActionKindTag && action.Version != "1.5.0" {
			t.Errorf("Expected tag version 1.5.0, got %s", action.Version)
		}
	}

	expected := []ActionKind{
		ActionKindTag,
		ActionKindPush,
		ActionKindBuildPackage,
		ActionKindPublishPackage,
	}
	got := kinds(actions)
	if len(got) != len(expected) {
		t.Fatalf("Expected %d actions, got %d: %v", len(expected), len(got), got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("Action %d: expected %s, got %s", i, expected[i], got[i])
		}
	}
}

func TestPlanMainWithLingeringMarker(t *testing.T) {
	engine := NewEngine(testConfig())

	// If the merge landed before the release branch finalized its files, the
	// stored version may still carry the marker; main finalizes it for the tag
	actions, err := engine.Plan(&Invocation{
		Branch:         "main",
		Event:          EventPush,
		CurrentVersion: "1.5.0b0",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	for _, action := range actions {
		if action.Kind == ActionKindTag && action.Version != "1.5.0" {
			t.Errorf("Expected finalized tag version 1.5.0, got %s", action.Version)
		}
	}
}

func TestPlanNotifyAppended(t *testing.T) {
	config := testConfig()
	config.Notify = &configuration.Notify{WebhookURL: "https://hooks.example.com/release"}
	engine := NewEngine(config)

	actions, err := engine.Plan(&Invocation{
		Branch:         "main",
		Event:          EventPush,
		CurrentVersion: "1.5.0",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	last := actions[len(actions)-1]
	if last.Kind != ActionKindNotify {
		t.Errorf("Expected trailing notify action, got %s", last.Kind)
	}
	if last.Message == "" {
		t.Errorf("Expected notify action to carry a message")
	}
}

func TestPlanFeaturePush(t *testing.T) {
	engine := NewEngine(testConfig())

	actions, err := engine.Plan(&Invocation{
		Branch:         "feature/new-utils",
		Event:          EventPush,
		CurrentVersion: "1.4.2",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(actions) != 1 || actions[0].Kind != ActionKindRunTests {
		t.Errorf("Expected single run-tests action, got %v", kinds(actions))
	}
}
