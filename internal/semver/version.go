package semver

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// PrereleaseMarker is the suffix appended to bumped versions to mark them as
// not-yet-final beta builds, e.g. "1.4.0b0". The build index is fixed at 0;
// repeated beta cycles on the same release branch reuse the same marker.
const PrereleaseMarker = "b0"

// BumpKind selects which component of the version triplet is incremented.
type BumpKind string

const (
	BumpKindMajor BumpKind = "major"
	BumpKindMinor BumpKind = "minor"
	BumpKindPatch BumpKind = "patch"
)

// DefaultBumpKind is used when the pipeline does not request a specific kind.
const DefaultBumpKind = BumpKindMinor

// Version is an immutable semantic version with an optional pre-release
// marker. An empty Prerelease means a final release.
type Version struct {
	Major      int
	Minor      int
	Patch      int
	Prerelease string
}

var versionPattern = regexp.MustCompile(`^(\d+)\.(\d+)\.(\d+)(b\d+)?$`)

// Parse parses a version string of the form MAJOR.MINOR.PATCH, optionally
// followed immediately by a pre-release marker (e.g. "1.4.0b0"). A leading
// "v" or "V" prefix is tolerated.
func Parse(text string) (Version, error) {
	trimmed := strings.TrimPrefix(text, "v")
	trimmed = strings.TrimPrefix(trimmed, "V")

	match := versionPattern.FindStringSubmatch(trimmed)
	if match == nil {
		return Version{}, &MalformedVersionError{Text: text}
	}

	major, err := strconv.Atoi(match[1])
	if err != nil {
		return Version{}, &MalformedVersionError{Text: text}
	}
	minor, err := strconv.Atoi(match[2])
	if err != nil {
		return Version{}, &MalformedVersionError{Text: text}
	}
	patch, err := strconv.Atoi(match[3])
	if err != nil {
		return Version{}, &MalformedVersionError{Text: text}
	}

	return Version{
		Major:      major,
		Minor:      minor,
		Patch:      patch,
		Prerelease: match[4],
	}, nil
}

// String renders the version in the same form accepted by Parse.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d%s", v.Major, v.Minor, v.Patch, v.Prerelease)
}

// IsPrerelease reports whether the version carries a pre-release marker.
func (v Version) IsPrerelease() bool {
	return v.Prerelease != ""
}

// Bump computes the next pre-release version for the given kind. The result
// always carries the pre-release marker; bumping is only invoked on versions
// believed final at the moment of bump.
func Bump(v Version, kind BumpKind) (Version, error) {
	switch kind {
	case BumpKindMajor:
		return Version{Major: v.Major + 1, Minor: 0, Patch: 0, Prerelease: PrereleaseMarker}, nil
	case BumpKindMinor:
		return Version{Major: v.Major, Minor: v.Minor + 1, Patch: 0, Prerelease: PrereleaseMarker}, nil
	case BumpKindPatch:
		return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1, Prerelease: PrereleaseMarker}, nil
	default:
		return Version{}, &UnsupportedBumpKindError{Kind: string(kind)}
	}
}

// Finalize strips the pre-release marker, leaving the numeric triplet
// unchanged. Finalizing an already-final version is an error; this guards
// against double-finalizing.
func Finalize(v Version) (Version, error) {
	if !v.IsPrerelease() {
		return Version{}, &NotAPrereleaseError{Version: v.String()}
	}
	return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch}, nil
}

// Compare orders two versions by their numeric triplets. A pre-release sorts
// before the final version with the same triplet. Returns -1, 0 or 1.
func Compare(a, b Version) int {
	if a.Major != b.Major {
		return sign(a.Major - b.Major)
	}
	if a.Minor != b.Minor {
		return sign(a.Minor - b.Minor)
	}
	if a.Patch != b.Patch {
		return sign(a.Patch - b.Patch)
	}
	if a.IsPrerelease() == b.IsPrerelease() {
		return 0
	}
	if a.IsPrerelease() {
		return -1
	}
	return 1
}

func sign(n int) int {
	if n < 0 {
		return -1
	}
	if n > 0 {
		return 1
	}
	return 0
}
