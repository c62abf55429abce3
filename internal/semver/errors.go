package semver

import "fmt"

// MalformedVersionError is returned when a version string does not contain a
// valid numeric MAJOR.MINOR.PATCH triplet.
type MalformedVersionError struct {
	Text string
}

func (e *MalformedVersionError) Error() string {
	return fmt.Sprintf("malformed version string: %q", e.Text)
}

// UnsupportedBumpKindError is returned when a bump kind other than major,
// minor or patch is requested.
type UnsupportedBumpKindError struct {
	Kind string
}

func (e *UnsupportedBumpKindError) Error() string {
	return fmt.Sprintf("unsupported bump kind: %q", e.Kind)
}

// NotAPrereleaseError is returned when finalizing a version that does not
// carry a pre-release marker.
type NotAPrereleaseError struct {
	Version string
}

func (e *NotAPrereleaseError) Error() string {
	return fmt.Sprintf("version %s is not a pre-release", e.Version)
}
