package versionfile

import "fmt"

// FileNotFoundError is returned when a version artifact is not found
type FileNotFoundError struct {
	Path string
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("version file not found: %s", e.Path)
}

// FieldNotFoundError is returned when the version field is missing from an artifact
type FieldNotFoundError struct {
	Path string
	File string
}

func (e *FieldNotFoundError) Error() string {
	return fmt.Sprintf("yaml path '%s' not found in file: %s", e.Path, e.File)
}

// VersionMismatchError is returned when the two version artifacts disagree on
// the recorded version string. They must agree bit-for-bit at all times.
type VersionMismatchError struct {
	DescriptorFile    string
	DescriptorVersion string
	MetadataFile      string
	MetadataVersion   string
}

func (e *VersionMismatchError) Error() string {
	return fmt.Sprintf("version files disagree: %s has %q, %s has %q",
		e.DescriptorFile, e.DescriptorVersion, e.MetadataFile, e.MetadataVersion)
}
