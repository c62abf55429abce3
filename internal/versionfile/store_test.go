package versionfile

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/syntonize/corekit/internal/configuration"
)

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	return path
}

func testVersionFiles(t *testing.T, descriptorVersion, metadataVersion string) *configuration.VersionFiles {
	t.Helper()
	tmpDir := t.TempDir()

	descriptor := writeTestFile(t, tmpDir, "package.yaml",
		"name: corekit\nversion: "+descriptorVersion+"\ndescription: common functions for all developers\n")
	metadata := writeTestFile(t, tmpDir, "build.yaml",
		"build:\n  version: \""+metadataVersion+"\"\n  goVersion: \"1.24\"\n")

	return &configuration.VersionFiles{
		PackageDescriptor: &configuration.VersionFile{File: descriptor, YamlPath: "version"},
		BuildMetadata:     &configuration.VersionFile{File: metadata, YamlPath: "build.version"},
	}
}

func TestStoreReadVersion(t *testing.T) {
	config := testVersionFiles(t, "1.4.2", "1.4.2")

	store, err := NewStore(config)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	version, err := store.ReadVersion()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if version != "1.4.2" {
		t.Errorf("Expected 1.4.2, got %s", version)
	}
}

func TestStoreReadVersionMismatch(t *testing.T) {
	config := testVersionFiles(t, "1.4.2", "1.4.1")

	store, err := NewStore(config)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	_, err = store.ReadVersion()
	if err == nil {
		t.Fatalf("Expected error but got none")
	}

	var mismatch *VersionMismatchError
	if !errors.As(err, &mismatch) {
		t.Errorf("Expected VersionMismatchError, got: %v", err)
	}
}

func TestStoreWriteVersion(t *testing.T) {
	config := testVersionFiles(t, "1.4.2", "1.4.2")

	store, err := NewStore(config)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if err := store.WriteVersion("1.5.0b0"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	version, err := store.ReadVersion()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if version != "1.5.0b0" {
		t.Errorf("Expected 1.5.0b0, got %s", version)
	}

	// Surrounding content must survive the write untouched
	descriptorContent, err := os.ReadFile(config.PackageDescriptor.File)
	if err != nil {
		t.Fatalf("Failed to read descriptor: %v", err)
	}
	if !strings.Contains(string(descriptorContent), "description: common functions for all developers") {
		t.Errorf("Descriptor content damaged by write:\n%s", descriptorContent)
	}
	if !strings.Contains(string(descriptorContent), "version: 1.5.0b0") {
		t.Errorf("Descriptor missing new version:\n%s", descriptorContent)
	}

	// Quoting style of the metadata value must be preserved
	metadataContent, err := os.ReadFile(config.BuildMetadata.File)
	if err != nil {
		t.Fatalf("Failed to read metadata: %v", err)
	}
	if !strings.Contains(string(metadataContent), `version: "1.5.0b0"`) {
		t.Errorf("Metadata missing quoted new version:\n%s", metadataContent)
	}
	if !strings.Contains(string(metadataContent), `goVersion: "1.24"`) {
		t.Errorf("Metadata content damaged by write:\n%s", metadataContent)
	}
}

func TestStoreWriteThenReadRoundTrip(t *testing.T) {
	config := testVersionFiles(t, "0.5.0", "0.5.0")

	store, err := NewStore(config)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	versions := []string{"0.6.0b0", "0.6.0", "1.0.0b0", "1.0.0"}
	for _, version := range versions {
		if err := store.WriteVersion(version); err != nil {
			t.Fatalf("Write %s failed: %v", version, err)
		}
		got, err := store.ReadVersion()
		if err != nil {
			t.Fatalf("Read after write %s failed: %v", version, err)
		}
		if got != version {
			t.Errorf("Expected %s, got %s", version, got)
		}
	}
}

func TestNewStoreMissingFile(t *testing.T) {
	config := &configuration.VersionFiles{
		PackageDescriptor: &configuration.VersionFile{File: "/nonexistent/package.yaml", YamlPath: "version"},
		BuildMetadata:     &configuration.VersionFile{File: "/nonexistent/build.yaml", YamlPath: "build.version"},
	}

	_, err := NewStore(config)
	if err == nil {
		t.Fatalf("Expected error but got none")
	}

	var notFound *FileNotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("Expected FileNotFoundError, got: %v", err)
	}
}

func TestNewStoreMissingField(t *testing.T) {
	tmpDir := t.TempDir()
	descriptor := writeTestFile(t, tmpDir, "package.yaml", "name: corekit\nversion: 1.0.0\n")
	metadata := writeTestFile(t, tmpDir, "build.yaml", "build:\n  goVersion: \"1.24\"\n")

	config := &configuration.VersionFiles{
		PackageDescriptor: &configuration.VersionFile{File: descriptor, YamlPath: "version"},
		BuildMetadata:     &configuration.VersionFile{File: metadata, YamlPath: "build.version"},
	}

	store, err := NewStore(config)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	_, err = store.ReadVersion()
	if err == nil {
		t.Fatalf("Expected error but got none")
	}

	var fieldNotFound *FieldNotFoundError
	if !errors.As(err, &fieldNotFound) {
		t.Errorf("Expected FieldNotFoundError, got: %v", err)
	}
}
