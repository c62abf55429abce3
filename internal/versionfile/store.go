package versionfile

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/syntonize/corekit/internal/configuration"
)

// Store manages the two artifacts that record the project version: the
// package descriptor and the build-metadata file. Reads verify that both
// agree bit-for-bit; writes land in both files or in neither.
type Store struct {
	descriptor *Artifact
	metadata   *Artifact
}

// NewStore opens both version artifacts from the configuration
func NewStore(config *configuration.VersionFiles) (*Store, error) {
	if config == nil || config.PackageDescriptor == nil || config.BuildMetadata == nil {
		return nil, fmt.Errorf("versionFiles configuration is incomplete")
	}

	descriptor, err := NewArtifact(config.PackageDescriptor.File, config.PackageDescriptor.YamlPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open package descriptor: %w", err)
	}

	metadata, err := NewArtifact(config.BuildMetadata.File, config.BuildMetadata.YamlPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open build metadata: %w", err)
	}

	return &Store{
		descriptor: descriptor,
		metadata:   metadata,
	}, nil
}

// ReadVersion returns the version string both artifacts agree on
func (s *Store) ReadVersion() (string, error) {
	descriptorVersion, err := s.descriptor.ReadVersion()
	if err != nil {
		return "", err
	}

	metadataVersion, err := s.metadata.ReadVersion()
	if err != nil {
		return "", err
	}

	if descriptorVersion != metadataVersion {
		return "", &VersionMismatchError{
			DescriptorFile:    s.descriptor.File(),
			DescriptorVersion: descriptorVersion,
			MetadataFile:      s.metadata.File(),
			MetadataVersion:   metadataVersion,
		}
	}

	return descriptorVersion, nil
}

// WriteVersion records a new version in both artifacts. The new contents are
// staged in memory first; nothing is written unless both stagings succeed.
// If the second flush fails after the first landed, the first file is
// restored from its previous contents.
func (s *Store) WriteVersion(version string) error {
	log.Debug().
		Str("version", version).
		Str("descriptor", s.descriptor.File()).
		Str("metadata", s.metadata.File()).
		Msg("Writing version to artifacts")

	stagedDescriptor, err := s.descriptor.stageVersion(version)
	if err != nil {
		return fmt.Errorf("failed to stage package descriptor: %w", err)
	}

	stagedMetadata, err := s.metadata.stageVersion(version)
	if err != nil {
		return fmt.Errorf("failed to stage build metadata: %w", err)
	}

	previousDescriptor := s.descriptor.fileContents

	if err := s.descriptor.flush(stagedDescriptor); err != nil {
		return fmt.Errorf("failed to write package descriptor: %w", err)
	}

	if err := s.metadata.flush(stagedMetadata); err != nil {
		// Restore the descriptor so the two files cannot disagree
		if restoreErr := os.WriteFile(s.descriptor.File(), []byte(previousDescriptor), 0644); restoreErr != nil {
			log.Error().
				Err(restoreErr).
				Str("file", s.descriptor.File()).
				Msg("Failed to restore package descriptor after metadata write failure")
			return fmt.Errorf("failed to write build metadata and could not restore descriptor: %w", err)
		}
		s.descriptor.fileContents = previousDescriptor
		if reparseErr := s.descriptor.reparseNodes(); reparseErr != nil {
			log.Warn().Err(reparseErr).Msg("Failed to re-parse restored package descriptor")
		}
		return fmt.Errorf("failed to write build metadata: %w", err)
	}

	log.Debug().Str("version", version).Msg("Version written to both artifacts")

	return nil
}

// Files returns the paths of both artifacts, descriptor first. The executor
// stages exactly these files when committing a version change.
func (s *Store) Files() []string {
	return []string{s.descriptor.File(), s.metadata.File()}
}
