package configuration

import (
	"fmt"
	"strings"
)

// ValidationError describes a single problem with a configuration field
type ValidationError struct {
	Field   string `yaml:"field" json:"field"`
	Message string `yaml:"message" json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationResult collects all validation errors for a configuration
type ValidationResult struct {
	Valid  bool               `yaml:"valid" json:"valid"`
	Errors []*ValidationError `yaml:"errors" json:"errors"`
}

func (r *ValidationResult) addError(field, message string) {
	r.Errors = append(r.Errors, &ValidationError{Field: field, Message: message})
}

// ValidateConfiguration checks the release configuration for completeness.
// The version files and the target actor are mandatory; commands and notify
// are optional but must be well-formed when present.
func ValidateConfiguration(config *Config) *ValidationResult {
	result := &ValidationResult{}

	validateVersionFiles(config, result)
	validateTargetActor(config, result)
	validatePipeline(config, result)
	validateNotify(config, result)

	result.Valid = len(result.Errors) == 0
	return result
}

func validateVersionFiles(config *Config, result *ValidationResult) {
	if config.VersionFiles == nil {
		result.addError("versionFiles", "versionFiles section is required")
		return
	}

	validateVersionFile(config.VersionFiles.PackageDescriptor, "versionFiles.packageDescriptor", result)
	validateVersionFile(config.VersionFiles.BuildMetadata, "versionFiles.buildMetadata", result)

	if config.VersionFiles.PackageDescriptor != nil && config.VersionFiles.BuildMetadata != nil {
		if config.VersionFiles.PackageDescriptor.File == config.VersionFiles.BuildMetadata.File &&
			config.VersionFiles.PackageDescriptor.YamlPath == config.VersionFiles.BuildMetadata.YamlPath {
			result.addError("versionFiles", "packageDescriptor and buildMetadata must be distinct locations")
		}
	}
}

func validateVersionFile(file *VersionFile, field string, result *ValidationResult) {
	if file == nil {
		result.addError(field, "section is required")
		return
	}
	if file.File == "" {
		result.addError(field+".file", "file path is required")
	}
	if file.YamlPath == "" {
		result.addError(field+".yamlPath", "yamlPath is required")
	}
}

func validateTargetActor(config *Config, result *ValidationResult) {
	if config.TargetActor == nil {
		result.addError("targetActor", "targetActor section is required")
		return
	}
	if config.TargetActor.Name == "" {
		result.addError("targetActor.name", "name is required")
	}
	if config.TargetActor.Email == "" {
		result.addError("targetActor.email", "email is required")
	}
}

func validatePipeline(config *Config, result *ValidationResult) {
	if config.Pipeline == nil {
		return
	}

	switch config.Pipeline.DefaultBumpKind {
	case "", "major", "minor", "patch":
	default:
		result.addError("pipeline.defaultBumpKind",
			fmt.Sprintf("unsupported bump kind %q (expected major, minor or patch)", config.Pipeline.DefaultBumpKind))
	}

	if prefix := config.Pipeline.ReleaseBranchPrefix; prefix != "" && !strings.HasSuffix(prefix, "/") {
		result.addError("pipeline.releaseBranchPrefix", "release branch prefix must end with '/'")
	}

	if config.Pipeline.DevelopBranch != "" && config.Pipeline.DevelopBranch == config.Pipeline.MainBranch {
		result.addError("pipeline", "developBranch and mainBranch must differ")
	}
}

func validateNotify(config *Config, result *ValidationResult) {
	if config.Notify == nil {
		return
	}
	if config.Notify.WebhookURL == "" {
		result.addError("notify.webhookUrl", "webhookUrl is required when notify is configured")
	} else if !strings.HasPrefix(config.Notify.WebhookURL, "http://") && !strings.HasPrefix(config.Notify.WebhookURL, "https://") {
		result.addError("notify.webhookUrl", "webhookUrl must be an http(s) URL")
	}
}
