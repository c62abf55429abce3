package configuration

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// SubstitutionContext holds the state for variable substitution
type SubstitutionContext struct {
	sopsCache map[string]map[string]interface{} // Cache for loaded SOPS files
}

// NewSubstitutionContext creates a new substitution context
func NewSubstitutionContext() *SubstitutionContext {
	return &SubstitutionContext{
		sopsCache: make(map[string]map[string]interface{}),
	}
}

var placeholderPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// SubstituteVariables replaces environment variables and SOPS references in the input string
// Supports:
// - ${VAR_NAME} for environment variables
// - ${SOPS[path/to/file.yml].yaml.path.to.value} for SOPS encrypted files
func (ctx *SubstitutionContext) SubstituteVariables(input string) (string, error) {
	result := input
	matches := placeholderPattern.FindAllStringSubmatch(input, -1)

	for _, match := range matches {
		if len(match) < 2 {
			continue
		}

		placeholder := match[0] // Full match: ${...}
		expression := match[1]  // Content inside: VAR_NAME or SOPS[...]...

		var value string
		var err error

		if strings.HasPrefix(expression, "SOPS[") {
			value, err = ctx.resolveSOPSReference(expression)
			if err != nil {
				return "", fmt.Errorf("failed to resolve SOPS reference %s: %w", placeholder, err)
			}
		} else {
			value = os.Getenv(expression)
			if value == "" {
				return "", fmt.Errorf("environment variable %s is not set", expression)
			}
		}

		result = strings.ReplaceAll(result, placeholder, value)
	}

	return result, nil
}

// SubstituteInConfig applies variable substitution to every free-text field of
// the configuration that may reference secrets or environment values.
func (ctx *SubstitutionContext) SubstituteInConfig(config *Config) error {
	fields := []*string{}

	if config.TargetActor != nil {
		fields = append(fields,
			&config.TargetActor.Name,
			&config.TargetActor.Email,
			&config.TargetActor.Username,
			&config.TargetActor.Token,
		)
	}
	if config.Commands != nil {
		fields = append(fields,
			&config.Commands.Test,
			&config.Commands.Build,
			&config.Commands.Publish,
		)
	}
	if config.Notify != nil {
		fields = append(fields, &config.Notify.WebhookURL)
	}
	if config.Telemetry != nil {
		fields = append(fields, &config.Telemetry.OTLPEndpoint)
	}

	for _, field := range fields {
		if *field == "" {
			continue
		}
		substituted, err := ctx.SubstituteVariables(*field)
		if err != nil {
			return err
		}
		*field = substituted
	}

	return nil
}

// resolveSOPSReference resolves a SOPS reference like SOPS[file.yml].path.to.value
func (ctx *SubstitutionContext) resolveSOPSReference(expression string) (string, error) {
	if !strings.HasPrefix(expression, "SOPS[") {
		return "", fmt.Errorf("invalid SOPS reference format: %s", expression)
	}

	closeBracketIdx := strings.Index(expression, "]")
	if closeBracketIdx == -1 {
		return "", fmt.Errorf("invalid SOPS reference format (missing ]): %s", expression)
	}

	filePath := expression[5:closeBracketIdx] // Extract path between SOPS[ and ]
	yamlPath := ""

	if closeBracketIdx+1 < len(expression) {
		if expression[closeBracketIdx+1] != '.' {
			return "", fmt.Errorf("invalid SOPS reference format (expected . after ]): %s", expression)
		}
		yamlPath = expression[closeBracketIdx+2:] // Skip ].
	}

	if yamlPath == "" {
		return "", fmt.Errorf("SOPS reference must include a YAML path: %s", expression)
	}

	data, err := ctx.loadSOPSFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to load SOPS file %s: %w", filePath, err)
	}

	value, err := GetYAMLValue(data, yamlPath)
	if err != nil {
		return "", fmt.Errorf("failed to access path %s in SOPS file %s: %w", yamlPath, filePath, err)
	}

	return fmt.Sprintf("%v", value), nil
}

// loadSOPSFile loads and decrypts a SOPS file, with caching
func (ctx *SubstitutionContext) loadSOPSFile(filePath string) (map[string]interface{}, error) {
	if data, ok := ctx.sopsCache[filePath]; ok {
		return data, nil
	}

	data, err := DecryptSOPSFile(filePath)
	if err != nil {
		return nil, err
	}

	ctx.sopsCache[filePath] = data
	return data, nil
}

// GetYAMLValue accesses a nested value in a map using a dot-notation path
func GetYAMLValue(data map[string]interface{}, path string) (interface{}, error) {
	segments := strings.Split(path, ".")
	var current interface{} = data

	for _, segment := range segments {
		mapping, ok := current.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("cannot navigate into non-mapping value at segment %q", segment)
		}
		value, exists := mapping[segment]
		if !exists {
			return nil, fmt.Errorf("key %q not found", segment)
		}
		current = value
	}

	return current, nil
}
