package versionfile

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Artifact is one YAML file carrying the version string at a fixed path. The
// file is edited surgically on the line holding the value, so comments and
// formatting elsewhere in the file survive a version write.
type Artifact struct {
	file         string
	yamlPath     string
	fileContents string
	rootNodes    []*yaml.Node // supports multi-document YAML
}

// NewArtifact creates an artifact handle and parses the underlying file
func NewArtifact(file, yamlPath string) (*Artifact, error) {
	if yamlPath == "" {
		return nil, fmt.Errorf("yamlPath is required for version artifact %s", file)
	}

	artifact := &Artifact{
		file:     file,
		yamlPath: yamlPath,
	}

	if err := artifact.readFile(); err != nil {
		return nil, err
	}

	return artifact, nil
}

// File returns the artifact's file path
func (a *Artifact) File() string {
	return a.file
}

// readFile reads and parses the YAML file into Node trees (supports multi-document YAML)
func (a *Artifact) readFile() error {
	content, err := os.ReadFile(a.file)
	if err != nil {
		if os.IsNotExist(err) {
			return &FileNotFoundError{Path: a.file}
		}
		return fmt.Errorf("failed to read file %s: %w", a.file, err)
	}
	a.fileContents = string(content)

	a.rootNodes = nil
	decoder := yaml.NewDecoder(strings.NewReader(a.fileContents))
	for {
		node := &yaml.Node{}
		err := decoder.Decode(node)
		if err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("failed to parse YAML file %s: %w", a.file, err)
		}
		a.rootNodes = append(a.rootNodes, node)
	}

	if len(a.rootNodes) == 0 {
		return fmt.Errorf("no YAML documents found in file %s", a.file)
	}

	return nil
}

// findNodeInDocuments searches all documents for the version field
func (a *Artifact) findNodeInDocuments() (*yaml.Node, error) {
	segments := strings.Split(a.yamlPath, ".")

	var lastErr error
	for _, root := range a.rootNodes {
		node, err := findNode(root, segments)
		if err == nil {
			return node, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// findNode walks the yaml.Node tree following the given path segments
// and returns the scalar node at the end of the path
func findNode(node *yaml.Node, segments []string) (*yaml.Node, error) {
	// The root node from the decoder is a DocumentNode wrapping the content
	current := node
	if current.Kind == yaml.DocumentNode {
		if len(current.Content) == 0 {
			return nil, fmt.Errorf("empty document")
		}
		current = current.Content[0]
	}

	for _, segment := range segments {
		switch current.Kind {
		case yaml.MappingNode:
			found := false
			// MappingNode Content is key-value pairs: [key0, val0, key1, val1, ...]
			for i := 0; i < len(current.Content)-1; i += 2 {
				keyNode := current.Content[i]
				valNode := current.Content[i+1]
				if keyNode.Value == segment {
					current = valNode
					found = true
					break
				}
			}
			if !found {
				return nil, fmt.Errorf("key '%s' not found", segment)
			}

		case yaml.SequenceNode:
			idx, err := strconv.Atoi(segment)
			if err != nil {
				return nil, fmt.Errorf("expected numeric index for sequence, got '%s'", segment)
			}
			if idx < 0 || idx >= len(current.Content) {
				return nil, fmt.Errorf("index %d out of range (length %d)", idx, len(current.Content))
			}
			current = current.Content[idx]

		default:
			return nil, fmt.Errorf("cannot navigate into %v node at segment '%s'", current.Kind, segment)
		}
	}

	return current, nil
}

// ReadVersion reads the version string from the artifact
func (a *Artifact) ReadVersion() (string, error) {
	node, err := a.findNodeInDocuments()
	if err != nil {
		return "", &FieldNotFoundError{Path: a.yamlPath, File: a.file}
	}

	if node.Kind != yaml.ScalarNode {
		return "", fmt.Errorf("yaml path '%s' in file %s points to a non-scalar node", a.yamlPath, a.file)
	}

	log.Debug().
		Str("file", a.file).
		Str("yamlPath", a.yamlPath).
		Str("version", node.Value).
		Msg("Read version from artifact")

	return node.Value, nil
}

// stageVersion computes the new file contents with the version replaced,
// without touching the file on disk. The caller flushes the staged contents
// only once all artifacts staged successfully.
func (a *Artifact) stageVersion(version string) (string, error) {
	node, err := a.findNodeInDocuments()
	if err != nil {
		return "", &FieldNotFoundError{Path: a.yamlPath, File: a.file}
	}

	if node.Kind != yaml.ScalarNode {
		return "", fmt.Errorf("yaml path '%s' in file %s points to a non-scalar node", a.yamlPath, a.file)
	}

	oldValue := node.Value

	lines := strings.Split(a.fileContents, "\n")
	// yaml.Node uses 1-based line numbers
	lineIdx := node.Line - 1
	if lineIdx < 0 || lineIdx >= len(lines) {
		return "", fmt.Errorf("yaml node line %d out of range for file %s", node.Line, a.file)
	}

	line := lines[lineIdx]

	// Preserve the quoting style of the existing value
	var searchStr, replaceStr string
	switch node.Style {
	case yaml.DoubleQuotedStyle:
		searchStr = `"` + oldValue + `"`
		replaceStr = `"` + version + `"`
	case yaml.SingleQuotedStyle:
		searchStr = `'` + oldValue + `'`
		replaceStr = `'` + version + `'`
	default:
		searchStr = oldValue
		replaceStr = version
	}

	// Column info targets the exact position on the line (1-based)
	colIdx := node.Column - 1
	if colIdx < 0 {
		colIdx = 0
	}

	var newLine string
	if colIdx < len(line) {
		prefix := line[:colIdx]
		suffix := line[colIdx:]
		newSuffix := strings.Replace(suffix, searchStr, replaceStr, 1)
		if newSuffix == suffix {
			newLine = strings.Replace(line, searchStr, replaceStr, 1)
		} else {
			newLine = prefix + newSuffix
		}
	} else {
		newLine = strings.Replace(line, searchStr, replaceStr, 1)
	}

	lines[lineIdx] = newLine
	return strings.Join(lines, "\n"), nil
}

// flush writes staged contents to disk and refreshes the parsed state
func (a *Artifact) flush(contents string) error {
	if err := os.WriteFile(a.file, []byte(contents), 0644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", a.file, err)
	}

	a.fileContents = contents
	if err := a.reparseNodes(); err != nil {
		return fmt.Errorf("failed to re-parse YAML file %s after write: %w", a.file, err)
	}

	return nil
}

// reparseNodes re-parses the file contents into YAML node trees
func (a *Artifact) reparseNodes() error {
	a.rootNodes = nil
	decoder := yaml.NewDecoder(strings.NewReader(a.fileContents))
	for {
		node := &yaml.Node{}
		err := decoder.Decode(node)
		if err != nil {
			if err == io.EOF {
				break
			}
			return err
		}
		a.rootNodes = append(a.rootNodes, node)
	}
	return nil
}
