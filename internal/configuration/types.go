package configuration

// Config is the root of the release configuration, loaded from
// .corekitrelease.yml (or a directory of .yml fragments).
type Config struct {
	Pipeline     *Pipeline     `yaml:"pipeline,omitempty"`
	VersionFiles *VersionFiles `yaml:"versionFiles"`
	Commands     *Commands     `yaml:"commands,omitempty"`
	TargetActor  *TargetActor  `yaml:"targetActor,omitempty"`
	Notify       *Notify       `yaml:"notify,omitempty"`
	Telemetry    *Telemetry    `yaml:"telemetry,omitempty"`
}

// Pipeline configures the branch layout of the promotion pipeline.
type Pipeline struct {
	DevelopBranch       string `yaml:"developBranch,omitempty"`       // defaults to "develop"
	MainBranch          string `yaml:"mainBranch,omitempty"`          // defaults to "main"
	ReleaseBranchPrefix string `yaml:"releaseBranchPrefix,omitempty"` // defaults to "release/"
	DefaultBumpKind     string `yaml:"defaultBumpKind,omitempty"`     // defaults to "minor"
}

// VersionFiles names the two artifacts that must agree bit-for-bit on the
// recorded version string.
type VersionFiles struct {
	PackageDescriptor *VersionFile `yaml:"packageDescriptor"`
	BuildMetadata     *VersionFile `yaml:"buildMetadata"`
}

// VersionFile points at a YAML scalar holding the version string.
type VersionFile struct {
	File     string `yaml:"file"`
	YamlPath string `yaml:"yamlPath"`
}

// Commands are the external commands the executor shells out to. Each is a
// single command line run through the platform shell.
type Commands struct {
	Test    string `yaml:"test,omitempty"`
	Build   string `yaml:"build,omitempty"`
	Publish string `yaml:"publish,omitempty"`
}

// TargetActor identifies the automation account used for commits, tags and
// merge requests.
type TargetActor struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Username string `yaml:"username"`
	Token    string `yaml:"token,omitempty"`
}

// Notify configures the best-effort webhook fired after a pipeline stage.
type Notify struct {
	WebhookURL string `yaml:"webhookUrl"`
}

// Telemetry configures the optional OTLP trace export. An empty endpoint
// leaves console logging as the only output.
type Telemetry struct {
	OTLPEndpoint string `yaml:"otlpEndpoint,omitempty"`
	ServiceName  string `yaml:"serviceName,omitempty"`
}

// DevelopBranchName returns the configured develop branch or the default.
func (c *Config) DevelopBranchName() string {
	if c.Pipeline != nil && c.Pipeline.DevelopBranch != "" {
		return c.Pipeline.DevelopBranch
	}
	return "develop"
}

// MainBranchName returns the configured main branch or the default.
func (c *Config) MainBranchName() string {
	if c.Pipeline != nil && c.Pipeline.MainBranch != "" {
		return c.Pipeline.MainBranch
	}
	return "main"
}

// ReleasePrefix returns the configured release branch prefix or the default.
func (c *Config) ReleasePrefix() string {
	if c.Pipeline != nil && c.Pipeline.ReleaseBranchPrefix != "" {
		return c.Pipeline.ReleaseBranchPrefix
	}
	return "release/"
}
