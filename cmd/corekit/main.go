package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/syntonize/corekit/internal/configuration"
	"github.com/syntonize/corekit/internal/executor"
	"github.com/syntonize/corekit/internal/git"
	"github.com/syntonize/corekit/internal/release"
	"github.com/syntonize/corekit/internal/semver"
	"github.com/syntonize/corekit/internal/telemetry"
	"github.com/syntonize/corekit/internal/util"
	"github.com/syntonize/corekit/internal/versionfile"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

var version = "development"

func main() {

	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{},
		Usage:   "print only the version",
	}

	configFlag := &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   ".corekitrelease.yml",
		Sources: cli.EnvVars("COREKIT_CONFIG"),
	}

	cmd := &cli.Command{
		Name:    "corekit",
		Version: version,
		Usage:   "Release pipeline automation",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "debug output",
				Sources: cli.EnvVars("COREKIT_VERBOSE"),
			},
			&cli.BoolFlag{
				Name:    "very-verbose",
				Aliases: []string{"vv"},
				Usage:   "trace output",
				Sources: cli.EnvVars("COREKIT_VERY_VERBOSE"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			return initCli(ctx, cmd)
		},
		Commands: []*cli.Command{
			{
				Name:  "validate",
				Usage: "Validate configuration",
				Flags: []cli.Flag{
					configFlag,
					&cli.StringFlag{
						Name:  "output",
						Usage: "Output format: table, json, yaml",
						Value: "table",
					},
				},
				Action: validateCommand,
			},
			{
				Name:  "release",
				Usage: "Plan and run release pipeline stages",
				Commands: []*cli.Command{
					{
						Name:  "plan",
						Usage: "Show the actions a pipeline invocation would perform",
						Flags: []cli.Flag{
							configFlag,
							&cli.StringFlag{
								Name:    "branch",
								Aliases: []string{"b"},
								Usage:   "Branch the trigger fired on (default: current branch)",
								Sources: cli.EnvVars("COREKIT_BRANCH"),
							},
							&cli.StringFlag{
								Name:    "event",
								Usage:   "Trigger event: push, pull-request",
								Value:   "push",
								Sources: cli.EnvVars("COREKIT_EVENT"),
							},
							&cli.StringFlag{
								Name:  "bump",
								Usage: "Version component to bump on develop: major, minor, patch",
							},
							&cli.StringFlag{
								Name:  "output",
								Usage: "Output format: table, json, yaml",
								Value: "table",
							},
						},
						Action: planCommand,
					},
					{
						Name:  "run",
						Usage: "Execute the pipeline stage for the current branch",
						Flags: []cli.Flag{
							configFlag,
							&cli.StringFlag{
								Name:    "branch",
								Aliases: []string{"b"},
								Usage:   "Branch the trigger fired on (default: current branch)",
								Sources: cli.EnvVars("COREKIT_BRANCH"),
							},
							&cli.StringFlag{
								Name:    "event",
								Usage:   "Trigger event: push, pull-request",
								Value:   "push",
								Sources: cli.EnvVars("COREKIT_EVENT"),
							},
							&cli.StringFlag{
								Name:  "bump",
								Usage: "Version component to bump on develop: major, minor, patch",
							},
							&cli.StringFlag{
								Name:  "path",
								Usage: "Path inside the git repository to operate on",
								Value: ".",
							},
						},
						Action: runCommand,
					},
				},
			},
			{
				Name:  "version",
				Usage: "Inspect and mutate the recorded project version",
				Commands: []*cli.Command{
					{
						Name:   "inspect",
						Usage:  "Print the version recorded in the version files",
						Flags:  []cli.Flag{configFlag},
						Action: versionInspectCommand,
					},
					{
						Name:  "bump",
						Usage: "Bump the recorded version to the next pre-release",
						Flags: []cli.Flag{
							configFlag,
							&cli.StringFlag{
								Name:  "kind",
								Usage: "Version component to bump: major, minor, patch",
								Value: string(semver.DefaultBumpKind),
							},
						},
						Action: versionBumpCommand,
					},
					{
						Name:   "finalize",
						Usage:  "Strip the pre-release marker from the recorded version",
						Flags:  []cli.Flag{configFlag},
						Action: versionFinalizeCommand,
					},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("command terminated with error")
	}
}

func initCli(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	godotenv.Load()
	util.SetCliLoggerDefaults()
	util.SetCliLogLevel(cmd)
	log.Trace().Msg("Trace logging enabled")
	log.Debug().Msg("Debug logging enabled")

	return ctx, nil
}

// loadValidatedConfiguration loads the configuration and fails the command
// with exit code 3 on load or validation errors
func loadValidatedConfiguration(configPath string) (*configuration.Config, error) {
	log.Debug().Str("config", configPath).Msg("Loading configuration")

	config, err := configuration.LoadConfiguration(configPath)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return nil, cli.Exit(fmt.Sprintf("Configuration load error: %v", err), 3)
	}

	validationResult := configuration.ValidateConfiguration(config)
	if !validationResult.Valid {
		for _, validationErr := range validationResult.Errors {
			log.Error().Str("field", validationErr.Field).Msg(validationErr.Message)
		}
		return nil, cli.Exit("Configuration validation failed", 3)
	}

	return config, nil
}

func validateCommand(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	outputFormat := cmd.String("output")

	config, err := configuration.LoadConfiguration(configPath)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return cli.Exit(fmt.Sprintf("Configuration load error: %v", err), 3)
	}

	validationResult := configuration.ValidateConfiguration(config)

	if err := outputValidationResult(validationResult, outputFormat); err != nil {
		log.Error().Err(err).Msg("Failed to output validation results")
		return cli.Exit(fmt.Sprintf("Output error: %v", err), 1)
	}

	if !validationResult.Valid {
		return cli.Exit("Configuration validation failed", 3)
	}

	log.Info().Msg("Configuration is valid")
	return nil
}

func outputValidationResult(result *configuration.ValidationResult, format string) error {
	switch format {
	case "table":
		return outputValidationTable(result)
	case "json":
		return encodeJSON(validationOutput(result))
	case "yaml":
		return encodeYAML(validationOutput(result))
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

func validationOutput(result *configuration.ValidationResult) map[string]interface{} {
	return map[string]interface{}{
		"valid":      result.Valid,
		"errorCount": len(result.Errors),
		"errors":     result.Errors,
	}
}

func outputValidationTable(result *configuration.ValidationResult) error {
	if result.Valid {
		fmt.Println("✓ Configuration is valid")
		return nil
	}

	fmt.Println("✗ Configuration validation failed:")
	fmt.Println()
	for _, err := range result.Errors {
		fmt.Printf("  • %s\n", err.Error())
	}
	fmt.Printf("\nTotal errors: %d\n", len(result.Errors))
	return nil
}

// buildInvocation assembles the engine invocation from command flags and the
// version currently recorded in the version files
func buildInvocation(cmd *cli.Command, config *configuration.Config, store *versionfile.Store, currentBranch string) (*release.Invocation, error) {
	branch := cmd.String("branch")
	if branch == "" {
		branch = currentBranch
	}
	if branch == "" {
		return nil, cli.Exit("No branch given and none detected", 1)
	}

	event := release.Event(cmd.String("event"))
	switch event {
	case release.EventPush, release.EventPullRequest:
	default:
		return nil, cli.Exit(fmt.Sprintf("Unsupported event %q (expected push or pull-request)", event), 1)
	}

	bumpKind := semver.BumpKind(cmd.String("bump"))
	if bumpKind == "" && config.Pipeline != nil {
		bumpKind = semver.BumpKind(config.Pipeline.DefaultBumpKind)
	}

	currentVersion, err := store.ReadVersion()
	if err != nil {
		log.Error().Err(err).Msg("Failed to read current version")
		return nil, cli.Exit(fmt.Sprintf("Version read error: %v", err), 1)
	}

	return &release.Invocation{
		Branch:         branch,
		Event:          event,
		CurrentVersion: currentVersion,
		BumpKind:       bumpKind,
	}, nil
}

func planCommand(ctx context.Context, cmd *cli.Command) error {
	config, err := loadValidatedConfiguration(cmd.String("config"))
	if err != nil {
		return err
	}

	store, err := versionfile.NewStore(config.VersionFiles)
	if err != nil {
		log.Error().Err(err).Msg("Failed to open version files")
		return cli.Exit(fmt.Sprintf("Version file error: %v", err), 1)
	}

	currentBranch := ""
	repo := git.NewRepository("", config.TargetActor)
	if err := repo.DetectRepository("."); err == nil {
		currentBranch = repo.BranchName
	}

	invocation, err := buildInvocation(cmd, config, store, currentBranch)
	if err != nil {
		return err
	}

	engine := release.NewEngine(config)
	actions, err := engine.Plan(invocation)
	if err != nil {
		log.Error().Err(err).Msg("Failed to plan pipeline invocation")
		return cli.Exit(fmt.Sprintf("Planning error: %v", err), 1)
	}

	if err := outputPlan(invocation, actions, cmd.String("output")); err != nil {
		log.Error().Err(err).Msg("Failed to output plan")
		return cli.Exit(fmt.Sprintf("Output error: %v", err), 1)
	}

	return nil
}

func outputPlan(invocation *release.Invocation, actions []*release.Action, format string) error {
	switch format {
	case "table":
		return outputPlanTable(invocation, actions)
	case "json":
		return encodeJSON(planOutput(invocation, actions))
	case "yaml":
		return encodeYAML(planOutput(invocation, actions))
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

func planOutput(invocation *release.Invocation, actions []*release.Action) map[string]interface{} {
	return map[string]interface{}{
		"branch":         invocation.Branch,
		"event":          string(invocation.Event),
		"currentVersion": invocation.CurrentVersion,
		"actions":        actions,
	}
}

func outputPlanTable(invocation *release.Invocation, actions []*release.Action) error {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("🚀 Release Plan")
	t.AppendHeader(table.Row{"Step", "Action", "Details"})

	for i, action := range actions {
		t.AppendRow(table.Row{i + 1, string(action.Kind), action.Describe()})
	}

	t.SetStyle(table.StyleRounded)
	t.Render()
	fmt.Printf("\nBranch: %s, event: %s, current version: %s\n",
		invocation.Branch, invocation.Event, invocation.CurrentVersion)

	return nil
}

func runCommand(ctx context.Context, cmd *cli.Command) error {
	config, err := loadValidatedConfiguration(cmd.String("config"))
	if err != nil {
		return err
	}

	shutdown, err := telemetry.Setup(ctx, config.Telemetry)
	if err != nil {
		log.Warn().Err(err).Msg("Telemetry setup failed, continuing without tracing")
	} else {
		defer func() {
			if err := shutdown(ctx); err != nil {
				log.Warn().Err(err).Msg("Telemetry shutdown failed")
			}
		}()
	}

	repo := git.NewRepository("", config.TargetActor)
	if err := repo.DetectRepository(cmd.String("path")); err != nil {
		log.Error().Err(err).Msg("Failed to detect git repository")
		return cli.Exit(fmt.Sprintf("Repository error: %v", err), 1)
	}

	store, err := versionfile.NewStore(config.VersionFiles)
	if err != nil {
		log.Error().Err(err).Msg("Failed to open version files")
		return cli.Exit(fmt.Sprintf("Version file error: %v", err), 1)
	}

	invocation, err := buildInvocation(cmd, config, store, repo.BranchName)
	if err != nil {
		return err
	}

	engine := release.NewEngine(config)
	actions, err := engine.Plan(invocation)
	if err != nil {
		log.Error().Err(err).Msg("Failed to plan pipeline invocation")
		return cli.Exit(fmt.Sprintf("Planning error: %v", err), 1)
	}

	log.Info().
		Str("branch", invocation.Branch).
		Str("event", string(invocation.Event)).
		Int("actions", len(actions)).
		Msg("Executing pipeline stage")

	spanCtx, span := telemetry.Tracer().Start(ctx, "release.run")
	defer span.End()

	if err := executor.New(config, store, repo).Execute(spanCtx, actions); err != nil {
		span.RecordError(err)
		log.Error().Err(err).Msg("Pipeline stage failed")
		return cli.Exit(fmt.Sprintf("Execution error: %v", err), 1)
	}

	log.Info().Msg("Pipeline stage completed")
	return nil
}

func versionInspectCommand(ctx context.Context, cmd *cli.Command) error {
	config, err := loadValidatedConfiguration(cmd.String("config"))
	if err != nil {
		return err
	}

	store, err := versionfile.NewStore(config.VersionFiles)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Version file error: %v", err), 1)
	}

	currentVersion, err := store.ReadVersion()
	if err != nil {
		return cli.Exit(fmt.Sprintf("Version read error: %v", err), 1)
	}

	fmt.Println(currentVersion)
	return nil
}

func versionBumpCommand(ctx context.Context, cmd *cli.Command) error {
	return mutateVersion(cmd, func(current semver.Version) (semver.Version, error) {
		if current.IsPrerelease() {
			return semver.Version{}, fmt.Errorf("version %s is already a pre-release, finalize it first", current)
		}
		return semver.Bump(current, semver.BumpKind(cmd.String("kind")))
	})
}

func versionFinalizeCommand(ctx context.Context, cmd *cli.Command) error {
	return mutateVersion(cmd, semver.Finalize)
}

func mutateVersion(cmd *cli.Command, mutate func(semver.Version) (semver.Version, error)) error {
	config, err := loadValidatedConfiguration(cmd.String("config"))
	if err != nil {
		return err
	}

	store, err := versionfile.NewStore(config.VersionFiles)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Version file error: %v", err), 1)
	}

	currentVersion, err := store.ReadVersion()
	if err != nil {
		return cli.Exit(fmt.Sprintf("Version read error: %v", err), 1)
	}

	current, err := semver.Parse(currentVersion)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Version parse error: %v", err), 1)
	}

	next, err := mutate(current)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Version error: %v", err), 1)
	}

	if err := store.WriteVersion(next.String()); err != nil {
		return cli.Exit(fmt.Sprintf("Version write error: %v", err), 1)
	}

	log.Info().Str("from", current.String()).Str("to", next.String()).Msg("Version updated")
	fmt.Println(next)
	return nil
}

func encodeJSON(output any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func encodeYAML(output any) error {
	encoder := yaml.NewEncoder(os.Stdout)
	encoder.SetIndent(2)
	return encoder.Encode(output)
}
