package cli

import (
	"crypto/rand"
	"fmt"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/opaline-dev/troupe/internal/checkpoint"
	"github.com/opaline-dev/troupe/internal/config"
	"github.com/opaline-dev/troupe/internal/graph"
	"github.com/opaline-dev/troupe/internal/llm"
	"github.com/opaline-dev/troupe/internal/logging"
	"github.com/opaline-dev/troupe/internal/role"
	"github.com/opaline-dev/troupe/internal/skill"
)

// app bundles the wiring every subcommand needs.
type app struct {
	projectDir string
	cfg        config.Config
	logger     *logging.Logger
	skills     *skill.Registry
	roles      *role.Registry
	saver      *checkpoint.SQLiteSaver
}

// newApp loads configuration and constructs the shared components for the
// given command invocation.
func newApp(cmd *cobra.Command) (*app, error) {
	projectDir, err := cmd.Flags().GetString("project")
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(projectDir)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(projectDir)
	if err != nil {
		return nil, err
	}

	provider, err := buildProvider(cfg.LLM)
	if err != nil {
		logger.Close()
		return nil, err
	}
	store := skill.NewStore(afero.NewOsFs(), filepath.Join(projectDir, filepath.FromSlash(cfg.Skills.Dir)))
	skills := skill.NewRegistry(store)
	saver, err := checkpoint.NewSQLiteSaver(filepath.Join(projectDir, filepath.FromSlash(cfg.Checkpoints.Path)))
	if err != nil {
		logger.Close()
		return nil, err
	}
	return &app{
		projectDir: projectDir,
		cfg:        cfg,
		logger:     logger,
		skills:     skills,
		roles:      role.Default(provider, skills),
		saver:      saver,
	}, nil
}

func (a *app) Close() {
	if a.saver != nil {
		a.saver.Close()
	}
	a.logger.Close()
}

// runner builds the configured workflow runner: fixed pipeline by default,
// orchestrator-driven when the config or flag asks for it.
func (a *app) runner(dynamic bool, interrupt bool) (*graph.Runner, error) {
	var (
		g   *graph.Graph
		err error
	)
	if dynamic || a.cfg.Workflow.Mode == "orchestrated" {
		router := graph.NewRouter().WithRouterLogger(a.logger)
		g, err = graph.Orchestrated(a.roles, router)
	} else {
		g, err = graph.Pipeline(a.roles)
	}
	if err != nil {
		return nil, err
	}
	opts := []graph.Option{graph.WithLogger(a.logger)}
	if a.cfg.Workflow.MaxSteps > 0 {
		opts = append(opts, graph.WithMaxSteps(a.cfg.Workflow.MaxSteps))
	}
	if interrupt && len(a.cfg.Workflow.InterruptBefore) > 0 {
		opts = append(opts, graph.WithInterruptBefore(a.cfg.Workflow.InterruptBefore...))
	}
	return graph.NewRunner(g, a.saver, opts...)
}

func buildProvider(cfg config.LLMConfig) (llm.Provider, error) {
	switch cfg.Provider {
	case "", "none":
		// Deterministic fallback strategies throughout.
		return nil, nil
	case "openai":
		return llm.NewOpenAI(cfg.APIKey(), cfg.Model, cfg.BaseURL)
	case "ollama":
		return llm.NewOllama(cfg.Model, cfg.BaseURL)
	default:
		return nil, fmt.Errorf("cli: unknown llm provider %q", cfg.Provider)
	}
}

// newRunID mints a sortable run identifier.
func newRunID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}
