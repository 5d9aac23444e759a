package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/PlashSpeed-Aiman/palma-cli/internal/annotations"
	"github.com/PlashSpeed-Aiman/palma-cli/internal/api"
	"github.com/PlashSpeed-Aiman/palma-cli/internal/auth"
	"github.com/PlashSpeed-Aiman/palma-cli/internal/config"
	"github.com/PlashSpeed-Aiman/palma-cli/internal/detect"
	"github.com/PlashSpeed-Aiman/palma-cli/internal/session"
)

// App bundles the configured client stack. It is built per invocation and
// passed to commands explicitly; there is no package-level session state.
type App struct {
	Config      *config.Config
	Tokens      *session.Store
	Client      *api.Client
	Auth        *auth.Gateway
	Annotations *annotations.Gateway
	Workflow    *detect.Workflow
}

// appFactory defers construction until a command actually runs, so flag and
// env overrides are in effect.
type appFactory func() (*App, error)

func NewRootCmd() *cobra.Command {
	var configPath string
	var apiURL string

	cmd := &cobra.Command{
		Use:   "palma",
		Short: "Palm tree detection client for aerial imagery",
		Long: `Palma is a client for a palm-tree detection backend.

It uploads aerial imagery for analysis, polls for annotated results, and
manages a history of saved annotations. Detection runs entirely on the
remote service; this tool is the cockpit.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file")
	cmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend API base URL (overrides config and PALMA_API_URL)")

	newApp := func() (*App, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		if apiURL != "" {
			cfg.APIBaseURL = apiURL
		}

		tokens := session.New(cfg.TokenFile)
		client := api.NewClient(cfg.APIBaseURL, tokens)
		return &App{
			Config:      cfg,
			Tokens:      tokens,
			Client:      client,
			Auth:        auth.NewGateway(client, tokens),
			Annotations: annotations.NewGateway(client),
			Workflow:    detect.NewWorkflow(client, cfg.PollInterval, cfg.PollAttempts),
		}, nil
	}

	// Add subcommands
	cmd.AddCommand(newLoginCmd(newApp))
	cmd.AddCommand(newRegisterCmd(newApp))
	cmd.AddCommand(newLogoutCmd(newApp))
	cmd.AddCommand(newWhoamiCmd(newApp))
	cmd.AddCommand(newProfileCmd(newApp))
	cmd.AddCommand(newAnalyzeCmd(newApp))
	cmd.AddCommand(newAnnotationsCmd(newApp))
	cmd.AddCommand(newMapCmd(newApp))
	cmd.AddCommand(newServeCmd(newApp))

	return cmd
}
