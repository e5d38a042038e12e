package commands

import (
	"context"

	"deliverycore/internal/config"
	"deliverycore/internal/logging"
	"deliverycore/internal/mcpserver"
	"deliverycore/internal/rules"
	"deliverycore/internal/source"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose bool
	cfg     *config.AppConfig
	loader  source.Loader
	engine  *rules.Engine
)

var rootCmd = &cobra.Command{
	Use:   "deliverycore-mcp",
	Short: "deliverycore-mcp is an MCP server for project-delivery forecasting and decision-risk rules",
	Long: `A deterministic MCP server that answers two coupled questions about a portfolio of
work items and milestones: the probabilistic completion date of each milestone, and
the commands a discrete event (a blocked dependency, an approved decision) must trigger.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(verbose)

		var err error
		cfg, err = config.Load()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load configuration")
		}

		loader = source.FromConfig(source.Config{
			URL:                 cfg.Source.URL,
			AuthToken:           cfg.Source.AuthToken,
			AuthCookie:          cfg.Source.AuthCookie,
			RequestDelaySeconds: int(cfg.Source.RequestDelay.Seconds()),
			LocalFile:           cfg.Source.LocalFile,
		})
		engine = rules.NewEngine(rules.HeuristicStub{})

		log.Info().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Msg("deliverycore-mcp starting")
	},
	Run: func(cmd *cobra.Command, args []string) {
		server := mcpserver.New(loader, engine, Version)
		if err := server.Serve(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("mcp server exited")
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.AddCommand(forecastCmd)
	rootCmd.AddCommand(processEventCmd)
}
