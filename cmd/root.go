package cmd

import (
	"fmt"

	"github.com/arcanaland/setsheet/internal/config"
	"github.com/arcanaland/setsheet/internal/report"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger

	req reportRequest
)

// RootCmd builds the spreadsheet for a set or block
var RootCmd = &cobra.Command{
	Use:   "setsheet [set or block name]",
	Short: "Build a price and playability spreadsheet for Magic: The Gathering sets",
	Long: `Setsheet resolves the expansions matching a set or block name, loads their cards from
MTGJSON, attaches today's retail prices and an EDHREC based playability score, and writes
an .xlsx spreadsheet with a thumbnail of every card.

Downloads are cached, so running again for the same sets doesn't hit the network.

Examples:
  setsheet "Ice Age"
  setsheet --card-limit 20 Mirage
  setsheet --print-sets`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return err
		}

		logger, err = newLogger(cfg.Log.Level, verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			req.Name = args[0]
		}
		if req.Name == "" && !req.PrintSets {
			return fmt.Errorf("a set or block name is required")
		}

		if results := cfg.Validate(); len(results.Errors) > 0 {
			return fmt.Errorf("invalid configuration: %v (run 'setsheet config validate' for details)", results.Errors[0])
		}

		ctx, stop := signalContext()
		defer stop()

		err := generate(ctx, cfg, logger, cmd.OutOrStdout(), req)
		if renderErr, ok := report.AsRenderError(err); ok && renderErr.Card != nil {
			fmt.Fprintln(cmd.ErrOrStderr())
			renderErr.Dump(cmd.ErrOrStderr())
		}
		return err
	},
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the config file (default $XDG_CONFIG_HOME/setsheet/config.toml)")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	RootCmd.Flags().BoolVar(&req.PrintSets, "print-sets", false, "Print the available sets and exit")
	RootCmd.Flags().IntVar(&req.CardLimit, "card-limit", 0, "Limit the report to this many cards")
	RootCmd.Flags().StringVarP(&req.Output, "output", "o", "", "Spreadsheet path (default <name>.xlsx)")
	RootCmd.Flags().BoolVar(&req.NoCache, "no-cache", false, "Download everything even if a cached copy exists")
	RootCmd.Flags().BoolVar(&req.NoPersist, "no-persist", false, "Don't write downloads to the cache")

	RootCmd.AddCommand(cacheCmd)
	RootCmd.AddCommand(configCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return RootCmd.Execute()
}
