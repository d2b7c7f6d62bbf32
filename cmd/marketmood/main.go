package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"marketmood/cmd"
	"marketmood/internal/app"
	"marketmood/internal/domain"
	"marketmood/internal/logger"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	log := logger.New().With(zap.String("runID", uuid.NewString()))
	ctx := logger.NewContext(context.Background(), log)

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string
	root := &cobra.Command{
		Use:           "marketmood",
		Short:         "Daily market mood score and report",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to the YAML config (defaults to $MOOD_CONFIG or marketmood.yaml)")

	root.AddCommand(
		reportCmd(&configPath),
		historyCmd(&configPath),
		positionsCmd(&configPath),
	)
	return root
}

func reportCmd(configPath *string) *cobra.Command {
	var out string
	opts := app.ReportOptions{}

	c := &cobra.Command{
		Use:   "report",
		Short: "Fetch indicators, score them and write the HTML fragment",
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			log := logger.FromContext(ctx)

			profile, endProfile := domain.NewProfile()
			ctx = domain.NewCtxWithProfile(ctx, profile)

			deps, err := cmd.InitializeDependencies(ctx, *configPath)
			if err != nil {
				return err
			}

			result, err := deps.MarketReportHandler.Run(ctx, opts)
			if err != nil {
				return err
			}

			if out == "" || out == "-" {
				fmt.Fprintln(c.OutOrStdout(), result.HTML)
			} else {
				if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
					return fmt.Errorf("failed to create output directory: %w", err)
				}
				if err := os.WriteFile(out, []byte(result.HTML), 0644); err != nil {
					return fmt.Errorf("failed to write report: %w", err)
				}
				log.Infof("wrote report to %s", out)
			}

			endProfile()
			if b, err := profile.ToJsonBytes(); err == nil {
				log.Debugf("profile: %s", string(b))
			}
			return nil
		},
	}
	c.Flags().StringVarP(&out, "out", "o", "", "output file, stdout when empty")
	c.Flags().BoolVar(&opts.Email, "email", false, "email the report to the configured recipients")
	c.Flags().BoolVar(&opts.SkipPositions, "skip-positions", false, "leave the positions table out")
	return c
}

func historyCmd(configPath *string) *cobra.Command {
	var window int
	c := &cobra.Command{
		Use:   "history [KEY]",
		Short: "Print the stored history for a key, or list keys",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			deps, err := cmd.InitializeDependencies(c.Context(), *configPath)
			if err != nil {
				return err
			}
			w := c.OutOrStdout()

			if len(args) == 0 {
				for _, key := range deps.HistoryRepository.Keys() {
					fmt.Fprintln(w, key)
				}
				return nil
			}

			n := window
			if n <= 0 {
				n = deps.Config.RetentionWindow
			}
			for _, v := range deps.HistoryRepository.Window(args[0], n) {
				fmt.Fprintf(w, "%s\t%s\n", v.Date, strconv.FormatFloat(v.Value, 'f', -1, 64))
			}
			return nil
		},
	}
	c.Flags().IntVarP(&window, "window", "n", 0, "number of entries, defaults to the retention window")
	return c
}

func positionsCmd(configPath *string) *cobra.Command {
	c := &cobra.Command{
		Use:   "positions",
		Short: "Manage the local positions file",
	}
	c.AddCommand(&cobra.Command{
		Use:   "sync",
		Short: "Pull positions from the brokerage and update trailing stops",
		RunE: func(c *cobra.Command, args []string) error {
			deps, err := cmd.InitializeDependencies(c.Context(), *configPath)
			if err != nil {
				return err
			}
			positions, err := deps.PortfolioService.Sync(c.Context())
			if err != nil {
				return err
			}

			w := c.OutOrStdout()
			for _, p := range positions {
				fmt.Fprintf(w, "%s\t%s @ %s\tstop %s (%s%%)\n", p.Symbol, p.Shares, p.CurrentPrice.StringFixed(2), p.StopPrice.StringFixed(2), p.TrailingStopPct)
			}
			return nil
		},
	})
	return c
}
