package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"kubelearn/internal/app"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newRootCmd(cfg *app.Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "kubelearn",
		Short:         "Learn Kubernetes manifests by dragging YAML lines into place",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadEnv(cmd, cfg)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), *cfg)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfg.DataDir, "data-dir", "", "directory for run statistics (env KUBELEARN_DATA_DIR)")
	pf.StringVar(&cfg.LogPath, "log", "", "append JSON event logs to this file (env KUBELEARN_LOG)")
	pf.StringVar(&cfg.LevelsDir, "levels", "", "load level catalogs from this directory instead of the builtin set (env KUBELEARN_LEVELS_DIR)")
	pf.Uint64Var(&cfg.Seed, "seed", 0, "shuffle seed, 0 picks one from the clock (env KUBELEARN_SEED)")

	f := root.Flags()
	f.StringVar(&cfg.HTTPAddr, "http", "", "also serve the HTTP surface on this address (env KUBELEARN_HTTP_ADDR)")
	f.BoolVar(&cfg.ASCIIOnly, "ascii", false, "draw borders with ASCII only (env KUBELEARN_ASCII)")
	f.BoolVar(&cfg.DebugLayout, "debug-layout", false, "show layout diagnostics (env KUBELEARN_DEBUG_LAYOUT)")
	f.StringVar(&cfg.DemoScenario, "demo", "", "play a scripted scenario on start: empty, solve, almost, mistakes (env KUBELEARN_DEMO)")
	f.StringVar(&cfg.UI.StyleVariant, "style", "", "kube_blue, high_contrast or retro_terminal (env KUBELEARN_UI_STYLE)")
	f.StringVar(&cfg.UI.MotionLevel, "motion", "", "off, reduced or full (env KUBELEARN_UI_MOTION)")
	f.StringVar(&cfg.UI.MouseScope, "mouse", "", "on or off (env KUBELEARN_UI_MOUSE)")

	root.AddCommand(newServeCmd(cfg), newLevelsCmd(cfg))
	return root
}

func newServeCmd(cfg *app.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the playground headless behind the HTTP surface",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Headless = true
			if cfg.HTTPAddr == "" {
				cfg.HTTPAddr = "127.0.0.1:8080"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "serving on http://%s/api\n", cfg.HTTPAddr)
			return run(cmd.Context(), *cfg)
		},
	}
	cmd.Flags().StringVar(&cfg.HTTPAddr, "addr", "", "listen address, default 127.0.0.1:8080 (env KUBELEARN_HTTP_ADDR)")
	cmd.Flags().StringVar(&cfg.DemoScenario, "demo", "", "play a scripted scenario on start (env KUBELEARN_DEMO)")
	return cmd
}

func newLevelsCmd(cfg *app.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "levels",
		Short: "Validate the level catalog and list progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := app.ListLevels(cmd.Context(), *cfg)
			if err != nil {
				return err
			}
			return printLevels(cmd.OutOrStdout(), rows, time.Now())
		},
	}
}

// loadEnv overlays KUBELEARN_* variables, then reapplies flags the user set
// so the command line wins.
func loadEnv(cmd *cobra.Command, cfg *app.Config) error {
	explicit := map[string]string{}
	cmd.Flags().Visit(func(f *pflag.Flag) {
		explicit[f.Name] = f.Value.String()
	})
	if err := app.LoadEnv(cfg); err != nil {
		return err
	}
	for name, value := range explicit {
		if err := cmd.Flags().Set(name, value); err != nil {
			return fmt.Errorf("flag --%s: %w", name, err)
		}
	}
	return nil
}

func printLevels(w io.Writer, rows []app.LevelRow, now time.Time) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tLEVEL\tTITLE\tLINES\tCLEARED\tBEST\tFASTEST\tLAST PLAYED")
	for _, r := range rows {
		best, fastest, played := "-", "-", "never"
		if r.CompletedCount > 0 {
			best = humanize.Comma(int64(r.BestScore))
		}
		if r.BestTimeMS > 0 {
			fastest = (time.Duration(r.BestTimeMS) * time.Millisecond).Round(time.Second).String()
		}
		if !r.LastPlayed.IsZero() {
			played = humanize.RelTime(r.LastPlayed, now, "ago", "from now")
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%s\t%s\t%s\n",
			r.Index+1, r.LevelID, r.Title, r.Lines, r.CompletedCount, best, fastest, played)
	}
	return tw.Flush()
}
