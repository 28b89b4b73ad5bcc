package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"phone-scrubber/config"
	"phone-scrubber/services"
	"phone-scrubber/storage"
	"phone-scrubber/utils"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "phone-scrubber",
		Short:         "Scrub phone numbers from call logs based on occurrence thresholds",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.AddCommand(newScrubCmd())
	rootCmd.AddCommand(newColumnsCmd())
	return rootCmd
}

func newScrubCmd() *cobra.Command {
	var (
		req            scrubRequest
		out            string
		zip            bool
		capture        string
		numericTextAll bool
	)

	cmd := &cobra.Command{
		Use:   "scrub",
		Short: "Scrub logs against numbers selected from a list",
		Long: `The scrub command counts how often each phone number appears per category
in the list, selects the numbers meeting any --condition threshold, blanks them
from every --log, and writes the updated list, scrubbed logs and removed
records to the output directory.`,
		Example: "  phone-scrubber scrub --list leads.csv --log calls.csv --log texts.csv --condition call:2",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			flags := cmd.Flags()
			if flags.Changed("out") {
				cfg.OutputDir = out
			}
			if flags.Changed("zip") {
				cfg.ZipOutput = zip
			}
			if flags.Changed("capture") {
				cfg.CapturePolicy = strings.ToLower(strings.TrimSpace(capture))
			}
			if flags.Changed("numeric-text-all") {
				cfg.NumericTextAll = numericTextAll
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			logger := utils.NewLoggerTo(os.Stdout, cfg.LogLevel, cfg.LogFormat)
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			req.Now = time.Now()
			if err := runScrub(ctx, cfg, req, logger, cmd.OutOrStdout()); err != nil {
				logger.Error("[main] %v", err)
				return err
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.ListPath, "list", "", "CSV list with category and phone columns")
	f.StringArrayVar(&req.LogPaths, "log", nil, "CSV log to scrub (repeatable)")
	f.StringArrayVar(&req.Conditions, "condition", nil, "removal condition as category:threshold (repeatable)")
	f.StringVar(&out, "out", "", "output directory (overrides OUTPUT_DIR)")
	f.BoolVar(&zip, "zip", true, "bundle every output into one zip archive")
	f.StringVar(&capture, "capture", "row", "removed record capture: row or column")
	f.BoolVar(&numericTextAll, "numeric-text-all", false, "convert numeric-looking text in every column")
	_ = cmd.MarkFlagRequired("list")
	_ = cmd.MarkFlagRequired("condition")

	return cmd
}

func newColumnsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "columns FILE...",
		Short: "Print the columns of each CSV file detected as phone columns",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			classifier, err := newClassifier(cfg)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			for _, path := range args {
				t, _, err := storage.ReadTable(path, cfg.CSVEncodings)
				if err != nil {
					return err
				}
				var names []string
				for _, idx := range services.PhoneColumns(classifier, t.Columns) {
					names = append(names, t.Columns[idx])
				}
				if len(names) == 0 {
					fmt.Fprintf(out, "%s: (none)\n", path)
					continue
				}
				fmt.Fprintf(out, "%s: %s\n", path, strings.Join(names, ", "))
			}
			return nil
		},
	}
}
