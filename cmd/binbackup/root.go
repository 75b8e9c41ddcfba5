package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/bgunnarsson/binbackup/internal/app"
	"github.com/bgunnarsson/binbackup/internal/config"
	"github.com/bgunnarsson/binbackup/internal/print"
)

// Version is set at build time.
var Version = "0.1.0"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "binbackup",
		Short: "Back up the school database tables to an .xlsx workbook",
		Long: `binbackup exports the Teacher, StudentAssessment and _prisma_migrations
tables into one workbook, one sheet per table.

The connection string is read from DATABASE_URL (environment or .env file).
Other settings use the BACKUP_ prefix, e.g. BACKUP_OUTPUT_DIR.`,
		Version:       Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}

			logger := newLogger(cmd.ErrOrStderr(), cfg.Verbose)
			res, err := app.Run(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !isTerminal(out) {
				print.RenderTSV(out, res.Summary())
				return nil
			}
			print.RenderTable(out, res.Summary(), print.Options{MaxWidth: 60})
			fmt.Fprintf(out, "exported %d tables to %s\n", len(res.Sheets), res.Path)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.String("env-file", config.DefaultEnvFile, "dotenv file to load before reading the environment")
	flags.String("output-dir", config.DefaultOutputDir, "directory the workbook is written to (created if missing)")
	flags.String("output-file", config.DefaultOutputFile, "workbook file name")
	flags.Bool("versioned", false, "write to the next free backup_allN.xlsx instead of overwriting")
	flags.String("timezone", config.DefaultTimezone, "zone whose wall clock is kept when stripping offsets")
	flags.BoolP("verbose", "v", false, "debug logging")

	return cmd
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
