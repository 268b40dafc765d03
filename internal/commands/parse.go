package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cleared-dev/icsimport/internal/export"
	"github.com/cleared-dev/icsimport/internal/ics"
	"github.com/cleared-dev/icsimport/internal/importer"
)

func newParseCommand(opts *globalOptions) *cobra.Command {
	var format, output, statementFormat string

	cmd := &cobra.Command{
		Use:   "parse <statement.pdf>",
		Short: "Parse one statement and print or export it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(export.Formats(), strings.ToLower(format)) {
				return fmt.Errorf("%w %q", export.ErrUnknownFormat, format)
			}
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("resolving working directory: %w", err)
			}
			cfg, logger, err := opts.setup(cwd)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			parserOpts, err := cfg.Parser.Options()
			if err != nil {
				return err
			}
			registry := importer.DefaultRegistry(append(parserOpts, ics.WithLogger(logger))...)
			parser := registry.Get(statementFormat)
			if parser == nil {
				return fmt.Errorf("unknown statement format %q", statementFormat)
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading statement: %w", err)
			}
			result, err := parser.Parse(cmd.Context(), data)
			if err != nil {
				return fmt.Errorf("parsing %s: %w", filepath.Base(args[0]), err)
			}
			for _, w := range result.Warnings {
				logger.Warn("cross-validation", zap.String("statement_id", result.StatementID), zap.String("warning", w))
			}

			return writeOutput(cmd.OutOrStdout(), output, format, func(w io.Writer) error {
				return export.Write(w, format, result)
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", export.FormatText, "output format: "+strings.Join(export.Formats(), ", "))
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of stdout")
	cmd.Flags().StringVar(&statementFormat, "statement-format", importer.FormatICS, "statement layout to parse")

	return cmd
}

// writeOutput runs write against stdout, or against a new file at path.
func writeOutput(stdout io.Writer, path, format string, write func(io.Writer) error) error {
	if path == "" || path == "-" {
		return write(stdout)
	}

	if err := writeFile(path, write); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	fmt.Fprintf(stdout, "Wrote %s (%s)\n", path, format)
	return nil
}
