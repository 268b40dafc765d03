package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cleared-dev/icsimport/internal/config"
	"github.com/cleared-dev/icsimport/internal/export"
	"github.com/cleared-dev/icsimport/internal/gitops"
	"github.com/cleared-dev/icsimport/internal/ics"
	"github.com/cleared-dev/icsimport/internal/importer"
	"github.com/cleared-dev/icsimport/internal/importlog"
	"github.com/cleared-dev/icsimport/internal/model"
)

func newImportCommand(opts *globalOptions) *cobra.Command {
	var repoDir string
	var xlsx bool

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Parse every statement in the import directory and export its transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			absDir, err := filepath.Abs(repoDir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			cfg, logger, err := opts.setup(absDir)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if cmd.Flags().Changed("xlsx") {
				cfg.Import.XLSX = xlsx
			}
			return runImport(cmd.Context(), cmd.OutOrStdout(), absDir, cfg, logger)
		},
	}

	cmd.Flags().StringVar(&repoDir, "repo", ".", "repository directory")
	cmd.Flags().BoolVar(&xlsx, "xlsx", false, "also write an XLSX workbook per statement")

	return cmd
}

// importRun holds what every file of one import run shares.
type importRun struct {
	repoRoot string
	cfg      *config.Config
	parser   importer.Parser
	logger   *zap.Logger
	now      func() time.Time
}

func runImport(ctx context.Context, out io.Writer, repoRoot string, cfg *config.Config, logger *zap.Logger) error {
	parserOpts, err := cfg.Parser.Options()
	if err != nil {
		return err
	}
	run := &importRun{
		repoRoot: repoRoot,
		cfg:      cfg,
		parser:   importer.NewICSParser(append(parserOpts, ics.WithLogger(logger))...),
		logger:   logger,
		now:      time.Now,
	}

	importDir := resolve(repoRoot, cfg.Import.Dir)
	files, err := importer.Scan(importDir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintf(out, "No statements found in %s\n", importDir)
		return nil
	}

	var entries []importlog.Entry
	failed := 0
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		entry := run.importFile(ctx, file)
		entries = append(entries, entry)

		switch entry.Status {
		case importlog.StatusFailed:
			failed++
			fmt.Fprintf(out, "FAILED  %s: %s\n", file.Name, entry.Error)
		case importlog.StatusWarning:
			fmt.Fprintf(out, "WARN    %s -> %s (%d transactions, %d warnings)\n", file.Name, entry.StatementID, entry.Transactions, entry.Warnings)
		default:
			fmt.Fprintf(out, "OK      %s -> %s (%d transactions)\n", file.Name, entry.StatementID, entry.Transactions)
		}
	}

	if err := importlog.Append(repoRoot, entries); err != nil {
		logger.Warn("failed to write import log", zap.Error(err))
	}

	if cfg.Git.AutoCommit {
		run.commit(out, entries)
	}

	fmt.Fprintf(out, "Imported %d of %d statements\n", len(files)-failed, len(files))
	if failed > 0 {
		return fmt.Errorf("%d of %d statements failed to import", failed, len(files))
	}
	return nil
}

// importFile parses, exports and archives one statement. Failures are
// reported in the returned entry; the file stays in the import directory.
func (r *importRun) importFile(ctx context.Context, file importer.FileInfo) importlog.Entry {
	entry := importlog.Entry{Timestamp: r.now().UTC(), File: file.Name}
	fail := func(err error) importlog.Entry {
		r.logger.Error("import failed", zap.String("file", file.Name), zap.Error(err))
		entry.Status = importlog.StatusFailed
		entry.Error = err.Error()
		return entry
	}

	data, err := os.ReadFile(file.Path)
	if err != nil {
		return fail(fmt.Errorf("reading statement: %w", err))
	}
	result, err := r.parser.Parse(ctx, data)
	if err != nil {
		return fail(err)
	}

	entry.StatementID = result.StatementID
	entry.Transactions = len(result.Transactions)
	entry.Warnings = len(result.Warnings)
	for _, w := range result.Warnings {
		r.logger.Warn("cross-validation", zap.String("file", file.Name), zap.String("warning", w))
	}

	if err := r.export(result); err != nil {
		return fail(err)
	}

	importDir := resolve(r.repoRoot, r.cfg.Import.Dir)
	processedDir := resolve(r.repoRoot, r.cfg.Import.ProcessedDir)
	if err := importer.MarkProcessed(importDir, processedDir, file.Name); err != nil {
		return fail(err)
	}

	entry.Status = importlog.StatusOK
	if entry.Warnings > 0 {
		entry.Status = importlog.StatusWarning
	}
	r.logger.Info("imported statement",
		zap.String("file", file.Name),
		zap.String("statement_id", result.StatementID),
		zap.Int("transactions", entry.Transactions))
	return entry
}

// export writes <export_dir>/<statement id>.csv and, when enabled, .xlsx.
func (r *importRun) export(result *model.ParseResult) error {
	dir := resolve(r.repoRoot, r.cfg.Import.ExportDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating export dir: %w", err)
	}

	formats := []string{export.FormatCSV}
	if r.cfg.Import.XLSX {
		formats = append(formats, export.FormatXLSX)
	}
	for _, format := range formats {
		name, err := export.FileName(result.StatementID, format)
		if err != nil {
			return fmt.Errorf("exporting %s: %w", strings.ToUpper(format), err)
		}
		path := filepath.Join(dir, name)
		if err := writeFile(path, func(w io.Writer) error {
			return export.Write(w, format, result)
		}); err != nil {
			return fmt.Errorf("exporting %s: %w", strings.ToUpper(format), err)
		}
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// commit records the exports and the import log of this run in git.
// Failures are logged; the import itself already succeeded.
func (r *importRun) commit(out io.Writer, entries []importlog.Entry) {
	if !gitops.IsRepo(r.repoRoot) {
		r.logger.Warn("git auto-commit enabled but repository has no .git", zap.String("repo", r.repoRoot))
		return
	}

	var ids []string
	for _, e := range entries {
		if e.Status != importlog.StatusFailed {
			ids = append(ids, e.StatementID)
		}
	}
	if len(ids) == 0 {
		return
	}

	paths := []string{r.cfg.Import.ExportDir, "logs"}
	author := gitops.Author{Name: r.cfg.Git.AuthorName, Email: r.cfg.Git.AuthorEmail}
	hash, err := gitops.CommitPaths(r.repoRoot, paths, "import: "+strings.Join(ids, ", "), author)
	if errors.Is(err, gitops.ErrNothingToCommit) {
		return
	}
	if err != nil {
		r.logger.Warn("git auto-commit failed", zap.Error(err))
		return
	}
	fmt.Fprintf(out, "Committed %s\n", hash)
}
