package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/locvowork/supplier_fte_dashboard/internal/domain"
	"github.com/locvowork/supplier_fte_dashboard/internal/logger"
	"github.com/locvowork/supplier_fte_dashboard/internal/service"
	"github.com/locvowork/supplier_fte_dashboard/pkg/dataflow"
	"github.com/locvowork/supplier_fte_dashboard/pkg/pdftable"
	"github.com/locvowork/supplier_fte_dashboard/pkg/simpleexcel"
)

const (
	suffixAnalysis  = "_analisi.xlsx"
	suffixSelection = "_fte_0_3.xlsx"
	suffixPDF       = "_fte_0_3.pdf"

	writeRetries = 2
)

// writeFile is swapped in tests.
var writeFile = os.WriteFile

// fileResult is the outcome of one input file. Err is set instead of
// aborting the batch.
type fileResult struct {
	Input     string
	Outputs   []string
	Filtered  int
	Suppliers int
	Selected  int
	Message   string
	Err       error
}

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze FILE...",
		Short: "Analyse consolidated reports and write the FTE documents",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runAnalyze,
	}

	cmd.Flags().StringP("out", "o", ".", "output directory")
	cmd.Flags().String("status-column", domain.DefaultStatusColumn, "status column used for the in-scope filter (empty disables it)")
	cmd.Flags().String("secondary-column", domain.ColCapability, "secondary sort column of the selection")
	cmd.Flags().Int("workers", runtime.NumCPU(), "files processed concurrently")
	cmd.Flags().Bool("no-progress", false, "hide the progress bar")

	_ = viper.BindPFlag("output.dir", cmd.Flags().Lookup("out"))
	_ = viper.BindPFlag("analysis.status_column", cmd.Flags().Lookup("status-column"))
	_ = viper.BindPFlag("analysis.secondary_column", cmd.Flags().Lookup("secondary-column"))
	_ = viper.BindPFlag("analysis.workers", cmd.Flags().Lookup("workers"))
	_ = viper.BindPFlag("output.no_progress", cmd.Flags().Lookup("no-progress"))
	viper.SetDefault("analysis.min", 0.0)
	viper.SetDefault("analysis.max", 3.0)

	return cmd
}

func analysisOptions() domain.AnalysisOptions {
	opts := domain.DefaultAnalysisOptions()
	opts.StatusColumn = strings.TrimSpace(viper.GetString("analysis.status_column"))
	opts.SecondaryColumn = viper.GetString("analysis.secondary_column")
	opts.Min = viper.GetFloat64("analysis.min")
	opts.Max = viper.GetFloat64("analysis.max")
	if statuses := viper.GetStringSlice("analysis.in_scope"); len(statuses) > 0 {
		opts.InScope = statuses
	}
	return opts
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	outDir := viper.GetString("output.dir")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var bar *progressbar.ProgressBar
	if !viper.GetBool("output.no_progress") {
		bar = newProgressBar(cmd.ErrOrStderr(), len(args))
	}

	results, err := analyzeFiles(ctx, args, outDir, analysisOptions(), viper.GetInt("analysis.workers"), bar)
	if err != nil {
		return err
	}

	failed := printSummary(cmd.OutOrStdout(), results)
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(results))
	}
	return nil
}

func newProgressBar(w io.Writer, total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan]Analysing reports...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(w)
		}),
	)
}

// analyzeFiles runs analyzeFile over files with the given concurrency and
// returns one result per distinct input, ordered by input path.
func analyzeFiles(ctx context.Context, files []string, outDir string, opts domain.AnalysisOptions, workers int, bar *progressbar.ProgressBar) ([]fileResult, error) {
	pdfOpts := []pdftable.Option{pdftable.WithLogger(logger.Logger())}

	// Duplicates would race on the same output files. The filter runs on a
	// single worker, so seen needs no lock.
	seen := make(map[string]bool, len(files))
	unique := dataflow.Filter(ctx, dataflow.From(ctx, files...), func(path string) bool {
		key := filepath.Clean(path)
		if seen[key] {
			logger.WarnLog(ctx, "Ignoring duplicate input %s", path)
			if bar != nil {
				_ = bar.Add(1)
			}
			return false
		}
		seen[key] = true
		return true
	})

	analysed := dataflow.Map(ctx, unique, func(path string) (fileResult, error) {
		res := analyzeFile(ctx, path, outDir, opts, pdfOpts...)
		if res.Err != nil {
			logger.WarnLog(ctx, "Skipping %s: %v", path, res.Err)
		}
		if bar != nil {
			_ = bar.Add(1)
		}
		return res, nil
	}, dataflow.WithWorkers(workers), dataflow.WithBufferSize(len(files)))

	results, err := dataflow.Collect(ctx, analysed)
	if err != nil {
		return nil, err
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Input < results[j].Input })
	return results, nil
}

// analyzeFile writes the three documents of one consolidated report next to
// each other in outDir. Nothing is written when the selection is empty.
func analyzeFile(ctx context.Context, path, outDir string, opts domain.AnalysisOptions, pdfOpts ...pdftable.Option) fileResult {
	res := fileResult{Input: path}

	f, err := os.Open(path)
	if err != nil {
		res.Err = err
		return res
	}
	defer f.Close()

	sheet, err := simpleexcel.ReadFirstSheet(f)
	if err != nil {
		res.Err = err
		return res
	}

	analysis, err := service.Consolidate(sheet.Table, opts)
	if err != nil {
		res.Err = err
		return res
	}
	res.Filtered = analysis.Filtered.Len()
	res.Suppliers = len(analysis.Totals)
	res.Selected = analysis.Selection.Len()

	if analysis.Empty() {
		res.Message = domain.MsgEmptySelection
		return res
	}

	base := filepath.Join(outDir, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	renderers := []struct {
		path   string
		render func() ([]byte, error)
	}{
		{base + suffixAnalysis, func() ([]byte, error) { return service.AnalysisWorkbook(analysis) }},
		{base + suffixSelection, func() ([]byte, error) { return service.SelectionWorkbook(analysis) }},
		{base + suffixPDF, func() ([]byte, error) { return service.SelectionPDF(analysis, pdfOpts...) }},
	}
	docs := make([]outputDocument, 0, len(renderers))
	for _, r := range renderers {
		data, err := r.render()
		if err != nil {
			res.Err = fmt.Errorf("failed to render %s: %w", filepath.Base(r.path), err)
			return res
		}
		docs = append(docs, outputDocument{path: r.path, data: data})
	}

	res.Outputs, res.Err = writeDocuments(ctx, docs)
	if res.Err != nil {
		return res
	}

	logger.InfoLog(ctx, "Analysed %s: %d rows, %d suppliers, %d selected", path, res.Filtered, res.Suppliers, res.Selected)
	return res
}

type outputDocument struct {
	path string
	data []byte
}

// writeDocuments writes docs in order, retrying each failed write, and
// returns the paths written before the first permanent failure.
func writeDocuments(ctx context.Context, docs []outputDocument) ([]string, error) {
	var written []string
	err := dataflow.ForEach(ctx, dataflow.From(ctx, docs...), func(d outputDocument) error {
		if err := writeFile(d.path, d.data, 0o644); err != nil {
			return err
		}
		written = append(written, d.path)
		return nil
	}, dataflow.WithRetry(writeRetries, func(attempt int) time.Duration {
		return time.Duration(attempt) * 50 * time.Millisecond
	}))
	return written, err
}

// printSummary writes one block per file and returns the number of failures.
func printSummary(w io.Writer, results []fileResult) int {
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(w, "✗ %s\n    %v\n", r.Input, r.Err)
			continue
		}
		fmt.Fprintf(w, "✓ %s: %d rows, %d suppliers, %d selected rows\n", r.Input, r.Filtered, r.Suppliers, r.Selected)
		if r.Message != "" {
			fmt.Fprintf(w, "    %s\n", r.Message)
		}
		for _, out := range r.Outputs {
			fmt.Fprintf(w, "    → %s\n", out)
		}
	}
	return failed
}
