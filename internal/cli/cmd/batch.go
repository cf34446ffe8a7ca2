package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"vidconv/internal/config"
	"vidconv/internal/model"
	"vidconv/internal/pipeline"
	"vidconv/internal/progress"
	"vidconv/internal/ui"
)

func newBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <inputs...>",
		Short: "Convert many files to one format, one at a time",
		Long: "Converts every valid input into --out-dir as <name>.<format>. Invalid inputs are reported and skipped; " +
			"a failing file does not stop the batch. Without --overwrite, any existing destination aborts the batch before it starts.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs := cmd.Flags()
			f, _ := fs.GetString("format")
			outDir, _ := fs.GetString("out-dir")
			quality, _ := fs.GetString("quality")
			overwrite, _ := fs.GetBool("overwrite")
			asJSON, _ := fs.GetBool("json")
			noUI, _ := fs.GetBool("no-ui")

			if strings.TrimSpace(f) == "" {
				return &ExitError{Code: ExitCLIError, Err: fmt.Errorf("--format is required (one of %s)", formatList(model.BatchFormats))}
			}
			if quality == "" {
				if s, err := config.Current(); err == nil {
					quality = s.DefaultQuality
				}
			}
			req := pipeline.BatchRequest{
				Inputs:    args,
				Format:    model.ParseFormat(f),
				OutputDir: outDir,
				Quality:   model.QualityPreset(strings.ToLower(quality)),
				Overwrite: overwrite,
			}

			svc, err := newService(toolFFmpeg, toolFFprobe)
			if err != nil {
				return err
			}

			var report *model.BatchReport
			if !asJSON && !noUI && isTerminal() {
				report, err = ui.Run(cmd.Context(), svc, req)
			} else {
				var rep progress.Reporter = progress.Discard{}
				if !asJSON {
					rep = newLineReporter(cmd.ErrOrStderr())
				}
				report, err = svc.Batch(cmd.Context(), req, progress.Func(rep))
			}

			if asJSON {
				out := map[string]any{"success": report != nil && report.Success()}
				if err != nil {
					out["error"] = err.Error()
				}
				if report != nil {
					out["report"] = report
					out["succeededFiles"] = report.SucceededFiles
					out["failures"] = report.Failures
					out["invalidFiles"] = report.InvalidFiles
				}
				_ = printJSON(cmd.OutOrStdout(), out)
			} else if report != nil {
				printReport(cmd.OutOrStdout(), report)
			}
			return batchExit(report, err)
		},
	}
	fs := cmd.Flags()
	fs.StringP("format", "f", "", "Target format: "+formatList(model.BatchFormats))
	fs.StringP("out-dir", "o", ".", "Output directory (created if missing)")
	fs.StringP("quality", "q", "", "Quality preset shared by all files: low, medium, high, ultra")
	fs.Bool("overwrite", false, "Replace existing outputs")
	fs.Bool("json", false, "Print the batch report as JSON")
	fs.Bool("no-ui", false, "Disable the TUI; print plain progress lines")
	return cmd
}

// batchExit: 0 when every valid file converted, 4 when some did, 3 when none did.
func batchExit(report *model.BatchReport, err error) error {
	if err != nil {
		return exitFor(err)
	}
	switch report.Outcome {
	case model.BatchSuccess:
		return nil
	case model.BatchPartial:
		return &ExitError{Code: ExitPartialBatch, Err: fmt.Errorf("%d of %d file(s) failed", report.Failed, report.Valid)}
	default:
		return &ExitError{Code: ExitConversionError, Err: fmt.Errorf("all %d file(s) failed", report.Failed)}
	}
}

func printReport(w io.Writer, r *model.BatchReport) {
	fmt.Fprintf(w, "Batch %s: %d/%d converted, %d failed, %d invalid\n", r.Outcome, r.Succeeded, r.Total, r.Failed, r.Invalid)
	for _, p := range r.SucceededFiles {
		fmt.Fprintf(w, "  ok       %s\n", p)
	}
	for _, fe := range r.Failures {
		fmt.Fprintf(w, "  failed   %s: %s\n", fe.Input, fe.Error)
	}
	for _, fe := range r.InvalidFiles {
		fmt.Fprintf(w, "  invalid  %s: %s\n", fe.Input, fe.Error)
	}
}
