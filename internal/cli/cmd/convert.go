package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"vidconv/internal/config"
	"vidconv/internal/model"
	"vidconv/internal/pipeline"
	"vidconv/internal/progress"
	"vidconv/internal/util/format"
)

func bindRequestFlags(fs *pflag.FlagSet) {
	fs.StringP("format", "f", "", "Target format: "+formatList(model.SupportedFormats))
	fs.StringP("output", "o", "", "Output file (default: next to the input, with the new extension)")
	fs.StringP("quality", "q", "", "Quality preset: low, medium, high, ultra")
	fs.String("resolution", "", "Scale to WIDTHxHEIGHT, e.g. 1280x720")
	fs.Int("video-bitrate", 0, "Video bitrate in kbps (bitrate-class formats only)")
	fs.Int("audio-bitrate", 0, "Audio bitrate in kbps")
	fs.Float64("fps", 0, "Output frame rate")
	fs.Bool("overwrite", false, "Replace an existing output file")
	fs.Bool("json", false, "Print the result as JSON")
}

// requestFromFlags assembles a conversion request. An unset --quality falls
// back to the configured default_quality.
func requestFromFlags(cmd *cobra.Command, input string) (model.ConversionRequest, error) {
	fs := cmd.Flags()
	f, _ := fs.GetString("format")
	if strings.TrimSpace(f) == "" {
		return model.ConversionRequest{}, fmt.Errorf("--format is required (one of %s)", formatList(model.SupportedFormats))
	}
	quality, _ := fs.GetString("quality")
	if quality == "" {
		if s, err := config.Current(); err == nil {
			quality = s.DefaultQuality
		}
	}
	req := model.ConversionRequest{
		InputPath: input,
		Format:    model.ParseFormat(f),
		Quality:   model.QualityPreset(strings.ToLower(quality)),
	}
	req.OutputPath, _ = fs.GetString("output")
	req.Resolution, _ = fs.GetString("resolution")
	req.VideoBitrateKbps, _ = fs.GetInt("video-bitrate")
	req.AudioBitrateKbps, _ = fs.GetInt("audio-bitrate")
	req.FrameRate, _ = fs.GetFloat64("fps")
	req.Overwrite, _ = fs.GetBool("overwrite")
	return req, nil
}

func newConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "convert <input>",
		Short:         "Convert one video file",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := requestFromFlags(cmd, args[0])
			if err != nil {
				return &ExitError{Code: ExitCLIError, Err: err}
			}
			asJSON, _ := cmd.Flags().GetBool("json")

			svc, err := newService(toolFFmpeg, toolFFprobe)
			if err != nil {
				return err
			}

			var rep progress.Reporter = progress.Discard{}
			if !asJSON {
				rep = newLineReporter(cmd.ErrOrStderr())
			}
			res, cerr := svc.Convert(cmd.Context(), req, progress.Func(rep))
			if asJSON {
				if cerr != nil {
					_ = printJSON(cmd.OutOrStdout(), map[string]any{"success": false, "error": cerr.Error()})
				} else {
					_ = printJSON(cmd.OutOrStdout(), struct {
						Success bool `json:"success"`
						pipeline.ConvertResult
					}{true, res})
				}
			}
			if cerr != nil {
				return exitFor(cerr)
			}
			if !asJSON {
				fmt.Fprintf(cmd.OutOrStdout(), "Saved: %s\n", res.OutputPath)
			}
			return nil
		},
	}
	bindRequestFlags(cmd.Flags())
	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatList(fs []model.Format) string {
	names := make([]string, len(fs))
	for i, f := range fs {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// lineReporter prints coarse progress for non-interactive output: one line
// per 10% step and one line per finished job.
type lineReporter struct {
	w    io.Writer
	last map[string]int
}

func newLineReporter(w io.Writer) *lineReporter {
	return &lineReporter{w: w, last: make(map[string]int)}
}

func (r *lineReporter) Update(j model.Job) {
	if j.State != model.JobProcessing {
		return
	}
	step := j.Progress / 10 * 10
	if prev, seen := r.last[j.TaskID]; seen && step <= prev {
		return
	}
	r.last[j.TaskID] = step
	fmt.Fprintf(r.w, "[%3d%%] %s\n", step, j.InputPath)
}

func (r *lineReporter) Result(res progress.Result) {
	delete(r.last, res.TaskID)
	if res.Err != nil {
		fmt.Fprintf(r.w, "failed: %s: %v\n", res.InputPath, res.Err)
		return
	}
	fmt.Fprintf(r.w, "done:   %s -> %s (%s)\n", res.InputPath, res.OutputPath, format.HumanizeBytes(res.Bytes))
}
