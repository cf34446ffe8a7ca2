package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"vidconv/internal/pipeline"
	"vidconv/internal/util/format"
)

func newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "plan <input>",
		Short:         "Show the ffmpeg invocation convert would run, without running it",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := requestFromFlags(cmd, args[0])
			if err != nil {
				return &ExitError{Code: ExitCLIError, Err: err}
			}
			asJSON, _ := cmd.Flags().GetBool("json")

			// Nothing is run; unresolved tools keep their configured names.
			svc, err := newService()
			if err != nil {
				return err
			}
			p, perr := svc.Plan(cmd.Context(), req)
			if perr != nil {
				return exitFor(perr)
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), p)
			}
			printPlan(cmd.OutOrStdout(), p)
			return nil
		},
	}
	bindRequestFlags(cmd.Flags())
	return cmd
}

// printPlan outputs a dry-run plan of actions without executing them.
func printPlan(w io.Writer, p *pipeline.Plan) {
	d := p.Directives
	fmt.Fprintln(w, "Dry-run plan:")
	fmt.Fprintf(w, "- Input:          %s\n", p.Request.InputPath)
	if p.InputInfo != nil {
		fmt.Fprintf(w, "- Input duration: %s\n", format.Duration(p.InputInfo.DurationSec))
	}
	fmt.Fprintf(w, "- Output:         %s\n", p.OutputPath)
	if p.OutputExists {
		if p.Request.Overwrite {
			fmt.Fprintln(w, "- Existing output will be replaced")
		} else {
			fmt.Fprintln(w, "- Output exists: convert will refuse without --overwrite")
		}
	}
	fmt.Fprintf(w, "- Codecs:         %s / %s\n", d.VideoCodec, d.AudioCodec)
	if d.QualityFactor > 0 {
		fmt.Fprintf(w, "- Rate control:   quality factor %d\n", d.QualityFactor)
	} else {
		fmt.Fprintf(w, "- Rate control:   %d kbps\n", d.VideoBitrateKbps)
	}
	for _, n := range d.Notes {
		fmt.Fprintf(w, "- Note:           %s\n", n)
	}
	fmt.Fprintf(w, "- Command:        %s\n", p.CommandLine)
}
