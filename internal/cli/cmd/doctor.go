package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"vidconv/internal/config"
	"vidconv/internal/dirs"
	"vidconv/internal/util/deps"
)

const versionTimeout = 5 * time.Second

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "doctor",
		Short:         "Diagnose external dependencies (ffmpeg, ffprobe) and configuration",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := config.Current()
			if err != nil {
				return &ExitError{Code: ExitCLIError, Err: err}
			}
			out := cmd.OutOrStdout()
			runner := newRunner()

			var problems []error
			check := func(label, path string, ferr error) {
				if ferr != nil {
					fmt.Fprintf(out, "%-9s missing (%v)\n", label+":", ferr)
					problems = append(problems, ferr)
					return
				}
				ver, verr := deps.CheckVersion(cmd.Context(), runner, path, versionTimeout)
				if verr != nil {
					fmt.Fprintf(out, "%-9s %s (not runnable: %v)\n", label+":", path, verr)
					problems = append(problems, verr)
					return
				}
				fmt.Fprintf(out, "%-9s %s\n%-9s %s\n", label+":", path, "", ver)
			}

			ff, ferr := deps.FindFFmpeg(s.FFmpeg)
			check("FFmpeg", ff, ferr)
			fp, perr := deps.FindFFprobe(s.FFprobe)
			check("FFprobe", fp, perr)

			if f, err := dirs.ConfigFile(); err == nil {
				fmt.Fprintf(out, "%-9s %s\n", "Config:", f)
			}
			if len(problems) > 0 {
				return &ExitError{Code: ExitMissingDep, Err: errors.Join(problems...)}
			}
			return nil
		},
	}
}
