package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"vidconv/internal/model"
	"vidconv/internal/util/format"
)

func newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "info <file>",
		Short:         "Show container, duration and stream details of a media file",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")
			svc, err := newService(toolFFprobe)
			if err != nil {
				return err
			}
			info, ierr := svc.Info(cmd.Context(), args[0])
			if asJSON {
				if ierr != nil {
					_ = printJSON(cmd.OutOrStdout(), map[string]any{"success": false, "error": ierr.Error()})
				} else {
					_ = printJSON(cmd.OutOrStdout(), map[string]any{"success": true, "videoInfo": info})
				}
			}
			if ierr != nil {
				return exitFor(ierr)
			}
			if !asJSON {
				printInfo(cmd.OutOrStdout(), info)
			}
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "Print the probe result as JSON")
	return cmd
}

func printInfo(w io.Writer, info *model.VideoInfo) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "File:\t%s\n", info.Path)
	fmt.Fprintf(tw, "Container:\t%s\n", info.Format)
	fmt.Fprintf(tw, "Size:\t%s\n", format.HumanizeBytes(info.SizeBytes))
	fmt.Fprintf(tw, "Duration:\t%s\n", format.Duration(info.DurationSec))
	if v := info.Video; v != nil {
		fmt.Fprintf(tw, "Video:\t%s %dx%d @ %.3g fps, %s\n", v.Codec, v.Width, v.Height, v.FrameRate, v.Bitrate)
	} else {
		fmt.Fprintf(tw, "Video:\tnone\n")
	}
	if a := info.Audio; a != nil {
		fmt.Fprintf(tw, "Audio:\t%s %d Hz, %d ch, %s\n", a.Codec, a.SampleRate, a.Channels, a.Bitrate)
	} else {
		fmt.Fprintf(tw, "Audio:\tnone\n")
	}
	_ = tw.Flush()
}
