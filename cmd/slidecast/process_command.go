package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"slidecast/internal/jobstore"
)

func newProcessCommand(cmdCtx *commandContext) *cobra.Command {
	var req jobstore.Request
	var wait bool

	cmd := &cobra.Command{
		Use:   "process <url>",
		Short: "Submit a video for processing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := cmdCtx.apiClient()
			if err != nil {
				return err
			}
			req.URL = args[0]
			resp, err := client.Process(cmd.Context(), req)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Job %s queued\n", resp.JobID)
			if !wait {
				fmt.Fprintf(out, "Track it with: slidecast status %s\n", resp.JobID)
				return nil
			}
			return followJob(cmd.Context(), cmdCtx, cmd, resp.JobID)
		},
	}

	cmd.Flags().StringVar(&req.Quality, "quality", "", "Video quality cap (e.g. 720p)")
	cmd.Flags().StringSliceVar(&req.SubtitleLanguages, "subtitle-langs", nil, "Preferred subtitle languages, in order")
	cmd.Flags().StringVar(&req.TranslateTo, "translate-to", "", "Target language for subtitle translation")
	cmd.Flags().StringVar(&req.ScreenshotPosition, "position", "", "Frame position within each cue: start, middle, or end")
	cmd.Flags().Float64Var(&req.ScreenshotOffset, "offset", 0, "Additional frame offset in seconds (may be negative)")
	cmd.Flags().BoolVar(&req.GenerateOutline, "outline", false, "Generate a content outline from the transcript")
	cmd.Flags().StringVar(&req.AIBackend, "backend", "", "AI backend for translation and outline (openai, gemini, ollama)")
	cmd.Flags().StringVar(&req.AIModel, "model", "", "Model override for the selected backend")
	cmd.Flags().StringVar(&req.APIKey, "api-key", "", "API key override for the selected backend")
	cmd.Flags().BoolVar(&req.UseAITranscription, "transcribe", false, "Transcribe audio instead of fetching platform subtitles")
	cmd.Flags().BoolVar(&wait, "wait", false, "Wait for the job to finish, reporting progress")
	return cmd
}

// followJob polls the daemon until the job reaches a terminal state.
func followJob(ctx context.Context, cmdCtx *commandContext, cmd *cobra.Command, id string) error {
	client, err := cmdCtx.apiClient()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	lastStep := ""
	for {
		job, err := client.Job(ctx, id)
		if err != nil {
			return err
		}
		if job.CurrentStep != lastStep && job.CurrentStep != "" {
			fmt.Fprintf(out, "  %5.1f%%  %s\n", job.Progress, job.CurrentStep)
			lastStep = job.CurrentStep
		}
		if job.Status.Terminal() {
			printJobOutcome(out, job)
			if job.Status != jobstore.StatusCompleted {
				return fmt.Errorf("job %s %s", job.ID, job.Status)
			}
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
}
