package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"slidecast/internal/api"
	"slidecast/internal/jobstore"
)

func newStatusCommand(cmdCtx *commandContext) *cobra.Command {
	var showHistory bool

	cmd := &cobra.Command{
		Use:   "status <job-id>",
		Short: "Show the state of one job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := cmdCtx.apiClient()
			if err != nil {
				return err
			}
			job, err := client.Job(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printJobDetail(out, job)
			if showHistory {
				printJobHistory(out, job)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showHistory, "history", false, "Include the step-by-step audit trail")
	return cmd
}

func printJobDetail(out io.Writer, job *api.Job) {
	rows := [][]string{
		{"Job", job.ID},
		{"Status", string(job.Status)},
		{"Progress", fmt.Sprintf("%.1f%%", job.Progress)},
	}
	if job.CurrentStep != "" {
		rows = append(rows, []string{"Step", job.CurrentStep})
	}
	if job.Error != "" {
		rows = append(rows, []string{"Error", job.Error})
	}
	rows = append(rows, []string{"URL", job.Request.URL})
	if job.Result != nil {
		if job.Result.Title != "" {
			rows = append(rows, []string{"Title", job.Result.Title})
		}
		rows = append(rows, []string{"Slides", fmt.Sprintf("%d", job.Result.SlideCount)})
		if job.Result.FramesDir != "" {
			rows = append(rows, []string{"Frames", job.Result.FramesDir})
		}
		if job.Result.TranslatedSubtitlePath != "" {
			rows = append(rows, []string{"Translated", job.Result.TranslatedSubtitlePath})
		}
		if job.Result.OutlinePath != "" {
			rows = append(rows, []string{"Outline", job.Result.OutlinePath})
		}
		if len(job.Result.Warnings) > 0 {
			rows = append(rows, []string{"Warnings", strings.Join(job.Result.Warnings, "\n")})
		}
	}
	fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, rows, nil))
}

func printJobHistory(out io.Writer, job *api.Job) {
	rows := make([][]string, 0, len(job.History))
	for _, entry := range job.History {
		progress := ""
		if entry.Progress >= 0 {
			progress = fmt.Sprintf("%.1f%%", entry.Progress)
		}
		rows = append(rows, []string{
			entry.Timestamp.Local().Format("15:04:05"),
			entry.Step,
			progress,
			entry.Message,
		})
	}
	fmt.Fprintln(out, renderTable([]string{"Time", "Step", "Progress", "Message"}, rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft}))
}

func printJobOutcome(out io.Writer, job *api.Job) {
	switch job.Status {
	case jobstore.StatusCompleted:
		fmt.Fprintf(out, "Job %s completed", job.ID)
		if job.Result != nil {
			fmt.Fprintf(out, ": %d slides in %s", job.Result.SlideCount, job.Result.FramesDir)
		}
		fmt.Fprintln(out)
		if job.Result != nil {
			for _, warning := range job.Result.Warnings {
				fmt.Fprintf(out, "  warning: %s\n", warning)
			}
		}
	case jobstore.StatusFailed:
		fmt.Fprintf(out, "Job %s failed: %s\n", job.ID, job.Error)
	case jobstore.StatusCancelled:
		fmt.Fprintf(out, "Job %s cancelled\n", job.ID)
	}
}
