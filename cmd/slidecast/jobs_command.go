package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"slidecast/internal/jobstore"
)

func newJobsCommand(cmdCtx *commandContext) *cobra.Command {
	var statuses []string

	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "List processed videos",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := cmdCtx.apiClient()
			if err != nil {
				return err
			}
			filters := make([]jobstore.Status, 0, len(statuses))
			for _, status := range statuses {
				filters = append(filters, jobstore.Status(status))
			}
			jobs, err := client.History(cmd.Context(), filters...)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(jobs) == 0 {
				fmt.Fprintln(out, "No jobs found")
				return nil
			}
			rows := make([][]string, 0, len(jobs))
			for _, job := range jobs {
				title := ""
				slides := ""
				if job.Result != nil {
					title = job.Result.Title
					slides = fmt.Sprintf("%d", job.Result.SlideCount)
				}
				rows = append(rows, []string{
					job.ID,
					string(job.Status),
					fmt.Sprintf("%.0f%%", job.Progress),
					slides,
					title,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Job", "Status", "Progress", "Slides", "Title"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&statuses, "status", nil, "Filter by status (completed, failed, cancelled, running, queued)")
	return cmd
}

func newCancelCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <job-id>",
		Short: "Request cancellation of a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := cmdCtx.apiClient()
			if err != nil {
				return err
			}
			resp, err := client.Cancel(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if resp.Status == jobstore.StatusCancelled {
				fmt.Fprintf(cmd.OutOrStdout(), "Job %s cancelled\n", resp.JobID)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Cancellation requested for job %s; it stops at the next step\n", resp.JobID)
			}
			return nil
		},
	}
}

func newDeleteCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <job-id>",
		Short: "Delete a finished job and its artifacts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := cmdCtx.apiClient()
			if err != nil {
				return err
			}
			if err := client.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Job %s deleted\n", args[0])
			return nil
		},
	}
}
