package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/bewatu/internal/network"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List the job openings of the session",
	Run: func(_ *cobra.Command, _ []string) {
		ctx := context.Background()

		rt := setup(ctx, nil)
		defer rt.close()

		if err := showJobs(ctx, rt); err != nil {
			rt.logger.Fatal("listing jobs", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(jobsCmd)
}

func showJobs(ctx context.Context, rt *runtime) error {
	jobs, err := rt.service.Jobs(ctx, rt.config.Session)
	if err != nil {
		return fmt.Errorf("loading jobs: %w", err)
	}

	printJobs(jobs)
	return nil
}

func jobLabel(j *network.Job) string {
	label := fmt.Sprintf("%d %s", j.ID, j.Title)
	for _, part := range []string{j.Company, j.Location, j.Type, j.ExperienceLevel} {
		if part != "" {
			label += " / " + part
		}
	}
	return label
}

func printJobs(jobs []*network.Job) {
	if len(jobs) == 0 {
		fmt.Println("no jobs")
		return
	}
	for i, j := range jobs {
		fmt.Printf("%2d. %s\n", i+1, jobLabel(j))
	}
}
