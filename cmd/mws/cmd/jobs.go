package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	apiclient "github.com/donaldgifford/mws-sync/internal/api/client"
	domain "github.com/donaldgifford/mws-sync/pkg/types"
)

func jobsCmd() *cobra.Command {
	jobsRoot := &cobra.Command{
		Use:   "jobs",
		Short: "View mws-sync report job history",
		Long: "Query a running mws-sync server for report jobs. Each job records the\n" +
			"request and report IDs, poll count, archive location and any error.",
	}

	jobsRoot.AddCommand(
		jobsListCmd(),
		jobsGetCmd(),
		jobsReportsCmd(),
	)

	return jobsRoot
}

func jobsListCmd() *cobra.Command {
	var (
		name   string
		states []string
		limit  int
		offset int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs newest first",
		Example: `  mws jobs list
  mws jobs list --name inventory --state failed --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := apiclient.JobFilter{Name: name, Limit: limit, Offset: offset}
			for _, s := range states {
				f.States = append(f.States, domain.JobState(s))
			}

			page, err := newAPIClient().ListJobs(commandContext(cmd), f)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(page)
			}
			if len(page.Jobs) == 0 {
				fmt.Println("No jobs found.")
				return nil
			}
			if err := printJobsTable(os.Stdout, page.Jobs); err != nil {
				return err
			}
			fmt.Printf("\n%d of %d jobs\n", len(page.Jobs), page.Total)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "report definition name")
	cmd.Flags().StringSliceVar(&states, "state", nil, "requested, polling, done, failed")
	cmd.Flags().IntVar(&limit, "limit", 0, "page size (server default 50)")
	cmd.Flags().IntVar(&offset, "offset", 0, "rows to skip")
	return cmd
}

func jobsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <job-id>",
		Short: "Show one job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := newAPIClient().GetJob(commandContext(cmd), args[0])
			if apiclient.IsNotFound(err) {
				return fmt.Errorf("no job %q", args[0])
			}
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(job)
			}
			return printJobDetail(os.Stdout, job)
		},
	}
}

func jobsReportsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reports",
		Short: "List the server's report definitions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reports, err := newAPIClient().ListReports(commandContext(cmd))
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(reports)
			}
			tw := newTabWriter(os.Stdout)
			tw.writef("NAME\tTYPE\tSCHEDULE\tRUNNING\n")
			for _, r := range reports {
				tw.writef("%s\t%s\t%s\t%v\n", r.Name, r.ReportType, dash(r.Schedule), r.Running)
			}
			return tw.finish()
		},
	}
}
