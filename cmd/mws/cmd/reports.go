package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/mws-sync/internal/mws"
)

func reportsCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "reports",
		Short: "Request, list and download reports",
	}
	root.AddCommand(
		reportsRequestCmd(),
		reportsRequestsCmd(),
		reportsListCmd(),
		reportsGetCmd(),
		reportsLatestCmd(),
		reportsRunCmd(),
	)
	return root
}

func reportsRequestCmd() *cobra.Command {
	var (
		lookback time.Duration
		options  string
		wait     bool
		out      string
	)
	cmd := &cobra.Command{
		Use:   "request <report-type>",
		Short: "Request a report, optionally waiting for it and downloading it",
		Args:  cobra.ExactArgs(1),
		Example: `  mws reports request _GET_FLAT_FILE_OPEN_LISTINGS_DATA_
  mws reports request _GET_FLAT_FILE_ORDERS_DATA_ --lookback 72h --wait --out orders.tsv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newMWSClient()
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)

			in := mws.RequestReportInput{
				ReportType:     args[0],
				MarketplaceIDs: []string{marketplaceID()},
				ReportOptions:  options,
			}
			if lookback > 0 {
				in.StartDate = time.Now().Add(-lookback)
			}

			info, err := c.Reports().RequestReport(ctx, in)
			if err != nil {
				return err
			}
			if !wait {
				if jsonOutput() {
					return outputJSON(info)
				}
				return printReportRequestsTable(os.Stdout, []mws.ReportRequestInfo{*info})
			}

			res, err := c.Reports().WaitAndDownload(ctx, info.ReportRequestID, newPoller())
			if err != nil {
				return err
			}
			if res.AckErr != nil {
				newLogger().Warn("report downloaded but not acknowledged", "report_id", res.ReportID, "err", res.AckErr)
			}
			return writePayload(out, res.Content)
		},
	}
	cmd.Flags().DurationVar(&lookback, "lookback", 0, "report window start, relative to now")
	cmd.Flags().StringVar(&options, "options", "", "ReportOptions value")
	cmd.Flags().BoolVar(&wait, "wait", false, "poll until the report is done and download it")
	cmd.Flags().StringVar(&out, "out", "", "write the report here instead of stdout")
	return cmd
}

func reportsRequestsCmd() *cobra.Command {
	var (
		types    []string
		statuses []string
		maxCount int
	)
	cmd := &cobra.Command{
		Use:   "requests [request-id...]",
		Short: "List report requests and their processing status",
		Example: `  mws reports requests
  mws reports requests 2291326454
  mws reports requests --status _IN_PROGRESS_,_SUBMITTED_`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newMWSClient()
			if err != nil {
				return err
			}
			list, err := c.Reports().GetReportRequestList(commandContext(cmd), mws.ReportRequestListInput{
				RequestIDs:         args,
				ReportTypes:        types,
				ProcessingStatuses: statuses,
				MaxCount:           maxCount,
			})
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(list)
			}
			if len(list.Requests) == 0 {
				fmt.Println("No report requests found.")
				return nil
			}
			return printReportRequestsTable(os.Stdout, list.Requests)
		},
	}
	cmd.Flags().StringSliceVar(&types, "type", nil, "filter by report type")
	cmd.Flags().StringSliceVar(&statuses, "status", nil, "filter by processing status")
	cmd.Flags().IntVar(&maxCount, "max", 0, "maximum number of requests")
	return cmd
}

func reportsListCmd() *cobra.Command {
	var (
		types    []string
		maxCount int
		since    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List generated reports",
		Example: `  mws reports list
  mws reports list --type _GET_MERCHANT_LISTINGS_DATA_ --since 24h`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newMWSClient()
			if err != nil {
				return err
			}
			in := mws.ReportListInput{ReportTypes: types, MaxCount: maxCount}
			if since > 0 {
				in.AvailableFrom = time.Now().Add(-since)
			}
			list, err := c.Reports().GetReportList(commandContext(cmd), in)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(list)
			}
			if len(list.Reports) == 0 {
				fmt.Println("No reports found.")
				return nil
			}
			return printReportListTable(os.Stdout, list.Reports)
		},
	}
	cmd.Flags().StringSliceVar(&types, "type", nil, "filter by report type")
	cmd.Flags().IntVar(&maxCount, "max", 0, "maximum number of reports")
	cmd.Flags().DurationVar(&since, "since", 0, "only reports available within this window")
	return cmd
}

func reportsGetCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "get <report-id>",
		Short: "Download a generated report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newMWSClient()
			if err != nil {
				return err
			}
			content, err := c.Reports().GetReport(commandContext(cmd), args[0])
			if err != nil {
				return err
			}
			return writePayload(out, content)
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "write the report here instead of stdout")
	return cmd
}

func reportsLatestCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "latest <report-type>",
		Short: "Download the most recent report of a type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newMWSClient()
			if err != nil {
				return err
			}
			content, info, err := c.Reports().DownloadMostRecent(commandContext(cmd), args[0])
			if err != nil {
				return err
			}
			newLogger().Info("downloaded", "report_id", info.ReportID, "available", info.AvailableDate.Time)
			return writePayload(out, content)
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "write the report here instead of stdout")
	return cmd
}

// reportsRunCmd asks a running mws-sync server to run a configured report.
func reportsRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <name>",
		Short: "Trigger a configured report on the mws-sync server",
		Args:  cobra.ExactArgs(1),
		Example: `  mws reports run inventory
  mws reports run inventory --server http://sync.internal:8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := newAPIClient().RunReport(commandContext(cmd), args[0])
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

func writePayload(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	newLogger().Info("wrote report", "path", path, "bytes", len(data))
	return nil
}
