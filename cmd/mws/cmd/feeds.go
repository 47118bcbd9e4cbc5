package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/mws-sync/internal/mws"
)

func feedsCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "feeds",
		Short: "Submit feeds and check their processing",
	}
	root.AddCommand(feedsSubmitCmd(), feedsStatusCmd(), feedsResultCmd(), feedsCancelCmd())
	return root
}

func feedsSubmitCmd() *cobra.Command {
	var (
		contentType string
		purge       bool
		wait        bool
	)
	cmd := &cobra.Command{
		Use:   "submit <feed-type> <file>",
		Short: "Upload a feed file",
		Args:  cobra.ExactArgs(2),
		Example: `  mws feeds submit _POST_PRODUCT_DATA_ products.xml --wait
  mws feeds submit _POST_FLAT_FILE_INVLOADER_DATA_ inventory.tsv \
    --content-type 'text/tab-separated-values; charset=iso-8859-1'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("reading feed: %w", err)
			}
			c, err := newMWSClient()
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)

			in := mws.SubmitFeedInput{
				Feed:            body,
				FeedType:        args[0],
				MarketplaceIDs:  []string{marketplaceID()},
				ContentType:     contentType,
				PurgeAndReplace: purge,
			}
			if wait {
				rec, err := c.Feeds().SubmitAndWait(ctx, in, newPoller())
				if err != nil {
					return err
				}
				if jsonOutput() {
					return outputJSON(rec)
				}
				return printRecord(os.Stdout, rec)
			}

			info, err := c.Feeds().SubmitFeed(ctx, in)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(info)
			}
			return printFeedSubmissionsTable(os.Stdout, []mws.FeedSubmissionInfo{*info})
		},
	}
	cmd.Flags().StringVar(&contentType, "content-type", "", "feed content type (default "+mws.DefaultFeedContentType+")")
	cmd.Flags().BoolVar(&purge, "purge-and-replace", false, "replace all existing data of this feed type")
	cmd.Flags().BoolVar(&wait, "wait", false, "poll until the feed is processed")
	return cmd
}

func feedsStatusCmd() *cobra.Command {
	var statuses []string
	cmd := &cobra.Command{
		Use:   "status [submission-id...]",
		Short: "List feed submissions",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newMWSClient()
			if err != nil {
				return err
			}
			list, err := c.Feeds().GetFeedSubmissionList(commandContext(cmd), mws.FeedSubmissionListInput{
				SubmissionIDs:      args,
				ProcessingStatuses: statuses,
			})
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(list)
			}
			if len(list.Submissions) == 0 {
				fmt.Println("No feed submissions found.")
				return nil
			}
			return printFeedSubmissionsTable(os.Stdout, list.Submissions)
		},
	}
	cmd.Flags().StringSliceVar(&statuses, "status", nil, "filter by processing status")
	return cmd
}

func feedsResultCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "result <submission-id>",
		Short: "Download a feed's processing report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newMWSClient()
			if err != nil {
				return err
			}
			body, err := c.Feeds().GetFeedSubmissionResult(commandContext(cmd), args[0])
			if err != nil {
				return err
			}
			return writePayload(out, body)
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "write the result here instead of stdout")
	return cmd
}

func feedsCancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <submission-id...>",
		Short: "Cancel submitted feeds that have not started processing",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newMWSClient()
			if err != nil {
				return err
			}
			subs, err := c.Feeds().CancelFeedSubmissions(commandContext(cmd), mws.CancelFeedSubmissionsInput{
				SubmissionIDs: args,
			})
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(subs)
			}
			return printFeedSubmissionsTable(os.Stdout, subs)
		},
	}
}
