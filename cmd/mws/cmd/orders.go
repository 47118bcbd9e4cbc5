package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/mws-sync/internal/mws"
)

func ordersCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "orders",
		Short: "List and inspect orders",
	}
	root.AddCommand(ordersListCmd(), ordersGetCmd(), ordersItemsCmd())
	return root
}

func ordersListCmd() *cobra.Command {
	var (
		since    time.Duration
		updated  bool
		statuses []string
		channels []string
		all      bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent orders",
		Example: `  mws orders list --since 24h
  mws orders list --updated --since 2h --status Unshipped,PartiallyShipped --all`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newMWSClient()
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)

			in := mws.ListOrdersInput{
				MarketplaceIDs:      []string{marketplaceID()},
				OrderStatuses:       statuses,
				FulfillmentChannels: channels,
			}
			from := time.Now().Add(-since)
			if updated {
				in.LastUpdatedAfter = from
			} else {
				in.CreatedAfter = from
			}

			page, err := c.Orders().ListOrders(ctx, in)
			if err != nil {
				return err
			}
			orders := page.Orders
			for all && page.NextToken != "" {
				if page, err = c.Orders().ListOrdersByNextToken(ctx, page.NextToken); err != nil {
					return err
				}
				orders = append(orders, page.Orders...)
			}

			if jsonOutput() {
				return outputJSON(orders)
			}
			if len(orders) == 0 {
				fmt.Println("No orders found.")
				return nil
			}
			return printOrdersTable(os.Stdout, orders)
		},
	}
	cmd.Flags().DurationVar(&since, "since", 24*time.Hour, "look back this far")
	cmd.Flags().BoolVar(&updated, "updated", false, "filter by last update instead of creation")
	cmd.Flags().StringSliceVar(&statuses, "status", nil, "filter by order status")
	cmd.Flags().StringSliceVar(&channels, "channel", nil, "filter by fulfillment channel (AFN, MFN)")
	cmd.Flags().BoolVar(&all, "all", false, "follow next tokens until every page is fetched")
	return cmd
}

func ordersGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <order-id...>",
		Short: "Fetch orders by ID",
		Args:  cobra.RangeArgs(1, 50),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newMWSClient()
			if err != nil {
				return err
			}
			orders, err := c.Orders().GetOrder(commandContext(cmd), args)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(orders)
			}
			return printOrdersTable(os.Stdout, orders)
		},
	}
}

func ordersItemsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "items <order-id>",
		Short: "List the items of an order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newMWSClient()
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)

			page, err := c.Orders().ListOrderItems(ctx, args[0])
			if err != nil {
				return err
			}
			items := page.Items
			for page.NextToken != "" {
				if page, err = c.Orders().ListOrderItemsByNextToken(ctx, page.NextToken); err != nil {
					return err
				}
				items = append(items, page.Items...)
			}

			if jsonOutput() {
				return outputJSON(items)
			}
			return printOrderItemsTable(os.Stdout, items)
		},
	}
}
