package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/mws-sync/internal/mws"
)

func inventoryCmd() *cobra.Command {
	var (
		since    time.Duration
		detailed bool
	)
	cmd := &cobra.Command{
		Use:   "inventory [sku...]",
		Short: "Show fulfillment inventory supply",
		Example: `  mws inventory SKU-1 SKU-2
  mws inventory --since 24h --detailed`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && since == 0 {
				return fmt.Errorf("pass SKUs or --since")
			}
			c, err := newMWSClient()
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)

			in := mws.ListInventorySupplyInput{SellerSKUs: args}
			if since > 0 {
				in.QueryStartDateTime = time.Now().Add(-since)
			}
			if detailed {
				in.ResponseGroup = "Detailed"
			}

			page, err := c.Inventory().ListInventorySupply(ctx, in)
			if err != nil {
				return err
			}
			supply := page.Supply
			for page.NextToken != "" {
				if page, err = c.Inventory().ListInventorySupplyByNextToken(ctx, page.NextToken); err != nil {
					return err
				}
				supply = append(supply, page.Supply...)
			}

			if jsonOutput() {
				return outputJSON(supply)
			}
			return printSupplyTable(os.Stdout, supply)
		},
	}
	cmd.Flags().DurationVar(&since, "since", 0, "everything changed within this window")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "request the Detailed response group")
	return cmd
}
