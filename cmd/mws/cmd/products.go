package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/mws-sync/internal/mws"
)

func productsCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "products",
		Short: "Look up catalog products",
	}
	root.AddCommand(productsSearchCmd(), productsLookupCmd(), productsFeesCmd())
	return root
}

func productsSearchCmd() *cobra.Command {
	var queryContext string
	cmd := &cobra.Command{
		Use:   "search <query...>",
		Short: "Search the catalog",
		Args:  cobra.MinimumNArgs(1),
		Example: `  mws products search dell poweredge r730
  mws products search "intel xeon" --context Electronics`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newMWSClient()
			if err != nil {
				return err
			}
			results, err := c.Products().ListMatchingProducts(
				commandContext(cmd), marketplaceID(), strings.Join(args, " "), queryContext)
			if err != nil {
				return err
			}
			return printProducts(results)
		},
	}
	cmd.Flags().StringVar(&queryContext, "context", "", "QueryContextId, e.g. Electronics")
	return cmd
}

func productsLookupCmd() *cobra.Command {
	var idType string
	cmd := &cobra.Command{
		Use:   "lookup <id...>",
		Short: "Fetch products by ASIN, SellerSKU, UPC, EAN, ISBN or JAN",
		Args:  cobra.RangeArgs(1, 5),
		Example: `  mws products lookup B00EXAMPLE
  mws products lookup --id-type UPC 012345678905`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newMWSClient()
			if err != nil {
				return err
			}
			results, err := c.Products().GetMatchingProductForID(commandContext(cmd), marketplaceID(), idType, args)
			if err != nil {
				return err
			}
			return printProducts(results)
		},
	}
	cmd.Flags().StringVar(&idType, "id-type", "ASIN", "identifier type (case sensitive)")
	return cmd
}

func productsFeesCmd() *cobra.Command {
	var price, shipping float64
	var currency string
	cmd := &cobra.Command{
		Use:     "fees <asin>",
		Short:   "Estimate selling fees for an ASIN at a price",
		Args:    cobra.ExactArgs(1),
		Example: `  mws products fees B00EXAMPLE --price 129.99 --shipping 4.50`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newMWSClient()
			if err != nil {
				return err
			}
			req := mws.NewFeesEstimateRequest(marketplaceID(), args[0])
			req.ListingPrice = price
			req.Shipping = shipping
			req.CurrencyCode = currency

			results, err := c.Products().GetMyFeesEstimate(commandContext(cmd), []mws.FeesEstimateRequest{req})
			if err != nil {
				return err
			}
			return outputJSON(results)
		},
	}
	cmd.Flags().Float64Var(&price, "price", 100, "listing price")
	cmd.Flags().Float64Var(&shipping, "shipping", 0, "shipping price")
	cmd.Flags().StringVar(&currency, "currency", "USD", "currency code")
	return cmd
}

func printProducts(results []mws.ProductResult) error {
	if jsonOutput() {
		return outputJSON(results)
	}
	return printProductsTable(os.Stdout, results)
}
