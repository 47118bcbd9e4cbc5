package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

func sellersCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "marketplaces",
		Aliases: []string{"sellers"},
		Short:   "List the marketplaces the account participates in",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newMWSClient()
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)

			res, err := c.Sellers().ListMarketplaceParticipations(ctx)
			if err != nil {
				return err
			}
			for token := res.NextToken; token != ""; {
				next, err := c.Sellers().ListMarketplaceParticipationsByNextToken(ctx, token)
				if err != nil {
					return err
				}
				res.Marketplaces = append(res.Marketplaces, next.Marketplaces...)
				res.Participations = append(res.Participations, next.Participations...)
				token = next.NextToken
			}
			res.NextToken = ""

			if jsonOutput() {
				return outputJSON(res)
			}
			return printMarketplacesTable(os.Stdout, res)
		},
	}
}
