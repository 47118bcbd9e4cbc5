package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/mws-sync/internal/mws"
)

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [family...]",
		Short: "Show the service status of each endpoint family",
		Example: `  mws status
  mws status orders reports --output json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			families := mws.Families
			if len(args) > 0 {
				families = families[:0:0]
				for _, name := range args {
					f, ok := mws.FamilyByName(name)
					if !ok {
						return fmt.Errorf("unknown family %q", name)
					}
					families = append(families, f)
				}
			}

			c, err := newMWSClient()
			if err != nil {
				return err
			}

			rows := make(map[string]*mws.ServiceStatus, len(families))
			order := make([]string, 0, len(families))
			for _, f := range families {
				st, err := c.GetServiceStatus(commandContext(cmd), f)
				if err != nil {
					return fmt.Errorf("%s: %w", f.Name, err)
				}
				rows[f.Name] = st
				order = append(order, f.Name)
			}

			if jsonOutput() {
				return outputJSON(rows)
			}
			return printStatusTable(os.Stdout, rows, order)
		},
	}
}

// commandContext falls back to Background for commands run outside Execute,
// e.g. from tests.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
