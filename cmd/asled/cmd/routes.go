package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/asle-chain/asle/app"
)

// routesCmd initializes a throwaway in-memory host and prints its genesis
// routing table: which module answers which function identifier.
func routesCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "Show the routing table of a freshly initialized host",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			host, err := app.New(app.Options{})
			if err != nil {
				return err
			}
			ctx := host.NewContext()

			type moduleRoutes struct {
				Module      string   `json:"module"`
				FunctionIDs []string `json:"function_ids"`
			}
			var table []moduleRoutes
			var lines []string
			for _, module := range host.Registry.ListModules(ctx) {
				ids := host.Registry.ListFunctionIDs(ctx, module)
				entry := moduleRoutes{Module: module.String()}
				for _, id := range ids {
					entry.FunctionIDs = append(entry.FunctionIDs, id.String())
					lines = append(lines, fmt.Sprintf("%s %s", id, module))
				}
				table = append(table, entry)
			}

			payload := struct {
				Owner   string         `json:"owner"`
				Modules []moduleRoutes `json:"modules"`
			}{Owner: host.Owner().String(), Modules: table}
			return emit(cmd, v, payload, strings.Join(lines, "\n"))
		},
	}
}
