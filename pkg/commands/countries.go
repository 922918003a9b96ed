package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/chatroom/pkg/commands/options"
	countriesapi "tableflip.dev/chatroom/pkg/countries"
	"tableflip.dev/chatroom/pkg/runner/countries"
)

func addCountries(topLevel *cobra.Command) {
	oo := &options.OutputOptions{}
	var url string

	cmd := &cobra.Command{
		Use:   "countries",
		Short: "List country dial codes usable with login --country.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv()
			if err != nil {
				return oo.HandleError(err)
			}
			client := countriesapi.NewClient(e.log)
			if url != "" {
				client.URL = url
			}
			c := countries.Countries{Client: client, JSON: oo.JSON, Output: cmd.OutOrStdout()}
			return oo.HandleError(c.Do(cmd.Context()))
		},
	}

	options.AddOutputArg(cmd, oo)
	cmd.Flags().StringVar(&url, "url", "", "Country list endpoint. Defaults to "+countriesapi.DefaultURL)

	topLevel.AddCommand(cmd)
}
