package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/chatroom/pkg/commands/options"
	"tableflip.dev/chatroom/pkg/runner/info"
)

func addInfo(topLevel *cobra.Command) {
	oo := &options.OutputOptions{}
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Details about the config and where chatrooms are stored.",
		Example: `
chatroom info
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv()
			if err != nil {
				return oo.HandleError(err)
			}
			s := info.Info{
				Config:      e.cfg,
				Persistence: e.p,
				Output:      cmd.OutOrStdout(),
			}
			return oo.HandleError(s.Do(cmd.Context()))
		},
	}

	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}
