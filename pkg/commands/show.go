package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/chatroom/pkg/commands/options"
	"tableflip.dev/chatroom/pkg/runner/show"
)

func addShow(topLevel *cobra.Command) {
	oo := &options.OutputOptions{}
	io := &options.IDOptions{}
	var (
		limit  int
		before string
	)

	cmd := &cobra.Command{
		Use:   "show [room]",
		Short: "Print a chatroom with its threads and reactions.",
		Example: `
chatroom show
chatroom show "Trip Planning" --show-id
chatroom show --limit 20
chatroom show --limit 20 --before msg-3a1e...
`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: chatroomCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv()
			if err != nil {
				return oo.HandleError(err)
			}
			s := show.Show{
				Store:    e.store,
				Chatroom: joinArgs(args),
				Limit:    limit,
				Before:   before,
				ShowID:   io.ShowID,
				User:     e.user(),
				JSON:     oo.JSON,
				Output:   cmd.OutOrStdout(),
			}
			return oo.HandleError(s.Do(cmd.Context()))
		},
	}

	options.AddOutputArg(cmd, oo)
	options.AddShowIDArgs(cmd, io)
	cmd.Flags().IntVar(&limit, "limit", 0, "Show at most this many top-level messages, newest last. 0 shows all.")
	cmd.Flags().StringVar(&before, "before", "", "Page back from this top-level message id.")

	topLevel.AddCommand(cmd)
}
