package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/chatroom/pkg/commands/options"
	"tableflip.dev/chatroom/pkg/runner/react"
)

func addReact(topLevel *cobra.Command) {
	oo := &options.OutputOptions{}
	var (
		user   string
		toggle bool
	)

	cmd := &cobra.Command{
		Use:   "react <room> <message-id> <emoji>",
		Short: "React to a message with an emoji.",
		Example: `
chatroom react "Trip Planning" msg-3a1e... 👍
chatroom react "Trip Planning" msg-3a1e... 👍 --toggle
`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv()
			if err != nil {
				return oo.HandleError(err)
			}
			if user == "" {
				user = e.user()
			}
			r := react.React{
				Store:    e.store,
				Notify:   e.notifier(),
				Chatroom: args[0],
				Message:  args[1],
				Emoji:    args[2],
				User:     user,
				Toggle:   toggle,
				JSON:     oo.JSON,
				Output:   cmd.OutOrStdout(),
			}
			return oo.HandleError(r.Do(cmd.Context()))
		},
	}

	options.AddOutputArg(cmd, oo)
	cmd.Flags().StringVar(&user, "user", "", "User id to react as. Defaults to the signed in user.")
	cmd.Flags().BoolVar(&toggle, "toggle", false, "Remove the reaction if it is already there.")

	topLevel.AddCommand(cmd)
}

func addUnreact(topLevel *cobra.Command) {
	oo := &options.OutputOptions{}
	cmd := &cobra.Command{
		Use:   "unreact <room> <message-id> <reaction-id>",
		Short: "Remove a reaction from a message.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv()
			if err != nil {
				return oo.HandleError(err)
			}
			u := react.Unreact{
				Store:    e.store,
				Notify:   e.notifier(),
				Chatroom: args[0],
				Message:  args[1],
				Reaction: args[2],
			}
			return oo.HandleError(u.Do(cmd.Context()))
		},
	}
	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}
