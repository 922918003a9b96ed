package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/chatroom/pkg/commands/options"
	"tableflip.dev/chatroom/pkg/runner/rooms"
)

func addRooms(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "rooms",
		Aliases: []string{"room"},
		Short:   "List and manage chatrooms.",
		Example: `
chatroom rooms list
chatroom rooms list --search trip
chatroom rooms create "Trip Planning"
chatroom rooms use "Trip Planning"
chatroom rooms delete chatroom-2f0c...
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	addRoomsList(cmd)
	addRoomsCreate(cmd)
	addRoomsDelete(cmd)
	addRoomsUse(cmd)
	addRoomsSeed(cmd)

	topLevel.AddCommand(cmd)
}

func addRoomsList(parent *cobra.Command) {
	oo := &options.OutputOptions{}
	var search string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List chatrooms, newest last. The current one is starred.",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv()
			if err != nil {
				return oo.HandleError(err)
			}
			l := rooms.List{Store: e.store, Search: search, JSON: oo.JSON, Output: cmd.OutOrStdout()}
			return oo.HandleError(l.Do(cmd.Context()))
		},
	}
	options.AddOutputArg(cmd, oo)
	cmd.Flags().StringVarP(&search, "search", "s", "", "Only list chatrooms whose title contains this text.")
	parent.AddCommand(cmd)
}

func addRoomsCreate(parent *cobra.Command) {
	oo := &options.OutputOptions{}
	cmd := &cobra.Command{
		Use:   "create <title>",
		Short: "Create a chatroom and make it current.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv()
			if err != nil {
				return oo.HandleError(err)
			}
			c := rooms.Create{
				Store:  e.store,
				Title:  joinArgs(args),
				JSON:   oo.JSON,
				Output: cmd.OutOrStdout(),
				Notify: e.notifier(),
			}
			return oo.HandleError(c.Do(cmd.Context()))
		},
	}
	options.AddOutputArg(cmd, oo)
	parent.AddCommand(cmd)
}

func addRoomsDelete(parent *cobra.Command) {
	oo := &options.OutputOptions{}
	cmd := &cobra.Command{
		Use:               "delete <id>",
		Aliases:           []string{"rm"},
		Short:             "Delete a chatroom and all of its messages.",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: chatroomCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv()
			if err != nil {
				return oo.HandleError(err)
			}
			d := rooms.Delete{Store: e.store, ID: args[0], Notify: e.notifier()}
			return oo.HandleError(d.Do(cmd.Context()))
		},
	}
	options.AddOutputArg(cmd, oo)
	parent.AddCommand(cmd)
}

func addRoomsUse(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:               "use [id or title]",
		Short:             "Switch the current chatroom. No argument clears it.",
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: chatroomCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv()
			if err != nil {
				return err
			}
			u := rooms.Use{Store: e.store, Ref: joinArgs(args), Output: cmd.OutOrStdout()}
			return u.Do(cmd.Context())
		},
	}
	parent.AddCommand(cmd)
}

func addRoomsSeed(parent *cobra.Command) {
	count := 20
	cmd := &cobra.Command{
		Use:               "seed [id or title]",
		Short:             "Fill a chatroom with placeholder history, for trying out paging.",
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: chatroomCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv()
			if err != nil {
				return err
			}
			s := rooms.Seed{Store: e.store, Ref: joinArgs(args), Count: count, Output: cmd.OutOrStdout()}
			return s.Do(cmd.Context())
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", count, "Number of messages to add.")
	parent.AddCommand(cmd)
}
