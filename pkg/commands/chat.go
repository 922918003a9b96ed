package commands

import (
	"errors"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"tableflip.dev/chatroom/pkg/responder"
	teaui "tableflip.dev/chatroom/pkg/runner/tea"
)

func addChat(topLevel *cobra.Command) {
	var noReply bool

	cmd := &cobra.Command{
		Use:   "chat [room]",
		Short: "Open a chatroom full screen and talk to the assistant.",
		Example: `
chatroom chat
chatroom chat "Trip Planning"
`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: chatroomCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			if fd := os.Stdout.Fd(); !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
				return errors.New("chat needs a terminal; use send and show instead")
			}
			e, err := loadEnv()
			if err != nil {
				return err
			}
			id, err := e.store.Resolve(joinArgs(args))
			if err != nil {
				return err
			}
			var r responder.Responder
			if !noReply {
				if r, err = e.responder(); err != nil {
					return err
				}
			}
			return teaui.Run(cmd.Context(), e.store, r, e.user(), id)
		},
	}

	cmd.Flags().BoolVar(&noReply, "no-reply", false, "Do not ask the assistant to answer.")

	topLevel.AddCommand(cmd)
}
