package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/chatroom/pkg/commands/options"
	"tableflip.dev/chatroom/pkg/responder"
	"tableflip.dev/chatroom/pkg/runner/send"
)

func addSend(topLevel *cobra.Command) {
	oo := &options.OutputOptions{}
	so := &options.SendOptions{}
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:   "send <room> <text...>",
		Short: "Post a message and wait for the assistant to answer.",
		Example: `
chatroom send "Trip Planning" where should we go this summer?
chatroom send "Trip Planning" --reply-to msg-3a1e... sounds good
chatroom send "Trip Planning" --image beach.png --no-reply
`,
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: chatroomCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv()
			if err != nil {
				return oo.HandleError(err)
			}
			image, err := so.ImageDataURI()
			if err != nil {
				return oo.HandleError(err)
			}
			var r responder.Responder
			if !so.NoReply {
				if r, err = e.responder(); err != nil {
					return oo.HandleError(err)
				}
			}
			s := send.Send{
				Store:     e.store,
				Responder: r,
				Notify:    e.notifier(),
				Chatroom:  args[0],
				ReplyTo:   so.ReplyTo,
				Content:   joinArgs(args[1:]),
				Image:     image,
				User:      e.user(),
				ShowID:    io.ShowID,
				JSON:      oo.JSON,
				Output:    cmd.OutOrStdout(),
			}
			return oo.HandleError(s.Do(cmd.Context()))
		},
	}

	options.AddOutputArg(cmd, oo)
	options.AddSendArgs(cmd, so)
	options.AddShowIDArgs(cmd, io)

	topLevel.AddCommand(cmd)
}
