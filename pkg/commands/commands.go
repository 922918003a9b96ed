package commands

import (
	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"tableflip.dev/chatroom/pkg/commands/options"
)

var (
	lo = &options.LogOptions{}
)

func New() *cobra.Command {

	cmd := &cobra.Command{
		Use:   "chatroom",
		Short: base.Wrap80("Chatrooms with threaded replies, emoji reactions and an AI assistant, on the command line."),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	options.AddLogArgs(cmd, lo)

	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addRooms(topLevel)
	addShow(topLevel)
	addChat(topLevel)
	addSend(topLevel)
	addReact(topLevel)
	addUnreact(topLevel)
	addLogin(topLevel)
	addLogout(topLevel)
	addWhoAmI(topLevel)
	addCountries(topLevel)
	addWatch(topLevel)
	addMCP(topLevel)
	addInfo(topLevel)
	addVersion(topLevel)
	addCompletions(topLevel)
}
