package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/chatroom/pkg/auth"
	"tableflip.dev/chatroom/pkg/commands/options"
	"tableflip.dev/chatroom/pkg/countries"
	"tableflip.dev/chatroom/pkg/runner/login"
)

func addLogin(topLevel *cobra.Command) {
	oo := &options.OutputOptions{}
	lgn := &options.LoginOptions{}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with a phone number and a one-time code.",
		Example: `
chatroom login --country GB --phone 7700900123 --name Ada
chatroom login --country +1 --phone 5555550100 --otp 123456
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv()
			if err != nil {
				return oo.HandleError(err)
			}
			sessions, err := e.sessions()
			if err != nil {
				return oo.HandleError(err)
			}
			sim := auth.NewSimulator()
			sim.Log = e.log
			l := login.Login{
				Sessions:  sessions,
				Simulator: sim,
				Countries: countries.NewClient(e.log),
				Country:   lgn.Country,
				Phone:     lgn.Phone,
				OTP:       lgn.OTP,
				Name:      lgn.Name,
				In:        cmd.InOrStdin(),
				Output:    cmd.OutOrStdout(),
				JSON:      oo.JSON,
			}
			return oo.HandleError(l.Do(cmd.Context()))
		},
	}

	options.AddOutputArg(cmd, oo)
	options.AddLoginArgs(cmd, lgn)

	topLevel.AddCommand(cmd)
}

func addLogout(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Sign out.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv()
			if err != nil {
				return err
			}
			sessions, err := e.sessions()
			if err != nil {
				return err
			}
			l := login.Logout{Sessions: sessions, Output: cmd.OutOrStdout()}
			return l.Do(cmd.Context())
		},
	}
	topLevel.AddCommand(cmd)
}

func addWhoAmI(topLevel *cobra.Command) {
	oo := &options.OutputOptions{}
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed in user.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv()
			if err != nil {
				return oo.HandleError(err)
			}
			sessions, err := e.sessions()
			if err != nil {
				return oo.HandleError(err)
			}
			w := login.WhoAmI{Sessions: sessions, JSON: oo.JSON, Output: cmd.OutOrStdout()}
			return oo.HandleError(w.Do(cmd.Context()))
		},
	}
	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}
