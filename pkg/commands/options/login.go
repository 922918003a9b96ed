package options

import (
	"github.com/spf13/cobra"
)

// LoginOptions
type LoginOptions struct {
	Country string
	Phone   string
	OTP     string
	Name    string
}

func AddLoginArgs(cmd *cobra.Command, o *LoginOptions) {
	cmd.Flags().StringVar(&o.Country, "country", "",
		`Dial code or country code, example: --country="+44" or --country=GB.`)
	cmd.Flags().StringVar(&o.Phone, "phone", "",
		"Phone number, digits only.")
	cmd.Flags().StringVar(&o.OTP, "otp", "",
		"One-time password. Prompted for when omitted.")
	cmd.Flags().StringVar(&o.Name, "name", "",
		"Display name.")
	_ = cmd.MarkFlagRequired("phone")
}
