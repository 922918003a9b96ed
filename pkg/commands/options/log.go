package options

import (
	"github.com/spf13/cobra"
)

// LogOptions
type LogOptions struct {
	Level   string
	NoColor bool
}

func AddLogArgs(cmd *cobra.Command, o *LogOptions) {
	cmd.PersistentFlags().StringVar(&o.Level, "log-level", "",
		"Log level: debug, info, warn or error. Overrides log.level from config.")
	cmd.PersistentFlags().BoolVar(&o.NoColor, "no-color", false,
		"Disable colored output.")
}
