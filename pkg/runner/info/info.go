// Package info reports where chatroom keeps its data.
package info

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/chatroom/pkg/store"
)

type Info struct {
	Config      *store.FileConfig
	Persistence store.Persistence
	Output      io.Writer
}

func (n *Info) Do(ctx context.Context) error {
	out := n.Output
	if out == nil {
		out = color.Output
	}

	if override := os.Getenv(store.ConfigPathEnv); override != "" {
		_, _ = fmt.Fprintf(out, "%s found on env, using %s\n", store.ConfigPathEnv, override)
	} else {
		_, _ = fmt.Fprintf(out, "%s env var not set\n", store.ConfigPathEnv)
	}

	if n.Config == nil {
		var err error
		n.Config, err = store.LoadConfig()
		if err != nil {
			return err
		}
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow("path:", n.Config.BasePath())
	tbl.AddRow("responder:", n.Config.Responder)
	tbl.AddRow("user:", n.Config.User)
	tbl.AddRow("log level:", n.Config.LogLevel)
	if n.Config.Responder == "openai" {
		tbl.AddRow("openai model:", n.Config.OpenAI.Model)
	}
	_, _ = fmt.Fprintln(out, tbl)

	if n.Persistence == nil {
		return errors.New("failed to create persistence object")
	}

	_, _ = fmt.Fprintln(out, "Keys:")
	keys := n.Persistence.Keys(ctx)
	for _, k := range keys {
		_, _ = fmt.Fprintf(out, "  %s\n", k)
	}
	if len(keys) == 0 {
		_, _ = fmt.Fprintf(out, "  %s\n", "no keys")
	}
	return nil
}
