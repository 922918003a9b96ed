// Package countries prints the dial code list.
package countries

import (
	"context"
	"io"

	"tableflip.dev/chatroom/pkg/countries"
	"tableflip.dev/chatroom/pkg/printers"
)

type Countries struct {
	Client *countries.Client
	JSON   bool
	Output io.Writer
}

func (c *Countries) Do(ctx context.Context) error {
	client := c.Client
	if client == nil {
		client = countries.NewClient(nil)
	}
	list := client.Fetch(ctx)
	if c.JSON {
		return printers.JSON(c.Output, list)
	}
	pp := printers.PrettyPrint{Out: c.Output}
	pp.Countries(list)
	return nil
}
