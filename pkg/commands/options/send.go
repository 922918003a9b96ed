package options

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
)

// SendOptions
type SendOptions struct {
	Image   string
	ReplyTo string
	NoReply bool
}

func AddSendArgs(cmd *cobra.Command, o *SendOptions) {
	cmd.Flags().StringVar(&o.Image, "image", "",
		"Attach an image file to the message.")
	cmd.Flags().StringVar(&o.ReplyTo, "reply-to", "",
		"Reply to the message with this id.")
	cmd.Flags().BoolVar(&o.NoReply, "no-reply", false,
		"Post without asking the assistant to answer.")
}

// ImageDataURI reads the image file and encodes it as a data URI.
func (o *SendOptions) ImageDataURI() (string, error) {
	if o.Image == "" {
		return "", nil
	}
	b, err := os.ReadFile(o.Image)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	return fmt.Sprintf("data:%s;base64,%s", http.DetectContentType(b), base64.StdEncoding.EncodeToString(b)), nil
}
