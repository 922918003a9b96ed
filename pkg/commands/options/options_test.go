package options

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestImageDataURI(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	path := filepath.Join(t.TempDir(), "pic.png")
	if err := os.WriteFile(path, png, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	o := &SendOptions{Image: path}
	uri, err := o.ImageDataURI()
	if err != nil {
		t.Fatalf("ImageDataURI: %v", err)
	}
	want := "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
	if uri != want {
		t.Fatalf("uri = %q, want %q", uri, want)
	}

	if uri, err := (&SendOptions{}).ImageDataURI(); err != nil || uri != "" {
		t.Fatalf("no image = %q, %v", uri, err)
	}
	if _, err := (&SendOptions{Image: filepath.Join(t.TempDir(), "missing")}).ImageDataURI(); err == nil || !strings.Contains(err.Error(), "read image") {
		t.Fatalf("missing file err = %v", err)
	}
}
