// Package login signs a user in with a phone number and one-time password.
package login

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"

	"tableflip.dev/chatroom/pkg/auth"
	"tableflip.dev/chatroom/pkg/countries"
	"tableflip.dev/chatroom/pkg/printers"
)

var ErrInvalidOTP = errors.New("login: invalid OTP")

type Login struct {
	Sessions  *auth.Sessions
	Simulator *auth.Simulator
	// Countries resolves ISO codes such as "GB" to dial codes.
	Countries *countries.Client

	Country string
	Phone   string
	OTP     string
	Name    string

	// In is read for the OTP when none was given.
	In     io.Reader
	Output io.Writer
	JSON   bool
}

func (l *Login) Do(ctx context.Context) error {
	if l.Sessions == nil {
		return errors.New("login: no session store")
	}
	out := l.Output
	if out == nil {
		out = color.Output
	}

	dial, err := l.dialCode(ctx)
	if err != nil {
		return err
	}
	if err := auth.ValidatePhone(dial, l.Phone); err != nil {
		return err
	}

	sim := l.Simulator
	if sim == nil {
		sim = auth.NewSimulator()
	}
	if _, err := sim.Send(ctx, dial+l.Phone); err != nil {
		return err
	}
	if !l.JSON {
		_, _ = fmt.Fprintf(out, "OTP sent to %s %s\n", dial, l.Phone)
	}

	code := strings.TrimSpace(l.OTP)
	if code == "" {
		if code, err = l.prompt(out); err != nil {
			return err
		}
	}
	if err := auth.ValidateOTP(code); err != nil {
		return err
	}
	ok, err := sim.Verify(ctx, code)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidOTP
	}

	u := auth.NewUser(dial, l.Phone)
	u.Name = l.Name
	if err := l.Sessions.Login(u); err != nil {
		return err
	}
	if l.JSON {
		return printers.JSON(out, u)
	}
	_, _ = fmt.Fprintf(out, "%s as %s %s\n", color.New(color.FgGreen).Sprint("Logged in"), dial, l.Phone)
	return nil
}

func (l *Login) dialCode(ctx context.Context) (string, error) {
	c := strings.TrimSpace(l.Country)
	if c == "" || strings.HasPrefix(c, "+") {
		return c, nil
	}
	list := countries.Fallback()
	if l.Countries != nil {
		list = l.Countries.Fetch(ctx)
	}
	found, ok := countries.Find(list, c)
	if !ok {
		return "", &auth.ValidationError{Field: "countryCode", Reason: fmt.Sprintf("unknown country %q", c)}
	}
	return countries.DialCode(found), nil
}

func (l *Login) prompt(out io.Writer) (string, error) {
	in := l.In
	if in == nil {
		in = os.Stdin
	}
	templates := &promptui.PromptTemplates{
		Prompt:  "{{ . }}: ",
		Valid:   "{{ . | green }}: ",
		Invalid: "{{ . | red }}: ",
		Success: "{{ . | bold }}: ",
	}
	prompt := promptui.Prompt{
		Label:     "Enter OTP",
		Templates: templates,
		Validate:  auth.ValidateOTP,
		Mask:      '*',
		Stdin:     io.NopCloser(in),
		Stdout:    nopCloser{out},
	}
	code, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("login: read OTP: %w", err)
	}
	return strings.TrimSpace(code), nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

type Logout struct {
	Sessions *auth.Sessions
	Output   io.Writer
}

func (l *Logout) Do(_ context.Context) error {
	if l.Sessions == nil {
		return errors.New("login: no session store")
	}
	if err := l.Sessions.Logout(); err != nil {
		return err
	}
	out := l.Output
	if out == nil {
		out = color.Output
	}
	_, _ = fmt.Fprintln(out, "Logged out")
	return nil
}

type WhoAmI struct {
	Sessions *auth.Sessions
	JSON     bool
	Output   io.Writer
}

func (w *WhoAmI) Do(_ context.Context) error {
	if w.Sessions == nil {
		return errors.New("login: no session store")
	}
	out := w.Output
	if out == nil {
		out = color.Output
	}
	u, ok := w.Sessions.Current()
	if w.JSON {
		if !ok {
			return printers.JSON(out, map[string]any{"authenticated": false})
		}
		return printers.JSON(out, map[string]any{"authenticated": true, "user": u})
	}
	if !ok {
		_, _ = fmt.Fprintln(out, color.New(color.Faint).Sprint("not logged in"))
		return nil
	}
	name := u.Name
	if name == "" {
		name = u.CountryCode + " " + u.Phone
	}
	_, _ = fmt.Fprintf(out, "%s %s\n", color.New(color.Bold).Sprint(name), color.New(color.Faint).Sprint(u.ID))
	return nil
}
