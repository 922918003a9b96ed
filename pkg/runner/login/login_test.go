package login

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fatih/color"

	"tableflip.dev/chatroom/pkg/auth"
	"tableflip.dev/chatroom/pkg/store"
)

func newSessions(t *testing.T) *auth.Sessions {
	t.Helper()
	color.NoColor = true
	s, err := auth.NewSessions(store.NewMemory())
	if err != nil {
		t.Fatalf("NewSessions: %v", err)
	}
	return s
}

func TestLoginPromptsForOTP(t *testing.T) {
	sessions := newSessions(t)
	var buf bytes.Buffer
	l := &Login{
		Sessions:  sessions,
		Simulator: &auth.Simulator{},
		Country:   "GB",
		Phone:     "7700900123",
		In:        strings.NewReader("123456\n"),
		Output:    &buf,
	}
	if err := l.Do(context.Background()); err != nil {
		t.Fatalf("Login: %v", err)
	}
	u, ok := sessions.Current()
	if !ok || u.CountryCode != "+44" || u.Phone != "7700900123" {
		t.Fatalf("user = %+v, %v", u, ok)
	}
	if !strings.Contains(buf.String(), "Enter OTP") {
		t.Fatalf("no prompt in %q", buf.String())
	}

	var who bytes.Buffer
	if err := (&WhoAmI{Sessions: sessions, Output: &who}).Do(context.Background()); err != nil {
		t.Fatalf("WhoAmI: %v", err)
	}
	if !strings.Contains(who.String(), "+44 7700900123") {
		t.Fatalf("whoami = %q", who.String())
	}

	if err := (&Logout{Sessions: sessions, Output: &bytes.Buffer{}}).Do(context.Background()); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, ok := sessions.Current(); ok {
		t.Fatalf("still logged in")
	}
}

func TestLoginPromptRejectsShortCode(t *testing.T) {
	sessions := newSessions(t)
	l := &Login{
		Sessions:  sessions,
		Simulator: &auth.Simulator{},
		Country:   "+1",
		Phone:     "5551234567",
		In:        strings.NewReader("12\n"),
		Output:    &bytes.Buffer{},
	}
	if err := l.Do(context.Background()); err == nil {
		t.Fatalf("short code accepted at the prompt")
	}
	if _, ok := sessions.Current(); ok {
		t.Fatalf("logged in with a short code")
	}
}

func TestLoginRejects(t *testing.T) {
	tests := []struct {
		name string
		l    Login
		want func(error) bool
	}{
		{
			name: "wrong otp",
			l:    Login{Country: "+1", Phone: "5551234567", OTP: "654321"},
			want: func(err error) bool { return errors.Is(err, ErrInvalidOTP) },
		},
		{
			name: "short phone",
			l:    Login{Country: "+1", Phone: "555", OTP: "123456"},
			want: func(err error) bool { var v *auth.ValidationError; return errors.As(err, &v) && v.Field == "phone" },
		},
		{
			name: "unknown country",
			l:    Login{Country: "ZZ", Phone: "5551234567", OTP: "123456"},
			want: func(err error) bool { var v *auth.ValidationError; return errors.As(err, &v) && v.Field == "countryCode" },
		},
		{
			name: "malformed otp",
			l:    Login{Country: "+1", Phone: "5551234567", OTP: "12"},
			want: func(err error) bool { var v *auth.ValidationError; return errors.As(err, &v) && v.Field == "otp" },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions := newSessions(t)
			l := tt.l
			l.Sessions = sessions
			l.Simulator = &auth.Simulator{}
			l.Output = &bytes.Buffer{}
			err := l.Do(context.Background())
			if !tt.want(err) {
				t.Fatalf("err = %v", err)
			}
			if _, ok := sessions.Current(); ok {
				t.Fatalf("logged in despite error")
			}
		})
	}
}
