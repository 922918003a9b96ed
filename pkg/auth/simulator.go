package auth

import (
	"context"
	"log/slog"
	"time"
)

// DevCode is the only code the simulator ever issues.
const DevCode = "123456"

// Simulator stands in for an SMS gateway.
type Simulator struct {
	SendDelay   time.Duration
	VerifyDelay time.Duration
	Log         *slog.Logger
}

func NewSimulator() *Simulator {
	return &Simulator{SendDelay: time.Second, VerifyDelay: 500 * time.Millisecond}
}

// Send pretends to text a code to phone and returns it.
func (s *Simulator) Send(ctx context.Context, phone string) (string, error) {
	if err := wait(ctx, s.SendDelay); err != nil {
		return "", err
	}
	s.logger().DebugContext(ctx, "otp sent", "phone", phone, "otp", DevCode)
	return DevCode, nil
}

// Verify reports whether input matches the issued code.
func (s *Simulator) Verify(ctx context.Context, input string) (bool, error) {
	if err := wait(ctx, s.VerifyDelay); err != nil {
		return false, err
	}
	return input == DevCode, nil
}

func (s *Simulator) logger() *slog.Logger {
	if s.Log == nil {
		return slog.Default()
	}
	return s.Log
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
