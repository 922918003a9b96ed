package commands

import (
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/muesli/termenv"

	"tableflip.dev/chatroom/pkg/auth"
	"tableflip.dev/chatroom/pkg/chat"
	"tableflip.dev/chatroom/pkg/conversation"
	"tableflip.dev/chatroom/pkg/logger"
	"tableflip.dev/chatroom/pkg/responder"
	"tableflip.dev/chatroom/pkg/store"
)

// env is what every command needs: config, logging and the stores.
type env struct {
	cfg   *store.FileConfig
	log   *slog.Logger
	p     store.Persistence
	store *conversation.Store
}

func loadEnv() (*env, error) {
	cfg, err := store.LoadConfig()
	if err != nil {
		return nil, err
	}
	if lo.NoColor || termenv.EnvNoColor() {
		color.NoColor = true
	}
	level := cfg.LogLevel
	if lo.Level != "" {
		level = lo.Level
	}
	log := slog.New(logger.NewHandler(os.Stderr, &logger.Options{
		Level:   logger.ParseLevel(level),
		NoColor: color.NoColor,
	}))
	slog.SetDefault(log)

	p, err := store.Load(cfg)
	if err != nil {
		return nil, err
	}
	s, err := conversation.New(p, conversation.WithLogger(log))
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, log: log, p: p, store: s}, nil
}

func (e *env) responder() (responder.Responder, error) {
	rc := responder.ConfigFrom(e.cfg)
	rc.Logger = e.log
	return responder.New(rc)
}

func (e *env) sessions() (*auth.Sessions, error) {
	return auth.NewSessions(e.p)
}

func (e *env) notifier() chat.Notifier {
	return chat.LogNotifier{Log: e.log}
}

// user is the id reactions are recorded under: the signed in user, else the
// configured one.
func (e *env) user() string {
	if s, err := e.sessions(); err == nil {
		if u, ok := s.Current(); ok {
			return u.ID
		}
	}
	return e.cfg.User
}
