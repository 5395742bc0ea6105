package cmd

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/samsriram712/alex/internal/api"
	"github.com/samsriram712/alex/internal/auth"
	"github.com/samsriram712/alex/internal/config"
	"github.com/samsriram712/alex/internal/dashboard"
	"github.com/samsriram712/alex/internal/journal"
	"github.com/samsriram712/alex/internal/logging"
	"github.com/samsriram712/alex/internal/model"
)

// session is everything a command needs after config has been read.
type session struct {
	cfg     *config.Config
	log     *zap.Logger
	client  *api.Client
	journal *journal.Journal
}

// openSession loads the env file and config and builds the logger and API
// client. logFile sends logs to a file instead of stderr.
func openSession(logFile string) (*session, error) {
	if err := config.LoadEnvFile(flagEnvFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	level := cfg.LogLevel
	if flagLogLevel != "" {
		level = flagLogLevel
	}
	log, err := logging.New(logging.Options{Level: level, File: logFile})
	if err != nil {
		return nil, err
	}

	ts := auth.NewTokenSource(cfg.Auth, cfg.TokenTTLDuration())
	if ts == nil {
		log.Warn("no credential configured; requests will be sent without a bearer token")
	}
	client := api.New(cfg.APIURL, ts, api.WithTimeout(cfg.TimeoutDuration()))

	return &session{cfg: cfg, log: log, client: client}, nil
}

// openJournal opens the transition journal. Commands that only need it as a
// side record keep working when it cannot be opened.
func (s *session) openJournal() (*journal.Journal, error) {
	if s.journal != nil {
		return s.journal, nil
	}
	j, err := journal.Open(config.HistoryPath())
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}
	s.journal = j
	return j, nil
}

func (s *session) dashboard(af model.AlertFilter, tf model.TodoFilter) *dashboard.Dashboard {
	j, err := s.openJournal()
	if err != nil {
		s.log.Warn("transition history disabled", zap.Error(err))
	}
	return dashboard.New(dashboard.Options{
		Client:      s.client,
		Journal:     j,
		Logger:      s.log,
		AlertFilter: af,
		TodoFilter:  tf,
	})
}

func (s *session) Close() {
	if s.journal != nil {
		s.journal.Close()
	}
	_ = s.log.Sync()
}

func parseDomain(s string) (model.Domain, error) {
	d := model.Domain(strings.ToLower(strings.TrimSpace(s)))
	if d == "" || d.Valid() {
		return d, nil
	}
	names := make([]string, 0, len(model.AllDomains()))
	for _, k := range model.AllDomains() {
		names = append(names, string(k))
	}
	return "", fmt.Errorf("unknown domain %q (want one of %s)", s, strings.Join(names, ", "))
}

func parseAlertStatus(s string) (model.AlertStatus, error) {
	switch st := model.AlertStatus(strings.ToLower(s)); st {
	case "", model.AlertNew, model.AlertRead, model.AlertDismissed:
		return st, nil
	}
	return "", fmt.Errorf("unknown alert status %q (want new, read or dismissed)", s)
}

func parseTodoStatus(s string) (model.TodoStatus, error) {
	switch st := model.TodoStatus(strings.ToLower(s)); st {
	case "", model.TodoOpen, model.TodoInProgress, model.TodoDone:
		return st, nil
	}
	return "", fmt.Errorf("unknown todo status %q (want open, in_progress or done)", s)
}

func parseLimit(n int) (int, error) {
	if n < 0 {
		return 0, fmt.Errorf("--limit must not be negative")
	}
	if n > model.MaxLimit {
		return model.MaxLimit, nil
	}
	return n, nil
}

// transitionError names the rejected change and, when the backend refused the
// credential, says where it comes from.
func transitionError(noun, id, status string, err error) error {
	if api.IsUnauthorized(err) {
		return fmt.Errorf("setting %s %s to %s: not signed in (set auth in the config file): %w", noun, id, status, err)
	}
	return fmt.Errorf("setting %s %s to %s: %w", noun, id, status, err)
}
