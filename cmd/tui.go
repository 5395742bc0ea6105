package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/samsriram712/alex/internal/config"
	"github.com/samsriram712/alex/internal/model"
	"github.com/samsriram712/alex/internal/tui"
)

func runTUI(cmd *cobra.Command, args []string) error {
	// Logs go to a file; stderr output would tear the alternate screen.
	s, err := openSession(config.LogPath())
	if err != nil {
		return err
	}
	defer s.Close()

	d := s.dashboard(model.AlertFilter{}, model.TodoFilter{})
	s.log.Info("starting dashboard", zap.String("api_url", s.cfg.APIURL))

	return tui.Run(tui.RunOpts{
		Alerts:       d.Alerts,
		Todos:        d.Todos,
		Counts:       d.Counts,
		AlertDomains: s.cfg.AlertDomains,
		TodoDomains:  s.cfg.TodoDomains,
		WebURL:       s.cfg.WebURL,
		Timeout:      s.cfg.TimeoutDuration(),
		Logger:       s.log,
		StartOnTodos: flagTodos,
	})
}
