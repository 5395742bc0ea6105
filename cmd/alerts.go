package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/samsriram712/alex/internal/model"
	"github.com/samsriram712/alex/internal/remotelist"
)

var (
	flagAlertDomain      string
	flagIncludeDismissed bool
	flagAlertStatus      string
	flagAlertSymbol      string
	flagAlertLimit       int
	flagAlertJSON        bool
)

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "List alerts",
	Long: `List alerts from the backend. Dismissed alerts are hidden unless
--include-dismissed is given.`,
	Args: cobra.NoArgs,
	RunE: runAlertsList,
}

var alertsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List alerts",
	Args:  cobra.NoArgs,
	RunE:  runAlertsList,
}

var alertsReadCmd = &cobra.Command{
	Use:   "read ID",
	Short: "Mark an alert as read",
	Args:  cobra.ExactArgs(1),
	RunE:  runAlertTransition(model.AlertRead),
}

var alertsDismissCmd = &cobra.Command{
	Use:   "dismiss ID",
	Short: "Dismiss an alert",
	Args:  cobra.ExactArgs(1),
	RunE:  runAlertTransition(model.AlertDismissed),
}

var alertsSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show unread and critical alerts per domain",
	Args:  cobra.NoArgs,
	RunE:  runAlertsSummary,
}

func init() {
	pf := alertsCmd.PersistentFlags()
	pf.StringVar(&flagAlertDomain, "domain", "", "only show alerts for this domain")
	pf.BoolVar(&flagIncludeDismissed, "include-dismissed", false, "include dismissed alerts")
	pf.StringVar(&flagAlertStatus, "status", "", "only show alerts with this status (new, read, dismissed)")
	pf.StringVar(&flagAlertSymbol, "symbol", "", "only show alerts for this ticker symbol")
	pf.IntVar(&flagAlertLimit, "limit", 0, fmt.Sprintf("maximum number of alerts (at most %d)", model.MaxLimit))
	pf.BoolVar(&flagAlertJSON, "json", false, "print JSON instead of a table")

	alertsCmd.AddCommand(alertsListCmd)
	alertsCmd.AddCommand(alertsReadCmd)
	alertsCmd.AddCommand(alertsDismissCmd)
	alertsCmd.AddCommand(alertsSummaryCmd)
}

func alertFilterFromFlags() (model.AlertFilter, error) {
	domain, err := parseDomain(flagAlertDomain)
	if err != nil {
		return model.AlertFilter{}, err
	}
	status, err := parseAlertStatus(flagAlertStatus)
	if err != nil {
		return model.AlertFilter{}, err
	}
	limit, err := parseLimit(flagAlertLimit)
	if err != nil {
		return model.AlertFilter{}, err
	}
	return model.AlertFilter{
		Domain:           domain,
		IncludeDismissed: flagIncludeDismissed,
		Status:           status,
		Symbol:           strings.ToUpper(strings.TrimSpace(flagAlertSymbol)),
		Limit:            limit,
	}, nil
}

func runAlertsList(cmd *cobra.Command, args []string) error {
	f, err := alertFilterFromFlags()
	if err != nil {
		return err
	}
	s, err := openSession("")
	if err != nil {
		return err
	}
	defer s.Close()

	d := s.dashboard(f, model.TodoFilter{})
	if _, err := d.Alerts.Load(cmd.Context()); err != nil {
		return fmt.Errorf("loading alerts: %w", err)
	}
	st := d.Alerts.Snapshot()
	if flagAlertJSON {
		return writeJSON(cmd.OutOrStdout(), st.Items)
	}
	printAlerts(cmd.OutOrStdout(), st.Items)
	return nil
}

func runAlertTransition(status model.AlertStatus) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		f, err := alertFilterFromFlags()
		if err != nil {
			return err
		}
		s, err := openSession("")
		if err != nil {
			return err
		}
		defer s.Close()

		id := args[0]
		d := s.dashboard(f, model.TodoFilter{})
		err = d.Alerts.Mutate(cmd.Context(), id, string(status))
		if err != nil && !errors.Is(err, remotelist.ErrReload) {
			return transitionError("alert", id, string(status), err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Alert %s is now %s.\n", id, status)
		return err
	}
}

func runAlertsSummary(cmd *cobra.Command, args []string) error {
	s, err := openSession("")
	if err != nil {
		return err
	}
	defer s.Close()

	var (
		summary model.AlertSummary
		open    int
	)
	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		var err error
		summary, err = s.client.AlertSummary(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		open, err = s.client.OpenTodoCount(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("loading summary: %w", err)
	}

	printSummary(cmd.OutOrStdout(), summary, open)
	return nil
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers(headers...)
}

func printAlerts(w io.Writer, alerts []model.Alert) {
	if len(alerts) == 0 {
		fmt.Fprintln(w, "No alerts")
		return
	}
	t := newTable("ID", "DOMAIN", "SEVERITY", "STATUS", "TITLE", "CREATED")
	for _, al := range alerts {
		t.Row(al.ID, string(al.Domain), strings.ToUpper(string(al.Severity)), string(al.Status),
			truncate(al.Title, 60), al.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	fmt.Fprintln(w, t.Render())
}

func printSummary(w io.Writer, s model.AlertSummary, openTodos int) {
	fmt.Fprintf(w, "Unread alerts: %d\n", s.UnreadCount)
	fmt.Fprintf(w, "Open todos:    %d\n", openTodos)
	if len(s.ByDomain) == 0 {
		return
	}

	keys := make([]string, 0, len(s.ByDomain))
	for k := range s.ByDomain {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	t := newTable("DOMAIN", "UNREAD", "CRITICAL")
	for _, k := range keys {
		row := s.ByDomain[k]
		t.Row(k, strconv.Itoa(row.Unread), strconv.Itoa(row.Critical))
	}
	fmt.Fprintln(w, t.Render())
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
