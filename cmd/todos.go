package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/samsriram712/alex/internal/counts"
	"github.com/samsriram712/alex/internal/model"
	"github.com/samsriram712/alex/internal/remotelist"
)

var (
	flagTodoDomain string
	flagTodoStatus string
	flagTodoSymbol string
	flagTodoLimit  int
	flagTodoJSON   bool
)

var todosCmd = &cobra.Command{
	Use:   "todos",
	Short: "List todos",
	Args:  cobra.NoArgs,
	RunE:  runTodosList,
}

var todosListCmd = &cobra.Command{
	Use:   "list",
	Short: "List todos",
	Args:  cobra.NoArgs,
	RunE:  runTodosList,
}

var todosStartCmd = &cobra.Command{
	Use:   "start ID",
	Short: "Start working on a todo",
	Args:  cobra.ExactArgs(1),
	RunE:  runTodoTransition(model.TodoInProgress),
}

var todosDoneCmd = &cobra.Command{
	Use:   "done ID",
	Short: "Mark a todo as done",
	Args:  cobra.ExactArgs(1),
	RunE:  runTodoTransition(model.TodoDone),
}

var todosCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Print the number of open todos",
	Long:  "Print the number of open todos. Any failure to reach the backend prints 0.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession("")
		if err != nil {
			return err
		}
		defer s.Close()

		d := s.dashboard(model.AlertFilter{}, model.TodoFilter{})
		fmt.Fprintln(cmd.OutOrStdout(), counts.TodosOpen(cmd.Context(), d.Counts))
		return nil
	},
}

func init() {
	pf := todosCmd.PersistentFlags()
	pf.StringVar(&flagTodoDomain, "domain", "", "only show todos for this domain")
	pf.StringVar(&flagTodoStatus, "status", "", "only show todos with this status (open, in_progress, done)")
	pf.StringVar(&flagTodoSymbol, "symbol", "", "only show todos for this ticker symbol")
	pf.IntVar(&flagTodoLimit, "limit", 0, fmt.Sprintf("maximum number of todos (at most %d)", model.MaxLimit))
	pf.BoolVar(&flagTodoJSON, "json", false, "print JSON instead of a table")

	todosCmd.AddCommand(todosListCmd)
	todosCmd.AddCommand(todosStartCmd)
	todosCmd.AddCommand(todosDoneCmd)
	todosCmd.AddCommand(todosCountCmd)
}

func todoFilterFromFlags() (model.TodoFilter, error) {
	domain, err := parseDomain(flagTodoDomain)
	if err != nil {
		return model.TodoFilter{}, err
	}
	status, err := parseTodoStatus(flagTodoStatus)
	if err != nil {
		return model.TodoFilter{}, err
	}
	limit, err := parseLimit(flagTodoLimit)
	if err != nil {
		return model.TodoFilter{}, err
	}
	return model.TodoFilter{
		Domain: domain,
		Status: status,
		Symbol: strings.ToUpper(strings.TrimSpace(flagTodoSymbol)),
		Limit:  limit,
	}, nil
}

func runTodosList(cmd *cobra.Command, args []string) error {
	f, err := todoFilterFromFlags()
	if err != nil {
		return err
	}
	s, err := openSession("")
	if err != nil {
		return err
	}
	defer s.Close()

	d := s.dashboard(model.AlertFilter{}, f)
	if _, err := d.Todos.Load(cmd.Context()); err != nil {
		return fmt.Errorf("loading todos: %w", err)
	}
	st := d.Todos.Snapshot()
	if flagTodoJSON {
		return writeJSON(cmd.OutOrStdout(), st.Items)
	}
	printTodos(cmd.OutOrStdout(), st.Items)
	return nil
}

func runTodoTransition(status model.TodoStatus) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		f, err := todoFilterFromFlags()
		if err != nil {
			return err
		}
		s, err := openSession("")
		if err != nil {
			return err
		}
		defer s.Close()

		id := args[0]
		d := s.dashboard(model.AlertFilter{}, f)
		err = d.Todos.Mutate(cmd.Context(), id, string(status))
		if err != nil && !errors.Is(err, remotelist.ErrReload) {
			return transitionError("todo", id, string(status), err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Todo %s is now %s.\n", id, status)
		return err
	}
}

func printTodos(w io.Writer, todos []model.Todo) {
	if len(todos) == 0 {
		fmt.Fprintln(w, "No tasks")
		return
	}
	t := newTable("ID", "DOMAIN", "PRIORITY", "STATUS", "TITLE", "CREATED")
	for _, td := range todos {
		status := string(td.Status)
		if td.InProgress() {
			status = "in progress"
		}
		t.Row(td.ID, string(td.Domain), strings.ToUpper(string(td.Priority)), status,
			truncate(td.Title, 60), td.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	fmt.Fprintln(w, t.Render())
}
