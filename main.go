package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"clementus360/taskboard/backend"
	"clementus360/taskboard/config"
	"clementus360/taskboard/handlers"
	"clementus360/taskboard/listpage"
	"clementus360/taskboard/middleware"
	"clementus360/taskboard/routes"
	"clementus360/taskboard/types"

	"github.com/spf13/cobra"
)

const (
	pruneInterval = 5 * time.Minute
	maxIdle       = 2 * time.Hour
)

var (
	backendFlag string
	addrFlag    string

	usernameFlag string
	passwordFlag string
	tokenFlag    string
	searchFlag   string
	statusFlag   string
	priorityFlag string
	orderingFlag string
	overdueFlag  bool
	pageFlag     int
	pageSizeFlag int
)

// taskGetter is implemented by every backend's task service.
type taskGetter interface {
	Get(ctx context.Context, id int64) (types.Task, error)
}

var rootCmd = &cobra.Command{
	Use:   "taskboard",
	Short: "Task list with confirmed changes, backed by a remote task service",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the task list view server",
	RunE:  runServe,
}

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Sign in and print one page of tasks",
	RunE:  runTasks,
}

var taskCmd = &cobra.Command{
	Use:   "task <id>",
	Short: "Sign in and print one task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTask,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "Task service backend (rest, supabase, memory)")

	serveCmd.Flags().StringVar(&addrFlag, "addr", "", "Listen address")

	for _, c := range []*cobra.Command{tasksCmd, taskCmd} {
		c.Flags().StringVarP(&usernameFlag, "username", "u", "", "Username to sign in with")
		c.Flags().StringVarP(&passwordFlag, "password", "p", "", "Password to sign in with")
		c.Flags().StringVar(&tokenFlag, "token", "", "Access token (supabase backend)")
	}
	tasksCmd.Flags().StringVarP(&searchFlag, "search", "s", "", "Search title, description and tags")
	tasksCmd.Flags().StringVar(&statusFlag, "status", "", "Only tasks with this status")
	tasksCmd.Flags().StringVar(&priorityFlag, "priority", "", "Only tasks with this priority")
	tasksCmd.Flags().StringVar(&orderingFlag, "ordering", string(types.OrderCreatedDesc), "Sort order, e.g. -created_at or due_date")
	tasksCmd.Flags().BoolVar(&overdueFlag, "overdue", false, "Only overdue tasks")
	tasksCmd.Flags().IntVar(&pageFlag, "page", 1, "Page to print")
	tasksCmd.Flags().IntVar(&pageSizeFlag, "page-size", 0, "Tasks per page")

	rootCmd.AddCommand(serveCmd, tasksCmd, taskCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadSettings reads the environment and applies the shared flags.
func loadSettings() (config.Settings, error) {
	config.LoadEnv()
	config.InitLogger()

	settings, err := config.Load()
	if backendFlag != "" {
		settings.Backend = config.Backend(backendFlag)
		err = settings.Validate()
	}
	if err != nil {
		return settings, fmt.Errorf("load config: %w", err)
	}
	return settings, nil
}

func pageOptions(settings config.Settings) listpage.Options {
	return listpage.Options{
		PageSize:  settings.PageSize,
		PageSizes: config.PageSizes,
		Timeout:   settings.RequestTimeout,
		Logger:    config.Logger,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	if addrFlag != "" {
		settings.Addr = addrFlag
	}

	b, err := backend.New(settings, config.Logger)
	if err != nil {
		return err
	}
	srv := handlers.NewServer(b, pageOptions(settings), config.Logger)

	mux := http.NewServeMux()
	routes.RegisterAllRoutes(mux, srv)
	handler := middleware.Chain(middleware.LoggingMiddleware, middleware.CORSMiddleware)(mux)

	stop := make(chan struct{})
	defer close(stop)
	go srv.PruneEvery(pruneInterval, maxIdle, stop)

	httpServer := &http.Server{
		Addr:              settings.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	go func() {
		<-ctx.Done()
		shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
		defer done()
		config.Logger.WithField("workspaces", srv.Workspaces().Len()).Info("Shutting down")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			config.Logger.WithError(err).Warn("Shutdown did not finish cleanly")
		}
	}()

	config.Logger.WithField("addr", settings.Addr).WithField("backend", settings.Backend).Info("Server is running")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// signIn logs in with the credential flags against the configured backend.
func signIn(cmd *cobra.Command, settings config.Settings) (backend.Account, error) {
	b, err := backend.New(settings, config.Logger)
	if err != nil {
		return backend.Account{}, err
	}
	acct, err := b.Login(cmd.Context(), types.LoginRequest{
		Username:    usernameFlag,
		Password:    passwordFlag,
		AccessToken: tokenFlag,
	})
	if err != nil {
		return backend.Account{}, fmt.Errorf("sign in: %w", err)
	}
	return acct, nil
}

func runTasks(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	if pageSizeFlag != 0 {
		settings.PageSize = pageSizeFlag
	}

	acct, err := signIn(cmd, settings)
	if err != nil {
		return err
	}

	page, err := listpage.New(acct.Service, acct.Session, pageOptions(settings))
	if err != nil {
		return err
	}

	drafts := []struct {
		field listpage.Field
		value any
	}{
		{listpage.FieldSearch, searchFlag},
		{listpage.FieldStatus, statusFlag},
		{listpage.FieldPriority, priorityFlag},
		{listpage.FieldOrdering, orderingFlag},
		{listpage.FieldOverdue, overdueFlag},
	}
	for _, d := range drafts {
		if err := page.SetDraftField(d.field, d.value); err != nil {
			return err
		}
	}
	page.ApplyFilters()
	page.Wait()
	if pageFlag > 1 {
		page.GoToPage(pageFlag)
		page.Wait()
	}

	printView(cmd, page.Snapshot())
	return nil
}

func printView(cmd *cobra.Command, view listpage.View) {
	out := cmd.OutOrStdout()
	if view.User != nil {
		fmt.Fprintf(out, "Hello, %s\n\n", view.User.DisplayName())
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tSTATUS\tPRIORITY\tDUE\tTAGS")
	for _, t := range view.Tasks {
		due := "-"
		if t.DueDate != nil {
			due = t.DueDate.Format("2006-01-02")
			if t.IsOverdue {
				due += " (overdue)"
			}
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", t.ID, t.Title, t.Status, t.Priority, due, strings.Join(t.TagList(), ", "))
	}
	tw.Flush()

	pg := view.Pagination
	if pg.TotalItems == 0 {
		fmt.Fprintln(out, "\nNo tasks found")
		return
	}
	fmt.Fprintf(out, "\nShowing %d-%d of %d (page %d of %d)\n", pg.From, pg.To, pg.TotalItems, pg.Page, pg.TotalPages)
}

func runTask(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid task id %q", args[0])
	}
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	acct, err := signIn(cmd, settings)
	if err != nil {
		return err
	}

	getter, ok := acct.Service.(taskGetter)
	if !ok {
		return fmt.Errorf("backend %s cannot fetch single tasks", settings.Backend)
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), settings.RequestTimeout)
	defer cancel()
	t, err := getter.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("get task %d: %w", id, err)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\t%d\n", t.ID)
	fmt.Fprintf(tw, "Title\t%s\n", t.Title)
	if t.Description != "" {
		fmt.Fprintf(tw, "Description\t%s\n", t.Description)
	}
	fmt.Fprintf(tw, "Status\t%s\n", t.Status)
	fmt.Fprintf(tw, "Priority\t%s\n", t.Priority)
	if t.DueDate != nil {
		fmt.Fprintf(tw, "Due\t%s\n", t.DueDate.Local().Format("2006-01-02 15:04"))
	}
	for i, tag := range t.TagList() {
		label := ""
		if i == 0 {
			label = "Tags"
		}
		fmt.Fprintf(tw, "%s\t%s\n", label, tag)
	}
	return tw.Flush()
}
