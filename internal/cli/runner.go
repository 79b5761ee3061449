package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/Makepad-fr/tada/internal/accesslog"
	"github.com/Makepad-fr/tada/internal/config"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/server"
	"github.com/Makepad-fr/tada/internal/store"
	"github.com/Makepad-fr/tada/internal/store/jsonstore"
	"github.com/Makepad-fr/tada/internal/store/sqlitestore"
	"github.com/Makepad-fr/tada/internal/todo"
	"github.com/Makepad-fr/tada/internal/tui"
	"github.com/Makepad-fr/tada/internal/ui"
)

// Exit codes.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// Options tune behavior from root flags.
type Options struct {
	Group  bool           // list grouped by pending/done
	Config *config.Config // nil means defaults

	// Ctx bounds serve; nil means run until SIGINT/SIGTERM.
	Ctx context.Context

	Out, Err io.Writer // default to stdout/stderr
}

func (o *Options) normalize() {
	if o.Config == nil {
		o.Config = config.Default()
	}
	if o.Ctx == nil {
		o.Ctx = context.Background()
	}
	if o.Out == nil {
		o.Out = os.Stdout
	}
	if o.Err == nil {
		o.Err = os.Stderr
	}
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func Run(args []string, opt Options) int {
	opt.normalize()
	if len(args) == 0 {
		PrintHelp(opt.Err)
		return ExitUsage
	}
	cmd, a := args[0], args[1:]

	switch cmd {
	case "help", "-h", "--help":
		PrintHelp(opt.Out)
		return ExitOK

	case "serve":
		return doServe(opt)

	case "ls":
		return withService(opt, func(svc *todo.Service) int { return doList(svc, opt) })

	case "tui":
		return withService(opt, func(svc *todo.Service) int { return doTUI(svc, opt) })

	case "add":
		if len(a) == 0 {
			ui.Fail(opt.Err, "usage: todo add <title...>")
			return ExitUsage
		}
		title := strings.TrimSpace(strings.Join(a, " "))
		return withService(opt, func(svc *todo.Service) int { return doAdd(svc, title, opt) })

	case "done", "rm":
		if len(a) != 1 {
			ui.Fail(opt.Err, fmt.Sprintf("usage: todo %s <id>", cmd))
			return ExitUsage
		}
		id, err := strconv.Atoi(a[0])
		if err != nil {
			ui.Fail(opt.Err, cmd+": not a number: "+a[0])
			return ExitUsage
		}
		if cmd == "done" {
			return withService(opt, func(svc *todo.Service) int { return doToggle(svc, id, opt) })
		}
		return withService(opt, func(svc *todo.Service) int { return doRemove(svc, id, opt) })
	}

	ui.Fail(opt.Err, "unknown subcommand: "+cmd)
	fmt.Fprintln(opt.Err)
	PrintHelp(opt.Err)
	return ExitUsage
}

func PrintHelp(w io.Writer) {
	fmt.Fprintf(w, `todo - todos over HTTP and in the terminal

Usage:
  todo [-config tada.toml] [-group] <subcommand> [args]

Subcommands:
  serve              Serve the HTTP API (GET/POST /todos, GET/PUT/DELETE /todos/{id})
  add <title...>     Add a new todo (title can be multiple words)
  ls                 List todos
  tui                Interactive list
  done <id>          Toggle completed for the todo with id
  rm <id>            Remove the todo with id

Examples:
  todo serve
  todo add "Buy milk"
  todo ls
  todo done 2
  todo rm 3
`)
}

// openStore opens the configured backend. close is never nil.
func openStore(cfg *config.Config) (todo.Store, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Storage {
	case config.StorageSQLite:
		s, err := sqlitestore.Open(cfg.SQLiteFile)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	case config.StorageMemory:
		return store.NewMemory(), noop, nil
	default:
		s, err := jsonstore.Open(cfg.DataFile)
		if err != nil {
			return nil, noop, err
		}
		return s, noop, nil
	}
}

func withService(opt Options, fn func(*todo.Service) int) int {
	st, closeStore, err := openStore(opt.Config)
	if err != nil {
		ui.Fail(opt.Err, "open: "+err.Error())
		return ExitError
	}
	defer func() {
		if err := closeStore(); err != nil {
			ui.Fail(opt.Err, "close: "+err.Error())
		}
	}()
	return fn(todo.NewService(st))
}

// -------------- subcommand impls ----------------

func doServe(opt Options) int {
	cfg := opt.Config
	level, err := cfg.Level()
	if err != nil {
		ui.Fail(opt.Err, err.Error())
		return ExitUsage
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(opt.Err, &slog.HandlerOptions{Level: level})))

	st, closeStore, err := openStore(cfg)
	if err != nil {
		slog.Error("failed to open store", "storage", cfg.Storage, "err", err)
		return ExitError
	}
	defer func() {
		if err := closeStore(); err != nil {
			slog.Error("error closing store", "err", err)
		}
	}()

	requests, err := accesslog.Open(cfg.LogFile)
	if err != nil {
		slog.Error("failed to open access log", "path", cfg.LogFile, "err", err)
		return ExitError
	}
	defer func() {
		if err := requests.Close(); err != nil {
			slog.Error("error closing access log", "err", err)
		}
	}()

	ctx, stop := signal.NotifyContext(opt.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler := server.New(todo.NewService(st), requests)
	slog.Info("Server is running", "url", displayURL(cfg.Addr), "storage", cfg.Storage)
	if err := server.ListenAndServe(ctx, cfg.Addr, handler); err != nil {
		slog.Error("server failed", "err", err)
		return ExitError
	}
	slog.Info("server stopped")
	return ExitOK
}

func displayURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	return "http://" + addr
}

func doList(svc *todo.Service, opt Options) int {
	items, err := svc.List()
	if err != nil {
		ui.Fail(opt.Err, "load: "+err.Error())
		return ExitError
	}
	t := ui.Current()

	// Header + progress
	d, p := stats(items)
	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		t.Title.Render("Todos"),
		t.Success.Render(t.SymDone), d,
		t.Pending.Render(t.SymPending), p,
		t.Accent.Render("Total"), len(items),
	)

	var lines []string
	lines = append(lines, header)
	lines = append(lines, t.Muted.Render(ui.ProgressBar(d, d+p, 28)))
	lines = append(lines, "")

	if opt.Group {
		lines = append(lines, groupLines(items)...)
	} else {
		lines = append(lines, flatLines(items)...)
	}
	lines = append(lines, "")
	lines = append(lines, t.Muted.Render("Tip: add with `todo add \"Buy milk\"`"))
	ui.Panel(opt.Out, lines)
	return ExitOK
}

func doTUI(svc *todo.Service, opt Options) int {
	if err := tui.Run(svc); err != nil {
		ui.Fail(opt.Err, "tui: "+err.Error())
		return ExitError
	}
	return ExitOK
}

func doAdd(svc *todo.Service, title string, opt Options) int {
	t, err := svc.Create(title, false)
	var verr *todo.ValidationError
	if errors.As(err, &verr) {
		ui.Fail(opt.Err, "add: "+verr.Message)
		return ExitUsage
	}
	if err != nil {
		ui.Fail(opt.Err, "add: "+err.Error())
		return ExitError
	}
	ui.OK(opt.Out, fmt.Sprintf("added #%d", t.ID))
	return ExitOK
}

func doToggle(svc *todo.Service, id int, opt Options) int {
	t, err := svc.Toggle(id)
	if code := reportLookup(err, "done", id, opt); code != ExitOK {
		return code
	}
	state := "pending"
	if t.Completed {
		state = "done"
	}
	ui.OK(opt.Out, fmt.Sprintf("#%d marked %s", t.ID, state))
	return ExitOK
}

func doRemove(svc *todo.Service, id int, opt Options) int {
	t, err := svc.Delete(id)
	if code := reportLookup(err, "rm", id, opt); code != ExitOK {
		return code
	}
	ui.OK(opt.Out, fmt.Sprintf("removed #%d %s", t.ID, t.Title))
	return ExitOK
}

func reportLookup(err error, op string, id int, opt Options) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, todo.ErrNotFound):
		ui.Fail(opt.Err, fmt.Sprintf("%s: no todo with id %d", op, id))
		ui.Hint(opt.Err, "Hint: run `todo ls` to see valid ids")
		return ExitUsage
	default:
		ui.Fail(opt.Err, op+": "+err.Error())
		return ExitError
	}
}

// -------------- rendering helpers --------------

func stats(items []model.Todo) (done, pending int) {
	for _, it := range items {
		if it.Completed {
			done++
		} else {
			pending++
		}
	}
	return
}

func flatLines(items []model.Todo) []string {
	t := ui.Current()
	if len(items) == 0 {
		return []string{t.Muted.Render("no todos")}
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		id := fmt.Sprintf("#%-3d", it.ID)
		box, style := t.BoxUnchecked, t.Muted
		if it.Completed {
			box, style = t.BoxChecked, t.Success
		}
		title := it.Title
		if len(title) > 80 {
			title = title[:77] + "..."
		}
		out = append(out, fmt.Sprintf("%s %s %s", t.Muted.Render(id), style.Render(box), title))
	}
	return out
}

func groupLines(items []model.Todo) []string {
	var pend, done []model.Todo
	for _, it := range items {
		if it.Completed {
			done = append(done, it)
		} else {
			pend = append(pend, it)
		}
	}
	t := ui.Current()
	var lines []string
	lines = append(lines, t.Accent.Render("Pending"))
	if len(pend) == 0 {
		lines = append(lines, t.Muted.Render("(none)"))
	} else {
		lines = append(lines, flatLines(pend)...)
	}
	lines = append(lines, "")
	lines = append(lines, t.Accent.Render("Done"))
	if len(done) == 0 {
		lines = append(lines, t.Muted.Render("(none)"))
	} else {
		lines = append(lines, flatLines(done)...)
	}
	return lines
}
