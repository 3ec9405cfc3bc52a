// Package cli implements the administrative command-line tool. It works
// against the same database as the server: registering accounts, listing
// them, showing per-account statistics and audit history, and deleting
// accounts.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/gatekeeper/internal/server/access"
	"github.com/dmitrijs2005/gatekeeper/internal/server/store"
)

const historyLimit = 10

type App struct {
	access *access.Service
	store  *store.Store
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(a *access.Service, s *store.Store, in io.Reader, out io.Writer) *App {
	return &App{
		access: a,
		store:  s,
		reader: bufio.NewReader(in),
		out:    out,
	}
}

// Run dispatches one subcommand. args is the command line after the binary
// name, with configuration flags already consumed.
func (app *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		app.usage()
		return nil
	}

	switch args[0] {
	case "register":
		return app.register(ctx)
	case "list":
		return app.list(ctx)
	case "stats":
		return app.stats(ctx, args[1:])
	case "history":
		return app.history(ctx, args[1:])
	case "delete":
		return app.delete(ctx, args[1:])
	default:
		app.usage()
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

func (app *App) usage() {
	fmt.Fprintln(app.out, "Usage: gatekeeper-cli <command>")
	fmt.Fprintln(app.out, "Commands:")
	fmt.Fprintln(app.out, "  register         create an account interactively")
	fmt.Fprintln(app.out, "  list             list accounts, newest first")
	fmt.Fprintln(app.out, "  stats <email>    show an account's login statistics")
	fmt.Fprintln(app.out, "  history <email>  show recent login attempts")
	fmt.Fprintln(app.out, "  delete <email>   delete an account, keeping its audit trail")
}

func requireEmail(args []string) (string, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return "", fmt.Errorf("email argument is required")
	}
	return strings.TrimSpace(args[0]), nil
}

func (app *App) register(ctx context.Context) error {
	name, err := GetSimpleText(app.reader, "Name", app.out)
	if err != nil {
		return err
	}
	email, err := GetSimpleText(app.reader, "Email", app.out)
	if err != nil {
		return err
	}
	pw, err := GetPassword(app.out)
	if err != nil {
		return err
	}

	if err := app.access.Register(ctx, name, email, string(pw)); err != nil {
		return err
	}
	fmt.Fprintf(app.out, "Account %s registered\n", email)
	return nil
}

func (app *App) list(ctx context.Context) error {
	accounts, err := app.store.GetAllAccounts(ctx)
	if err != nil {
		return err
	}
	if len(accounts) == 0 {
		fmt.Fprintln(app.out, "No accounts")
		return nil
	}

	for _, a := range accounts {
		fmt.Fprintf(app.out, "%s\t%s\tfailed_attempts=%d\tcreated=%s\n",
			a.Email, a.Name, a.FailedAttempts, a.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func (app *App) stats(ctx context.Context, args []string) error {
	email, err := requireEmail(args)
	if err != nil {
		return err
	}

	stats, err := app.store.Stats(ctx, email)
	if err != nil {
		return err
	}

	fmt.Fprintf(app.out, "Name:              %s\n", stats.Name)
	fmt.Fprintf(app.out, "Email:             %s\n", stats.Email)
	fmt.Fprintf(app.out, "Registered:        %s\n", stats.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(app.out, "Failed attempts:   %d\n", stats.FailedAttempts)
	fmt.Fprintf(app.out, "Successful logins: %d\n", stats.SuccessfulLogins)
	fmt.Fprintf(app.out, "Failed logins:     %d\n", stats.FailedLogins)
	return nil
}

func (app *App) history(ctx context.Context, args []string) error {
	email, err := requireEmail(args)
	if err != nil {
		return err
	}

	entries, err := app.store.History(ctx, email, historyLimit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(app.out, "No attempts recorded")
		return nil
	}

	for _, e := range entries {
		result := "FAIL"
		if e.Success {
			result = "OK"
		}
		fmt.Fprintf(app.out, "%s\t%s\t%s\n", e.AttemptTime.Format("2006-01-02 15:04:05"), e.Email, result)
	}
	return nil
}

func (app *App) delete(ctx context.Context, args []string) error {
	email, err := requireEmail(args)
	if err != nil {
		return err
	}

	affected, err := app.store.Delete(ctx, email)
	if err != nil {
		return err
	}
	if !affected {
		fmt.Fprintf(app.out, "Account %s not found\n", email)
		return nil
	}
	fmt.Fprintf(app.out, "Account %s deleted\n", email)
	return nil
}
