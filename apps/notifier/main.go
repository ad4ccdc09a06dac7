// Notifier signs in to the organizador API and prints the notifications of the usuario as they arrive.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/tupad/organizador/client"
	"github.com/tupad/organizador/core"
	logsvc "github.com/tupad/organizador/services/logger"
)

var readPasswordFunc = term.ReadPassword // mockable

func main() {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stderr, "NOTIFIER : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	email := flag.String("email", "", "Sign in with this email; the password is prompted next.")
	theme := flag.String("theme", "", "Color theme: light, dark or auto.")
	noColor := flag.Bool("no-color", false, "Disable colors.")
	logout := flag.Bool("logout", false, "Sign out and forget the stored session.")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, conf, logger, options{
		email:   *email,
		theme:   *theme,
		noColor: *noColor,
		logout:  *logout,
	}); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type options struct {
	email   string
	theme   string
	noColor bool
	logout  bool
}

func run(ctx context.Context, conf *core.Config, logger core.Logger, opts options) error {
	storePath, err := clientStorePath(conf)
	if err != nil {
		return err
	}
	store, err := client.NewFileStore(storePath)
	if err != nil {
		return err
	}

	out := newTerminal(os.Stdout, os.Getenv("COLORFGBG"), opts.noColor)
	app, err := client.NewApp(client.AppDeps{
		Conf:         conf,
		Store:        store,
		Logger:       logger,
		SchemeSource: out,
		ThemeApplier: out,
	})
	if err != nil {
		return err
	}
	defer app.Close()

	if opts.logout {
		app.Logout(ctx)
		return nil
	}
	if opts.theme != "" {
		if err = app.Theme.SetTheme(opts.theme); err != nil {
			return err
		}
	}

	if opts.email != "" || !app.Session.IsAuthenticated() {
		if err = login(ctx, app, opts.email); err != nil {
			return errors.New(app.Message(err))
		}
	} else if err = app.Resume(ctx); err != nil {
		return err
	}

	if stats, err := app.DashboardStats(ctx); err == nil {
		out.printStats(stats, app.Notifications.Unread())
	} else {
		logger.Debug(fmt.Sprintf("dashboard stats: %v", err))
	}
	return watch(ctx, app, out)
}

func login(ctx context.Context, app *client.App, email string) error {
	if email == "" {
		return errors.New("no hay una sesión guardada: usá -email")
	}
	fmt.Print("Contraseña:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return err
	}
	_, err = app.Login(ctx, client.Credentials{Email: email, Password: string(pwd)})
	return err
}

// watch prints every notification not shown yet until ctx is done or polling ends.
func watch(ctx context.Context, app *client.App, out *terminal) error {
	updated, unsubscribe := app.Notifications.Subscribe()
	defer unsubscribe()

	shown := make(map[int]bool)
	printNew := func() {
		items := app.Notifications.Items()
		for i := len(items) - 1; i >= 0; i-- {
			if !shown[items[i].ID] {
				shown[items[i].ID] = true
				out.printNotification(items[i])
			}
		}
	}
	printNew()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-updated:
			printNew()
		case <-ticker.C:
			if !app.Session.IsAuthenticated() {
				return client.ErrUnauthorized
			}
			if !app.Poller.IsPolling() {
				return errors.Errorf("se detuvo la consulta de notificaciones tras %d intentos fallidos", app.Poller.RetryCount())
			}
		}
	}
}

func clientStorePath(conf *core.Config) (string, error) {
	if conf.Client.StorePath != "" {
		return conf.Client.StorePath, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "organizador", "client.json"), nil
}
