package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/odyssey-erp/usersync/internal/app"
	"github.com/odyssey-erp/usersync/internal/syncctl"
	"github.com/odyssey-erp/usersync/internal/userapi"
)

// errReported marks failures whose message was already shown to the user.
var errReported = errors.New("reported")

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "usersync",
		Short: "Keep a local view of the user service in sync",
		Long: `usersync talks to the user CRUD service and reloads the full user list
after every successful write.

Configuration comes from the environment (USERSYNC_API_URL,
USERSYNC_HTTP_TIMEOUT, LOG_LEVEL, ...). Flags override it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("api-url", "", "Base URL of the user service (overrides USERSYNC_API_URL)")
	root.PersistentFlags().Duration("timeout", 0, "Per-request timeout, 0 waits forever (overrides USERSYNC_HTTP_TIMEOUT)")

	root.AddCommand(
		newConsoleCmd(),
		newListCmd(),
		newCreateCmd(),
		newUpdateCmd(),
		newDeleteCmd(),
	)
	return root
}

// loadConfig reads the environment and applies persistent flag overrides.
func loadConfig(cmd *cobra.Command, load func() (*app.Config, error)) (*app.Config, error) {
	cfg, err := load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if f := cmd.Flags().Lookup("api-url"); f != nil && f.Changed {
		cfg.APIURL = f.Value.String()
	}
	if f := cmd.Flags().Lookup("timeout"); f != nil && f.Changed {
		timeout, err := time.ParseDuration(f.Value.String())
		if err != nil {
			return nil, err
		}
		cfg.HTTPTimeout = timeout
	}
	return cfg, nil
}

// newController builds a controller for one terminal command. Notices go to
// the command output; logs go to stderr unless LOG_FILE is set.
func newController(cmd *cobra.Command) (*syncctl.Controller, error) {
	cfg, err := loadConfig(cmd, app.LoadConfig)
	if err != nil {
		return nil, err
	}
	logger := app.NewLoggerTo(cfg, cmd.ErrOrStderr())
	client := userapi.NewClient(cfg.APIURL, &http.Client{Timeout: cfg.HTTPTimeout})
	logger.Debug("controller configured", slog.String("api", client.BaseURL()))
	return syncctl.New(client, syncctl.Options{
		Logger:   logger,
		Notifier: terminalNotifier{out: cmd.OutOrStdout(), errOut: cmd.ErrOrStderr()},
	}), nil
}

// resultError converts a finished operation into the command's exit status.
func resultError(res syncctl.Result) error {
	switch res.Status {
	case syncctl.StatusSucceeded:
		return nil
	case syncctl.StatusInvalid:
		return errReported
	default:
		return fmt.Errorf("%s failed: %w", res.Op, res.Err)
	}
}

// writeResult is resultError for writes: it also warns when the list shown
// afterwards could not be reloaded.
func writeResult(cmd *cobra.Command, res syncctl.Result) error {
	if res.OK() && !res.Reloaded {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning: the change was saved but the list could not be reloaded")
	}
	return resultError(res)
}

type terminalNotifier struct {
	out    io.Writer
	errOut io.Writer
}

func (n terminalNotifier) Notify(_ context.Context, notice syncctl.Notice) {
	w := n.out
	if notice.Kind != syncctl.NoticeSuccess {
		w = n.errOut
	}
	fmt.Fprintf(w, "%s: %s\n", notice.Kind, notice.Message)
}
