package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"msgdash/internal/api"
	"msgdash/internal/handshake"
	"msgdash/internal/i18n"
	"msgdash/internal/query"
	"msgdash/internal/tui"
)

func newDashCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dash",
		Short: "Open the interactive dashboard (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDash(cmd, opts)
		},
	}
}

func runDash(cmd *cobra.Command, opts *rootOptions) error {
	e, err := opts.open(cmd, false)
	if err != nil {
		return err
	}
	defer e.Close()

	b := e.build
	deps := tui.Deps{
		Backend:    b.Client,
		Cache:      b.Cache,
		Machine:    b.Machine,
		Redirector: b.Redirector,
		Store:      b.Store,
		BaseURL:    b.BaseURL,
		Theme:      e.cfg.UI.Theme,
	}
	if err := tui.Run(deps); err != nil {
		return wrapExitError(exitFailure, "dashboard failed", err)
	}
	return nil
}

// statusResult is printed by status and the telegram commands.
type statusResult struct {
	User      *api.User             `json:"user,omitempty" yaml:"user,omitempty"`
	Telegram  api.IntegrationStatus `json:"telegram" yaml:"telegram"`
	Connected bool                  `json:"connected" yaml:"connected"`
}

func newStatusCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current user and the Telegram integration status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.open(cmd, true)
			if err != nil {
				return err
			}
			defer e.Close()

			ctx := cmd.Context()
			status, err := refreshStatus(ctx, e)
			if err != nil {
				return wrapExitError(exitFailure, "load status failed", err)
			}
			res := statusResult{Telegram: status}
			res.Connected = handshake.IsConnected(&status, e.build.Machine.Phase())
			if u, err := e.build.Client.CurrentUser(ctx); err != nil {
				log.Warn().Err(err).Msg("cli: load current user failed")
			} else {
				res.User = &u
			}
			return e.out.Success(res, func(w io.Writer) { printStatus(w, res) })
		},
	}
}

// refreshStatus 跳过缓存读取最新状态，并写回缓存供仪表盘作占位
// refreshStatus reads the status past the cache and stores the result so the
// dashboard can show it as placeholder data.
func refreshStatus(ctx context.Context, e *env) (api.IntegrationStatus, error) {
	e.build.Cache.Invalidate(query.StatusKey)
	return query.Get(ctx, e.build.Cache, query.StatusKey, e.build.Client.TelegramStatus)
}

func printStatus(w io.Writer, res statusResult) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if u := res.User; u != nil {
		who := u.Email
		if u.FullName != "" {
			who = fmt.Sprintf("%s <%s>", u.FullName, u.Email)
		}
		fmt.Fprintf(tw, "%s:\t%s\n", i18n.T("cli.user"), who)
	}
	state := i18n.T("telegram.status_not_connected")
	if res.Connected {
		state = i18n.T("telegram.status_connected")
	}
	fmt.Fprintf(tw, "%s:\t%s\n", i18n.T("cli.telegram"), state)
	if res.Connected {
		if p := res.Telegram.Phone; p != "" {
			fmt.Fprintf(tw, "%s:\t%s\n", i18n.T("cli.phone"), p)
		}
		if u := res.Telegram.Username; u != "" {
			fmt.Fprintf(tw, "%s:\t@%s\n", i18n.T("cli.username"), u)
		}
	}
	_ = tw.Flush()
}
