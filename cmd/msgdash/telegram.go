package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"msgdash/internal/api"
	"msgdash/internal/handshake"
	"msgdash/internal/i18n"
)

func newTelegramCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "telegram",
		Short: "Connect or disconnect the Telegram integration",
	}
	cmd.AddCommand(newTelegramConnectCommand(opts))
	cmd.AddCommand(newTelegramDisconnectCommand(opts))
	return cmd
}

func newTelegramConnectCommand(opts *rootOptions) *cobra.Command {
	var phone string
	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Link a Telegram account with a phone number and verification code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.open(cmd, true)
			if err != nil {
				return err
			}
			defer e.Close()

			in := newLineInput(cmd.InOrStdin(), cmd.ErrOrStderr())
			defer in.Close()
			return connectTelegram(cmd, e, in, phone)
		},
	}
	cmd.Flags().StringVar(&phone, "phone", "", "phone number in international format; prompted when empty")
	return cmd
}

// connectTelegram 逐行完成手机号、验证码与可选两步验证密码的握手；
// 验证码错误时可直接重试，空行取消
// connectTelegram runs the phone, code and optional 2FA handshake line by line.
// A rejected code can be retried without sending a new one; an empty code
// line aborts.
func connectTelegram(cmd *cobra.Command, e *env, in lineInput, phone string) error {
	ctx := cmd.Context()
	m := e.build.Machine

	status, err := refreshStatus(ctx, e)
	if err != nil {
		return wrapExitError(exitFailure, "load status failed", err)
	}
	if handshake.IsConnected(&status, m.Phase()) {
		e.out.Notice(i18n.T("cli.already"))
		return printConnected(e, status)
	}

	phone = strings.TrimSpace(phone)
	for phone == "" {
		line, err := in.ReadLine(i18n.T("cli.phone_prompt"))
		if err != nil {
			return aborted(err)
		}
		phone = strings.TrimSpace(line)
	}

	if err := m.Start(ctx, phone); err != nil {
		return handshakeFailure(m, err)
	}
	e.out.Notice(m.Snapshot().Success)

	for {
		code, err := in.ReadLine(i18n.T("cli.code_prompt"))
		if err != nil {
			return aborted(err)
		}
		if strings.TrimSpace(code) == "" {
			return aborted(nil)
		}
		password, err := in.ReadPassword(i18n.T("cli.password_prompt"))
		if err != nil {
			return aborted(err)
		}

		err = m.Verify(ctx, code, password)
		if err == nil {
			break
		}
		if errors.Is(err, handshake.ErrPending) || errors.Is(err, handshake.ErrWrongPhase) || errors.Is(err, handshake.ErrNoSession) {
			return wrapExitError(exitFailure, "verify failed", err)
		}
		// 会话仍在，提示错误后重新输入验证码 / the session survives, ask again
		e.out.Warn(m.Snapshot().Error)
	}
	e.out.Notice(m.Snapshot().Success)

	status, err = refreshStatus(ctx, e)
	if err != nil {
		return wrapExitError(exitFailure, "load status failed", err)
	}
	return printConnected(e, status)
}

func newTelegramDisconnectCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "disconnect",
		Short: "Disconnect the Telegram integration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.open(cmd, true)
			if err != nil {
				return err
			}
			defer e.Close()

			ctx := cmd.Context()
			m := e.build.Machine
			if err := m.Disconnect(ctx); err != nil {
				return handshakeFailure(m, err)
			}
			e.out.Notice(m.Snapshot().Success)

			status, err := refreshStatus(ctx, e)
			if err != nil {
				return wrapExitError(exitFailure, "load status failed", err)
			}
			res := statusResult{Telegram: status, Connected: handshake.IsConnected(&status, m.Phase())}
			return e.out.Success(res, nil)
		},
	}
}

func printConnected(e *env, status api.IntegrationStatus) error {
	res := statusResult{Telegram: status, Connected: true}
	return e.out.Success(res, func(w io.Writer) {
		if who := connectedAs(status); who != "" {
			fmt.Fprintln(w, i18n.T("telegram.connected_as", who))
		}
	})
}

func connectedAs(s api.IntegrationStatus) string {
	switch {
	case s.Username != "" && s.Phone != "":
		return fmt.Sprintf("@%s (%s)", s.Username, s.Phone)
	case s.Username != "":
		return "@" + s.Username
	default:
		return s.Phone
	}
}

// handshakeFailure 校验错误属于用法错误，其余为操作失败
// handshakeFailure maps validation errors to usage errors and everything else
// to an operation failure carrying the user-facing message.
func handshakeFailure(m *handshake.Machine, err error) error {
	switch {
	case errors.Is(err, handshake.ErrPhoneRequired), errors.Is(err, handshake.ErrCodeRequired):
		return wrapExitError(exitUsage, "invalid input", err)
	case errors.Is(err, handshake.ErrPending), errors.Is(err, handshake.ErrWrongPhase), errors.Is(err, handshake.ErrStale):
		return wrapExitError(exitFailure, "handshake interrupted", err)
	}
	if msg := m.Snapshot().Error; msg != "" {
		return newExitError(exitFailure, msg)
	}
	return wrapExitError(exitFailure, "handshake failed", err)
}

func aborted(err error) error {
	if err == nil || errors.Is(err, io.EOF) || errors.Is(err, errAborted) {
		return newExitError(exitFailure, i18n.T("cli.aborted"))
	}
	return wrapExitError(exitFailure, "read input failed", err)
}
