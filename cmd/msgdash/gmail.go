package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"msgdash/internal/i18n"
)

type gmailResult struct {
	AuthorizationURL string `json:"authorization_url" yaml:"authorization_url"`
	Opened           bool   `json:"opened" yaml:"opened"`
}

var errBrowserDisabled = errors.New("browser disabled")

func newGmailCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gmail",
		Short: "Delegated Gmail authorization",
	}

	var noBrowser bool
	connect := &cobra.Command{
		Use:   "connect",
		Short: "Open the Google authorization page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.open(cmd, true)
			if err != nil {
				return err
			}
			defer e.Close()

			r := e.build.Redirector
			if noBrowser {
				r.Open = func(string) error { return errBrowserDisabled }
			}

			var reported string
			url, err := r.Connect(cmd.Context(), func(msg string) { reported = msg })
			if url == "" {
				if reported == "" {
					reported = i18n.T("gmail.failed")
				}
				return newExitError(exitFailure, reported)
			}

			// 浏览器不可用时打印地址，由用户手动打开 / without a browser the URL is printed for the user
			res := gmailResult{AuthorizationURL: url, Opened: err == nil}
			return e.out.Success(res, func(w io.Writer) {
				if res.Opened {
					fmt.Fprintln(w, i18n.T("gmail.opened"))
				}
				fmt.Fprintln(w, url)
			})
		},
	}
	connect.Flags().BoolVar(&noBrowser, "no-browser", false, "print the authorization URL instead of opening it")
	cmd.AddCommand(connect)
	return cmd
}
