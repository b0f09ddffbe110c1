package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"msgdash/internal/config"
	"msgdash/internal/i18n"
)

type pathResult struct {
	Path string `json:"path" yaml:"path"`
}

// newLoginCommand 将访问令牌写入当前目录的项目配置
// newLoginCommand stores a dashboard access token in the project config of
// the working directory.
func newLoginCommand(opts *rootOptions) *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Save an API access token to ./.msgdash/config.json",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token = strings.TrimSpace(token)
			if token == "" {
				in := newLineInput(cmd.InOrStdin(), cmd.ErrOrStderr())
				defer in.Close()
				line, err := in.ReadPassword(i18n.T("cli.token_prompt"))
				if err != nil {
					return aborted(err)
				}
				token = strings.TrimSpace(line)
			}
			if token == "" {
				return newExitError(exitUsage, "token is empty")
			}

			dir, err := os.Getwd()
			if err != nil {
				return wrapExitError(exitFailure, "resolve cwd failed", err)
			}
			if err := config.WriteToken(dir, token); err != nil {
				return wrapExitError(exitFailure, "save token failed", err)
			}
			path := filepath.Join(dir, ".msgdash", "config.json")
			out := opts.formatter(cmd)
			return out.Success(pathResult{Path: path}, func(w io.Writer) {
				fmt.Fprintln(w, i18n.T("cli.token_saved", path))
			})
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "access token; prompted when empty")
	return cmd
}

func newConfigCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Project configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write a ./.msgdash/config.json scaffold unless one exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return wrapExitError(exitFailure, "resolve cwd failed", err)
			}
			path, err := config.InitProjectConfigScaffold(dir)
			if err != nil {
				return wrapExitError(exitFailure, "init project config failed", err)
			}
			out := opts.formatter(cmd)
			return out.Success(pathResult{Path: path}, func(w io.Writer) {
				fmt.Fprintln(w, i18n.T("cli.config_written", path))
			})
		},
	})
	return cmd
}
