package main

import (
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"msgdash/internal/bootstrap"
	"msgdash/internal/config"
	"msgdash/internal/logging"
)

// rootOptions holds the global flags.
type rootOptions struct {
	ConfigPath string
	Format     string // text | json | yaml
	Verbose    bool
}

func newRootCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "msgdash",
		Short: "Messaging integration dashboard",
		Long: "msgdash connects a Telegram account and a Gmail account to the messaging " +
			"backend and browses the classified message items it produces.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return newExitError(exitUsage, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, validFormats))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDash(cmd, opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to config JSON/JSONC")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json|yaml)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging, mirrored to stderr for line-mode commands")
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return wrapExitError(exitUsage, "invalid arguments", err)
	})

	cmd.AddCommand(newDashCommand(opts))
	cmd.AddCommand(newStatusCommand(opts))
	cmd.AddCommand(newTelegramCommand(opts))
	cmd.AddCommand(newGmailCommand(opts))
	cmd.AddCommand(newItemsCommand(opts))
	cmd.AddCommand(newLoginCommand(opts))
	cmd.AddCommand(newConfigCommand(opts))
	return cmd
}

// env 单次命令运行所需的已初始化组件
// env is what one command run needs, fully wired
type env struct {
	cfg    config.Config
	build  *bootstrap.BuildResult
	out    *outputFormatter
	logger io.Closer
}

// open 加载配置、安装日志并构建组件；mirror 为 true 时 --verbose 会把日志镜像到 stderr
// open loads config, installs logging and builds the components. With mirror
// set, --verbose mirrors log records to stderr.
func (o *rootOptions) open(cmd *cobra.Command, mirror bool) (*env, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return nil, wrapExitError(exitUsage, "load config failed", err)
	}

	var stderr io.Writer
	if o.Verbose && mirror {
		stderr = cmd.ErrOrStderr()
	}
	closer, err := logging.Setup(cfg.Log, logging.Options{Verbose: o.Verbose, Stderr: stderr})
	if err != nil {
		return nil, wrapExitError(exitUsage, "init logging failed", err)
	}

	build, err := bootstrap.Build(cfg)
	if err != nil {
		_ = closer.Close()
		return nil, wrapExitError(exitFailure, "init failed", err)
	}
	log.Debug().Str("command", cmd.CommandPath()).Msg("cli: start")

	return &env{
		cfg:    cfg,
		build:  build,
		out:    o.formatter(cmd),
		logger: closer,
	}, nil
}

func (o *rootOptions) formatter(cmd *cobra.Command) *outputFormatter {
	return &outputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
	}
}

func (e *env) Close() {
	if err := e.build.Close(); err != nil {
		log.Warn().Err(err).Msg("cli: close store failed")
	}
	_ = e.logger.Close()
}
