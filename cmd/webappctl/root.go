package main

import (
	"context"

	"ott-webapp/internal/config"
	"ott-webapp/internal/webbuild"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// commandContext carries the lazily loaded configuration shared by all commands.
type commandContext struct {
	iniDir string
	outDir string
	cfg    *config.BuildConfig
	logger zerolog.Logger
}

func (c *commandContext) load(cmd *cobra.Command) error {
	cfg, err := config.LoadBuild()
	if err != nil {
		return err
	}
	if c.iniDir != "" {
		cfg.Web.IniDir = c.iniDir
	}
	if c.outDir != "" {
		cfg.Web.OutDir = c.outDir
	}
	c.cfg = cfg
	c.logger = config.NewLoggerTo(cmd.ErrOrStderr(), cfg.Logger)
	return nil
}

// templateSource reads templates from S3 when enabled, falling back to
// the local ini directory.
func (c *commandContext) templateSource(ctx context.Context) webbuild.TemplateSource {
	local := webbuild.NewFileSource(c.cfg.Web.IniDir, c.logger)
	if !c.cfg.S3.Enabled {
		return local
	}

	remote, err := webbuild.NewS3Source(ctx, c.cfg.S3.Bucket, c.cfg.S3.Region, c.cfg.S3.Prefix, c.logger)
	if err != nil {
		c.logger.Warn().Err(err).Msg("failed to initialise S3 template source, using local templates only")
		return local
	}
	return webbuild.NewFallbackSource(remote, local, c.logger)
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "webappctl",
		Short:         "Web client build tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return ctx.load(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&ctx.iniDir, "ini-dir", "", "Directory holding the .webapp.{mode}.ini files")
	rootCmd.PersistentFlags().StringVar(&ctx.outDir, "out-dir", "", "Build output directory")

	rootCmd.AddCommand(newPrepareCommand(ctx))
	rootCmd.AddCommand(newCompressCommand())
	rootCmd.AddCommand(newResolveCommand())
	rootCmd.AddCommand(newChunkCommand())
	rootCmd.AddCommand(newWatchCommand(ctx))

	return rootCmd
}
