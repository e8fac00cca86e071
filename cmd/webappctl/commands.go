package main

import (
	"fmt"
	"path/filepath"

	"ott-webapp/internal/webbuild"

	"github.com/spf13/cobra"
)

func newPrepareCommand(ctx *commandContext) *cobra.Command {
	var (
		mode     string
		command  string
		epgDir   string
		compress bool
	)

	cmd := &cobra.Command{
		Use:   "prepare",
		Short: "Seed the mode's ini config and copy build files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if mode == "" {
				mode = ctx.cfg.Web.Mode
			}
			seeder := webbuild.NewSeeder(ctx.cfg.Web.IniDir, ctx.templateSource(cmd.Context()), ctx.logger)

			result, err := webbuild.Prepare(cmd.Context(), seeder, webbuild.PlanOptions{
				Mode:    mode,
				Command: command,
				IniDir:  ctx.cfg.Web.IniDir,
				EPGDir:  epgDir,
			}, ctx.cfg.Web.OutDir, compress, ctx.logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Mode: %s\n", result.Plan.Mode)
			if result.Seeded {
				fmt.Fprintf(out, "Seeded %s from %s\n", result.Plan.LocalIni, webbuild.TemplateKey(result.Plan.Mode))
			}
			fmt.Fprintf(out, "Lint errors fail build: %t\n", result.Plan.LintEmitError)
			for _, path := range result.Written {
				fmt.Fprintf(out, "Wrote %s\n", path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "", "Build mode (development, production or a custom mode)")
	cmd.Flags().StringVar(&command, "command", "build", "Build command (build or serve)")
	cmd.Flags().StringVar(&epgDir, "epg-dir", filepath.Join("test", "epg"), "EPG fixtures copied into non-prod builds")
	cmd.Flags().BoolVar(&compress, "compress", false, "Compact the runtime ini copy")

	return cmd
}

func newCompressCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "compress-ini FILE...",
		Short: "Strip comments and whitespace from ini files in place",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				if err := webbuild.CompressINIFile(path); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Compressed %s\n", path)
			}
			return nil
		},
	}
}

func newResolveCommand() *cobra.Command {
	var (
		importer string
		srcDir   string
	)

	cmd := &cobra.Command{
		Use:   "resolve SPECIFIER",
		Short: "Print the capacitor variant of a module, if any",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			abs, err := filepath.Abs(srcDir)
			if err != nil {
				return err
			}
			resolved, ok := webbuild.NewVariantResolver(abs).Resolve(args[0], importer)
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), args[0])
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), resolved)
			return nil
		},
	}

	cmd.Flags().StringVar(&importer, "importer", "", "Path of the importing module")
	cmd.Flags().StringVar(&srcDir, "src", "src", "Source directory")

	return cmd
}

func newChunkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "chunk ID...",
		Short: "Print the output chunk of module ids",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, id := range args {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", webbuild.ManualChunk(id), id)
			}
			return nil
		},
	}
}

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Copy the mode's ini config into the output whenever it changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if mode == "" {
				mode = ctx.cfg.Web.Mode
			}
			plan := webbuild.NewPlan(webbuild.PlanOptions{
				Mode:    mode,
				Command: "serve",
				IniDir:  ctx.cfg.Web.IniDir,
			})
			// only the runtime ini is re-copied
			plan.CopyTargets = plan.CopyTargets[:1]

			copyIni := func() error {
				_, err := plan.Copy(cmd.Context(), ctx.cfg.Web.OutDir, ctx.logger)
				return err
			}
			if err := copyIni(); err != nil {
				return err
			}

			return webbuild.Watch(cmd.Context(), plan.LocalIni, webbuild.DefaultDebounce, copyIni, ctx.logger)
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "", "Build mode")

	return cmd
}
