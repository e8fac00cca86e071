package webbuild

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// RuntimeIniName is the file name the client loads its config from.
const RuntimeIniName = ".webapp.ini"

// CopyTarget copies files matching Src into Dest below the output
// directory. Rename, when set, renames a single matched file.
type CopyTarget struct {
	Src    string
	Dest   string
	Rename string
}

// Plan is the mode dependent part of a build.
type Plan struct {
	Mode          string
	LocalIni      string
	TemplateIni   string
	CopyTargets   []CopyTarget
	LintEmitError bool
	// Production is true for every "build" command, whatever the mode.
	Production bool
}

// PlanOptions configures NewPlan.
type PlanOptions struct {
	Mode    string
	Command string
	IniDir  string
	// EPGDir holds sample EPG files copied into non-prod builds.
	EPGDir string
}

// NewPlan derives the build plan for a mode. The local ini is always
// shipped as RuntimeIniName; EPG fixtures only outside prod.
func NewPlan(opts PlanOptions) Plan {
	mode := NormalizeMode(opts.Mode)
	iniDir := opts.IniDir
	if iniDir == "" {
		iniDir = "ini"
	}
	epgDir := opts.EPGDir
	if epgDir == "" {
		epgDir = filepath.Join("test", "epg")
	}

	plan := Plan{
		Mode:          mode,
		LocalIni:      LocalIniPath(iniDir, mode),
		TemplateIni:   TemplateIniPath(iniDir, mode),
		LintEmitError: LintEmitsErrors(mode),
		Production:    opts.Command == "build",
	}

	plan.CopyTargets = append(plan.CopyTargets, CopyTarget{
		Src:    plan.LocalIni,
		Dest:   "",
		Rename: RuntimeIniName,
	})

	if mode != ModeProd {
		plan.CopyTargets = append(plan.CopyTargets, CopyTarget{
			Src:  filepath.Join(epgDir, "*"),
			Dest: "epg",
		})
	}

	return plan
}

// Copy executes the plan's copy targets into outDir and returns the
// written paths. A pattern without matches is skipped.
func (p Plan) Copy(ctx context.Context, outDir string, logger zerolog.Logger) ([]string, error) {
	var written []string

	for _, target := range p.CopyTargets {
		matches, err := filepath.Glob(target.Src)
		if err != nil {
			return written, fmt.Errorf("invalid copy pattern %s: %w", target.Src, err)
		}
		if len(matches) == 0 {
			logger.Warn().Str("src", target.Src).Msg("copy target matched no files")
			continue
		}

		destDir := filepath.Join(outDir, target.Dest)
		if err := os.MkdirAll(destDir, 0o755); err != nil {
			return written, fmt.Errorf("failed to create %s: %w", destDir, err)
		}

		for _, src := range matches {
			if err := ctx.Err(); err != nil {
				return written, err
			}

			info, err := os.Stat(src)
			if err != nil {
				return written, fmt.Errorf("failed to stat %s: %w", src, err)
			}
			if info.IsDir() {
				continue
			}

			name := filepath.Base(src)
			if target.Rename != "" {
				name = target.Rename
			}
			dst := filepath.Join(destDir, name)

			if err := copyFile(src, dst, info.Mode().Perm()); err != nil {
				return written, err
			}
			written = append(written, dst)
		}
	}

	logger.Info().Str("mode", p.Mode).Int("files", len(written)).Str("out_dir", outDir).Msg("build files copied")
	return written, nil
}

func copyFile(src, dst string, perm os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return out.Close()
}
