package webbuild

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"
)

// PrepareResult reports what Prepare did.
type PrepareResult struct {
	Plan    Plan
	Seeded  bool
	Written []string
}

// Prepare seeds the mode's local ini, then copies the plan's targets into
// outDir. The runtime ini copy is compacted when compress is set.
func Prepare(ctx context.Context, seeder *Seeder, opts PlanOptions, outDir string, compress bool, logger zerolog.Logger) (*PrepareResult, error) {
	plan := NewPlan(opts)

	seeded, err := seeder.Seed(ctx, plan.Mode)
	if err != nil {
		return nil, fmt.Errorf("seed ini for mode %s: %w", plan.Mode, err)
	}

	written, err := plan.Copy(ctx, outDir, logger)
	if err != nil {
		return nil, fmt.Errorf("copy build files: %w", err)
	}

	if compress {
		for _, path := range written {
			if filepath.Base(path) != RuntimeIniName {
				continue
			}
			if err := CompressINIFile(path); err != nil {
				return nil, err
			}
		}
	}

	return &PrepareResult{Plan: plan, Seeded: seeded, Written: written}, nil
}
