package webbuild

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/renameio/v2"
	"github.com/rs/zerolog"
)

const lockRetryDelay = 100 * time.Millisecond

// Seeder creates the local ini config of a mode from its template.
type Seeder struct {
	iniDir string
	source TemplateSource
	logger zerolog.Logger
}

// NewSeeder creates a seeder writing below iniDir.
func NewSeeder(iniDir string, source TemplateSource, logger zerolog.Logger) *Seeder {
	return &Seeder{
		iniDir: iniDir,
		source: source,
		logger: logger.With().Str("component", "ini-seeder").Logger(),
	}
}

// Seed copies the mode's template to the local ini path when the local
// file is missing. An existing local file is never overwritten and a
// missing template is not an error. Seed reports whether it wrote a file.
func (s *Seeder) Seed(ctx context.Context, mode string) (bool, error) {
	mode = NormalizeMode(mode)
	localPath := LocalIniPath(s.iniDir, mode)

	if err := os.MkdirAll(s.iniDir, 0o755); err != nil {
		return false, fmt.Errorf("failed to create ini dir %s: %w", s.iniDir, err)
	}

	// Concurrent builds of the same checkout must not both seed.
	lock := flock.New(filepath.Join(s.iniDir, ".webapp.seed.lock"))
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return false, fmt.Errorf("acquire seed lock: %w", err)
	}
	if !locked {
		return false, errors.New("seed lock is held by another build")
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to release seed lock")
		}
	}()

	if _, err := os.Stat(localPath); err == nil {
		s.logger.Debug().Str("file", localPath).Msg("local ini exists, not seeding")
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("failed to stat %s: %w", localPath, err)
	}

	rc, err := s.source.Open(ctx, TemplateKey(mode))
	if errors.Is(err, ErrTemplateNotFound) {
		s.logger.Info().Str("mode", mode).Msg("no ini template for mode, skipping seed")
		return false, nil
	}
	if err != nil {
		return false, err
	}
	defer rc.Close()

	pendingFile, err := renameio.NewPendingFile(localPath, renameio.WithPermissions(0o644))
	if err != nil {
		return false, fmt.Errorf("create pending ini file: %w", err)
	}
	defer func() {
		if err := pendingFile.Cleanup(); err != nil {
			s.logger.Debug().Err(err).Msg("cleanup pending ini file")
		}
	}()

	if _, err := io.Copy(pendingFile, rc); err != nil {
		return false, fmt.Errorf("write ini template: %w", err)
	}

	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return false, fmt.Errorf("atomically replace ini file: %w", err)
	}

	s.logger.Info().Str("mode", mode).Str("file", localPath).Msg("seeded local ini from template")
	return true, nil
}
