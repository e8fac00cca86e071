package webbuild

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/google/renameio/v2"
)

var (
	commentLine   = regexp.MustCompile(`^[ \t]*;`)
	trailingNote  = regexp.MustCompile(`;.*`)
	equalsPadding = regexp.MustCompile(`[ \t]*=[ \t]*`)
)

// CompressINI strips comment lines, trailing comments, blank lines and
// whitespace around the first "=" of every line. Lines are joined with
// "\n" and no trailing newline.
func CompressINI(data []byte) []byte {
	lines := strings.Split(string(data), "\n")
	out := make([]string, 0, len(lines))

	for _, line := range lines {
		if commentLine.MatchString(line) {
			continue
		}
		line = trailingNote.ReplaceAllString(line, "")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if loc := equalsPadding.FindStringIndex(line); loc != nil {
			line = line[:loc[0]] + "=" + line[loc[1]:]
		}
		out = append(out, line)
	}

	return []byte(strings.Join(out, "\n"))
}

// CompressINIFile compacts an ini file in place. The rewrite is atomic and
// keeps the file's permissions.
func CompressINIFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := renameio.WriteFile(path, CompressINI(data), info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
