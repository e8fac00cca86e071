// Package webbuild prepares the web client's build output: it resolves the
// build mode, seeds and compacts the runtime ini config, resolves native
// (capacitor) source variants and names output chunks.
package webbuild

import (
	"fmt"
	"path/filepath"
)

// Short mode names. Any other mode name is kept as given.
const (
	ModeDev  = "dev"
	ModeProd = "prod"
)

// NormalizeMode shortens the framework mode names "development" and
// "production" to "dev" and "prod".
func NormalizeMode(mode string) string {
	switch mode {
	case "development":
		return ModeDev
	case "production":
		return ModeProd
	default:
		return mode
	}
}

// LocalIniPath is the git-ignored, customer specific config for mode.
func LocalIniPath(iniDir, mode string) string {
	return filepath.Join(iniDir, iniName(mode))
}

// TemplateIniPath is the checked-in template the local config is seeded from.
func TemplateIniPath(iniDir, mode string) string {
	return filepath.Join(iniDir, "templates", iniName(mode))
}

// TemplateKey is the template's name relative to the ini directory, used
// as the object key suffix for remote template sources.
func TemplateKey(mode string) string {
	return "templates/" + iniName(mode)
}

func iniName(mode string) string {
	return fmt.Sprintf(".webapp.%s.ini", mode)
}

// LintEmitsErrors reports whether lint findings fail the build in mode.
func LintEmitsErrors(mode string) bool {
	switch NormalizeMode(mode) {
	case ModeProd, "demo", "preview":
		return true
	default:
		return false
	}
}
