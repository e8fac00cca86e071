package webbuild

import (
	"os"
	"path/filepath"
	"strings"
)

// CapacitorSuffix marks native-wrapper source variants, e.g.
// "Player.capacitor.tsx" next to "Player.tsx".
const CapacitorSuffix = ".capacitor"

var variantExtensions = []string{"ts", "tsx"}

// VariantResolver maps module specifiers to their capacitor variant when
// one exists on disk.
type VariantResolver struct {
	srcDir string
	exists func(path string) bool
}

// NewVariantResolver creates a resolver for sources below srcDir.
func NewVariantResolver(srcDir string) *VariantResolver {
	return &VariantResolver{
		srcDir: filepath.Clean(srcDir),
		exists: fileExists,
	}
}

// Resolve returns the variant path for specifier imported by importer.
// Stylesheets resolve relative to the importer and are only swapped when
// an importer is known. Script modules resolve when the specifier is an
// absolute path below the source dir and the import does not come from
// the variant itself. ok is false when the default resolution applies.
func (r *VariantResolver) Resolve(specifier, importer string) (string, bool) {
	clean, _, _ := strings.Cut(specifier, "?")

	if strings.HasSuffix(clean, ".scss") {
		if importer == "" {
			return "", false
		}

		var variant string
		if strings.Contains(specifier, ".module.scss") {
			variant = strings.Replace(clean, ".module.scss", CapacitorSuffix+".module.scss", 1)
		} else {
			variant = strings.Replace(clean, ".scss", CapacitorSuffix+".scss", 1)
		}

		if !strings.HasPrefix(variant, r.srcDir) {
			variant = filepath.Join(filepath.Dir(importer), variant)
		}

		if r.exists(variant) {
			return variant, true
		}
		return "", false
	}

	capacitorID := specifier + CapacitorSuffix
	if strings.HasPrefix(specifier, r.srcDir) && !strings.HasPrefix(importer, capacitorID) {
		for _, ext := range variantExtensions {
			candidate := capacitorID + "." + ext
			if r.exists(candidate) {
				return candidate, true
			}
		}
	}

	return "", false
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
