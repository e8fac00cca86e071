package webbuild

import "strings"

// Output chunk names.
const (
	ChunkReact    = "react"
	ChunkInPlayer = "inplayer"
	ChunkVendor   = "vendor"
	ChunkIndex    = "index"
)

// react-dom fails at runtime when split from these packages.
var reactPackages = []string{
	"/node_modules/react-dom/",
	"/node_modules/scheduler/",
	"/node_modules/object-assign/",
	"/node_modules/react/",
}

// ManualChunk names the output chunk a module id is bundled into.
func ManualChunk(id string) string {
	for _, pkg := range reactPackages {
		if strings.Contains(id, pkg) {
			return ChunkReact
		}
	}
	if strings.Contains(id, "/node_modules/@inplayer") {
		return ChunkInPlayer
	}
	if strings.Contains(id, "/node_modules/") {
		return ChunkVendor
	}
	return ChunkIndex
}
