// Package appfs embeds the files the app needs at runtime so the compiled
// binary is self-contained.
package appfs

import "embed"

//go:embed migrations
var FS embed.FS
