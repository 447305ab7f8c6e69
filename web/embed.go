// Package web embeds the dashboard frontend.
package web

import "embed"

//go:embed index.html
var Static embed.FS
