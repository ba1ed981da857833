// Package dashboard provides the embedded panel page for campanel.
//
// This package uses Go's embed directive to include the panel HTML, CSS and
// JavaScript at compile time, so the binary needs no external asset files.
//
// The page is rendered by the server package when the dispatcher is called
// without a valid proxy query.
package dashboard

import "embed"

// Assets is an embedded filesystem containing the panel page.
//
// The filesystem structure is:
//
//	assets/
//	  index.html    - Panel page template with inline CSS and JavaScript
//
// The template holds placeholders ({{.Title}}, {{.PortField}},
// {{.PollIntervalMs}}, {{.Keypad}}) that the server substitutes per request.
//
//go:embed assets/*
var Assets embed.FS
