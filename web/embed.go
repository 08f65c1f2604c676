// Package web ships the console's HTML templates and stylesheet inside the binary.
package web

import "embed"

// Templates holds layouts, pages, partials and the printable report page.
//
//go:embed templates/**/*.html
var Templates embed.FS

// Static is served under /static/.
//
//go:embed static/**/*
var Static embed.FS
