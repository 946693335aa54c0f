// Package ui provides the embedded web dashboard for vidtoot.
//
// The dashboard is a single self-contained page: a submission form plus a
// job list that polls the API every few seconds. The literal "{version}"
// placeholder in the page is filled in by the server at startup.
package ui

import (
	_ "embed"
)

// IndexHTML is the dashboard page.
//
//go:embed index.html
var IndexHTML []byte
