// Package dashboard provides the embedded status page of the weather panel.
//
// The page is compiled into the binary so the status server needs no
// external files. It polls /api/status and listens on /api/sse for slot
// commits.
package dashboard

import "embed"

// Assets is an embedded filesystem containing the status page.
//
// The filesystem structure is:
//
//	assets/
//	  index.html    - status page with inline CSS and JavaScript
//
//go:embed assets/*
var Assets embed.FS
