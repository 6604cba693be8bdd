package flipper

import _ "embed"

// Version is the release version, embedded from the VERSION file so the
// binary and release tooling stay in sync. It carries a trailing newline;
// callers trim it.
//
//go:embed VERSION
var Version string
