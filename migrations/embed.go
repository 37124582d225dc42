// Package migrations embeds the goose SQL migrations so both the api and
// worker binaries can apply them without shipping files alongside the binary.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
