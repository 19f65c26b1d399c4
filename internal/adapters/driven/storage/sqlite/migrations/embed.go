// Package migrations holds the versioned audit log schema.
package migrations

import "embed"

// FS holds the NNN_name.up.sql and NNN_name.down.sql scripts, applied in version order.
//
//go:embed *.sql
var FS embed.FS
