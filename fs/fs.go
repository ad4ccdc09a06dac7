// Package appfs embeds the static assets shipped with the binaries:
// SQL migrations per engine, email templates and the common passwords list.
package appfs

import "embed"

//go:embed migrations templates common-passwords.txt.gz
var FS embed.FS
