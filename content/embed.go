// Package content embeds the default portfolio manifest and documents.
package content

import "embed"

// FS holds portfolio.json, its schema and the markdown documents.
//
//go:embed portfolio.json portfolio.schema.json docs/*.md
var FS embed.FS
