// Package livraria provides embedded assets for production builds.
package livraria

import "embed"

// TemplateFS holds the HTML templates served by cmd/livraria.
//
//go:embed frontend/templates/*.tmpl
var TemplateFS embed.FS
