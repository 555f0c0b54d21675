// ABOUTME: Embeds the console's HTML templates into the binary
// ABOUTME: Pages live in templates/, htmx partials in templates/partials/

package webadmin

import "embed"

//go:embed templates/*.html templates/partials/*.html
var templateFS embed.FS
