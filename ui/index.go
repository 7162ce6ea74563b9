package ui

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"termfolio/ui/components"

	"github.com/a-h/templ"
)

const datastarJS = "https://cdn.jsdelivr.net/gh/starfederation/datastar@v1.0.0-beta.11/bundles/datastar.js"

// Index renders the terminal page. init lists the lines terminal.js posts
// once the page has loaded, in order.
func Index(title, path string, init []string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if init == nil {
			init = []string{}
		}
		initJSON, err := json.Marshal(init)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s</title>
<link rel="icon" href="/favicon.svg" type="image/svg+xml">
<link rel="stylesheet" href="/static/terminal.css">
<script type="module" src="%s"></script>
<script defer src="/static/terminal.js"></script>
</head>
<body data-signals="{awaiting: false, pending: '', last: '', active: '', histclear: 0}" data-on-load="@get('/ui')" data-init="%s">
<main class="terminal">
`, templ.EscapeString(title), datastarJS, templ.EscapeString(string(initJSON))); err != nil {
			return err
		}
		if err := components.Transcript(nil).Render(ctx, w); err != nil {
			return err
		}
		if err := components.Prompt(path).Render(ctx, w); err != nil {
			return err
		}
		if err := components.History(nil).Render(ctx, w); err != nil {
			return err
		}
		_, err = io.WriteString(w, "\n</main>\n</body>\n</html>\n")
		return err
	})
}
