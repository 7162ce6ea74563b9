package components

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"termfolio/internal/shell"

	"github.com/a-h/templ"
)

// Transcript renders every entry inside #transcript. Entries keep their ids
// so datastar can morph instead of replacing.
func Transcript(entries []shell.Entry) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<div id="transcript" class="transcript">`); err != nil {
			return err
		}
		for _, e := range entries {
			if err := Entry(e).Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</div>`)
		return err
	})
}

// Entry renders one frozen command line and its output.
func Entry(e shell.Entry) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		class := "entry"
		if e.Error {
			class += " entry-error"
		}
		if _, err := fmt.Fprintf(w, `<div id="entry-%s" class="%s"><div class="line">%s<span class="cmd">%s</span></div>`,
			templ.EscapeString(e.ID), class, ps1, templ.EscapeString(e.Command)); err != nil {
			return err
		}
		var err error
		switch {
		case e.Output == "":
		case e.RawHTML:
			_, err = fmt.Fprintf(w, `<div class="output html">%s</div>`, e.Output)
		default:
			_, err = fmt.Fprintf(w, `<pre class="output">%s</pre>`, templ.EscapeString(e.Output))
		}
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, `</div>`)
		return err
	})
}

const ps1 = `<span class="ps1">guest@termfolio:~$</span> `

// Prompt renders the live input line. path is posted with every command.
func Prompt(path string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<form id="live-prompt" class="prompt" autocomplete="off">%s`+
			`<input id="cmd" name="cmd" type="text" spellcheck="false" autofocus data-attr-disabled="$awaiting">`+
			`<input type="hidden" name="path" value="%s">`+
			`<span class="spinner" data-show="$awaiting">running <span data-text="$pending"></span>…</span>`+
			`</form>`, ps1, templ.EscapeString(path))
		return err
	})
}

// History renders the recall buffer read by terminal.js on arrow keys.
func History(lines []string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if lines == nil {
			lines = []string{}
		}
		raw, err := json.Marshal(lines)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, `<script id="history" type="application/json">%s</script>`, raw)
		return err
	})
}
