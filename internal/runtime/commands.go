package runtime

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"termfolio/internal/shell"

	"github.com/a-h/templ"
)

// now is swapped in tests.
var now = time.Now

// Builtins holds the default portfolio commands and what they render from.
type Builtins struct {
	content *Content
	md      *Markdown
}

func NewBuiltins(c *Content, md *Markdown) *Builtins {
	if md == nil {
		md = NewMarkdown(c.FS)
	}
	return &Builtins{content: c, md: md}
}

// Registry returns a fresh registry of every built-in command.
func (b *Builtins) Registry() shell.Registry {
	return shell.NewRegistry(
		&shell.Command{Name: "help", Aliases: []string{"?", "man"}, Summary: "list commands, or describe one: help <command>", Run: b.help},
		&shell.Command{Name: "welcome", Summary: "show the welcome banner", Run: b.welcome},
		&shell.Command{Name: "about", Aliases: []string{"bio"}, Summary: "who I am", Run: b.about},
		&shell.Command{Name: "skills", Aliases: []string{"stack"}, Summary: "languages and tools I use", Run: b.skills},
		&shell.Command{Name: "experience", Aliases: []string{"work", "jobs"}, Summary: "where I have worked", Run: b.experience},
		&shell.Command{Name: "projects", Aliases: []string{"ls"}, Summary: "things I have built: projects [name]", Run: b.projects},
		&shell.Command{Name: "contact", Aliases: []string{"email"}, Summary: "how to reach me", Run: b.contact},
		&shell.Command{Name: "resume", Aliases: []string{"cv"}, Summary: "render my resume", Run: b.document("resume")},
		&shell.Command{Name: "readme", Aliases: []string{"cat"}, Summary: "render a document: readme [name]", Run: b.readme},
		&shell.Command{Name: "echo", Summary: "print the arguments", Run: echo},
		&shell.Command{Name: "history", Summary: "show command history", Run: history},
		&shell.Command{Name: shell.ClearCommand, Summary: "clear the screen; clear --all also resets history", Run: b.clear},
		&shell.Command{Name: "date", Summary: "print the server time", Run: date},
		&shell.Command{Name: "whoami", Summary: "print the current user", Run: b.whoami},
	)
}

func (b *Builtins) help(ctx context.Context, args string) (shell.Result, error) {
	e, ok := shell.FromContext(ctx)
	if !ok {
		return shell.Result{}, fmt.Errorf("help: no engine in context")
	}
	reg := e.Registry()

	if topic := strings.ToLower(strings.TrimSpace(args)); topic != "" {
		res, err := e.Resolve(topic)
		if err != nil {
			return shell.Text(fmt.Sprintf("no help for %s", topic)), nil
		}
		line := res.Name + " - " + res.Command.Summary
		if al := e.Aliases(res.Name); len(al) > 0 {
			sort.Strings(al)
			line += "\naliases: " + strings.Join(al, ", ")
		}
		return shell.Text(line), nil
	}

	names := reg.Names()
	width := 0
	for _, n := range names {
		width = max(width, len(n))
	}
	var sb strings.Builder
	sb.WriteString("available commands:\n")
	for _, n := range names {
		fmt.Fprintf(&sb, "  %-*s  %s\n", width, n, reg[n].Summary)
	}
	sb.WriteString("\ntype help <command> for aliases")
	return shell.Text(sb.String()), nil
}

func (b *Builtins) welcome(context.Context, string) (shell.Result, error) {
	out, err := b.banner()
	if err != nil {
		return shell.Result{}, err
	}
	return shell.HTML(out.Content), nil
}

func (b *Builtins) banner() (shell.Output, error) {
	html, err := b.md.File(b.content.Manifest.Welcome)
	if err != nil {
		return shell.Output{}, err
	}
	return shell.Output{Content: html, RawHTML: true}, nil
}

func (b *Builtins) about(context.Context, string) (shell.Result, error) {
	m := b.content.Manifest
	head := m.Name
	if m.Title != "" {
		head += ", " + m.Title
	}
	if m.Location != "" {
		head += " (" + m.Location + ")"
	}
	body, err := b.md.String(m.About)
	if err != nil {
		return shell.Result{}, fmt.Errorf("about: %w", err)
	}
	return shell.HTML(`<p class="about-head">` + templ.EscapeString(head) + "</p>" + body), nil
}

func (b *Builtins) skills(context.Context, string) (shell.Result, error) {
	groups := b.content.Manifest.Skills
	if len(groups) == 0 {
		return shell.Text("no skills listed"), nil
	}
	var sb strings.Builder
	sb.WriteString(`<dl class="skills">`)
	for _, g := range groups {
		fmt.Fprintf(&sb, "<dt>%s</dt><dd>%s</dd>", templ.EscapeString(g.Group), templ.EscapeString(strings.Join(g.Items, " · ")))
	}
	sb.WriteString("</dl>")
	return shell.HTML(sb.String()), nil
}

func (b *Builtins) experience(context.Context, string) (shell.Result, error) {
	var sb strings.Builder
	for i, p := range b.content.Manifest.Experience {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "%s @ %s", p.Role, p.Company)
		if p.Period != "" {
			fmt.Fprintf(&sb, " [%s]", p.Period)
		}
		if p.Summary != "" {
			sb.WriteString("\n  " + p.Summary)
		}
	}
	if sb.Len() == 0 {
		return shell.Text("no experience listed"), nil
	}
	return shell.Text(sb.String()), nil
}

func (b *Builtins) projects(_ context.Context, args string) (shell.Result, error) {
	m := b.content.Manifest
	if name := strings.TrimSpace(args); name != "" {
		p, ok := m.Project(name)
		if !ok {
			return shell.Result{}, fmt.Errorf("unknown project %q", name)
		}
		return shell.HTML(projectHTML(p, true)), nil
	}

	var sb strings.Builder
	sb.WriteString(`<ul class="projects">`)
	for _, p := range m.Projects {
		sb.WriteString("<li>" + projectHTML(p, false) + "</li>")
	}
	sb.WriteString("</ul>")
	return shell.HTML(sb.String()), nil
}

func projectHTML(p Project, detail bool) string {
	name := templ.EscapeString(p.Name)
	if p.URL != "" {
		name = fmt.Sprintf(`<a href="%s" target="_blank" rel="noopener">%s</a>`, templ.EscapeString(p.URL), name)
	}
	out := fmt.Sprintf("<strong>%s</strong> %s", name, templ.EscapeString(p.Summary))
	if detail && len(p.Tags) > 0 {
		out += fmt.Sprintf(`<div class="tags">%s</div>`, templ.EscapeString(strings.Join(p.Tags, ", ")))
	}
	return out
}

func (b *Builtins) contact(context.Context, string) (shell.Result, error) {
	var sb strings.Builder
	sb.WriteString(`<ul class="contact">`)
	for _, l := range b.content.Manifest.Contact {
		fmt.Fprintf(&sb, `<li>%s: <a href="%s" target="_blank" rel="noopener">%s</a></li>`,
			templ.EscapeString(l.Label), templ.EscapeString(l.URL), templ.EscapeString(strings.TrimPrefix(l.URL, "mailto:")))
	}
	sb.WriteString("</ul>")
	return shell.HTML(sb.String()), nil
}

// document returns an async command that renders the named document.
func (b *Builtins) document(name string) shell.RunFunc {
	return func(context.Context, string) (shell.Result, error) {
		return b.openDocument(name)
	}
}

func (b *Builtins) readme(_ context.Context, args string) (shell.Result, error) {
	name := strings.ToLower(strings.TrimSpace(args))
	if name == "" {
		name = "readme"
	}
	return b.openDocument(name)
}

func (b *Builtins) openDocument(name string) (shell.Result, error) {
	path, ok := b.content.Manifest.Documents[name]
	if !ok {
		docs := make([]string, 0, len(b.content.Manifest.Documents))
		for d := range b.content.Manifest.Documents {
			docs = append(docs, d)
		}
		sort.Strings(docs)
		return shell.Result{}, fmt.Errorf("no document %q (have: %s)", name, strings.Join(docs, ", "))
	}
	return shell.Result{Async: func(ctx context.Context) (shell.Output, error) {
		if err := ctx.Err(); err != nil {
			return shell.Output{}, err
		}
		html, err := b.md.File(path)
		if err != nil {
			return shell.Output{}, err
		}
		return shell.Output{Content: html, RawHTML: true}, nil
	}}, nil
}

func echo(_ context.Context, args string) (shell.Result, error) {
	return shell.Text(args), nil
}

func history(ctx context.Context, _ string) (shell.Result, error) {
	e, ok := shell.FromContext(ctx)
	if !ok {
		return shell.Result{}, fmt.Errorf("history: no engine in context")
	}
	h := e.Snapshot().History
	var sb strings.Builder
	for i, line := range h {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%4d  %s", i+1, line)
	}
	return shell.Result{Content: sb.String(), NoHistory: true}, nil
}

func (b *Builtins) clear(_ context.Context, args string) (shell.Result, error) {
	switch strings.TrimSpace(args) {
	case "":
		return shell.Result{}, nil
	case "--all", "-a":
		out, err := b.banner()
		if err != nil {
			return shell.Result{}, err
		}
		return shell.Result{ClearHistory: true, RunAfterClear: &out}, nil
	default:
		return shell.Result{}, fmt.Errorf("usage: clear [--all]")
	}
}

func date(context.Context, string) (shell.Result, error) {
	return shell.Result{Content: now().Format(time.RFC1123), NoHistory: true}, nil
}

func (b *Builtins) whoami(context.Context, string) (shell.Result, error) {
	return shell.Text("guest, visiting " + b.content.Manifest.Name + "'s terminal"), nil
}
