package runtime

import (
	"strings"
	"testing"
	"time"

	"termfolio/internal/shell"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltins_Help(t *testing.T) {
	e := newShell(t)

	out := lastEntry(t, e, "help")
	assert.False(t, out.Error)
	for _, name := range []string{"about", "projects", "contact", "resume", "clear"} {
		assert.Contains(t, out.Output, name)
	}

	topic := lastEntry(t, e, "help contact")
	assert.Contains(t, topic.Output, "aliases: email, support")

	alias := lastEntry(t, e, "help email")
	assert.Contains(t, alias.Output, "contact - ")

	assert.Contains(t, lastEntry(t, e, "help nope").Output, "no help for nope")
}

func TestBuiltins_Sections(t *testing.T) {
	e := newShell(t)
	m := testContent(t).Manifest

	about := lastEntry(t, e, "about")
	assert.Contains(t, about.Output, m.Name)
	assert.True(t, about.RawHTML)
	assert.Contains(t, about.Output, "<p>", "about text is rendered as markdown")

	skills := lastEntry(t, e, "skills")
	assert.True(t, skills.RawHTML)
	assert.Contains(t, skills.Output, m.Skills[0].Group)

	exp := lastEntry(t, e, "experience")
	assert.Contains(t, exp.Output, m.Experience[0].Company)

	projects := lastEntry(t, e, "projects")
	for _, p := range m.Projects {
		assert.Contains(t, projects.Output, p.Name)
	}

	one := lastEntry(t, e, "projects "+m.Projects[0].Name)
	assert.Contains(t, one.Output, `class="tags"`)
	upper := lastEntry(t, e, "projects "+strings.ToUpper(m.Projects[0].Name))
	assert.False(t, upper.Error)

	missing := lastEntry(t, e, "projects nope")
	assert.True(t, missing.Error)
	assert.Equal(t, `Error executing command: unknown project "nope"`, missing.Output)
}

func TestBuiltins_ContactAliases(t *testing.T) {
	e := newShell(t)

	direct := lastEntry(t, e, "contact")
	assert.Equal(t, "contact", direct.Command)
	assert.Contains(t, direct.Output, "mailto:")

	email := lastEntry(t, e, "email")
	assert.Equal(t, "email (contact)", email.Command)

	support := lastEntry(t, e, "support")
	assert.Equal(t, "support (contact)", support.Command)
	assert.Equal(t, direct.Output, support.Output)
}

func TestBuiltins_AsyncDocuments(t *testing.T) {
	e := newShell(t)

	resume := lastEntry(t, e, "resume")
	assert.Equal(t, "resume", resume.Command)
	assert.True(t, resume.RawHTML)
	assert.Contains(t, resume.Output, "<h1")

	snap := e.Snapshot()
	assert.False(t, snap.Awaiting)
	assert.Empty(t, snap.Pending)

	readme := lastEntry(t, e, "readme")
	assert.Contains(t, readme.Output, "termfolio")

	cv := lastEntry(t, e, "cv")
	assert.Equal(t, "cv (resume)", cv.Command)

	bad := lastEntry(t, e, "readme secrets")
	assert.True(t, bad.Error)
	assert.Contains(t, bad.Output, `no document "secrets"`)
}

func TestBuiltins_HistoryAndEcho(t *testing.T) {
	e := newShell(t)

	assert.Equal(t, "hello world", lastEntry(t, e, "echo hello   world").Output)
	lastEntry(t, e, "about")

	h := lastEntry(t, e, "history")
	assert.Equal(t, "   1  echo hello   world\n   2  about", h.Output)
	assert.Equal(t, []string{"echo hello   world", "about"}, e.Snapshot().History, "history is not recorded")
}

func TestBuiltins_ClearAll(t *testing.T) {
	e := newShell(t)
	var clears int
	e.Listen(shell.ListenerFuncs{OnHistoryClear: func() { clears++ }})

	lastEntry(t, e, "about")
	e.Execute("clear")
	e.Wait()
	assert.Empty(t, e.Snapshot().Transcript)
	assert.Zero(t, clears)

	lastEntry(t, e, "about")
	welcome := lastEntry(t, e, "clear --all")
	assert.Equal(t, shell.WelcomeCommand, welcome.Command)
	assert.True(t, welcome.RawHTML)
	assert.Len(t, e.Snapshot().Transcript, 1)
	assert.Equal(t, 1, clears)

	bad := lastEntry(t, e, "clear --bogus")
	assert.True(t, bad.Error)
}

// The clear protocol only runs for the canonical name, so clear carries no
// aliases that would silently append an empty entry instead.
func TestBuiltins_ClearOnlyByName(t *testing.T) {
	e := newShell(t)
	var clears int
	e.Listen(shell.ListenerFuncs{OnHistoryClear: func() { clears++ }})

	assert.Empty(t, e.Aliases(shell.ClearCommand))

	lastEntry(t, e, "about")
	lastEntry(t, e, "projects")
	miss := lastEntry(t, e, "cls --all")
	assert.True(t, miss.Error)
	assert.Contains(t, miss.Output, "command not found: cls")

	welcome := lastEntry(t, e, "clear --all")
	tr := e.Snapshot().Transcript
	require.Len(t, tr, 1)
	assert.Equal(t, shell.WelcomeCommand, welcome.Command)
	assert.Equal(t, 1, clears)
}

func TestBuiltins_UrlMissFallsBackToHelp(t *testing.T) {
	e := newShell(t)
	e.SetPagePath("/blog")

	e.Execute("blog")
	e.Wait()

	tr := e.Snapshot().Transcript
	require.Len(t, tr, 2)
	assert.True(t, tr[0].Error)
	assert.Equal(t, "help", tr[1].Command)
	assert.Equal(t, []string{"help"}, e.Snapshot().History, "the retried help is an ordinary line")
}

func TestBuiltins_Date(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	now = func() time.Time { return fixed }
	t.Cleanup(func() { now = time.Now })

	e := newShell(t)
	assert.Equal(t, fixed.Format(time.RFC1123), lastEntry(t, e, "date").Output)
	assert.Empty(t, e.Snapshot().History)

	assert.Contains(t, lastEntry(t, e, "whoami").Output, "guest")
}
