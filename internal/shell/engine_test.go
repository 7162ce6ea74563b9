package shell

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecute_DirectCommand(t *testing.T) {
	e, _, rec := newTestEngine(t, text("about", "I build things"))

	e.Execute("about")

	snap := e.Snapshot()
	require.Len(t, snap.Transcript, 1)
	assert.Equal(t, "about", snap.Transcript[0].Command)
	assert.Equal(t, "I build things", snap.Transcript[0].Output)
	assert.False(t, snap.Transcript[0].RawHTML)
	assert.NotEmpty(t, snap.Transcript[0].ID)
	assert.Equal(t, []string{"about"}, snap.History)
	assert.Equal(t, "about", snap.LastCommand)
	assert.Equal(t, []string{"about"}, rec.Executed())
}

func TestExecute_ArgsAndCase(t *testing.T) {
	e, _, _ := newTestEngine(t, text("echo", ">"))

	e.Execute("ECHO   hi   there")

	snap := e.Snapshot()
	require.Len(t, snap.Transcript, 1)
	assert.Equal(t, "ECHO   hi   there", snap.Transcript[0].Command)
	assert.Equal(t, "> hi there", snap.Transcript[0].Output)
}

func TestExecute_RawHTML(t *testing.T) {
	e, _, _ := newTestEngine(t, &Command{
		Name: "banner",
		Run: func(context.Context, string) (Result, error) {
			return HTML("<b>hi</b>"), nil
		},
	})

	e.Execute("banner")

	snap := e.Snapshot()
	require.Len(t, snap.Transcript, 1)
	assert.True(t, snap.Transcript[0].RawHTML)
}

func TestExecute_BlankLineIsIgnored(t *testing.T) {
	e, _, rec := newTestEngine(t, text("about", "x"))

	e.Execute("   ")
	e.Execute("__init_")

	snap := e.Snapshot()
	assert.Empty(t, snap.Transcript)
	assert.Empty(t, snap.History)
	assert.Empty(t, rec.Executed())
}

func TestExecute_Alias(t *testing.T) {
	e, _, rec := newTestEngine(t,
		text("projects", "list of projects", "work", "portfolio"),
	)

	e.Execute("projects")
	e.Execute("work")

	snap := e.Snapshot()
	require.Len(t, snap.Transcript, 2)
	assert.Equal(t, snap.Transcript[0].Output, snap.Transcript[1].Output)
	assert.Equal(t, "work (projects)", snap.Transcript[1].Command)
	assert.Equal(t, "work (projects)", snap.LastCommand)
	assert.Equal(t, []string{"projects", "work"}, snap.History)
	assert.Equal(t, []string{"projects", "projects"}, rec.Executed())
}

func TestExecute_AliasKeepsArgs(t *testing.T) {
	e, _, _ := newTestEngine(t, text("echo", "", "say"))

	e.Execute("say hello")

	snap := e.Snapshot()
	require.Len(t, snap.Transcript, 1)
	assert.Equal(t, " hello", snap.Transcript[0].Output)
	assert.Equal(t, "say (echo)", snap.Transcript[0].Command)
}

func TestExecute_AliasNeverShadowsCommand(t *testing.T) {
	e, _, _ := newTestEngine(t,
		text("about", "about me"),
		text("bio", "bio", "about"),
	)

	e.Execute("about")

	snap := e.Snapshot()
	require.Len(t, snap.Transcript, 1)
	assert.Equal(t, "about me", snap.Transcript[0].Output)
	assert.Equal(t, "about", snap.Transcript[0].Command)
}

func TestExecute_SupportFallsBackToContact(t *testing.T) {
	e, _, rec := newTestEngine(t, text("contact", "mail me"))

	e.Execute("support please")
	e.Execute("contact please")

	snap := e.Snapshot()
	require.Len(t, snap.Transcript, 2)
	assert.Equal(t, "support (contact)", snap.Transcript[0].Command)
	assert.Equal(t, snap.Transcript[1].Output, snap.Transcript[0].Output)
	assert.Equal(t, "mail me please", snap.Transcript[0].Output)
	assert.Equal(t, []string{"contact", "contact"}, rec.Executed())
}

func TestExecute_SupportRegisteredWinsOverFallback(t *testing.T) {
	e, _, _ := newTestEngine(t, text("contact", "mail me"), text("support", "tickets"))

	e.Execute("support")

	snap := e.Snapshot()
	require.Len(t, snap.Transcript, 1)
	assert.Equal(t, "tickets", snap.Transcript[0].Output)
	assert.Equal(t, "support", snap.Transcript[0].Command)
}

func TestExecute_SupportWithoutContactIsNotFound(t *testing.T) {
	e, _, _ := newTestEngine(t, text("about", "x"))

	e.Execute("support")

	snap := e.Snapshot()
	require.Len(t, snap.Transcript, 1)
	assert.True(t, snap.Transcript[0].Error)
}

func TestExecute_NotFoundNormal(t *testing.T) {
	e, clock, rec := newTestEngine(t, text("help", "help text"))

	e.Execute("nope arg")

	snap := e.Snapshot()
	require.Len(t, snap.Transcript, 1)
	entry := snap.Transcript[0]
	assert.True(t, entry.Error)
	assert.Equal(t, "nope arg", entry.Command)
	assert.Contains(t, entry.Output, "command not found: nope")
	assert.Contains(t, entry.Output, "help")
	assert.Empty(t, snap.History)
	assert.Empty(t, rec.Executed())
	assert.Zero(t, clock.Len(), "normal misses schedule nothing")
}

func TestExecute_NotFoundUrlRetriesHelp(t *testing.T) {
	e, clock, _ := newTestEngine(t, text("help", "help text"))

	e.Execute("__url_blog")

	snap := e.Snapshot()
	require.Len(t, snap.Transcript, 1)
	assert.True(t, snap.Transcript[0].Error)
	assert.Equal(t, 1, clock.Len())

	require.Equal(t, 1, clock.Fire())

	snap = e.Snapshot()
	require.Len(t, snap.Transcript, 2)
	assert.Equal(t, "help", snap.Transcript[1].Command)
	assert.Equal(t, "help text", snap.Transcript[1].Output)
}

func TestExecute_NotFoundByPathRetriesHelp(t *testing.T) {
	e, clock, _ := newTestEngine(t, text("help", "help text"))
	e.SetPagePath("/blog")

	e.Execute("blog")
	clock.Fire()

	snap := e.Snapshot()
	require.Len(t, snap.Transcript, 2)
	assert.Equal(t, "help", snap.Transcript[1].Command)
}

func TestExecute_HelpRetryRunsAsNormal(t *testing.T) {
	e, clock, _ := newTestEngine(t, text("about", "me"))
	e.SetPagePath("/help")

	e.Execute("help")
	require.Equal(t, 1, clock.Fire())

	snap := e.Snapshot()
	require.Len(t, snap.Transcript, 2)
	assert.True(t, snap.Transcript[1].Error)
	assert.Zero(t, clock.Len(), "a missing help is not retried again")
}

func TestExecute_UrlClass(t *testing.T) {
	e, _, rec := newTestEngine(t, text("projects", "list"))
	e.SetPagePath("/projects")

	e.Execute("projects")

	snap := e.Snapshot()
	require.Len(t, snap.Transcript, 1)
	assert.Empty(t, snap.History, "url commands stay out of recall history")
	assert.Equal(t, "projects", snap.LastCommand)
	assert.Equal(t, []string{"projects"}, rec.Executed(), "exactly one notification")
}

func TestExecute_InitAndEventNeverNotify(t *testing.T) {
	release := make(chan struct{})
	e, _, rec := newTestEngine(t,
		text("welcome", "hello"),
		text("about", "me"),
		&Command{Name: "slow", Run: func(context.Context, string) (Result, error) {
			return Result{Async: func(context.Context) (Output, error) {
				<-release
				return Output{Content: "done"}, nil
			}}, nil
		}},
	)

	e.Execute("__init_welcome")
	e.Execute("__event_about")
	e.Execute("__event_slow")
	close(release)
	e.Wait()

	snap := e.Snapshot()
	require.Len(t, snap.Transcript, 3)
	assert.Equal(t, "welcome", snap.Transcript[0].Command)
	assert.Equal(t, "about", snap.Transcript[1].Command)
	assert.Equal(t, []string{"about", "slow"}, snap.History, "event lines are recalled, init lines are not")
	assert.Empty(t, rec.Executed())
}

func TestExecute_NoHistory(t *testing.T) {
	e, _, _ := newTestEngine(t, &Command{
		Name: "date",
		Run: func(context.Context, string) (Result, error) {
			return Result{Content: "today", NoHistory: true}, nil
		},
	})

	e.Execute("date")

	snap := e.Snapshot()
	assert.Len(t, snap.Transcript, 1)
	assert.Empty(t, snap.History)
	assert.Equal(t, "date", snap.LastCommand)
}

func TestExecute_SequentialRoundTrip(t *testing.T) {
	quiet := &Command{Name: "quiet", Run: func(context.Context, string) (Result, error) {
		return Result{Content: "shh", NoHistory: true}, nil
	}}
	e, _, _ := newTestEngine(t, text("a", "1"), text("b", "2"), quiet)

	lines := []string{"a", "b", "quiet", "a x", "b y", "quiet"}
	for _, l := range lines {
		e.Execute(l)
	}

	snap := e.Snapshot()
	require.Len(t, snap.Transcript, len(lines))
	for i, l := range lines {
		assert.Equal(t, l, snap.Transcript[i].Command)
	}
	assert.Equal(t, []string{"a", "b", "a x", "b y"}, snap.History)
}

func TestExecute_RunErrorKeepsEngineUsable(t *testing.T) {
	e, _, rec := newTestEngine(t,
		&Command{Name: "broken", Run: func(context.Context, string) (Result, error) {
			return Result{}, errors.New("disk on fire")
		}},
		&Command{Name: "panics", Run: func(context.Context, string) (Result, error) {
			panic("boom")
		}},
		text("ok", "fine"),
	)

	e.Execute("broken now")
	e.Execute("panics")
	e.Execute("ok")

	snap := e.Snapshot()
	require.Len(t, snap.Transcript, 3)
	assert.True(t, snap.Transcript[0].Error)
	assert.Equal(t, "broken now", snap.Transcript[0].Command)
	assert.Equal(t, "Error executing command: disk on fire", snap.Transcript[0].Output)
	assert.True(t, snap.Transcript[1].Error)
	assert.Contains(t, snap.Transcript[1].Output, "boom")
	assert.Equal(t, "fine", snap.Transcript[2].Output)
	assert.Equal(t, []string{"ok"}, snap.History)
	assert.Equal(t, []string{"ok"}, rec.Executed())
}

func TestExecute_ListenerPanicIsContained(t *testing.T) {
	e, _, rec := newTestEngine(t, text("about", "me"))
	e.Listen(ListenerFuncs{OnExecuted: func(string) { panic("bad listener") }})

	assert.NotPanics(t, func() { e.Execute("about") })
	assert.Equal(t, []string{"about"}, rec.Executed())
}

func TestExecute_UnsubscribedListenerIsSilent(t *testing.T) {
	e, _, _ := newTestEngine(t, text("about", "me"))
	var got []string
	unsubscribe := e.Listen(ListenerFuncs{OnExecuted: func(n string) { got = append(got, n) }})

	e.Execute("about")
	unsubscribe()
	unsubscribe()
	e.Execute("about")

	assert.Equal(t, []string{"about"}, got)
}

func TestObserve(t *testing.T) {
	e, _, _ := newTestEngine(t, text("about", "me"))
	var snaps []Snapshot
	cancel := e.Observe(func(s Snapshot) { snaps = append(snaps, s) })

	e.Execute("about")
	e.Execute("missing")
	cancel()
	e.Execute("about")

	require.Len(t, snaps, 2)
	assert.Len(t, snaps[0].Transcript, 1)
	assert.Len(t, snaps[1].Transcript, 2)
}

func TestFromContext(t *testing.T) {
	var seen *Engine
	e, _, _ := newTestEngine(t, &Command{Name: "who", Run: func(ctx context.Context, _ string) (Result, error) {
		seen, _ = FromContext(ctx)
		return Text(fmt.Sprint(len(seen.Snapshot().History))), nil
	}})

	e.Execute("who")

	assert.Same(t, e, seen)
	assert.Equal(t, "0", e.Snapshot().Transcript[0].Output, "commands may read engine state without deadlocking")
}

func TestClearHistory(t *testing.T) {
	e, _, _ := newTestEngine(t, text("about", "me"))
	e.Execute("about")
	e.Execute("about")

	e.ClearHistory()

	snap := e.Snapshot()
	assert.Empty(t, snap.History)
	assert.Len(t, snap.Transcript, 2)
}

func TestAliases(t *testing.T) {
	e, _, _ := newTestEngine(t, text("contact", "x", "email", "Mail"))

	assert.ElementsMatch(t, []string{"email", "mail", "support"}, e.Aliases("contact"))
}
