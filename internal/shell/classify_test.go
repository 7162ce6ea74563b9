package shell

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		line string
		path string
		want Class
	}{
		{"plain", "about", "/", Normal},
		{"init prefix", "__init_welcome", "/", Init},
		{"event prefix", "__event_projects", "/", Event},
		{"url prefix", "__url_contact", "/", Url},
		{"path match", "projects", "/projects", Url},
		{"path match case-insensitive", "Projects", "/PROJECTS/terminal", Url},
		{"path match ignores query", "about", "/about?ref=x", Url},
		{"path differs", "about", "/projects", Normal},
		{"args never match path", "projects foo", "/projects", Normal},
		{"empty path", "about", "", Normal},
		{"prefix wins over path", "__event_about", "/__event_about", Event},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.line, tt.path))
		})
	}
}

func TestStrip(t *testing.T) {
	assert.Equal(t, "welcome", Strip("__init_welcome"))
	assert.Equal(t, "nav about", Strip("__event_nav about"))
	assert.Equal(t, "contact", Strip("__url_contact"))
	assert.Equal(t, "__url_x", Strip("__init___url_x"), "only one prefix is removed")
	assert.Equal(t, "projects", Strip("projects"))
}

func TestParse(t *testing.T) {
	name, args := Parse("  ECHO   hello    wide\tworld ")
	assert.Equal(t, "echo", name)
	assert.Equal(t, "hello wide world", args)

	name, args = Parse("   ")
	assert.Empty(t, name)
	assert.Empty(t, args)
}

func TestClassString(t *testing.T) {
	assert.Equal(t, "normal", Normal.String())
	assert.Equal(t, "init", Init.String())
	assert.Equal(t, "event", Event.String())
	assert.Equal(t, "url", Url.String())
}
