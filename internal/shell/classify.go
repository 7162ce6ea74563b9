package shell

import "strings"

// Class decides history and notification suppression for one invocation.
type Class int

const (
	// Normal lines are typed by the user.
	Normal Class = iota
	// Init lines are synthesized at page load.
	Init
	// Event lines are synthesized in response to another UI action.
	Event
	// Url lines come from the page being loaded at a command's path.
	Url
)

// Reserved line prefixes.
const (
	InitPrefix  = "__init_"
	EventPrefix = "__event_"
	UrlPrefix   = "__url_"
)

var prefixes = []string{InitPrefix, EventPrefix, UrlPrefix}

func (c Class) String() string {
	switch c {
	case Init:
		return "init"
	case Event:
		return "event"
	case Url:
		return "url"
	default:
		return "normal"
	}
}

// Classify returns the class of a raw line. pagePath is the path of the
// hosting page, e.g. "/projects/foo"; only its first segment is compared.
func Classify(line, pagePath string) Class {
	switch {
	case strings.HasPrefix(line, InitPrefix):
		return Init
	case strings.HasPrefix(line, EventPrefix):
		return Event
	case strings.HasPrefix(line, UrlPrefix):
		return Url
	}
	if seg := firstSegment(pagePath); seg != "" && seg == strings.ToLower(line) {
		return Url
	}
	return Normal
}

// Strip removes one leading reserved prefix, if any.
func Strip(line string) string {
	for _, p := range prefixes {
		if rest, ok := strings.CutPrefix(line, p); ok {
			return rest
		}
	}
	return line
}

// Parse splits a stripped line into a lower-cased command name and its
// arguments joined by single spaces.
func Parse(line string) (name, args string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", ""
	}
	return strings.ToLower(fields[0]), strings.Join(fields[1:], " ")
}

func firstSegment(path string) string {
	path = strings.TrimLeft(path, "/")
	if i := strings.IndexAny(path, "/?#"); i >= 0 {
		path = path[:i]
	}
	return strings.ToLower(path)
}
