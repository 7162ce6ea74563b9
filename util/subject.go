package util

import "strings"

// SubjectMatches reports whether a subject matches a pattern that can include
// NATS wildcards * (one token) and > (greedy remainder).
func SubjectMatches(pattern, subj string) bool {
	if pattern == subj {
		return true
	}
	pTok := strings.Split(pattern, ".")
	sTok := strings.Split(subj, ".")
	for i, pt := range pTok {
		switch pt {
		case ">":
			return i < len(sTok) // > needs at least one token
		case "*":
			if i >= len(sTok) {
				return false
			}
			continue
		}
		if i >= len(sTok) {
			return false
		}
		if pt != sTok[i] {
			return false
		}
	}
	return len(sTok) == len(pTok)
}

// SubjectsOverlap reports whether some concrete subject matches both
// patterns. Wildcards may appear on either side.
func SubjectsOverlap(a, b string) bool {
	aTok := strings.Split(a, ".")
	bTok := strings.Split(b, ".")
	for i := 0; ; i++ {
		aEnd, bEnd := i >= len(aTok), i >= len(bTok)
		if aEnd || bEnd {
			return aEnd && bEnd
		}
		at, bt := aTok[i], bTok[i]
		if at == ">" || bt == ">" {
			return true
		}
		if at == "*" || bt == "*" || at == bt {
			continue
		}
		return false
	}
}

// SessionFromSubject extracts <sid> from terminal.session.<sid>.* and
// event.terminal.session.<sid>.* subjects.
func SessionFromSubject(subj string) string {
	tok := strings.Split(subj, ".")
	if len(tok) > 0 && tok[0] == "event" {
		tok = tok[1:]
	}
	if len(tok) < 3 || tok[0] != "terminal" || tok[1] != "session" {
		return ""
	}
	return tok[2]
}
