package trace

import (
	"fmt"
	"strings"
	"time"
)

// Tracer receives events. Implementations must be safe for concurrent use.
type Tracer interface {
	Emit(ev *Event)
	Flush() error
	Close() error
	Level() Level
}

func enabled(t Tracer) bool {
	return t != nil && t.Level() > LevelOff
}

// Level is the verbosity threshold of a tracer.
type Level uint8

const (
	LevelOff    Level = iota
	LevelError        // failed spans only
	LevelPhase        // sessions and checker runs
	LevelDetail       // plus host events
	LevelDebug        // plus index and hole queries
)

var levelNames = [...]string{"off", "error", "phase", "detail", "debug"}

// widest scope each level lets through; error relies on the failure marker
var levelScopes = [...]Scope{0, 0, ScopeCheck, ScopeEvent, ScopeQuery}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel reads a level name; empty means off.
func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return LevelOff, nil
	}
	for i, name := range levelNames {
		if name == s {
			return Level(i), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: %s)", s, strings.Join(levelNames[:], "|"))
}

// Allows reports whether events of scope pass this level.
func (l Level) Allows(scope Scope) bool {
	return int(l) < len(levelScopes) && scope != 0 && scope <= levelScopes[l]
}

// Keeps is Allows plus the failure channel: an event with an "error" extra
// is kept at every level but off.
func (l Level) Keeps(ev *Event) bool {
	if l == LevelOff || ev == nil {
		return false
	}
	if _, failed := ev.Extra["error"]; failed {
		return true
	}
	return l.Allows(ev.Scope)
}

// Scope is the granularity of an event; lower is coarser.
type Scope uint8

const (
	ScopeSession Scope = iota + 1 // a serve loop or one CLI command
	ScopeCheck                    // checker runs, snapshot swaps
	ScopeEvent                    // host events
	ScopeQuery                    // index and hole lookups
)

var scopeNames = [...]string{"", "session", "check", "event", "query"}

func (s Scope) String() string {
	if s > 0 && int(s) < len(scopeNames) {
		return scopeNames[s]
	}
	return "unknown"
}

// Kind tells span boundaries from instant points.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
)

var kindNames = [...]string{"", "begin", "end", "point"}

func (k Kind) String() string {
	if k > 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Event is one trace record. Seq is assigned by the sink that stores it.
type Event struct {
	Time     time.Time
	Seq      uint64
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 for roots
	Name     string // "checker.check", "session.next_hole", ...
	Detail   string
	Extra    map[string]string
}
