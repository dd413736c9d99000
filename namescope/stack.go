package namescope

import (
	"errors"
	"strings"
	"sync"
)

// Separator joins namespace path segments. It is fixed globally so that
// override keys and resolved names always agree on their prefix boundaries.
const Separator = "/"

var (
	// ErrEmptyScopeName indicates an attempt to enter a scope without a name.
	ErrEmptyScopeName = errors.New("namescope: scope name must be provided")
	// ErrEmptyScopeStack indicates Pop was called with no open scope, which
	// means enter/exit calls are unbalanced.
	ErrEmptyScopeStack = errors.New("namescope: scope stack is empty")
)

// Normalize appends the trailing separator to non-empty paths so that "a" and
// "a/" compare equal when used as prefix keys. The empty (root) path stays
// empty.
func Normalize(path string) string {
	if path != "" && !strings.HasSuffix(path, Separator) {
		return path + Separator
	}
	return path
}

// Stack tracks the hierarchical namespace currently in effect during a model
// definition pass. The zero value is the root scope and ready to use.
type Stack struct {
	mu       sync.Mutex
	segments []string
}

// New returns an empty scope stack positioned at the root namespace.
func New() *Stack {
	return &Stack{}
}

// CurrentScope returns the active namespace path, always normalized with a
// trailing separator, or the empty string at the root.
func (s *Stack) CurrentScope() string {
	if s == nil {
		return ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.segments) == 0 {
		return ""
	}
	return strings.Join(s.segments, Separator) + Separator
}

// Depth returns the number of currently open scopes.
func (s *Stack) Depth() int {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.segments)
}

// Push opens a nested scope. A name may itself contain separators; it still
// counts as a single stack frame and must be exited with a single Pop.
func (s *Stack) Push(name string) error {
	if name == "" {
		return ErrEmptyScopeName
	}
	name = strings.TrimSuffix(name, Separator)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.segments = append(s.segments, name)
	return nil
}

// Pop closes the most recently opened scope.
func (s *Stack) Pop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.segments) == 0 {
		return ErrEmptyScopeStack
	}
	s.segments = s.segments[:len(s.segments)-1]
	return nil
}

// Enter opens a nested scope and returns a handle whose Exit closes it. Callers
// are expected to defer Exit so the scope is closed on every exit path.
func (s *Stack) Enter(name string) (*Scope, error) {
	if err := s.Push(name); err != nil {
		return nil, err
	}
	return &Scope{stack: s}, nil
}

// Scope is the handle for an open namespace frame.
type Scope struct {
	mu     sync.Mutex
	stack  *Stack
	exited bool
}

// Exit closes the scope. The first call pops the stack; later calls are no-ops
// so a deferred Exit composed with an explicit one never double-pops.
func (s *Scope) Exit() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	if s.exited {
		s.mu.Unlock()
		return nil
	}
	s.exited = true
	s.mu.Unlock()
	return s.stack.Pop()
}
