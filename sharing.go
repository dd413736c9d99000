package paramshare

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-paramshare/namescope"
	"github.com/goliatone/go-paramshare/pkg/activity"
	"github.com/google/uuid"
)

// ShareOption configures optional metadata for a sharing declaration.
type ShareOption func(*Sharing)

// WithSharingMetadata attaches arbitrary metadata to the declaration. The map
// is copied so the Sharing remains immutable even if the caller mutates their
// reference.
func WithSharingMetadata(metadata map[string]any) ShareOption {
	return func(s *Sharing) {
		if len(metadata) == 0 {
			return
		}
		s.metadata = copyMetadata(metadata)
	}
}

// Share registers a set of alias rules scoped to the namespace currently in
// effect. Rules map a local alias name to a local target name; both sides are
// qualified with the active namespace and normalized before registration.
// Declaring {"scope_b": "scope_a"} under "root" means every parameter beneath
// "root/scope_b" is shared with the parameters beneath "root/scope_a".
//
// The returned Sharing must be released when the declaring block ends,
// typically via defer, so the overrides in effect before the declaration are
// restored on every exit path:
//
//	sharing, err := resolver.Share(map[string]string{"scope_b": "scope_a"})
//	if err != nil {
//		return err
//	}
//	defer sharing.Release()
//
// A rule whose target starts with its alias would immediately resolve back
// into itself; such rules are rejected with a RuleError and nothing is
// registered.
func (r *Resolver) Share(rules map[string]string, opts ...ShareOption) (*Sharing, error) {
	r.mu.Lock()
	scope := r.currentScope()
	frame := make(map[string]string, len(rules))
	for alias, target := range rules {
		if strings.HasPrefix(target, alias) {
			r.mu.Unlock()
			return nil, &RuleError{Alias: alias, Target: target}
		}
		qualifiedAlias := namescope.Normalize(scope + alias)
		qualifiedTarget := namescope.Normalize(scope + target)
		frame[qualifiedAlias] = qualifiedTarget
	}
	r.pushLocked(frame)
	r.mu.Unlock()

	sharing := &Sharing{
		id:       uuid.NewString(),
		resolver: r,
		scope:    scope,
		frame:    frame,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(sharing)
	}
	r.emitSharingEvent(activity.BuildSharingDeclaredEvent, sharing)
	return sharing, nil
}

// Sharing is the scoped handle for a registered set of alias rules. It stays
// active until Release is called.
type Sharing struct {
	mu       sync.Mutex
	id       string
	resolver *Resolver
	scope    string
	frame    map[string]string
	metadata map[string]any
	released bool
}

// ID returns the generated identifier for this declaration.
func (s *Sharing) ID() string {
	if s == nil {
		return ""
	}
	return s.id
}

// Scope returns the namespace that was active when the declaration was
// created.
func (s *Sharing) Scope() string {
	if s == nil {
		return ""
	}
	return s.scope
}

// Rules returns a defensive copy of the qualified override rules this
// declaration registered.
func (s *Sharing) Rules() map[string]string {
	if s == nil {
		return nil
	}
	out := make(map[string]string, len(s.frame))
	for alias, target := range s.frame {
		out[alias] = target
	}
	return out
}

// Release removes the declaration's overrides and restores the mapping in
// effect before it was entered. The first call pops the stack exactly once;
// later calls are no-ops, so a deferred Release composed with an explicit one
// never unbalances the stack.
func (s *Sharing) Release() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return nil
	}
	s.released = true
	s.mu.Unlock()

	if err := s.resolver.Pop(); err != nil {
		return err
	}
	s.resolver.emitSharingEvent(activity.BuildSharingReleasedEvent, s)
	return nil
}

func (r *Resolver) emitSharingEvent(build func(activity.SharingEventInput) activity.Event, s *Sharing) {
	if !r.emitter.Enabled() {
		return
	}
	event := build(activity.SharingEventInput{
		SharingID:  s.id,
		Scope:      s.scope,
		Rules:      s.Rules(),
		Metadata:   s.metadata,
		OccurredAt: time.Now(),
	})
	_ = r.emitter.Emit(context.Background(), event)
}

func copyMetadata(origin map[string]any) map[string]any {
	if len(origin) == 0 {
		return nil
	}
	out := make(map[string]any, len(origin))
	for key, value := range origin {
		out[key] = value
	}
	return out
}
