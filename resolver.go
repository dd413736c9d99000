package paramshare

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-paramshare/namescope"
	"github.com/goliatone/go-paramshare/pkg/activity"
)

// ScopeSource reports the namespace path currently in effect for the caller.
// Implementations must return either the empty string (root) or a path ending
// with the namespace separator. *namescope.Stack is the default source.
type ScopeSource interface {
	CurrentScope() string
}

// ScopeSourceFunc adapts a plain function to ScopeSource.
type ScopeSourceFunc func() string

// CurrentScope implements ScopeSource.
func (f ScopeSourceFunc) CurrentScope() string {
	if f == nil {
		return ""
	}
	return f()
}

// Option configures a Resolver on construction.
type Option func(*Resolver)

// WithActivityEmitter attaches an emitter that receives sharing lifecycle
// events (declared, released).
func WithActivityEmitter(emitter *activity.Emitter) Option {
	return func(r *Resolver) {
		r.emitter = emitter
	}
}

// WithResolveLogger attaches a logger that records every resolution attempt.
func WithResolveLogger(logger ResolveLogger) Option {
	return func(r *Resolver) {
		if logger == nil {
			r.logger = noopResolveLogger{}
			return
		}
		r.logger = logger
	}
}

// Resolver owns the scope-override mapping accumulated by nested sharing
// declarations and resolves candidate namespaces to their canonical form. One
// Resolver serves one logical definition pass; it is not shared global state.
// All operations are serialized behind an internal lock, so a single Resolver
// may also be used from multiple goroutines as long as declarations stay
// strictly nested.
type Resolver struct {
	mu        sync.Mutex
	source    ScopeSource
	overrides map[string]string
	frames    []map[string]string
	emitter   *activity.Emitter
	logger    ResolveLogger
}

// New constructs a Resolver reading the active namespace from source. A nil
// source pins the resolver to the root namespace.
func New(source ScopeSource, opts ...Option) *Resolver {
	r := &Resolver{
		source:    source,
		overrides: map[string]string{},
		logger:    noopResolveLogger{},
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

// Resolve maps a candidate namespace to its canonical form by recursively
// applying the deepest declared override prefix. With overrides
// {"scope_b/": "scope_a/"} and, nested within scope_b,
// {"scope_b/shared_child/": "scope_b/"}, the name "w" resolves to:
//
//	"scope_a"                 -> "scope_a/w"
//	"scope_b"                 -> "scope_a/w"
//	"scope_c"                 -> "scope_c/w"
//	"scope_b/shared_child"    -> "scope_a/w"
//	"scope_b/unshared_child"  -> "scope_a/unshared_child/w"
//
// A candidate with no applicable override is returned unchanged.
func (r *Resolver) Resolve(candidate string) (string, error) {
	canonical, _, err := r.resolve(candidate)
	return canonical, err
}

// ResolveWithTrace resolves the candidate while recording every override hop
// taken along the way.
func (r *Resolver) ResolveWithTrace(candidate string) (string, Trace, error) {
	return r.resolve(candidate)
}

// ParameterName resolves the caller's active namespace and returns the
// canonical full name for a parameter declared under it.
func (r *Resolver) ParameterName(name string) (string, error) {
	canonical, _, err := r.resolve(r.currentScope())
	if err != nil {
		return "", err
	}
	return canonical + name, nil
}

// Depth returns the number of currently registered sharing frames.
func (r *Resolver) Depth() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

// Overrides returns a defensive copy of the live override mapping.
func (r *Resolver) Overrides() map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]string, len(r.overrides))
	for alias, target := range r.overrides {
		out[alias] = target
	}
	return out
}

// Pop removes the most recently registered sharing frame and rebuilds the
// mapping from the remaining frames. Rebuilding from scratch is required: an
// outer frame may declare the same alias with a different target that must
// become visible again once the inner frame is gone.
func (r *Resolver) Pop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.popLocked()
}

func (r *Resolver) popLocked() error {
	if len(r.frames) == 0 {
		return ErrEmptyOverrideStack
	}
	r.frames = r.frames[:len(r.frames)-1]
	rebuilt := make(map[string]string)
	for _, frame := range r.frames {
		for alias, target := range frame {
			rebuilt[alias] = target
		}
	}
	r.overrides = rebuilt
	return nil
}

// pushLocked registers a frame and merges it into the live mapping. Later
// frames win on key collision.
func (r *Resolver) pushLocked(frame map[string]string) {
	copied := make(map[string]string, len(frame))
	for alias, target := range frame {
		copied[alias] = target
	}
	r.frames = append(r.frames, copied)
	for alias, target := range copied {
		r.overrides[alias] = target
	}
}

func (r *Resolver) currentScope() string {
	if r.source == nil {
		return ""
	}
	return r.source.CurrentScope()
}

func (r *Resolver) resolve(candidate string) (string, Trace, error) {
	start := time.Now()
	trace := Trace{Candidate: candidate}

	r.mu.Lock()
	canonical, err := r.resolveLocked(candidate, map[string]struct{}{}, &trace)
	r.mu.Unlock()

	trace.Canonical = canonical
	r.logger.LogResolution(ResolveLogEvent{
		Candidate: candidate,
		Canonical: canonical,
		Hops:      len(trace.Hops),
		Duration:  time.Since(start),
		Err:       err,
	})
	return canonical, trace, err
}

// resolveLocked walks the candidate's segments accumulating a running prefix
// and remembers the deepest prefix with a declared override. The override
// target is itself resolved recursively (targets may alias further targets)
// and rejoined with the candidate's unconsumed suffix. The seen set rejects
// multi-hop cycles that the declaration-time prefix check cannot catch.
func (r *Resolver) resolveLocked(candidate string, seen map[string]struct{}, trace *Trace) (string, error) {
	if _, ok := seen[candidate]; ok {
		return "", fmt.Errorf("%w: revisited %q", ErrOverrideCycle, candidate)
	}
	seen[candidate] = struct{}{}

	segments := strings.Split(candidate, namescope.Separator)
	bestTarget := ""
	bestPrefix := ""
	bestIdx := -1
	prefix := ""
	for idx, segment := range segments {
		prefix += segment + namescope.Separator
		if target, ok := r.overrides[prefix]; ok {
			bestTarget = target
			bestPrefix = prefix
			bestIdx = idx
		}
	}
	if bestIdx < 0 {
		return candidate, nil
	}

	trace.Hops = append(trace.Hops, Hop{
		Candidate:    candidate,
		Prefix:       bestPrefix,
		Target:       bestTarget,
		SegmentIndex: bestIdx,
	})
	resolved, err := r.resolveLocked(bestTarget, seen, trace)
	if err != nil {
		return "", err
	}
	suffix := strings.Join(segments[bestIdx+1:], namescope.Separator)
	return namescope.Normalize(resolved + suffix), nil
}
