package paramshare

import (
	"errors"
	"fmt"
)

var (
	// ErrSelfReferentialRule indicates a sharing rule whose target starts with
	// its alias, which would resolve straight back into itself.
	ErrSelfReferentialRule = errors.New("paramshare: rule alias must not be a prefix of its target")
	// ErrEmptyOverrideStack indicates Pop was called with no registered sharing
	// declaration. Declarations must be entered and released in balanced pairs,
	// so this is a programming error at the call site.
	ErrEmptyOverrideStack = errors.New("paramshare: override stack is empty")
	// ErrOverrideCycle indicates the registered overrides alias each other in a
	// loop, so no canonical scope exists.
	ErrOverrideCycle = errors.New("paramshare: override rules form a cycle")
)

// RuleError captures the offending alias/target pair of a rejected sharing
// rule so the failure can be diagnosed at the declaration site.
type RuleError struct {
	Alias  string
	Target string
}

func (e *RuleError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("paramshare: invalid sharing rule: alias %q is a prefix of target %q", e.Alias, e.Target)
}

func (e *RuleError) Unwrap() error {
	if e == nil {
		return nil
	}
	return ErrSelfReferentialRule
}
