package activity

import (
	"strings"
	"time"
)

// SharingEventInput describes the fields common to sharing lifecycle events.
type SharingEventInput struct {
	SharingID  string
	Scope      string
	Rules      map[string]string
	Channel    string
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildSharingDeclaredEvent constructs a normalized activity event for a newly
// registered sharing declaration.
func BuildSharingDeclaredEvent(input SharingEventInput) Event {
	return buildSharingEvent("sharing.declared", input)
}

// BuildSharingReleasedEvent constructs a normalized activity event for a
// released sharing declaration.
func BuildSharingReleasedEvent(input SharingEventInput) Event {
	return buildSharingEvent("sharing.released", input)
}

func buildSharingEvent(verb string, input SharingEventInput) Event {
	metadata := cloneMap(input.Metadata)
	if len(input.Rules) > 0 {
		metadata = ensureMetadata(metadata)
		rules := make(map[string]string, len(input.Rules))
		for alias, target := range input.Rules {
			rules[alias] = target
		}
		metadata["rules"] = rules
	}
	if input.Scope != "" {
		metadata = ensureMetadata(metadata)
		metadata["scope"] = input.Scope
	}

	objectID := strings.TrimSpace(input.SharingID)
	if objectID == "" {
		objectID = "sharing"
	}

	return Event{
		Verb:       verb,
		ObjectType: "sharing",
		ObjectID:   objectID,
		Scope:      input.Scope,
		Channel:    strings.TrimSpace(input.Channel),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

func ensureMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}
