// Package participant defines deliberation participant profiles and the
// registry that resolves participant identifiers to profiles.
//
// Profiles are immutable configuration: a stable identifier, a display name,
// a persona label, a short description, and the system prompt used when
// generating content on the participant's behalf. The registry is created at
// run start and discarded at run end; there is no process-wide instance.
package participant

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrUnknownParticipant indicates a lookup for an unregistered participant ID.
	ErrUnknownParticipant = errors.New("unknown participant")

	// ErrInvalidProfile indicates a profile missing required fields.
	ErrInvalidProfile = errors.New("invalid participant profile")
)

// Profile is the immutable configuration for a single participant.
type Profile struct {
	// ID is the stable identifier used in participant ordering and memory keys.
	ID string `json:"id"`

	// Name is the display name used in transcripts and verdicts.
	Name string `json:"name"`

	// Persona is a short persona label (e.g. "Research Scientist").
	Persona string `json:"persona"`

	// Description summarizes the participant's perspective for the judge.
	Description string `json:"description"`

	// SystemPrompt is the persona prompt used for content generation.
	SystemPrompt string `json:"system_prompt"`
}

// Registry resolves participant identifiers to profiles.
type Registry struct {
	profiles map[string]Profile
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{profiles: make(map[string]Profile)}
}

// DefaultRegistry creates a registry pre-populated with the built-in profiles.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, p := range BuiltinProfiles() {
		// Built-in profiles are well-formed.
		_ = r.Register(p)
	}
	return r
}

// Register adds a profile to the registry, replacing any existing profile
// with the same ID.
func (r *Registry) Register(p Profile) error {
	if p.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidProfile)
	}
	if p.Name == "" {
		return fmt.Errorf("%w: missing display name for %q", ErrInvalidProfile, p.ID)
	}
	r.profiles[p.ID] = p
	return nil
}

// Lookup returns the profile registered under the given ID.
func (r *Registry) Lookup(id string) (Profile, error) {
	p, ok := r.profiles[id]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q (available: %v)", ErrUnknownParticipant, id, r.IDs())
	}
	return p, nil
}

// Resolve looks up every ID in order, failing on the first unknown one.
func (r *Registry) Resolve(ids []string) ([]Profile, error) {
	profiles := make([]Profile, 0, len(ids))
	for _, id := range ids {
		p, err := r.Lookup(id)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// IDs returns the registered participant IDs in sorted order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.profiles))
	for id := range r.profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
