package realtime

import "fmt"

// Audience classifies a subscriber. It is fixed at registration.
type Audience string

const (
	AudiencePublic Audience = "public"
	AudienceAuth   Audience = "auth"
)

// Valid reports whether a is a known audience.
func (a Audience) Valid() bool {
	return a == AudiencePublic || a == AudienceAuth
}

func (a Audience) String() string { return string(a) }

// ParseAudience converts s into an Audience.
func ParseAudience(s string) (Audience, error) {
	a := Audience(s)
	if !a.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidAudience, s)
	}
	return a, nil
}

// Target selects which subscribers receive a broadcast.
// The zero value behaves like TargetAll.
type Target string

const (
	TargetPublic Target = "public"
	TargetAuth   Target = "auth"
	TargetAll    Target = "all"
)

// Valid reports whether t is a known target. The empty target is valid.
func (t Target) Valid() bool {
	switch t {
	case "", TargetPublic, TargetAuth, TargetAll:
		return true
	}
	return false
}

func (t Target) String() string {
	if t == "" {
		return string(TargetAll)
	}
	return string(t)
}

// ParseTarget converts s into a Target. An empty string yields TargetAll.
func ParseTarget(s string) (Target, error) {
	t := Target(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidTarget, s)
	}
	if t == "" {
		return TargetAll, nil
	}
	return t, nil
}

// Matches reports whether a subscriber with audience a receives a broadcast
// aimed at t.
//
// TargetPublic matches every subscriber, auth subscribers included, while
// TargetAuth is restricted to auth subscribers. The asymmetry is existing
// client-visible behavior and is kept as is; see DESIGN.md before changing
// it. Unknown targets match nobody.
func (t Target) Matches(a Audience) bool {
	switch t {
	case "", TargetAll, TargetPublic:
		return true
	case TargetAuth:
		return a == AudienceAuth
	}
	return false
}
