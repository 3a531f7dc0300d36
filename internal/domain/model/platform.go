package model

import (
	"fmt"
	"strings"
)

// Platform identifies an external job portal.
//
//nolint:recvcheck // UnmarshalText needs pointer receiver, Valid needs value receiver
type Platform string

const (
	// PlatformLinkedIn represents the LinkedIn job portal.
	PlatformLinkedIn Platform = "linkedin"
	// PlatformIndeed represents the Indeed job portal.
	PlatformIndeed Platform = "indeed"
	// PlatformDice represents the Dice job portal.
	PlatformDice Platform = "dice"
)

// Platforms returns every supported platform identifier.
func Platforms() []Platform {
	return []Platform{PlatformLinkedIn, PlatformIndeed, PlatformDice}
}

// Valid returns true if the Platform is a supported portal.
func (p Platform) Valid() bool {
	return p == PlatformLinkedIn || p == PlatformIndeed || p == PlatformDice
}

// UnmarshalText implements encoding.TextUnmarshaler for Platform to allow env parsing.
func (p *Platform) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	pf := Platform(v)
	if pf.Valid() {
		*p = pf
		return nil
	}
	return fmt.Errorf("invalid Platform: %q", v)
}

// PermissionKind distinguishes the two classes of governed actions.
type PermissionKind string

const (
	// PermissionSearch covers search and fetch-detail requests, governed by a token bucket.
	PermissionSearch PermissionKind = "search"
	// PermissionSubmission covers application submissions, governed by the daily cap.
	PermissionSubmission PermissionKind = "submission"
)

// Valid returns true if the PermissionKind is known.
func (k PermissionKind) Valid() bool {
	return k == PermissionSearch || k == PermissionSubmission
}
