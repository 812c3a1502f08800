package models

import (
	"fmt"
	"net/mail"

	"github.com/juicebox-at/limited-builder/utils"
)

// VoterIdentity is the single identity representation used by the vote
// integrity rules. It is always a normalized (trimmed, lowercased) email;
// client IPs are stored as advisory metadata only and never participate in
// identity decisions.
type VoterIdentity struct {
	email string
}

// NewVoterIdentity validates and normalizes an email into a VoterIdentity.
func NewVoterIdentity(email string) (VoterIdentity, error) {
	normalized := utils.NormalizeEmail(email)
	if normalized == "" {
		return VoterIdentity{}, fmt.Errorf("empty voter email")
	}
	if _, err := mail.ParseAddress(normalized); err != nil {
		return VoterIdentity{}, fmt.Errorf("invalid voter email: %w", err)
	}
	return VoterIdentity{email: normalized}, nil
}

// Email returns the normalized email.
func (v VoterIdentity) Email() string {
	return v.email
}

// Matches reports whether the identity owns the given stored email.
func (v VoterIdentity) Matches(storedEmail string) bool {
	return v.email == utils.NormalizeEmail(storedEmail)
}

// IsZero reports whether the identity is unset.
func (v VoterIdentity) IsZero() bool {
	return v.email == ""
}
