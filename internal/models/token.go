package models

import "time"

// Token is a short-lived bearer credential minted by the identity provider.
type Token struct {
	Bearer    string    `json:"bearer"`
	ExpiresAt time.Time `json:"expires_at"`
	IssuedAt  time.Time `json:"issued_at"`
}

// NewToken builds a Token from a raw bearer string and its provider-reported
// lifetime in seconds.
func NewToken(bearer string, expiresIn int) *Token {
	now := time.Now()
	return &Token{
		Bearer:    bearer,
		ExpiresAt: now.Add(time.Duration(expiresIn) * time.Second),
		IssuedAt:  now,
	}
}

// IsExpired reports whether the token's validity window has passed.
func (t *Token) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}

// NeedsRefresh reports whether the token expires within the buffer window.
func (t *Token) NeedsRefresh(buffer time.Duration) bool {
	return time.Now().Add(buffer).After(t.ExpiresAt)
}

// TimeUntilExpiry returns the remaining validity duration.
func (t *Token) TimeUntilExpiry() time.Duration {
	return time.Until(t.ExpiresAt)
}

// IsValid reports whether the token is non-empty and unexpired.
func (t *Token) IsValid() bool {
	return t.Bearer != "" && !t.IsExpired()
}
