// Package models defines the domain types shared by the HomeHero client SDK.
package models

import "time"

// Identity is the signed-in principal as reported by the identity provider.
// It is owned by the session manager; everything else reads it.
type Identity struct {
	Email          string    `json:"email"`
	DisplayName    string    `json:"displayName"`
	PhotoURL       string    `json:"photoUrl"`
	LastSignInTime time.Time `json:"lastSignInTime"`
}
