// ABOUTME: Data models for list membership sync
// ABOUTME: Defines the Contact record shared by Planning Center, Google Groups, and static config
package models

import (
	"strings"
	"time"
)

// Contact is one person's membership entry in a list. An empty Email means the
// contact has no address and cannot be matched against any other contact.
type Contact struct {
	FirstName  string     `json:"first_name,omitempty"`
	LastName   string     `json:"last_name,omitempty"`
	Email      string     `json:"email,omitempty"`
	Membership string     `json:"membership,omitempty"`
	Gender     string     `json:"gender,omitempty"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

// HasEmail reports whether the contact carries a usable address.
func (c Contact) HasEmail() bool {
	return strings.TrimSpace(c.Email) != ""
}

// DisplayName joins first and last name, skipping empty parts.
func (c Contact) DisplayName() string {
	return strings.TrimSpace(strings.Join([]string{c.FirstName, c.LastName}, " "))
}

// String renders the contact as "First Last (email)" or just the email.
func (c Contact) String() string {
	name := c.DisplayName()
	switch {
	case name == "":
		return c.Email
	case c.Email == "":
		return name
	default:
		return name + " (" + c.Email + ")"
	}
}
