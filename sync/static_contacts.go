// ABOUTME: Static contact overrides merged into source lists
// ABOUTME: Indexes configured contacts by lower-cased list name
package sync

import (
	"strings"

	"github.com/harperreed/groupsync/models"
)

// StaticContact is a configured contact that belongs to one or more lists
// regardless of what Planning Center says.
type StaticContact struct {
	Email     string   `mapstructure:"email" yaml:"email"`
	FirstName string   `mapstructure:"first_name" yaml:"first_name,omitempty"`
	LastName  string   `mapstructure:"last_name" yaml:"last_name,omitempty"`
	Lists     []string `mapstructure:"list" yaml:"list"`
}

// StaticContacts serves configured contacts per list.
type StaticContacts struct {
	byList map[string][]models.Contact
}

// NewStaticContacts indexes entries by each list they name.
func NewStaticContacts(entries []StaticContact) *StaticContacts {
	s := &StaticContacts{byList: make(map[string][]models.Contact)}

	for _, entry := range entries {
		contact := models.Contact{
			FirstName: entry.FirstName,
			LastName:  entry.LastName,
			Email:     entry.Email,
		}
		for _, list := range entry.Lists {
			key := strings.ToLower(list)
			s.byList[key] = append(s.byList[key], contact)
		}
	}

	return s
}

// GetContacts returns the configured contacts for list, or an empty slice.
func (s *StaticContacts) GetContacts(list string) []models.Contact {
	contacts, ok := s.byList[strings.ToLower(list)]
	if !ok {
		return []models.Contact{}
	}
	return contacts
}
