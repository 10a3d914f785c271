// ABOUTME: Contact identity keys used when comparing membership lists
// ABOUTME: Matches contacts by lower-cased email; contacts without email never match
package sync

import (
	"strings"

	"github.com/harperreed/groupsync/models"
)

// normalizeEmail converts email to lowercase for comparison.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// contactKey returns the identity key for a contact. The second return value is
// false when the contact has no email, in which case it matches nothing.
func contactKey(contact models.Contact) (string, bool) {
	key := normalizeEmail(contact.Email)
	return key, key != ""
}

// keySet builds the set of identity keys present in contacts.
func keySet(contacts []models.Contact) map[string]struct{} {
	set := make(map[string]struct{}, len(contacts))
	for _, contact := range contacts {
		if key, ok := contactKey(contact); ok {
			set[key] = struct{}{}
		}
	}
	return set
}
