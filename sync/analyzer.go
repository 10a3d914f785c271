// ABOUTME: Contact list reconciliation between a source of truth and a destination
// ABOUTME: Computes which contacts to add and remove using case-insensitive email keys
package sync

import "github.com/harperreed/groupsync/models"

// ListDiff holds the changes needed to make a destination list match its source.
// Both slices keep the order of the list they were taken from.
type ListDiff struct {
	ToAdd    []models.Contact
	ToRemove []models.Contact
}

// Empty reports whether the lists already match.
func (d *ListDiff) Empty() bool {
	return len(d.ToAdd) == 0 && len(d.ToRemove) == 0
}

type analyzeOptions struct {
	removeDuplicates bool
}

// AnalyzeOption adjusts how AnalyzeContactLists treats the source list.
type AnalyzeOption func(*analyzeOptions)

// WithDuplicates keeps repeated source contacts instead of collapsing them.
func WithDuplicates() AnalyzeOption {
	return func(o *analyzeOptions) {
		o.removeDuplicates = false
	}
}

// AnalyzeContactLists compares source against dest. Contacts in source but not in
// dest go to ToAdd; contacts in dest but not in source go to ToRemove. Only the
// source list is de-duplicated. Contacts without an email are always added.
func AnalyzeContactLists(source, dest []models.Contact, opts ...AnalyzeOption) *ListDiff {
	options := analyzeOptions{removeDuplicates: true}
	for _, opt := range opts {
		opt(&options)
	}

	diff := &ListDiff{
		ToAdd:    []models.Contact{},
		ToRemove: []models.Contact{},
	}

	destKeys := keySet(dest)
	seen := make(map[string]struct{}, len(source))
	for _, contact := range source {
		key, ok := contactKey(contact)
		if !ok {
			diff.ToAdd = append(diff.ToAdd, contact)
			continue
		}

		if _, dup := seen[key]; dup && options.removeDuplicates {
			continue
		}
		seen[key] = struct{}{}

		if _, found := destKeys[key]; !found {
			diff.ToAdd = append(diff.ToAdd, contact)
		}
	}

	sourceKeys := keySet(source)
	for _, contact := range dest {
		key, ok := contactKey(contact)
		if ok {
			if _, found := sourceKeys[key]; found {
				continue
			}
		}
		diff.ToRemove = append(diff.ToRemove, contact)
	}

	return diff
}
