// ABOUTME: Tests for contact list reconciliation
// ABOUTME: Covers add/remove sets, case-insensitive matching, ordering, and de-duplication
package sync

import (
	"testing"

	"github.com/harperreed/groupsync/models"
	"github.com/stretchr/testify/assert"
)

func emails(contacts []models.Contact) []string {
	out := make([]string, 0, len(contacts))
	for _, c := range contacts {
		out = append(out, c.Email)
	}
	return out
}

func TestAnalyzeEmptyLists(t *testing.T) {
	diff := AnalyzeContactLists(nil, nil)

	assert.Empty(t, diff.ToAdd)
	assert.Empty(t, diff.ToRemove)
	assert.True(t, diff.Empty())
}

func TestAnalyzePureAddition(t *testing.T) {
	diff := AnalyzeContactLists([]models.Contact{{Email: "a@x"}}, []models.Contact{})

	assert.Equal(t, []string{"a@x"}, emails(diff.ToAdd))
	assert.Empty(t, diff.ToRemove)
}

func TestAnalyzePureRemoval(t *testing.T) {
	diff := AnalyzeContactLists([]models.Contact{}, []models.Contact{{Email: "a@x"}})

	assert.Empty(t, diff.ToAdd)
	assert.Equal(t, []string{"a@x"}, emails(diff.ToRemove))
}

func TestAnalyzeCaseInsensitiveMatch(t *testing.T) {
	diff := AnalyzeContactLists(
		[]models.Contact{{Email: "Foo@Bar"}},
		[]models.Contact{{Email: "foo@bar"}},
	)

	assert.True(t, diff.Empty())
}

func TestAnalyzeMixedDiff(t *testing.T) {
	shared := models.Contact{Email: "foo@bar"}
	extra := models.Contact{Email: "boo@baz"}
	missing := models.Contact{FirstName: "Shaz", Email: "shaz@shuz"}

	diff := AnalyzeContactLists(
		[]models.Contact{shared, missing},
		[]models.Contact{shared, extra},
	)

	assert.Equal(t, []models.Contact{missing}, diff.ToAdd)
	assert.Equal(t, []models.Contact{extra}, diff.ToRemove)
}

func TestAnalyzeRemovesSourceDuplicatesByDefault(t *testing.T) {
	diff := AnalyzeContactLists(
		[]models.Contact{{Email: "a@x"}, {Email: "A@X"}},
		nil,
	)

	assert.Len(t, diff.ToAdd, 1)
	assert.Equal(t, "a@x", diff.ToAdd[0].Email, "first occurrence should win")
}

func TestAnalyzeWithDuplicates(t *testing.T) {
	diff := AnalyzeContactLists(
		[]models.Contact{{Email: "a@x"}, {Email: "a@x"}},
		nil,
		WithDuplicates(),
	)

	assert.Len(t, diff.ToAdd, 2)
}

func TestAnalyzeDuplicateAlreadyInDestination(t *testing.T) {
	diff := AnalyzeContactLists(
		[]models.Contact{{Email: "a@x"}, {Email: "a@x"}},
		[]models.Contact{{Email: "a@x"}},
	)

	assert.True(t, diff.Empty())
}

func TestAnalyzePreservesSourceOrder(t *testing.T) {
	diff := AnalyzeContactLists(
		[]models.Contact{{Email: "b@x"}, {Email: "a@x"}, {Email: "c@x"}},
		nil,
	)

	assert.Equal(t, []string{"b@x", "a@x", "c@x"}, emails(diff.ToAdd))
}

func TestAnalyzeKeepsDestinationDuplicates(t *testing.T) {
	diff := AnalyzeContactLists(
		nil,
		[]models.Contact{{Email: "old@x"}, {Email: "OLD@x"}},
	)

	assert.Equal(t, []string{"old@x", "OLD@x"}, emails(diff.ToRemove))
}

func TestAnalyzeContactsWithoutEmailNeverMatch(t *testing.T) {
	first := models.Contact{FirstName: "Ann"}
	second := models.Contact{FirstName: "Ben"}

	diff := AnalyzeContactLists(
		[]models.Contact{first, second},
		[]models.Contact{{FirstName: "Cat"}},
	)

	assert.Equal(t, []models.Contact{first, second}, diff.ToAdd, "no-email contacts are never de-duplicated")
	assert.Len(t, diff.ToRemove, 1, "no-email destination contacts match nothing in the source")
}
