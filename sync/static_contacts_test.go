package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStaticContactsGetList(t *testing.T) {
	target := NewStaticContacts([]StaticContact{
		{Email: "foo@bar", Lists: []string{"list1@list"}},
		{Email: "bar@baz", Lists: []string{"list1@LIST", "list2@list"}},
	})

	list1 := target.GetContacts("list1@list")
	list2 := target.GetContacts("LIST2@list")

	assert.Len(t, list1, 2)
	assert.Len(t, list2, 1)
	assert.Equal(t, "bar@baz", list2[0].Email)
}

func TestStaticContactsUnknownList(t *testing.T) {
	target := NewStaticContacts(nil)

	contacts := target.GetContacts("nobody")
	assert.NotNil(t, contacts)
	assert.Empty(t, contacts)
}
