package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordSuccess(t *testing.T) {
	m := New()
	at := time.Unix(1700000000, 0)

	m.RecordSuccess("members", 3, 1, at)
	m.RecordSuccess("members", 2, 0, at)

	assert.Equal(t, 5.0, testutil.ToFloat64(m.ContactsAddedTotal.WithLabelValues("members")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ContactsRemovedTotal.WithLabelValues("members")))
	assert.Equal(t, 1700000000.0, testutil.ToFloat64(m.LastSyncTimestamp.WithLabelValues("members")))
}

func TestRecordError(t *testing.T) {
	m := New()

	m.RecordError("youth")
	m.RecordError("youth")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ListSyncErrorsTotal.WithLabelValues("youth")))
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.RecordSuccess("members", 1, 0, time.Now())

	path := filepath.Join(t.TempDir(), "groupsync.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `groupsync_contacts_added_total{list="members"} 1`))
}
