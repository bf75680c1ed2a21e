package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allAuditable(string) bool { return true }

func TestDiffCreated(t *testing.T) {
	current := Snapshot{"id": 1, "title": "Hi"}

	old, new, err := Diff(EventCreated, current, nil, allAuditable)
	require.NoError(t, err)

	assert.Empty(t, old)
	assert.Equal(t, Snapshot{"id": 1, "title": "Hi"}, new)
}

func TestDiffCreatedRespectsAuditability(t *testing.T) {
	current := Snapshot{"id": 1, "secret": "x"}

	old, new, err := Diff(EventCreated, current, nil, func(name string) bool {
		return name != "secret"
	})
	require.NoError(t, err)

	assert.Empty(t, old)
	assert.Equal(t, Snapshot{"id": 1}, new)
}

func TestDiffUpdated(t *testing.T) {
	current := Snapshot{"name": "Alice", "age": 30, "secret": "x"}
	original := Snapshot{"name": "Alice", "age": 29, "secret": "x"}

	old, new, err := Diff(EventUpdated, current, original, func(name string) bool {
		return name != "secret"
	})
	require.NoError(t, err)

	assert.Equal(t, Snapshot{"age": 29}, old)
	assert.Equal(t, Snapshot{"age": 30}, new)
}

func TestDiffUpdatedOmitsUnchangedAndNonAuditable(t *testing.T) {
	current := Snapshot{"a": 1, "b": 2, "c": 3}
	original := Snapshot{"a": 1, "b": 9, "c": 9}

	old, new, err := Diff(EventUpdated, current, original, func(name string) bool {
		return name != "c"
	})
	require.NoError(t, err)

	assert.Equal(t, Snapshot{"b": 9}, old)
	assert.Equal(t, Snapshot{"b": 2}, new)
}

func TestDiffUpdatedIgnoresAttributesMissingFromOriginal(t *testing.T) {
	current := Snapshot{"a": 1, "added": "later"}
	original := Snapshot{"a": 1}

	old, new, err := Diff(EventUpdated, current, original, allAuditable)
	require.NoError(t, err)

	assert.Empty(t, old)
	assert.Empty(t, new)
}

func TestDiffDeletedAndRestoredAreMirrors(t *testing.T) {
	snapshot := Snapshot{"name": "Alice", "age": 30}

	oldDel, newDel, err := Diff(EventDeleted, snapshot, nil, allAuditable)
	require.NoError(t, err)
	oldRes, newRes, err := Diff(EventRestored, snapshot, nil, allAuditable)
	require.NoError(t, err)

	assert.Equal(t, oldDel, newRes)
	assert.Equal(t, newDel, oldRes)
	assert.Equal(t, snapshot, oldDel)
	assert.Empty(t, newDel)
	assert.Empty(t, oldRes)
}

func TestDiffEmptyResultIsValid(t *testing.T) {
	old, new, err := Diff(EventUpdated, Snapshot{"a": 1}, Snapshot{"a": 1}, allAuditable)
	require.NoError(t, err)

	assert.Empty(t, old)
	assert.Empty(t, new)
}

func TestDiffUnknownEventFailsLoudly(t *testing.T) {
	_, _, err := Diff(Event("archived"), Snapshot{}, Snapshot{}, allAuditable)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoDiffStrategy)
	assert.Contains(t, err.Error(), "archived")
}
