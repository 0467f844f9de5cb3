package audit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct{ entries []*Entry }

func (m *memRepo) Append(_ context.Context, e *Entry) error {
	m.entries = append(m.entries, e)
	return nil
}

func (m *memRepo) List(context.Context, Filter) ([]*Entry, int64, error) {
	return m.entries, int64(len(m.entries)), nil
}

func TestRecorder_Record(t *testing.T) {
	repo := &memRepo{}
	rec := NewRecorder(repo)
	actor := uint(1)

	err := rec.Record(context.Background(), &actor, ActionUpdate, TableProducts, 7,
		map[string]string{"price": "100.00"},
		map[string]string{"price": "90.00"},
	)
	require.NoError(t, err)

	require.Len(t, repo.entries, 1)
	e := repo.entries[0]
	assert.Equal(t, ActionUpdate, e.Action)
	assert.Equal(t, uint(7), e.RecordID)
	assert.JSONEq(t, `{"price":"100.00"}`, string(e.OldValue))
	assert.JSONEq(t, `{"price":"90.00"}`, string(e.NewValue))
}

func TestRecorder_InsertHasNoOldValue(t *testing.T) {
	repo := &memRepo{}
	require.NoError(t, NewRecorder(repo).Record(context.Background(), nil, ActionInsert, TableCategories, 1, nil, map[string]string{"name": "Grocery"}))
	assert.Nil(t, repo.entries[0].OldValue)
	assert.Nil(t, repo.entries[0].ActorID)
}

func TestRecorder_UnserializableSnapshot(t *testing.T) {
	err := NewRecorder(&memRepo{}).Record(context.Background(), nil, ActionInsert, TableProducts, 1, nil, make(chan int))
	assert.Error(t, err)
}
