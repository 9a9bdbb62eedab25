package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/listenupapp/seriesd/internal/errors"
	"github.com/listenupapp/seriesd/internal/store"
)

type testEntity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Group string `json:"group"`
}

func newTestEntity(t *testing.T) *store.Entity[testEntity] {
	s := setupTestStore(t)
	return store.NewEntity[testEntity](s, "test:", nil).
		WithIndex("name", func(e *testEntity) []string { return []string{e.Name} }).
		WithMultiIndex("group", func(e *testEntity) []string { return []string{e.Group} }, nil)
}

func TestEntity_CreateGetUpdateDelete(t *testing.T) {
	ctx := context.Background()
	e := newTestEntity(t)

	require.NoError(t, e.Create(ctx, "1", &testEntity{ID: "1", Name: "one", Group: "a"}))

	got, err := e.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "one", got.Name)

	err = e.Create(ctx, "1", &testEntity{ID: "1", Name: "uno"})
	assert.ErrorIs(t, err, store.ErrAlreadyExists)

	require.NoError(t, e.Update(ctx, "1", &testEntity{ID: "1", Name: "uno", Group: "b"}))
	got, err = e.GetByIndex(ctx, "name", "uno")
	require.NoError(t, err)
	assert.Equal(t, "1", got.ID)

	_, err = e.GetByIndex(ctx, "name", "one")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound, "old index key must be gone")

	require.NoError(t, e.Delete(ctx, "1"))
	require.NoError(t, e.Delete(ctx, "1"), "delete is idempotent")

	_, err = e.Get(ctx, "1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestEntity_UniqueIndexConflict(t *testing.T) {
	ctx := context.Background()
	e := newTestEntity(t)

	require.NoError(t, e.Create(ctx, "1", &testEntity{ID: "1", Name: "same"}))
	err := e.Create(ctx, "2", &testEntity{ID: "2", Name: "same"})
	assert.ErrorIs(t, err, store.ErrAlreadyExists)

	_, err = e.Get(ctx, "2")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestEntity_MultiIndex(t *testing.T) {
	ctx := context.Background()
	e := newTestEntity(t)

	require.NoError(t, e.Create(ctx, "1", &testEntity{ID: "1", Name: "one", Group: "a"}))
	require.NoError(t, e.Create(ctx, "2", &testEntity{ID: "2", Name: "two", Group: "a"}))
	require.NoError(t, e.Create(ctx, "3", &testEntity{ID: "3", Name: "three", Group: "a:b"}))

	found, err := e.ListByIndex(ctx, "group", "a")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "1", found[0].ID)
	assert.Equal(t, "2", found[1].ID)

	found, err = e.ListByIndex(ctx, "group", "a:b")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "3", found[0].ID)
}

func TestEntity_List(t *testing.T) {
	ctx := context.Background()
	e := newTestEntity(t)

	for _, id := range []string{"1", "2", "3"} {
		require.NoError(t, e.Create(ctx, id, &testEntity{ID: id, Name: "n" + id, Group: "g"}))
	}

	var ids []string
	for item, err := range e.List(ctx) {
		require.NoError(t, err)
		ids = append(ids, item.ID)
	}
	assert.Equal(t, []string{"1", "2", "3"}, ids, "index keys are skipped")

	count := 0
	for range e.List(ctx) {
		count++
		break
	}
	assert.Equal(t, 1, count)
}
