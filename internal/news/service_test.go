package news

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "clubdesk/pkg/domain-errors"
	"clubdesk/pkg/requestcontext"
)

func newTestService() *Service {
	return NewService(NewMemoryStore(), nil)
}

func authorCtx(at time.Time) context.Context {
	ctx := requestcontext.WithActor(context.Background(),
		requestcontext.Actor{ID: 5, Role: requestcontext.RoleAdmin})
	return requestcontext.WithTime(ctx, at)
}

func TestAddRecordsAuthorAndDate(t *testing.T) {
	svc := newTestService()
	published := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	item, err := svc.Add(authorCtx(published), AddRequest{Title: "Torneio de Páscoa"})
	require.NoError(t, err)
	assert.True(t, item.Active)
	assert.True(t, published.Equal(item.Date))
	require.NotNil(t, item.AuthorID)
	assert.Equal(t, int64(5), *item.AuthorID)
}

func TestAddRequiresTitle(t *testing.T) {
	svc := newTestService()

	_, err := svc.Add(context.Background(), AddRequest{Title: "   "})
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeValidation))
	assert.Equal(t, "O título é obrigatório.", dErrors.MessageOf(err, ""))
}

func TestGetUnknownItem(t *testing.T) {
	svc := newTestService()

	_, err := svc.Get(context.Background(), 404)
	assert.True(t, dErrors.Is(err, dErrors.CodeNotFound))
}

func TestListFiltersByTitle(t *testing.T) {
	svc := newTestService()
	now := time.Now()

	_, err := svc.Add(authorCtx(now), AddRequest{Title: "Torneio de Páscoa"})
	require.NoError(t, err)
	_, err = svc.Add(authorCtx(now.Add(time.Minute)), AddRequest{Title: "Assembleia Geral"})
	require.NoError(t, err)

	items, total, err := svc.List(context.Background(), ListParams{Search: "torneio"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "Torneio de Páscoa", items[0].Title)
}

func TestListNewestFirst(t *testing.T) {
	svc := newTestService()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	_, err := svc.Add(authorCtx(base), AddRequest{Title: "Antiga"})
	require.NoError(t, err)
	_, err = svc.Add(authorCtx(base.Add(time.Hour)), AddRequest{Title: "Recente"})
	require.NoError(t, err)

	items, _, err := svc.List(context.Background(), ListParams{})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Recente", items[0].Title)
}

func TestToggleActiveFlips(t *testing.T) {
	svc := newTestService()

	item, err := svc.Add(authorCtx(time.Now()), AddRequest{Title: "Torneio"})
	require.NoError(t, err)

	active, err := svc.ToggleActive(context.Background(), item.ID)
	require.NoError(t, err)
	assert.False(t, active)

	items, _, err := svc.List(context.Background(), ListParams{OnlyActive: true})
	require.NoError(t, err)
	assert.Empty(t, items)

	active, err = svc.ToggleActive(context.Background(), item.ID)
	require.NoError(t, err)
	assert.True(t, active)
}

func TestDelete(t *testing.T) {
	svc := newTestService()

	item, err := svc.Add(authorCtx(time.Now()), AddRequest{Title: "Torneio"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), item.ID))
	err = svc.Delete(context.Background(), item.ID)
	assert.True(t, dErrors.Is(err, dErrors.CodeNotFound))
}
