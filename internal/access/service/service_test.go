package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubdesk/internal/access/models"
	"clubdesk/internal/access/store"
	membermodels "clubdesk/internal/member/models"
	memberstore "clubdesk/internal/member/store"
	dErrors "clubdesk/pkg/domain-errors"
	"clubdesk/pkg/requestcontext"
)

var baseTime = time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *memberstore.Memory) {
	t.Helper()
	members := memberstore.NewMemory()
	entries := store.NewMemory(members)
	return New(entries, members, 10*time.Minute), members
}

func seedMember(t *testing.T, members *memberstore.Memory, email, phone string) *membermodels.Member {
	t.Helper()
	m := &membermodels.Member{
		Email:        email,
		Phone:        phone,
		FullName:     "Membro Teste",
		PasswordHash: "hash",
		Role:         requestcontext.RolePlayer,
	}
	require.NoError(t, members.Create(context.Background(), m))
	return m
}

func adminCtx(at time.Time) context.Context {
	ctx := requestcontext.WithActor(context.Background(),
		requestcontext.Actor{ID: 99, Role: requestcontext.RoleAdmin})
	return requestcontext.WithTime(ctx, at)
}

func TestRecordEntryByEmail(t *testing.T) {
	svc, members := newTestService(t)
	member := seedMember(t, members, "a@clube.pt", "")

	entry, err := svc.RecordEntry(adminCtx(baseTime), models.EmailRef("A@clube.pt"))
	require.NoError(t, err)
	assert.Equal(t, member.ID, entry.MemberID)
	assert.True(t, baseTime.Equal(entry.EntryTime))
	assert.False(t, entry.Validated())
}

func TestRecordEntryByPhone(t *testing.T) {
	svc, members := newTestService(t)
	member := seedMember(t, members, "", "912345678")

	entry, err := svc.RecordEntry(adminCtx(baseTime), models.PhoneRef("912345678"))
	require.NoError(t, err)
	assert.Equal(t, member.ID, entry.MemberID)
}

func TestRecordEntryUnknownMember(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.RecordEntry(adminCtx(baseTime), models.EmailRef("x@clube.pt"))
	assert.True(t, dErrors.Is(err, dErrors.CodeNotFound))
	assert.Equal(t, "Utilizador não encontrado.", dErrors.MessageOf(err, ""))
}

func TestRecordEntryCoolDownWindow(t *testing.T) {
	svc, members := newTestService(t)
	seedMember(t, members, "a@clube.pt", "")
	ref := models.EmailRef("a@clube.pt")

	_, err := svc.RecordEntry(adminCtx(baseTime), ref)
	require.NoError(t, err)

	// Five minutes later is still inside the window.
	_, err = svc.RecordEntry(adminCtx(baseTime.Add(5*time.Minute)), ref)
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodePolicy))
	assert.Equal(t, "O utilizador já registou uma entrada nos últimos 10 minutos.",
		dErrors.MessageOf(err, ""))

	// Eleven minutes later the window has passed.
	_, err = svc.RecordEntry(adminCtx(baseTime.Add(11*time.Minute)), ref)
	assert.NoError(t, err)
}

func TestRecordEntryCoolDownBoundaryIsInclusive(t *testing.T) {
	svc, members := newTestService(t)
	seedMember(t, members, "a@clube.pt", "")
	ref := models.EmailRef("a@clube.pt")

	_, err := svc.RecordEntry(adminCtx(baseTime), ref)
	require.NoError(t, err)

	// Exactly ten minutes later still counts as inside the window.
	_, err = svc.RecordEntry(adminCtx(baseTime.Add(10*time.Minute)), ref)
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodePolicy))

	_, err = svc.RecordEntry(adminCtx(baseTime.Add(10*time.Minute+time.Second)), ref)
	assert.NoError(t, err)
}

func TestRecordEntryCoolDownIsPerMember(t *testing.T) {
	svc, members := newTestService(t)
	seedMember(t, members, "a@clube.pt", "")
	seedMember(t, members, "b@clube.pt", "")

	_, err := svc.RecordEntry(adminCtx(baseTime), models.EmailRef("a@clube.pt"))
	require.NoError(t, err)
	_, err = svc.RecordEntry(adminCtx(baseTime), models.EmailRef("b@clube.pt"))
	assert.NoError(t, err)
}

func TestValidateEntriesReportsSkipped(t *testing.T) {
	svc, members := newTestService(t)
	seedMember(t, members, "a@clube.pt", "")
	seedMember(t, members, "b@clube.pt", "")

	first, err := svc.RecordEntry(adminCtx(baseTime), models.EmailRef("a@clube.pt"))
	require.NoError(t, err)
	second, err := svc.RecordEntry(adminCtx(baseTime), models.EmailRef("b@clube.pt"))
	require.NoError(t, err)

	result, err := svc.ValidateEntries(adminCtx(baseTime.Add(time.Minute)),
		[]int64{first.ID, second.ID, 404})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Validated)
	assert.Equal(t, []int64{404}, result.SkippedIDs)
}

func TestValidateEntriesNothingPending(t *testing.T) {
	svc, members := newTestService(t)
	seedMember(t, members, "a@clube.pt", "")

	entry, err := svc.RecordEntry(adminCtx(baseTime), models.EmailRef("a@clube.pt"))
	require.NoError(t, err)

	_, err = svc.ValidateEntries(adminCtx(baseTime.Add(time.Minute)), []int64{entry.ID})
	require.NoError(t, err)

	// A second pass over the same id finds nothing pending.
	_, err = svc.ValidateEntries(adminCtx(baseTime.Add(2*time.Minute)), []int64{entry.ID})
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodePolicy))
	assert.Equal(t, "Todas as entradas fornecidas já foram validadas.", dErrors.MessageOf(err, ""))
}

func TestValidateEntriesEmptyList(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.ValidateEntries(adminCtx(baseTime), nil)
	assert.True(t, dErrors.Is(err, dErrors.CodeValidation))
}

func TestValidateEntriesStampsActorAndTime(t *testing.T) {
	svc, members := newTestService(t)
	seedMember(t, members, "a@clube.pt", "")

	entry, err := svc.RecordEntry(adminCtx(baseTime), models.EmailRef("a@clube.pt"))
	require.NoError(t, err)

	stamp := baseTime.Add(3 * time.Minute)
	_, err = svc.ValidateEntries(adminCtx(stamp), []int64{entry.ID})
	require.NoError(t, err)

	page, _, err := svc.ListEntries(context.Background(), models.EntryListParams{})
	require.NoError(t, err)
	require.Len(t, page, 1)
	require.NotNil(t, page[0].ValidatedBy)
	assert.Equal(t, int64(99), *page[0].ValidatedBy)
	require.NotNil(t, page[0].ValidatedAt)
	assert.True(t, stamp.Equal(*page[0].ValidatedAt))
}

func TestRemoveEntry(t *testing.T) {
	svc, members := newTestService(t)
	seedMember(t, members, "a@clube.pt", "")

	entry, err := svc.RecordEntry(adminCtx(baseTime), models.EmailRef("a@clube.pt"))
	require.NoError(t, err)

	require.NoError(t, svc.RemoveEntry(adminCtx(baseTime), entry.ID))

	err = svc.RemoveEntry(adminCtx(baseTime), entry.ID)
	assert.True(t, dErrors.Is(err, dErrors.CodeNotFound))
	assert.Equal(t, "Entrada não encontrada.", dErrors.MessageOf(err, ""))
}

func TestListEntriesFiltersBySearchAndState(t *testing.T) {
	svc, members := newTestService(t)
	seedMember(t, members, "ana@clube.pt", "")
	seedMember(t, members, "bruno@clube.pt", "")

	entryAna, err := svc.RecordEntry(adminCtx(baseTime), models.EmailRef("ana@clube.pt"))
	require.NoError(t, err)
	_, err = svc.RecordEntry(adminCtx(baseTime), models.EmailRef("bruno@clube.pt"))
	require.NoError(t, err)

	_, err = svc.ValidateEntries(adminCtx(baseTime.Add(time.Minute)), []int64{entryAna.ID})
	require.NoError(t, err)

	bySearch, total, err := svc.ListEntries(context.Background(),
		models.EntryListParams{Search: "ana"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, bySearch, 1)
	assert.Equal(t, "ana@clube.pt", bySearch[0].MemberEmail)

	validated := true
	byState, _, err := svc.ListEntries(context.Background(),
		models.EntryListParams{Validated: &validated})
	require.NoError(t, err)
	require.Len(t, byState, 1)
	assert.Equal(t, entryAna.ID, byState[0].ID)
}

func TestStats(t *testing.T) {
	svc, members := newTestService(t)
	seedMember(t, members, "a@clube.pt", "")
	seedMember(t, members, "b@clube.pt", "")

	first, err := svc.RecordEntry(adminCtx(baseTime), models.EmailRef("a@clube.pt"))
	require.NoError(t, err)
	_, err = svc.RecordEntry(adminCtx(baseTime), models.EmailRef("b@clube.pt"))
	require.NoError(t, err)
	_, err = svc.ValidateEntries(adminCtx(baseTime.Add(time.Minute)), []int64{first.ID})
	require.NoError(t, err)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalEntries)
	assert.Equal(t, 1, stats.PendingEntries)
	assert.Equal(t, 1, stats.ValidatedEntries)
	assert.Equal(t, 2, stats.TotalMembers)
}
