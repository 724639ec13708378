package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"

	"clubdesk/internal/member/models"
	"clubdesk/pkg/platform/sentinel"
	"clubdesk/pkg/requestcontext"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *Memory
	ctx   context.Context
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewMemory()
	s.ctx = context.Background()
}

func (s *MemoryStoreSuite) seed(email, phone string) *models.Member {
	m := &models.Member{
		Email:        email,
		Phone:        phone,
		FullName:     "Membro Teste",
		PasswordHash: "hash",
		Role:         requestcontext.RolePlayer,
	}
	s.Require().NoError(s.store.Create(s.ctx, m))
	return m
}

func (s *MemoryStoreSuite) TestCreateAssignsSequentialIDs() {
	first := s.seed("a@clube.pt", "")
	second := s.seed("b@clube.pt", "")

	s.Equal(int64(1), first.ID)
	s.Equal(int64(2), second.ID)
	s.False(first.CreatedAt.IsZero())
}

func (s *MemoryStoreSuite) TestCreateRejectsDuplicateEmailCaseInsensitive() {
	s.seed("membro@clube.pt", "")

	err := s.store.Create(s.ctx, &models.Member{Email: "MEMBRO@clube.pt", PasswordHash: "hash"})
	s.ErrorIs(err, sentinel.ErrConflict)
}

func (s *MemoryStoreSuite) TestCreateRejectsDuplicatePhone() {
	s.seed("", "912345678")

	err := s.store.Create(s.ctx, &models.Member{Phone: "912345678", PasswordHash: "hash"})
	s.ErrorIs(err, sentinel.ErrConflict)
}

func (s *MemoryStoreSuite) TestFindByIDReturnsClone() {
	created := s.seed("a@clube.pt", "")

	got, err := s.store.FindByID(s.ctx, created.ID)
	s.Require().NoError(err)

	got.FullName = "Mutado"
	again, err := s.store.FindByID(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Equal("Membro Teste", again.FullName)
}

func (s *MemoryStoreSuite) TestFindByEmailAndPhone() {
	s.seed("a@clube.pt", "912345678")

	byEmail, err := s.store.FindByEmail(s.ctx, "A@CLUBE.PT")
	s.Require().NoError(err)
	s.Equal("a@clube.pt", byEmail.Email)

	byPhone, err := s.store.FindByPhone(s.ctx, "912345678")
	s.Require().NoError(err)
	s.Equal(byEmail.ID, byPhone.ID)

	_, err = s.store.FindByEmail(s.ctx, "nada@clube.pt")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestFindByResetToken() {
	m := s.seed("a@clube.pt", "")
	m.ResetToken = "tok-123"
	s.Require().NoError(s.store.Update(s.ctx, m))

	got, err := s.store.FindByResetToken(s.ctx, "tok-123")
	s.Require().NoError(err)
	s.Equal(m.ID, got.ID)

	_, err = s.store.FindByResetToken(s.ctx, "desconhecido")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestListPaginatesAndCounts() {
	for i := 0; i < 25; i++ {
		s.seed(fmt.Sprintf("m%02d@clube.pt", i), "")
	}

	page, total, err := s.store.List(s.ctx, models.ListParams{Page: 2, Limit: 10, OrderBy: "user_id"})
	s.Require().NoError(err)
	s.Equal(25, total)
	s.Len(page, 10)
	s.Equal(int64(11), page[0].ID)

	last, total, err := s.store.List(s.ctx, models.ListParams{Page: 3, Limit: 10, OrderBy: "user_id"})
	s.Require().NoError(err)
	s.Equal(25, total)
	s.Len(last, 5)

	empty, _, err := s.store.List(s.ctx, models.ListParams{Page: 9, Limit: 10})
	s.Require().NoError(err)
	s.Empty(empty)
}

func (s *MemoryStoreSuite) TestListOrdersByEmailDescending() {
	s.seed("a@clube.pt", "")
	s.seed("c@clube.pt", "")
	s.seed("b@clube.pt", "")

	page, _, err := s.store.List(s.ctx, models.ListParams{OrderBy: "email", Order: "DESC"})
	s.Require().NoError(err)
	s.Require().Len(page, 3)
	s.Equal("c@clube.pt", page[0].Email)
	s.Equal("a@clube.pt", page[2].Email)
}

func (s *MemoryStoreSuite) TestUpdateEnforcesUniquenessExcludingSelf() {
	m := s.seed("a@clube.pt", "")
	s.seed("b@clube.pt", "")

	m.FullName = "Nome Novo"
	s.Require().NoError(s.store.Update(s.ctx, m))

	m.Email = "b@clube.pt"
	s.ErrorIs(s.store.Update(s.ctx, m), sentinel.ErrConflict)
}

func (s *MemoryStoreSuite) TestUpdateUnknownMember() {
	err := s.store.Update(s.ctx, &models.Member{ID: 404, Email: "x@clube.pt"})
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestDelete() {
	m := s.seed("a@clube.pt", "")

	s.Require().NoError(s.store.Delete(s.ctx, m.ID))
	_, err := s.store.FindByID(s.ctx, m.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.ErrorIs(s.store.Delete(s.ctx, m.ID), sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestCount() {
	s.seed("a@clube.pt", "")
	s.seed("b@clube.pt", "")

	count, err := s.store.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, count)
}
