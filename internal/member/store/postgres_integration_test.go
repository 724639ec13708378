//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"clubdesk/internal/member/models"
	"clubdesk/internal/member/store"
	"clubdesk/pkg/platform/sentinel"
	"clubdesk/pkg/requestcontext"
	"clubdesk/pkg/testutil/containers"
)

type PostgresMemberSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.Postgres
}

func TestPostgresMemberSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresMemberSuite))
}

func (s *PostgresMemberSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresMemberSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "entries", "users"))
}

func (s *PostgresMemberSuite) newMember(email, phone string) *models.Member {
	return &models.Member{
		Email:        email,
		Phone:        phone,
		FullName:     "Membro Teste",
		PasswordHash: "hash",
		Role:         requestcontext.RolePlayer,
	}
}

func (s *PostgresMemberSuite) TestCreateAndFindRoundTrip() {
	ctx := context.Background()
	m := s.newMember("a@clube.pt", "912345678")
	s.Require().NoError(s.store.Create(ctx, m))
	s.NotZero(m.ID)
	s.False(m.CreatedAt.IsZero())

	byEmail, err := s.store.FindByEmail(ctx, "A@CLUBE.PT")
	s.Require().NoError(err)
	s.Equal(m.ID, byEmail.ID)

	byPhone, err := s.store.FindByPhone(ctx, "912345678")
	s.Require().NoError(err)
	s.Equal(m.ID, byPhone.ID)
}

func (s *PostgresMemberSuite) TestUniqueConstraints() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, s.newMember("a@clube.pt", "912345678")))

	err := s.store.Create(ctx, s.newMember("a@clube.pt", ""))
	s.ErrorIs(err, sentinel.ErrConflict)

	err = s.store.Create(ctx, s.newMember("b@clube.pt", "912345678"))
	s.ErrorIs(err, sentinel.ErrConflict)

	// Phone-only members may omit email entirely.
	s.NoError(s.store.Create(ctx, s.newMember("", "933333333")))
}

func (s *PostgresMemberSuite) TestUpdatePersistsResetToken() {
	ctx := context.Background()
	m := s.newMember("a@clube.pt", "")
	s.Require().NoError(s.store.Create(ctx, m))

	expires := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	m.ResetToken = "tok-123"
	m.ResetTokenExpires = &expires
	s.Require().NoError(s.store.Update(ctx, m))

	got, err := s.store.FindByResetToken(ctx, "tok-123")
	s.Require().NoError(err)
	s.Equal(m.ID, got.ID)
	s.Require().NotNil(got.ResetTokenExpires)
	s.True(expires.Equal(*got.ResetTokenExpires))
}

func (s *PostgresMemberSuite) TestListPagination() {
	ctx := context.Background()
	for _, email := range []string{"a@clube.pt", "b@clube.pt", "c@clube.pt"} {
		s.Require().NoError(s.store.Create(ctx, s.newMember(email, "")))
	}

	page, total, err := s.store.List(ctx, models.ListParams{Page: 2, Limit: 2, OrderBy: "email"})
	s.Require().NoError(err)
	s.Equal(3, total)
	s.Require().Len(page, 1)
	s.Equal("c@clube.pt", page[0].Email)
}

func (s *PostgresMemberSuite) TestDelete() {
	ctx := context.Background()
	m := s.newMember("a@clube.pt", "")
	s.Require().NoError(s.store.Create(ctx, m))

	s.Require().NoError(s.store.Delete(ctx, m.ID))
	_, err := s.store.FindByID(ctx, m.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.ErrorIs(s.store.Delete(ctx, m.ID), sentinel.ErrNotFound)
}
