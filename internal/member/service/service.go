// Package service implements member registry business logic: registration,
// login with lockout, profile management and password recovery.
package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"clubdesk/internal/audit"
	"clubdesk/internal/member/models"
	"clubdesk/internal/platform/metrics"
	dErrors "clubdesk/pkg/domain-errors"
	"clubdesk/pkg/platform/sentinel"
	"clubdesk/pkg/requestcontext"
)

// Store is the member persistence contract the service depends on.
type Store interface {
	Create(ctx context.Context, m *models.Member) error
	FindByID(ctx context.Context, id int64) (*models.Member, error)
	FindByEmail(ctx context.Context, email string) (*models.Member, error)
	FindByPhone(ctx context.Context, phone string) (*models.Member, error)
	FindByResetToken(ctx context.Context, token string) (*models.Member, error)
	List(ctx context.Context, params models.ListParams) ([]*models.Member, int, error)
	Update(ctx context.Context, m *models.Member) error
	Delete(ctx context.Context, id int64) error
}

// LockoutStore tracks failed logins per email.
type LockoutStore interface {
	RecordFailure(ctx context.Context, key string) (int, error)
	Failures(ctx context.Context, key string) (int, error)
	Reset(ctx context.Context, key string) error
}

// TokenIssuer signs access tokens after a successful login.
type TokenIssuer interface {
	GenerateAccessToken(memberID int64, role requestcontext.Role, expiresIn time.Duration) (string, error)
}

// EntryPurger removes a member's check-in entries when the member is
// deleted. The Postgres store relies on the FK cascade and treats this as
// a no-op; the memory store purges for real.
type EntryPurger interface {
	DeleteByMember(ctx context.Context, memberID int64) error
}

// AuditPublisher records durable audit events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Config carries the tunables the service needs.
type Config struct {
	TokenTTL         time.Duration
	LockoutThreshold int
	ResetTokenTTL    time.Duration
}

type Service struct {
	store   Store
	lockout LockoutStore
	tokens  TokenIssuer
	config  Config
	logger  *slog.Logger
	metrics *metrics.Metrics
	auditor AuditPublisher
	purger  EntryPurger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) { s.auditor = p }
}

func WithEntryPurger(p EntryPurger) Option {
	return func(s *Service) { s.purger = p }
}

func New(store Store, lockout LockoutStore, tokens TokenIssuer, config Config, opts ...Option) *Service {
	s := &Service{
		store:   store,
		lockout: lockout,
		tokens:  tokens,
		config:  config,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a member. Email and password are required; phone,
// username and the remaining profile fields are optional.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.Member, error) {
	req.Normalize()
	if req.Email == "" || req.Password == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "Email e palavra-passe são obrigatórios.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "Não foi possível registar o utilizador.")
	}

	member := &models.Member{
		Email:                req.Email,
		Phone:                req.Phone,
		Username:             req.Username,
		FullName:             req.FullName,
		PasswordHash:         string(hash),
		Role:                 requestcontext.Role(req.Role),
		NewsletterSubscribed: req.NewsletterSubscribed,
		FeesPaid:             req.FeesPaid,
		FeeExpiration:        req.FeeExpiration,
		Birthdate:            req.Birthdate,
		Avatar:               req.Avatar,
	}

	if err := s.store.Create(ctx, member); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "Email já em utilização.")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "Não foi possível registar o utilizador.")
	}

	s.logger.InfoContext(ctx, "member registered",
		"member_id", member.ID,
		"role", member.Role,
	)
	if s.metrics != nil {
		s.metrics.MembersCreated.Inc()
	}
	if s.auditor != nil {
		_ = s.auditor.Emit(ctx, audit.Event{
			ActorID: member.ID,
			Action:  audit.ActionMemberRegistered,
			Subject: audit.MemberSubject(member.ID),
		})
	}
	return member, nil
}

// Login verifies credentials and returns a signed access token. Accounts
// with too many recent failures are refused before the password is even
// checked, so a locked account cannot be brute-forced.
func (s *Service) Login(ctx context.Context, email, password string) (string, *models.Member, error) {
	if email == "" || password == "" {
		return "", nil, dErrors.New(dErrors.CodeValidation, "Email e palavra-passe são obrigatórios.")
	}

	if s.lockout != nil {
		failures, err := s.lockout.Failures(ctx, email)
		if err != nil {
			s.logger.ErrorContext(ctx, "lockout lookup failed", "error", err)
		} else if failures >= s.config.LockoutThreshold {
			if s.metrics != nil {
				s.metrics.LockoutsTriggered.Inc()
			}
			s.logger.WarnContext(ctx, "login refused, account locked", "email", email)
			return "", nil, dErrors.New(dErrors.CodePolicy, "Demasiadas tentativas falhadas. Tente novamente mais tarde.")
		}
	}

	member, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.recordLoginFailure(ctx, email)
			return "", nil, dErrors.New(dErrors.CodeUnauthorized, "Email ou palavra-passe incorretos.")
		}
		return "", nil, dErrors.Wrap(err, dErrors.CodeInternal, "Não foi possível iniciar sessão.")
	}

	if bcrypt.CompareHashAndPassword([]byte(member.PasswordHash), []byte(password)) != nil {
		s.recordLoginFailure(ctx, email)
		return "", nil, dErrors.New(dErrors.CodeUnauthorized, "Email ou palavra-passe incorretos.")
	}

	token, err := s.tokens.GenerateAccessToken(member.ID, member.Role, s.config.TokenTTL)
	if err != nil {
		return "", nil, dErrors.Wrap(err, dErrors.CodeInternal, "Não foi possível iniciar sessão.")
	}

	if s.lockout != nil {
		if err := s.lockout.Reset(ctx, email); err != nil {
			s.logger.ErrorContext(ctx, "lockout reset failed", "error", err)
		}
	}
	if s.metrics != nil {
		s.metrics.LoginSuccess.Inc()
	}
	s.logger.InfoContext(ctx, "member logged in", "member_id", member.ID)
	return token, member, nil
}

func (s *Service) recordLoginFailure(ctx context.Context, email string) {
	if s.metrics != nil {
		s.metrics.LoginFailure.Inc()
	}
	if s.lockout == nil {
		return
	}
	failures, err := s.lockout.RecordFailure(ctx, email)
	if err != nil {
		s.logger.ErrorContext(ctx, "lockout record failed", "error", err)
		return
	}
	if failures == s.config.LockoutThreshold {
		s.logger.WarnContext(ctx, "account locked after repeated failures", "email", email)
		if s.auditor != nil {
			_ = s.auditor.Emit(ctx, audit.Event{
				Action: audit.ActionLoginLockout,
				Detail: email,
			})
		}
	}
}

// Get returns a single member by id.
func (s *Service) Get(ctx context.Context, id int64) (*models.Member, error) {
	member, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "Utilizador não encontrado.")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "Não foi possível obter o utilizador.")
	}
	return member, nil
}

// List returns a page of members plus the total count.
func (s *Service) List(ctx context.Context, params models.ListParams) ([]*models.Member, int, error) {
	members, total, err := s.store.List(ctx, params)
	if err != nil {
		return nil, 0, dErrors.Wrap(err, dErrors.CodeInternal, "Não foi possível listar os utilizadores.")
	}
	return members, total, nil
}

// AdminUpdate applies an administrative update to any member.
func (s *Service) AdminUpdate(ctx context.Context, id int64, req models.UpdateRequest) (*models.Member, error) {
	member, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		member.Email = *req.Email
	}
	if req.Phone != nil {
		member.Phone = *req.Phone
	}
	if req.Username != nil {
		member.Username = *req.Username
	}
	if req.FullName != nil {
		member.FullName = *req.FullName
	}
	if req.Birthdate != nil {
		member.Birthdate = req.Birthdate
	}
	if req.Role != nil {
		role := requestcontext.Role(*req.Role)
		if role != requestcontext.RoleAdmin && role != requestcontext.RolePlayer {
			return nil, dErrors.New(dErrors.CodeValidation, "Tipo de utilizador inválido.")
		}
		member.Role = role
	}
	if req.FeesPaid != nil {
		member.FeesPaid = *req.FeesPaid
	}
	if member.Email == "" && member.Phone == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "O utilizador tem de manter um email ou telefone.")
	}

	if err := s.persistUpdate(ctx, member); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "member updated", "member_id", member.ID)
	return member, nil
}

// SelfUpdate lets a member edit their own profile. Admins may edit anyone.
func (s *Service) SelfUpdate(ctx context.Context, id int64, req models.SelfUpdateRequest) (*models.Member, error) {
	actor, ok := requestcontext.ActorFrom(ctx)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "Sessão inválida.")
	}
	if actor.ID != id && !actor.IsAdmin() {
		return nil, dErrors.New(dErrors.CodeForbidden, "Não pode alterar o perfil de outro utilizador.")
	}
	if req.Empty() {
		return nil, dErrors.New(dErrors.CodeValidation, "Nenhum campo para atualizar.")
	}

	member, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		member.Email = *req.Email
	}
	if req.FullName != nil {
		member.FullName = *req.FullName
	}
	if req.Birthdate != nil {
		member.Birthdate = req.Birthdate
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "Não foi possível atualizar o utilizador.")
		}
		member.PasswordHash = string(hash)
	}
	if member.Email == "" && member.Phone == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "O utilizador tem de manter um email ou telefone.")
	}

	if err := s.persistUpdate(ctx, member); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "member self-updated", "member_id", member.ID)
	return member, nil
}

func (s *Service) persistUpdate(ctx context.Context, member *models.Member) error {
	if err := s.store.Update(ctx, member); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrConflict):
			return dErrors.New(dErrors.CodeConflict, "Email ou telefone já em utilização.")
		case errors.Is(err, sentinel.ErrNotFound):
			return dErrors.New(dErrors.CodeNotFound, "Utilizador não encontrado.")
		default:
			return dErrors.Wrap(err, dErrors.CodeInternal, "Não foi possível atualizar o utilizador.")
		}
	}
	return nil
}

// Delete removes a member and all their check-in entries.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "Utilizador não encontrado.")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "Não foi possível remover o utilizador.")
	}
	if s.purger != nil {
		if err := s.purger.DeleteByMember(ctx, id); err != nil {
			s.logger.ErrorContext(ctx, "entry purge after member delete failed",
				"member_id", id,
				"error", err,
			)
		}
	}

	s.logger.InfoContext(ctx, "member deleted", "member_id", id)
	if s.auditor != nil {
		actor, _ := requestcontext.ActorFrom(ctx)
		_ = s.auditor.Emit(ctx, audit.Event{
			ActorID: actor.ID,
			Action:  audit.ActionMemberDeleted,
			Subject: audit.MemberSubject(id),
		})
	}
	return nil
}
