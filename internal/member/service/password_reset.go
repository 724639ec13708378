package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"clubdesk/internal/member/models"
	dErrors "clubdesk/pkg/domain-errors"
	"clubdesk/pkg/platform/sentinel"
	"clubdesk/pkg/requestcontext"
)

// ForgotPassword issues a single-use reset token for the account. The
// token is returned to the caller; delivery (email) happens upstream.
func (s *Service) ForgotPassword(ctx context.Context, email string) (string, error) {
	if email == "" {
		return "", dErrors.New(dErrors.CodeValidation, "Email é obrigatório.")
	}

	member, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", dErrors.New(dErrors.CodeNotFound, "Email não encontrado.")
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "Não foi possível gerar o token de recuperação.")
	}

	token, err := newResetToken()
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "Não foi possível gerar o token de recuperação.")
	}

	expires := requestcontext.Now(ctx).Add(s.config.ResetTokenTTL)
	member.ResetToken = token
	member.ResetTokenExpires = &expires
	if err := s.persistUpdate(ctx, member); err != nil {
		return "", err
	}

	s.logger.InfoContext(ctx, "password reset token issued", "member_id", member.ID)
	return token, nil
}

// CheckResetToken reports whether a reset token is known and unexpired.
func (s *Service) CheckResetToken(ctx context.Context, token string) error {
	_, err := s.memberForToken(ctx, token)
	return err
}

// ResetPassword consumes a reset token and sets the new password.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if newPassword == "" {
		return dErrors.New(dErrors.CodeValidation, "A nova palavra-passe é obrigatória.")
	}

	member, err := s.memberForToken(ctx, token)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "Não foi possível redefinir a palavra-passe.")
	}

	member.PasswordHash = string(hash)
	member.ResetToken = ""
	member.ResetTokenExpires = nil
	if err := s.persistUpdate(ctx, member); err != nil {
		return err
	}

	if s.lockout != nil {
		if err := s.lockout.Reset(ctx, member.Email); err != nil {
			s.logger.ErrorContext(ctx, "lockout reset failed", "error", err)
		}
	}
	s.logger.InfoContext(ctx, "password reset", "member_id", member.ID)
	return nil
}

func (s *Service) memberForToken(ctx context.Context, token string) (*models.Member, error) {
	if token == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "Token inválido ou expirado.")
	}
	member, err := s.store.FindByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "Token inválido ou expirado.")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "Não foi possível validar o token.")
	}
	if member.ResetTokenExpires == nil || requestcontext.Now(ctx).After(*member.ResetTokenExpires) {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "Token inválido ou expirado.")
	}
	return member, nil
}

func newResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
