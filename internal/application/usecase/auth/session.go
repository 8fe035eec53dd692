package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/khoahotran/cuervo/internal/domain/session"
	"github.com/khoahotran/cuervo/internal/domain/user"
	"github.com/khoahotran/cuervo/pkg/apperror"
	"github.com/khoahotran/cuervo/pkg/auth"
	"github.com/khoahotran/cuervo/pkg/logger"
)

// SessionEnder is told when an owner signs out.
type SessionEnder interface {
	End(sess session.Session)
}

type SessionUseCase struct {
	jwtSvc      *auth.JWTService
	revocations session.Revocations
	userRepo    user.Repository
	enders      []SessionEnder
	logger      logger.Logger
}

func NewSessionUseCase(jwtSvc *auth.JWTService, revocations session.Revocations, repo user.Repository, log logger.Logger, enders ...SessionEnder) *SessionUseCase {
	return &SessionUseCase{
		jwtSvc:      jwtSvc,
		revocations: revocations,
		userRepo:    repo,
		enders:      enders,
		logger:      log,
	}
}

// Authenticate turns a bearer token into the session that scopes every
// profile operation.
func (uc *SessionUseCase) Authenticate(ctx context.Context, token string) (session.Session, error) {
	claims, err := uc.jwtSvc.ValidateToken(token)
	if err != nil {
		return session.Session{}, apperror.NewUnauthorized("invalid or expired token", err)
	}

	if uc.revocations != nil {
		revoked, err := uc.revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			return session.Session{}, apperror.NewInternal("failed to check token revocation", err)
		}
		if revoked {
			return session.Session{}, apperror.NewUnauthorized("token has been revoked", nil)
		}
	}

	sess := session.Session{OwnerID: claims.OwnerID, TokenID: claims.ID}
	if claims.ExpiresAt != nil {
		sess.ExpiresAt = claims.ExpiresAt.Time
	}
	return sess, nil
}

func (uc *SessionUseCase) SignOut(ctx context.Context, sess session.Session) error {
	if uc.revocations != nil && sess.TokenID != "" {
		if err := uc.revocations.Revoke(ctx, sess.TokenID, sess.ExpiresAt); err != nil {
			uc.logger.Error("Failed to revoke token", err)
			return apperror.NewInternal("failed to sign out", err)
		}
	}
	for _, e := range uc.enders {
		e.End(sess)
	}
	return nil
}

func (uc *SessionUseCase) CurrentUser(ctx context.Context, ownerID uuid.UUID) (*user.User, error) {
	u, err := uc.userRepo.FindByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, apperror.NewNotFound("user", ownerID.String())
		}
		return nil, apperror.NewInternal("failed to load user", err)
	}
	return u, nil
}
