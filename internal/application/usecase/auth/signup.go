package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/khoahotran/cuervo/internal/domain/user"
	"github.com/khoahotran/cuervo/pkg/apperror"
	"github.com/khoahotran/cuervo/pkg/auth"
)

const minPasswordLength = 6

type SignUpInput struct {
	Email       string
	Password    string
	DisplayName string
}

// SignUp registers a new owner and signs them in.
func (uc *LoginUseCase) SignUp(ctx context.Context, input SignUpInput) (*LoginOutput, error) {
	ctx, span := tracer.Start(ctx, "SignUp")
	defer span.End()

	email := normalizeEmail(input.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperror.NewInvalidInput("a valid email is required", nil)
	}
	if len(input.Password) < minPasswordLength {
		return nil, apperror.NewInvalidInput("password must have at least 6 characters", nil)
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, apperror.NewInternal("failed to hash password", err)
	}

	u := &user.User{
		ID:           uuid.New(),
		Email:        email,
		DisplayName:  strings.TrimSpace(input.DisplayName),
		PasswordHash: hash,
	}
	if err := uc.userRepo.Create(ctx, u); err != nil {
		span.RecordError(err)
		if errors.Is(err, user.ErrEmailTaken) {
			return nil, apperror.NewConflict("user", "email", email)
		}
		return nil, apperror.NewInternal("failed to create user", err)
	}

	token, err := uc.issueToken(u)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("user_id", u.ID.String()))
	return &LoginOutput{AccessToken: token, User: u}, nil
}
