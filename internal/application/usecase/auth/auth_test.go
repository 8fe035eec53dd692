package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/cuervo/internal/domain/session"
	"github.com/khoahotran/cuervo/internal/domain/user"
	"github.com/khoahotran/cuervo/internal/mocks"
	"github.com/khoahotran/cuervo/pkg/apperror"
	"github.com/khoahotran/cuervo/pkg/auth"
	"github.com/khoahotran/cuervo/pkg/logger"
)

type recordingEnder struct{ ended []session.Session }

func (r *recordingEnder) End(sess session.Session) { r.ended = append(r.ended, sess) }

func newJWT() *auth.JWTService { return auth.NewJWTService("test-secret", time.Hour) }

func TestLogin(t *testing.T) {
	hash, err := auth.HashPassword("correct-horse")
	require.NoError(t, err)
	u := &user.User{ID: uuid.New(), Email: "owner@example.com", PasswordHash: hash}

	cases := []struct {
		name     string
		email    string
		password string
		setup    func(repo *mocks.UserRepository)
		wantErr  error
	}{
		{
			name:     "valid credentials",
			email:    " Owner@Example.com ",
			password: "correct-horse",
			setup: func(repo *mocks.UserRepository) {
				repo.On("FindByEmail", mock.Anything, "owner@example.com").Return(u, nil)
			},
		},
		{
			name:     "wrong password",
			email:    "owner@example.com",
			password: "nope",
			setup: func(repo *mocks.UserRepository) {
				repo.On("FindByEmail", mock.Anything, "owner@example.com").Return(u, nil)
			},
			wantErr: ErrInvalidCredentials,
		},
		{
			name:     "unknown email",
			email:    "ghost@example.com",
			password: "whatever",
			setup: func(repo *mocks.UserRepository) {
				repo.On("FindByEmail", mock.Anything, "ghost@example.com").Return(nil, user.ErrUserNotFound)
			},
			wantErr: ErrInvalidCredentials,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := new(mocks.UserRepository)
			tc.setup(repo)
			jwtSvc := newJWT()
			uc := NewLoginUseCase(repo, jwtSvc, logger.NewNop())

			out, err := uc.Execute(context.Background(), LoginInput{Email: tc.email, Password: tc.password})

			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.ErrorIs(t, err, apperror.ErrUnauthorized)
				return
			}
			require.NoError(t, err)
			claims, err := jwtSvc.ValidateToken(out.AccessToken)
			require.NoError(t, err)
			assert.Equal(t, u.ID, claims.OwnerID)
		})
	}
}

func TestSignUp(t *testing.T) {
	repo := new(mocks.UserRepository)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(u *user.User) bool {
		return u.Email == "new@example.com" && u.DisplayName == "Ana" && auth.CheckPasswordHash("s3cret!", u.PasswordHash)
	})).Return(nil)
	uc := NewLoginUseCase(repo, newJWT(), logger.NewNop())

	out, err := uc.SignUp(context.Background(), SignUpInput{Email: "New@example.com", Password: "s3cret!", DisplayName: " Ana "})

	require.NoError(t, err)
	assert.NotEmpty(t, out.AccessToken)
	assert.Equal(t, "new@example.com", out.User.Email)
	repo.AssertExpectations(t)
}

func TestSignUp_Validation(t *testing.T) {
	uc := NewLoginUseCase(new(mocks.UserRepository), newJWT(), logger.NewNop())

	_, err := uc.SignUp(context.Background(), SignUpInput{Email: "not-an-email", Password: "long-enough"})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = uc.SignUp(context.Background(), SignUpInput{Email: "a@b.c", Password: "123"})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestSignUp_EmailTaken(t *testing.T) {
	repo := new(mocks.UserRepository)
	repo.On("Create", mock.Anything, mock.Anything).Return(user.ErrEmailTaken)
	uc := NewLoginUseCase(repo, newJWT(), logger.NewNop())

	_, err := uc.SignUp(context.Background(), SignUpInput{Email: "a@b.c", Password: "123456"})

	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestSession_AuthenticateAndSignOut(t *testing.T) {
	jwtSvc := newJWT()
	ownerID := uuid.New()
	token, claims, err := jwtSvc.GenerateToken(ownerID)
	require.NoError(t, err)

	revocations := new(mocks.Revocations)
	revocations.On("IsRevoked", mock.Anything, claims.ID).Return(false, nil).Once()
	revocations.On("Revoke", mock.Anything, claims.ID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	ender := &recordingEnder{}
	uc := NewSessionUseCase(jwtSvc, revocations, new(mocks.UserRepository), logger.NewNop(), ender)

	sess, err := uc.Authenticate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, ownerID, sess.OwnerID)
	assert.Equal(t, claims.ID, sess.TokenID)

	require.NoError(t, uc.SignOut(context.Background(), sess))
	require.Len(t, ender.ended, 1)
	assert.Equal(t, ownerID, ender.ended[0].OwnerID)

	revocations.On("IsRevoked", mock.Anything, claims.ID).Return(true, nil).Once()
	_, err = uc.Authenticate(context.Background(), token)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	revocations.AssertExpectations(t)
}

func TestSession_RejectsGarbage(t *testing.T) {
	uc := NewSessionUseCase(newJWT(), nil, new(mocks.UserRepository), logger.NewNop())

	_, err := uc.Authenticate(context.Background(), "not-a-jwt")

	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}
