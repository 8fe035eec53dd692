package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/khoahotran/cuervo/adapters/persistence"
	authUC "github.com/khoahotran/cuervo/internal/application/usecase/auth"
	profileUC "github.com/khoahotran/cuervo/internal/application/usecase/profile"
	"github.com/khoahotran/cuervo/internal/application/usecase/share"
	"github.com/khoahotran/cuervo/internal/config"
	"github.com/khoahotran/cuervo/pkg/auth"
	"github.com/khoahotran/cuervo/pkg/logger"
)

// AuthE2ETestSuite drives the production router against the Postgres and
// Redis instances named in the local config.
type AuthE2ETestSuite struct {
	suite.Suite
	router *gin.Engine
	db     *pgxpool.Pool
	rdb    *redis.Client
	email  string
	pass   string
}

func TestAuthE2E(t *testing.T) {
	if os.Getenv("E2E_TESTS") == "" {
		t.Skip("Skipping E2E tests. Set E2E_TESTS=1 to run.")
	}
	suite.Run(t, new(AuthE2ETestSuite))
}

func (s *AuthE2ETestSuite) SetupSuite() {
	cfg, err := config.LoadConfig("../..")
	s.Require().NoError(err, "load config")

	log := logger.NewZapLogger("development")

	s.db, err = persistence.NewPostgresPool(cfg, log)
	s.Require().NoError(err, "connect postgres")
	s.rdb, err = persistence.NewRedisClient(cfg, log)
	s.Require().NoError(err, "connect redis")

	userRepo := persistence.NewPostgresUserRepo(s.db, log)
	profileRepo := persistence.NewPostgresProfileRepo(s.db, log)
	jwtSvc := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenLifespan)
	qr, err := share.NewQRGenerator(cfg.App.PublicBaseURL, cfg.QR.Endpoint, cfg.QR.Size)
	s.Require().NoError(err)

	profiles := profileUC.NewProfileUseCase(profileRepo, profileUC.NewWorkspaces(), log)
	sessions := authUC.NewSessionUseCase(jwtSvc, persistence.NewRedisRevocations(s.rdb), userRepo, log, profiles)

	gin.SetMode(gin.TestMode)
	s.router = NewRouter(Handlers{
		Auth:    NewAuthHandler(authUC.NewLoginUseCase(userRepo, jwtSvc, log), sessions, log),
		Profile: NewProfileHandler(profiles, qr, log),
		Public:  NewPublicHandler(share.NewPublicResolver(profileRepo, nil, log), qr, log),
	}, RouterOptions{Authenticator: sessions}, log)

	s.email = "e2e_" + uuid.NewString()[:8] + "@example.com"
	s.pass = "e2e_test_password_123"
}

func (s *AuthE2ETestSuite) TearDownSuite() {
	if s.db != nil {
		_, _ = s.db.Exec(context.Background(), "DELETE FROM users WHERE email = $1", s.email)
		s.db.Close()
	}
	if s.rdb != nil {
		_ = s.rdb.Close()
	}
}

func (s *AuthE2ETestSuite) call(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func (s *AuthE2ETestSuite) token(rr *httptest.ResponseRecorder) string {
	var out struct {
		AccessToken string `json:"access_token"`
	}
	s.Require().NoError(json.Unmarshal(rr.Body.Bytes(), &out))
	s.Require().NotEmpty(out.AccessToken)
	return out.AccessToken
}

func (s *AuthE2ETestSuite) Test_SignUp_Login_Logout() {
	signUp := gin.H{"email": s.email, "password": s.pass, "display_name": "E2E Owner"}

	rr := s.call(http.MethodPost, "/api/auth/signup", "", signUp)
	s.Require().Equal(http.StatusCreated, rr.Code, rr.Body.String())
	signUpToken := s.token(rr)

	rr = s.call(http.MethodPost, "/api/auth/signup", "", signUp)
	s.Equal(http.StatusConflict, rr.Code)

	rr = s.call(http.MethodPost, "/api/auth/login", "", gin.H{"email": s.email, "password": "wrongpassword"})
	s.Equal(http.StatusUnauthorized, rr.Code)

	rr = s.call(http.MethodPost, "/api/auth/login", "", gin.H{"email": s.email, "password": s.pass})
	s.Require().Equal(http.StatusOK, rr.Code)
	loginToken := s.token(rr)

	rr = s.call(http.MethodGet, "/api/auth/session", loginToken, nil)
	s.Equal(http.StatusOK, rr.Code)
	s.Contains(rr.Body.String(), s.email)

	rr = s.call(http.MethodGet, "/api/profiles", loginToken, nil)
	s.Equal(http.StatusOK, rr.Code)

	rr = s.call(http.MethodPost, "/api/auth/logout", loginToken, nil)
	s.Equal(http.StatusNoContent, rr.Code)

	rr = s.call(http.MethodGet, "/api/auth/session", loginToken, nil)
	s.Equal(http.StatusUnauthorized, rr.Code)

	rr = s.call(http.MethodGet, "/api/auth/session", signUpToken, nil)
	s.Equal(http.StatusOK, rr.Code, "logout only revokes the presented token")

	rr = s.call(http.MethodGet, "/api/auth/session", "", nil)
	s.Equal(http.StatusUnauthorized, rr.Code)
}
