package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/khoahotran/cuervo/internal/application/usecase/auth"
	"github.com/khoahotran/cuervo/pkg/apperror"
	"github.com/khoahotran/cuervo/pkg/logger"
)

type AuthHandler struct {
	loginUseCase   *auth.LoginUseCase
	sessionUseCase *auth.SessionUseCase
	logger         logger.Logger
}

func NewAuthHandler(loginUC *auth.LoginUseCase, sessionUC *auth.SessionUseCase, log logger.Logger) *AuthHandler {
	return &AuthHandler{
		loginUseCase:   loginUC,
		sessionUseCase: sessionUC,
		logger:         log,
	}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for login", err))
		return
	}

	input := auth.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	}

	output, err := h.loginUseCase.Execute(c.Request.Context(), input)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": output.AccessToken,
		"user":         ToUserDTO(output.User),
	})
}

func (h *AuthHandler) SignUp(c *gin.Context) {
	var req signUpRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for sign up", err))
		return
	}

	output, err := h.loginUseCase.SignUp(c.Request.Context(), auth.SignUpInput{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"access_token": output.AccessToken,
		"user":         ToUserDTO(output.User),
	})
}

// Logout revokes the bearer token and drops the owner's profile workspace.
func (h *AuthHandler) Logout(c *gin.Context) {
	sess, ok := GetSessionFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("session not found in context"))
		return
	}

	if err := h.sessionUseCase.SignOut(c.Request.Context(), sess); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) Session(c *gin.Context) {
	ownerID, ok := GetOwnerIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("ownerID not found in context"))
		return
	}

	u, err := h.sessionUseCase.CurrentUser(c.Request.Context(), ownerID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToUserDTO(u))
}
