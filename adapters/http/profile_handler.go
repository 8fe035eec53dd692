package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	profileUC "github.com/khoahotran/cuervo/internal/application/usecase/profile"
	"github.com/khoahotran/cuervo/internal/application/usecase/share"
	"github.com/khoahotran/cuervo/internal/domain/profile"
	"github.com/khoahotran/cuervo/internal/domain/session"
	"github.com/khoahotran/cuervo/pkg/apperror"
	"github.com/khoahotran/cuervo/pkg/logger"
)

// ProfileHandler exposes the owner's profile workspace. Every handler maps
// to one workspace event and answers with the resulting collection.
type ProfileHandler struct {
	profileUseCase *profileUC.ProfileUseCase
	qr             *share.QRGenerator
	logger         logger.Logger
}

func NewProfileHandler(uc *profileUC.ProfileUseCase, qr *share.QRGenerator, log logger.Logger) *ProfileHandler {
	return &ProfileHandler{
		profileUseCase: uc,
		qr:             qr,
		logger:         log,
	}
}

func (h *ProfileHandler) session(c *gin.Context) (session.Session, bool) {
	sess, ok := GetSessionFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("session not found in context"))
	}
	return sess, ok
}

func (h *ProfileHandler) locator(c *gin.Context) (profile.Locator, bool) {
	loc, err := ParseRef(c.Param("ref"))
	if err != nil {
		c.Error(apperror.NewInvalidInput(err.Error(), err))
		return nil, false
	}
	return loc, true
}

func (h *ProfileHandler) respond(c *gin.Context, status int, out *profileUC.CollectionOutput, err error) {
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(status, ToCollectionDTO(out))
}

// Load reloads the workspace from the record store.
func (h *ProfileHandler) Load(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	out, err := h.profileUseCase.Load(c.Request.Context(), sess)
	h.respond(c, http.StatusOK, out, err)
}

func (h *ProfileHandler) Workspace(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	h.respond(c, http.StatusOK, h.profileUseCase.Current(sess), nil)
}

func (h *ProfileHandler) AddDraft(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	h.respond(c, http.StatusCreated, h.profileUseCase.AddDraft(sess), nil)
}

func (h *ProfileHandler) Edit(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	loc, ok := h.locator(c)
	if !ok {
		return
	}

	var req EditProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for profile edit", err))
		return
	}
	in, err := req.ToEditInput()
	if err != nil {
		c.Error(apperror.NewInvalidInput(err.Error(), err))
		return
	}

	out, err := h.profileUseCase.Edit(sess, loc, in)
	h.respond(c, http.StatusOK, out, err)
}

func (h *ProfileHandler) Toggle(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	loc, ok := h.locator(c)
	if !ok {
		return
	}
	out, err := h.profileUseCase.Toggle(sess, loc)
	h.respond(c, http.StatusOK, out, err)
}

func (h *ProfileHandler) Save(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	loc, ok := h.locator(c)
	if !ok {
		return
	}
	out, err := h.profileUseCase.Save(c.Request.Context(), sess, loc)
	h.respond(c, http.StatusOK, out, err)
}

func (h *ProfileHandler) Choose(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	loc, ok := h.locator(c)
	if !ok {
		return
	}
	out, err := h.profileUseCase.Choose(c.Request.Context(), sess, loc)
	h.respond(c, http.StatusOK, out, err)
}

func (h *ProfileHandler) Delete(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	loc, ok := h.locator(c)
	if !ok {
		return
	}
	out, err := h.profileUseCase.Delete(c.Request.Context(), sess, loc)
	h.respond(c, http.StatusOK, out, err)
}

// QR returns the owner's share link and its QR image URL.
func (h *ProfileHandler) QR(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	link, err := h.qr.Generate(sess.OwnerID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, link)
}
