package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/khoahotran/cuervo/internal/application/usecase/share"
	"github.com/khoahotran/cuervo/pkg/apperror"
	"github.com/khoahotran/cuervo/pkg/logger"
)

const publicNotFoundMessage = "Profile not found or is private."

type PublicHandler struct {
	resolver *share.PublicResolver
	qr       *share.QRGenerator
	logger   logger.Logger
}

func NewPublicHandler(resolver *share.PublicResolver, qr *share.QRGenerator, log logger.Logger) *PublicHandler {
	return &PublicHandler{
		resolver: resolver,
		qr:       qr,
		logger:   log,
	}
}

// Resolve shows the chosen profile behind a share token. Every failure looks
// the same to the visitor.
func (h *PublicHandler) Resolve(c *gin.Context) {
	res := h.resolver.Resolve(c.Request.Context(), c.Param("token"))
	if res.State != share.StateFound {
		c.JSON(http.StatusNotFound, PublicResolutionDTO{State: share.StateNotFound, Message: publicNotFoundMessage})
		return
	}
	c.JSON(http.StatusOK, PublicResolutionDTO{State: res.State, Profile: ToPublicProfileDTO(res.Profile)})
}

func (h *PublicHandler) QR(c *gin.Context) {
	ownerID, err := uuid.Parse(c.Param("token"))
	if err != nil {
		c.Error(apperror.NewInvalidInput("share token must be an owner id", err))
		return
	}
	link, err := h.qr.Generate(ownerID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, link)
}
