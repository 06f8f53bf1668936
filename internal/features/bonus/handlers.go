// Package bonus: handlers.go exposes the claim over HTTP.
package bonus

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/game-backend/internal/common"
)

const (
	detailAlreadyClaimed = "Daily bonus already claimed."
	detailUserNotFound   = "User not found."
	detailInvalidDate    = "Claim date is before the last claim."
	detailInternal       = "Internal server error."
)

// errorBody is the error response shape: {"detail": "..."}.
type errorBody struct {
	Detail string `json:"detail"`
}

// Handler serves the daily bonus HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler creates the HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register mounts the routes on rg.
//
//	POST /daily-login-bonus/?user_id=<id>   claim today's bonus
//	GET  /daily-login-bonus/:user_id        streak status
func (h *Handler) Register(rg gin.IRoutes) {
	rg.POST("/daily-login-bonus/", h.Claim)
	rg.GET("/daily-login-bonus/:user_id", h.Status)
}

// Claim handles POST /daily-login-bonus/.
func (h *Handler) Claim(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusUnprocessableEntity, errorBody{Detail: "user_id query parameter is required."})
		return
	}

	res, err := h.service.ClaimToday(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Status handles GET /daily-login-bonus/:user_id.
func (h *Handler) Status(c *gin.Context) {
	status, err := h.service.GetStatus(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrAlreadyClaimed):
		c.JSON(http.StatusBadRequest, errorBody{Detail: detailAlreadyClaimed})
	case errors.Is(err, common.ErrUserNotFound):
		c.JSON(http.StatusNotFound, errorBody{Detail: detailUserNotFound})
	case errors.Is(err, common.ErrInvalidClaimDate):
		c.JSON(http.StatusConflict, errorBody{Detail: detailInvalidDate})
	default:
		log.WithError(err).WithField("path", c.FullPath()).Error("Daily bonus request failed")
		c.JSON(http.StatusInternalServerError, errorBody{Detail: detailInternal})
	}
}
