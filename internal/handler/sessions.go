package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/SilverPhantom1/zypos-sub000/internal/apierror"
	"github.com/SilverPhantom1/zypos-sub000/internal/dto"
	"github.com/SilverPhantom1/zypos-sub000/internal/middleware"
	"github.com/SilverPhantom1/zypos-sub000/internal/service"
)

type SessionsHandler struct{ svc service.SessionService }

func NewSessionsHandler(svc service.SessionService) *SessionsHandler {
	return &SessionsHandler{svc: svc}
}

// Open godoc
// @Summary Opens a new till session for the authenticated worker
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.OpenSessionRequest true "Opening float"
// @Success 201 {object} dto.SessionResponse
// @Failure 400 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/sessions [post]
func (h *SessionsHandler) Open(c *gin.Context) {
	var req dto.OpenSessionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	workerID, err := uuid.Parse(claims.WorkerID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid worker ID in token"))
		return
	}

	resp, err := h.svc.Open(c.Request.Context(), workerID, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Close godoc
// @Summary Closes a till session and returns the frozen closing total
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} dto.CloseSessionResponse
// @Failure 404 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/sessions/{id}/close [post]
func (h *SessionsHandler) Close(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid session ID"))
		return
	}
	resp, err := h.svc.Close(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetActive returns the authenticated worker's open session, if any.
// Clients call this at startup to resume instead of relying on local state.
func (h *SessionsHandler) GetActive(c *gin.Context) {
	claims := middleware.GetClaims(c)
	workerID, err := uuid.Parse(claims.WorkerID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid worker ID in token"))
		return
	}
	resp, err := h.svc.Resume(c.Request.Context(), workerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
		return
	}
	if resp == nil {
		c.JSON(http.StatusNotFound, apierror.New("No active session"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SignOut closes the worker's open session best-effort and always succeeds.
// A failed close is logged server-side; sign-out must never be blocked.
func (h *SessionsHandler) SignOut(c *gin.Context) {
	claims := middleware.GetClaims(c)
	workerID, err := uuid.Parse(claims.WorkerID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid worker ID in token"))
		return
	}
	if resp, err := h.svc.Resume(c.Request.Context(), workerID); err == nil && resp != nil {
		if id, parseErr := uuid.Parse(resp.ID); parseErr == nil {
			h.svc.CloseSilently(c.Request.Context(), id)
		}
	}
	c.Status(http.StatusNoContent)
}

// GetReport godoc
// @Summary Returns the full report of a till session
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} dto.SessionResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/sessions/{id} [get]
func (h *SessionsHandler) GetReport(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid session ID"))
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// History returns a paginated list of till sessions.
func (h *SessionsHandler) History(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	resp, err := h.svc.History(c.Request.Context(), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}
