package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/SilverPhantom1/zypos-sub000/internal/apierror"
	"github.com/SilverPhantom1/zypos-sub000/internal/service"
)

type OperationsHandler struct{ svc service.OperationService }

func NewOperationsHandler(svc service.OperationService) *OperationsHandler {
	return &OperationsHandler{svc: svc}
}

// Retry godoc
// @Summary Re-applies the failed stock deltas of a past operation
// @Tags operations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Operation ID"
// @Success 200 {object} dto.RetryOperationResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/operations/{id}/retry [post]
func (h *OperationsHandler) Retry(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid operation ID"))
		return
	}
	resp, err := h.svc.Retry(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
