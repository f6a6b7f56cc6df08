package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/SilverPhantom1/zypos-sub000/internal/apierror"
	"github.com/SilverPhantom1/zypos-sub000/internal/dto"
	"github.com/SilverPhantom1/zypos-sub000/internal/service"
)

type AmendmentsHandler struct{ svc service.AmendmentService }

func NewAmendmentsHandler(svc service.AmendmentService) *AmendmentsHandler {
	return &AmendmentsHandler{svc: svc}
}

// Void godoc
// @Summary Voids an entire sale and restocks its good-condition units
// @Tags amendments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Sale ID"
// @Param body body dto.VoidSaleRequest true "Void reason and damaged units"
// @Success 200 {object} dto.AmendmentResponse
// @Failure 400 {object} apierror.APIError
// @Failure 404 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/sales/{id}/void [post]
func (h *AmendmentsHandler) Void(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid sale ID"))
		return
	}
	var req dto.VoidSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Void(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Amend godoc
// @Summary Returns or exchanges selected units of a completed sale
// @Tags amendments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Sale ID"
// @Param body body dto.AmendSaleRequest true "Unit selection and disposition"
// @Success 200 {object} dto.AmendmentResponse
// @Failure 400 {object} apierror.APIError
// @Failure 404 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/sales/{id}/amend [post]
func (h *AmendmentsHandler) Amend(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid sale ID"))
		return
	}
	var req dto.AmendSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Amend(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
