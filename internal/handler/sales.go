package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/SilverPhantom1/zypos-sub000/internal/apierror"
	"github.com/SilverPhantom1/zypos-sub000/internal/dto"
	"github.com/SilverPhantom1/zypos-sub000/internal/middleware"
	"github.com/SilverPhantom1/zypos-sub000/internal/service"
)

type SalesHandler struct{ svc service.SaleService }

func NewSalesHandler(svc service.SaleService) *SalesHandler { return &SalesHandler{svc: svc} }

// Record godoc
// @Summary Records a completed sale
// @Tags sales
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.RecordSaleRequest true "Sale lines and payment"
// @Success 201 {object} dto.SaleResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/sales [post]
func (h *SalesHandler) Record(c *gin.Context) {
	var req dto.RecordSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	workerID, err := uuid.Parse(claims.WorkerID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid worker ID in token"))
		return
	}

	resp, err := h.svc.Record(c.Request.Context(), workerID, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary Lists sales filtered by date, status, or worker
// @Tags sales
// @Produce json
// @Security BearerAuth
// @Param date query string false "Filter by date (YYYY-MM-DD)"
// @Param status query string false "Filter by status"
// @Success 200 {object} dto.SaleListResponse
// @Router /v1/sales [get]
func (h *SalesHandler) List(c *gin.Context) {
	var filter dto.SaleFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid query parameters: "+err.Error()))
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get returns a single sale with its lines and amendment history.
func (h *SalesHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid sale ID"))
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
