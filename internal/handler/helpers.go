package handler

import (
	"errors"
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/SilverPhantom1/zypos-sub000/internal/apierror"
	"github.com/SilverPhantom1/zypos-sub000/internal/service"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid JSON: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// respondServiceError maps service sentinel errors onto HTTP statuses so
// every handler reports failures the same way.
func respondServiceError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrSessionAlreadyOpen),
		errors.Is(err, service.ErrSessionAlreadyClosed),
		errors.Is(err, service.ErrSessionClosed),
		errors.Is(err, service.ErrSaleNotAmendable):
		status = http.StatusConflict
	case errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInsufficientCash),
		errors.Is(err, service.ErrNoSelection),
		errors.Is(err, service.ErrMissingReplacement),
		errors.Is(err, service.ErrUnitSelection),
		errors.Is(err, service.ErrGatewayUnconfirmed):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrStockUpdate):
		status = http.StatusBadGateway
	}
	c.JSON(status, apierror.New(err.Error()))
}
