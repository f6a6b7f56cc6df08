package dto

import "github.com/shopspring/decimal"

type ProductFilter struct {
	Name   string `form:"name"`
	SKU    string `form:"sku"`
	Active string `form:"active"` // "false" | "all" | anything else = active only
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type CreateProductRequest struct {
	SKU          string          `json:"sku"           validate:"required,min=1"`
	Name         string          `json:"name"          validate:"required,min=1"`
	UnitPrice    decimal.Decimal `json:"unit_price"    validate:"min=0"`
	InitialStock int             `json:"initial_stock" validate:"min=0"`
}

type AdjustStockRequest struct {
	Delta  int    `json:"delta"  validate:"required"`
	Reason string `json:"reason" validate:"required,min=3"`
}

type ProductResponse struct {
	ID        string          `json:"id"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Stock     int             `json:"stock"`
	Active    bool            `json:"active"`
}

type ProductListResponse struct {
	Data  []ProductResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}
