package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/SilverPhantom1/zypos-sub000/internal/dto"
	"github.com/SilverPhantom1/zypos-sub000/internal/model"
	"github.com/SilverPhantom1/zypos-sub000/internal/repository"
)

// ProductService is the supporting catalog surface: create, read, and manual
// stock adjustments routed through the stock ledger.
type ProductService interface {
	Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error)
	AdjustStock(ctx context.Context, id uuid.UUID, req dto.AdjustStockRequest) (*dto.ProductResponse, error)
}

type productService struct {
	repo   repository.ProductRepository
	ledger StockLedger
}

func NewProductService(repo repository.ProductRepository, ledger StockLedger) ProductService {
	return &productService{repo: repo, ledger: ledger}
}

func (s *productService) Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if req.UnitPrice.IsNegative() {
		return nil, ErrInvalidAmount
	}
	p := &model.Product{
		SKU:       req.SKU,
		Name:      req.Name,
		UnitPrice: req.UnitPrice,
		Stock:     req.InitialStock,
		Active:    true,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return productToResponse(p), nil
}

func (s *productService) Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return productToResponse(p), nil
}

func (s *productService) List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, *productToResponse(&products[i]))
	}
	return &dto.ProductListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *productService) AdjustStock(ctx context.Context, id uuid.UUID, req dto.AdjustStockRequest) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	newStock, err := s.ledger.Apply(ctx, id, req.Delta, "manual_adjust", req.Reason, nil)
	if err != nil {
		return nil, err
	}
	p.Stock = newStock
	return productToResponse(p), nil
}

func productToResponse(p *model.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:        p.ID.String(),
		SKU:       p.SKU,
		Name:      p.Name,
		UnitPrice: p.UnitPrice,
		Stock:     p.Stock,
		Active:    p.Active,
	}
}
