package app

import (
	"context"
	"log/slog"

	"github.com/trustdelivery/backoffice/internal/identity/domain"
	"github.com/trustdelivery/backoffice/internal/identity/repository"
)

// ShopInput is the create/update payload for an online shop. On update,
// empty fields keep their stored value.
type ShopInput struct {
	OwnerID     string
	Name        string
	PhoneNumber string
	Address     string
	Township    string
	Email       string
}

// ShopService manages online shop profiles.
type ShopService struct {
	shops  repository.ShopRepository
	logger *slog.Logger
}

// NewShopService creates a ShopService.
func NewShopService(shops repository.ShopRepository, logger *slog.Logger) *ShopService {
	return &ShopService{shops: shops, logger: logger}
}

func (s *ShopService) List(ctx context.Context) ([]domain.OnlineShop, error) {
	return s.shops.List(ctx)
}

func (s *ShopService) Get(ctx context.Context, id string) (*domain.OnlineShop, error) {
	return s.shops.GetByID(ctx, id)
}

func (s *ShopService) Create(ctx context.Context, in ShopInput) (*domain.OnlineShop, error) {
	return s.shops.Create(ctx, &domain.OnlineShop{
		OwnerID:     in.OwnerID,
		Name:        in.Name,
		PhoneNumber: in.PhoneNumber,
		Address:     in.Address,
		Township:    in.Township,
		Email:       in.Email,
		IsActive:    true,
	})
}

func (s *ShopService) Update(ctx context.Context, id string, in ShopInput) (*domain.OnlineShop, error) {
	shop, err := s.shops.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != "" {
		shop.Name = in.Name
	}
	if in.PhoneNumber != "" {
		shop.PhoneNumber = in.PhoneNumber
	}
	if in.Address != "" {
		shop.Address = in.Address
	}
	if in.Township != "" {
		shop.Township = in.Township
	}
	if in.Email != "" {
		shop.Email = in.Email
	}
	if err := s.shops.Update(ctx, shop); err != nil {
		return nil, err
	}
	return shop, nil
}
