package cart

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/nutricart/nutricart-backend/internal/products"
	"github.com/nutricart/nutricart-backend/internal/savedcarts"
	"github.com/nutricart/nutricart-backend/pkg/db/models"
	pkgerrors "github.com/nutricart/nutricart-backend/pkg/errors"
	"github.com/nutricart/nutricart-backend/pkg/logger"
)

const (
	defaultSavedName = "My Cart"
	maxAddAttempts   = 3
)

type savedCartRepository interface {
	Create(ctx context.Context, dto savedcarts.CreateSavedCartDTO) (*models.SavedCart, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.SavedCart, error)
}

// AddResult reports the product just added and the updated cart.
type AddResult struct {
	Product products.Product
	Cart    Summary
}

// Service exposes the session cart operations for authenticated users.
type Service interface {
	Add(ctx context.Context, userID uuid.UUID, barcode string) (*AddResult, error)
	Get(ctx context.Context, userID uuid.UUID) (*Summary, error)
	Remove(ctx context.Context, userID uuid.UUID, barcode string) (*Summary, error)
	Delete(ctx context.Context, userID uuid.UUID) error
	Save(ctx context.Context, userID uuid.UUID, name string) (*savedcarts.SavedCartDTO, error)
	ListSaved(ctx context.Context, userID uuid.UUID) ([]savedcarts.SavedCartDTO, error)
}

type ServiceParams struct {
	Registry         *Registry
	SavedCarts       savedCartRepository
	DefaultSavedName string
	Logger           *logger.Logger
}

type service struct {
	registry    *Registry
	savedCarts  savedCartRepository
	defaultName string
	logg        *logger.Logger
}

// NewService builds a cart service backed by the session registry.
func NewService(params ServiceParams) (Service, error) {
	if params.Registry == nil {
		return nil, fmt.Errorf("cart registry required")
	}
	if params.SavedCarts == nil {
		return nil, fmt.Errorf("saved cart repository required")
	}
	name := strings.TrimSpace(params.DefaultSavedName)
	if name == "" {
		name = defaultSavedName
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		registry:    params.Registry,
		savedCarts:  params.SavedCarts,
		defaultName: name,
		logg:        logg,
	}, nil
}

func (s *service) Add(ctx context.Context, userID uuid.UUID, barcode string) (*AddResult, error) {
	cart := s.registry.GetOrCreate(userID)
	product, ok := cart.find(ctx, barcode)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
	}
	// The lookup runs unlocked; a save or delete may close the cart meanwhile.
	for attempt := 0; attempt < maxAddAttempts; attempt++ {
		if cart.appendItem(ctx, product) {
			return &AddResult{Product: product, Cart: cart.List()}, nil
		}
		cart = s.registry.GetOrCreate(userID)
	}
	return nil, pkgerrors.New(pkgerrors.CodeConflict, "Cart changed, please retry")
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*Summary, error) {
	cart, ok := s.registry.Get(userID)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Cart not found")
	}
	summary := cart.List()
	return &summary, nil
}

func (s *service) Remove(ctx context.Context, userID uuid.UUID, barcode string) (*Summary, error) {
	cart, ok := s.registry.Get(userID)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Cart not found")
	}
	removed, open := cart.removeItem(ctx, barcode)
	if !open {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Cart not found")
	}
	if !removed {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found in cart")
	}
	summary := cart.List()
	return &summary, nil
}

func (s *service) Delete(ctx context.Context, userID uuid.UUID) error {
	cart, ok := s.registry.Take(userID)
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Cart not found")
	}
	cart.Clear(ctx)
	return nil
}

func (s *service) Save(ctx context.Context, userID uuid.UUID, name string) (*savedcarts.SavedCartDTO, error) {
	cart, snapshot, ok := s.registry.TakeFilled(userID)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Cart not found or empty")
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = s.defaultName
	}

	row, err := s.savedCarts.Create(ctx, savedcarts.CreateSavedCartDTO{
		Name:     name,
		UserID:   userID,
		CartData: snapshot,
	})
	if err != nil {
		s.registry.Restore(ctx, cart)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save cart")
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"saved_cart_id": row.ID.String(),
		"total_items":   row.CartData.TotalItems,
	}), "cart.saved")

	return savedcarts.FromModel(row), nil
}

func (s *service) ListSaved(ctx context.Context, userID uuid.UUID) ([]savedcarts.SavedCartDTO, error) {
	rows, err := s.savedCarts.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list saved carts")
	}
	out := make([]savedcarts.SavedCartDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *savedcarts.FromModel(&rows[i]))
	}
	return out, nil
}
