package cart

import (
	cartsvc "github.com/nutricart/nutricart-backend/internal/cart"
	"github.com/nutricart/nutricart-backend/internal/savedcarts"
)

// CartChangeResponse acknowledges an add or remove with the updated cart.
type CartChangeResponse struct {
	Msg  string          `json:"msg"`
	Cart cartsvc.Summary `json:"cart"`
}

type CartDeletedResponse struct {
	Msg string `json:"msg"`
}

type CartSavedResponse struct {
	Message   string                   `json:"message"`
	SavedCart *savedcarts.SavedCartDTO `json:"saved_cart"`
}

type SavedCartsResponse struct {
	SavedCarts []savedcarts.SavedCartDTO `json:"saved_carts"`
}
