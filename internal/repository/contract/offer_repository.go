package contract

import (
	"context"

	"loan-origination-be/internal/entity"
)

// OfferRepository reads pre-negotiated offers. A nil offer with a nil error
// means the customer has none.
type OfferRepository interface {
	FindByCustomerID(ctx context.Context, customerID string) (*entity.Offer, error)
}
