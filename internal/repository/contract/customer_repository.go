package contract

import (
	"context"

	"loan-origination-be/internal/entity"
)

// CustomerRepository reads CRM customer records. A nil customer with a nil
// error means not-found.
type CustomerRepository interface {
	FindByPhone(ctx context.Context, phone string) (*entity.Customer, error)
}
