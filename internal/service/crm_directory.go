package service

import (
	"context"

	"loan-origination-be/internal/mapper"
	"loan-origination-be/internal/repository/contract"
	"loan-origination-be/pkg/store"
	"loan-origination-be/pkg/verification"
)

// crmDirectory adapts the gorm-backed reference repositories to the
// verification machine's lookup contract.
type crmDirectory struct {
	customers contract.CustomerRepository
	offers    contract.OfferRepository
}

func NewCRMDirectory(customers contract.CustomerRepository, offers contract.OfferRepository) verification.Directory {
	return &crmDirectory{customers: customers, offers: offers}
}

func (d *crmDirectory) FindCustomerByPhone(ctx context.Context, phone string) (*store.CustomerProfile, error) {
	customer, err := d.customers.FindByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	return mapper.ToCustomerProfile(customer), nil
}

func (d *crmDirectory) FindOfferByCustomerID(ctx context.Context, customerID string) (*store.Offer, error) {
	offer, err := d.offers.FindByCustomerID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return mapper.ToOffer(offer), nil
}
