package mapper

import (
	"loan-origination-be/internal/entity"
	"loan-origination-be/pkg/store"
)

// ToCustomerProfile converts a CRM row into the immutable snapshot bound to
// a session.
func ToCustomerProfile(c *entity.Customer) *store.CustomerProfile {
	if c == nil {
		return nil
	}
	return &store.CustomerProfile{
		ID:               c.ID,
		Name:             c.Name,
		City:             c.City,
		Phone:            c.Phone,
		Email:            c.Email,
		CreditScore:      c.CreditScore,
		PreapprovedLimit: c.PreapprovedLimit,
		Salary:           c.Salary,
	}
}

// ToOffer converts an offer row into its session snapshot.
func ToOffer(o *entity.Offer) *store.Offer {
	if o == nil {
		return nil
	}
	return &store.Offer{
		CustomerID:   o.CustomerID,
		InterestRate: o.InterestRate,
	}
}
