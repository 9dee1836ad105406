package implementation

import (
	"context"
	"errors"

	"loan-origination-be/internal/entity"
	"loan-origination-be/internal/repository/contract"

	"gorm.io/gorm"
)

type offerRepository struct {
	db *gorm.DB
}

func NewOfferRepository(db *gorm.DB) contract.OfferRepository {
	return &offerRepository{db: db}
}

func (r *offerRepository) FindByCustomerID(ctx context.Context, customerID string) (*entity.Offer, error) {
	var offer entity.Offer
	err := r.db.WithContext(ctx).Where("customer_id = ?", customerID).First(&offer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &offer, nil
}
