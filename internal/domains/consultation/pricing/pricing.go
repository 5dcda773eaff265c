// Package pricing turns a base price and a discount rule into the final price of an offering.
package pricing

import (
	"consultation/internal/domains/consultation/model"
	"consultation/shared/constant"
	"consultation/shared/failure"
)

const (
	DiscountNone       = "NONE"
	DiscountPercentage = "PERCENTAGE"
	DiscountAmount     = "AMOUNT"
)

const (
	minPercentage = 1
	maxPercentage = 99
)

var (
	ErrInvalidDiscountType = failure.BadRequestFromString("Invalid discount type")
	ErrAmountTooLarge      = failure.BadRequestFromString("Discount value shouldn't be greater than or equal price")
	ErrNegativeDiscount    = failure.BadRequestFromString("Discount value cannot be less than 0")
	ErrPercentageRange     = failure.BadRequestFromString("Discount value should be in between 1 and 99")
	ErrNegativePrice       = failure.BadRequestFromString("Price cannot be less than 0")
	ErrInvalidMode         = failure.BadRequestFromString("Invalid consultation type")
)

type OfferingInput struct {
	Mode          string
	DiscountType  string
	DiscountValue int
	Price         int
}

// Resolve returns the final price. Percentages are applied as floor(price*(100-v)/100).
func Resolve(price int, discountType string, discountValue int) (int, error) {
	if err := checkDiscount(price, discountType, discountValue); err != nil {
		return 0, err
	}

	if price < 0 {
		return 0, ErrNegativePrice
	}

	return apply(price, discountType, discountValue), nil
}

// ValidateOffering checks a default offering row in the order the booking admin sees the
// messages: discount rule, mode, price.
func ValidateOffering(in OfferingInput) error {
	if err := checkDiscount(in.Price, in.DiscountType, in.DiscountValue); err != nil {
		return err
	}

	if !model.IsValidMode(in.Mode) {
		return ErrInvalidMode
	}

	if in.Price < 0 {
		return ErrNegativePrice
	}

	return nil
}

func checkDiscount(price int, discountType string, discountValue int) error {
	switch discountType {
	case constant.Empty, DiscountNone:
		return nil
	case DiscountAmount:
		if discountValue >= price {
			return ErrAmountTooLarge
		}

		if discountValue < 0 {
			return ErrNegativeDiscount
		}

		return nil
	case DiscountPercentage:
		if discountValue < minPercentage || discountValue > maxPercentage {
			return ErrPercentageRange
		}

		return nil
	default:
		return ErrInvalidDiscountType
	}
}

func apply(price int, discountType string, discountValue int) int {
	switch discountType {
	case DiscountAmount:
		return price - discountValue
	case DiscountPercentage:
		return price * (100 - discountValue) / 100
	default:
		return price
	}
}
