package models

import "time"

// Product is a bookable or purchasable listing under a business
type Product struct {
	ID               int64            `json:"product_id" db:"id"`
	BusinessID       int64            `json:"business_id" db:"business_id"`
	UserID           int64            `json:"user_id" db:"user_id"`
	Category         string           `json:"category" db:"category"`
	ProductType      string           `json:"type" db:"product_type"`
	Name             string           `json:"name" db:"name"`
	Price            float64          `json:"price" db:"price"`
	PricingUnit      string           `json:"pricing_unit" db:"pricing_unit"`
	BookingOperation bool             `json:"booking_operation" db:"booking_operation"`
	Inclusions       StringList       `json:"inclusions" db:"inclusions"`
	Terms            StringList       `json:"termsAndConditions" db:"terms"`
	Images           ProductImageList `json:"images" db:"images"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at" db:"updated_at"`
}

// CreateProductRequest is the product creation payload
type CreateProductRequest struct {
	BusinessID       int64            `json:"business_id" binding:"required"`
	Category         string           `json:"category" binding:"required"`
	ProductType      string           `json:"type" binding:"required"`
	Name             string           `json:"name" binding:"required"`
	Price            float64          `json:"price" binding:"required"`
	PricingUnit      string           `json:"pricing_unit"`
	BookingOperation bool             `json:"booking_operation"`
	Inclusions       StringList       `json:"inclusions"`
	Terms            StringList       `json:"termsAndConditions"`
	Images           ProductImageList `json:"images"`
}

// UpdateProductRequest is the product mutation payload
type UpdateProductRequest struct {
	Category         string           `json:"category"`
	ProductType      string           `json:"type"`
	Name             string           `json:"name"`
	Price            float64          `json:"price"`
	PricingUnit      string           `json:"pricing_unit"`
	BookingOperation bool             `json:"booking_operation"`
	Inclusions       StringList       `json:"inclusions"`
	Terms            StringList       `json:"termsAndConditions"`
	Images           ProductImageList `json:"images"`
}

// Deal is a time-bounded percentage discount on a product. Deals are
// independent rows; the product price is never rewritten.
type Deal struct {
	ID         int64     `json:"deal_id" db:"id"`
	ProductID  int64     `json:"product_id" db:"product_id"`
	UserID     int64     `json:"user_id" db:"user_id"`
	Category   string    `json:"category" db:"category"`
	Discount   float64   `json:"discount" db:"discount"`
	Expiration time.Time `json:"expiration" db:"expiration"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// IsExpired reports whether the deal is past its expiration date
func (d *Deal) IsExpired() bool {
	return time.Now().After(d.Expiration)
}

// CreateDealRequest is the deal creation payload
type CreateDealRequest struct {
	ProductID  int64   `json:"product_id" binding:"required"`
	Category   string  `json:"category"`
	Discount   float64 `json:"discount" binding:"required,gt=0,lte=100"`
	Expiration string  `json:"expiration" binding:"required"` // YYYY-MM-DD
}

// ProductRating is an append-only review; averages are computed at read
// time via SQL AVG().
type ProductRating struct {
	ID        int64     `json:"rating_id" db:"id"`
	ProductID int64     `json:"product_id" db:"product_id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Rating    int       `json:"rating" db:"rating"`
	Comment   string    `json:"comment" db:"comment"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// RateProductRequest is the rating submission payload
type RateProductRequest struct {
	ProductID int64  `json:"product_id" binding:"required"`
	Rating    int    `json:"rating" binding:"required,min=1,max=5"`
	Comment   string `json:"comment"`
}
