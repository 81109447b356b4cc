package models

import "time"

// Business is an approved storefront. Created only by application
// approval; the JSONB sub-documents are mutated by their own endpoints.
type Business struct {
	ID            int64            `json:"business_id" db:"id"`
	UserID        int64            `json:"user_id" db:"user_id"`
	ApplicationID int              `json:"application_id" db:"application_id"`
	Name          string           `json:"businessName" db:"name"`
	BusinessType  string           `json:"businessType" db:"business_type"`
	Category      StringList       `json:"category" db:"category"`
	Location      string           `json:"location" db:"location"`
	PinLocation   PinLocation      `json:"pin_location" db:"pin_location"`
	LogoPath      *string          `json:"logo,omitempty" db:"logo_path"`
	Card          BusinessCard     `json:"businessCard" db:"card"`
	HeroImages    HeroImageList    `json:"heroImages" db:"hero_images"`
	AboutUs       string           `json:"aboutUs" db:"about_us"`
	Facilities    FacilityList     `json:"facilities" db:"facilities"`
	Policies      PolicyList       `json:"policies" db:"policies"`
	ContactInfo   ContactFieldList `json:"contactInfo" db:"contact_info"`
	OpeningHours  OpeningHourList  `json:"openingHours" db:"opening_hours"`
	CreatedAt     time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at" db:"updated_at"`
}

// NewBusinessFromApplication seeds the storefront created on approval.
// The card scaffold mirrors the approved application; all other
// sub-documents start empty.
func NewBusinessFromApplication(app *BusinessApplication) *Business {
	category := ""
	if len(app.Category) > 0 {
		category = app.Category[0]
	}
	return &Business{
		UserID:        app.UserID,
		ApplicationID: app.ApplicationID,
		Name:          app.BusinessName,
		BusinessType:  app.BusinessType,
		Category:      app.Category,
		Location:      app.Location,
		PinLocation:   app.PinLocation,
		Card: BusinessCard{
			Category: category,
			Location: app.Location,
		},
	}
}

// UpdateBusinessCardRequest mutates the listing-preview card
type UpdateBusinessCardRequest struct {
	Card BusinessCard `json:"businessCard" binding:"required"`
}

// UpdateAboutUsRequest mutates the free-text about section
type UpdateAboutUsRequest struct {
	AboutUs string `json:"aboutUs"`
}

// UpdateFacilitiesRequest replaces the facilities list
type UpdateFacilitiesRequest struct {
	Facilities FacilityList `json:"facilities"`
}

// UpdatePoliciesRequest replaces the policies list
type UpdatePoliciesRequest struct {
	Policies PolicyList `json:"policies"`
}

// UpdateContactInfoRequest replaces the contact channels
type UpdateContactInfoRequest struct {
	ContactInfo ContactFieldList `json:"contactInfo"`
}

// UpdateOpeningHoursRequest replaces the weekly hours
type UpdateOpeningHoursRequest struct {
	OpeningHours OpeningHourList `json:"openingHours"`
}
