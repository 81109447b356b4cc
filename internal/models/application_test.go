package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplicationStatus(t *testing.T) {
	assert.True(t, ApplicationPending.Valid())
	assert.True(t, ApplicationApproved.Valid())
	assert.True(t, ApplicationDenied.Valid())
	assert.False(t, ApplicationStatus(2).Valid())

	assert.Equal(t, "Pending", ApplicationPending.Label())
	assert.Equal(t, "Approved", ApplicationApproved.Label())
	assert.Equal(t, "Denied", ApplicationDenied.Label())
}

func TestNewBusinessFromApplication(t *testing.T) {
	app := &BusinessApplication{
		ApplicationID: 123456,
		UserID:        7,
		BusinessName:  "Bayside Resort",
		BusinessType:  "accommodation",
		Category:      StringList{"Hotel", "Resort"},
		Location:      "Poblacion",
		PinLocation:   PinLocation{Lat: 13.58, Lng: 124.23},
	}

	business := NewBusinessFromApplication(app)

	assert.Equal(t, int64(7), business.UserID)
	assert.Equal(t, 123456, business.ApplicationID)
	assert.Equal(t, "Bayside Resort", business.Name)
	assert.Equal(t, app.Category, business.Category)

	// Card scaffold mirrors the application; other sub-documents start empty
	assert.Equal(t, "Hotel", business.Card.Category)
	assert.Equal(t, "Poblacion", business.Card.Location)
	assert.Empty(t, business.Card.CardImage)
	assert.Empty(t, business.HeroImages)
	assert.Empty(t, business.Facilities)
	assert.Empty(t, business.AboutUs)
}

func TestNewBusinessFromApplicationEmptyCategory(t *testing.T) {
	app := &BusinessApplication{BusinessName: "No Category Yet"}

	business := NewBusinessFromApplication(app)
	assert.Empty(t, business.Card.Category)
}
