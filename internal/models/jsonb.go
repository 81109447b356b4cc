package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONB column support for the business and product sub-documents.
// Each type marshals to a JSONB value on write and unmarshals on read,
// so the shape is guaranteed at the type level instead of being
// re-checked ad hoc by every reader.

func jsonbValue(v interface{}) (driver.Value, error) {
	return json.Marshal(v)
}

func jsonbScan(src interface{}, dest interface{}) error {
	if src == nil {
		return nil
	}
	switch data := src.(type) {
	case []byte:
		return json.Unmarshal(data, dest)
	case string:
		return json.Unmarshal([]byte(data), dest)
	default:
		return fmt.Errorf("unsupported jsonb source type %T", src)
	}
}

// BusinessCard is the listing-preview summary shown on browse pages
type BusinessCard struct {
	CardImage   string `json:"cardImage"`
	Description string `json:"description"`
	Location    string `json:"location"`
	PriceRange  string `json:"priceRange"`
	Category    string `json:"category"`
}

func (b BusinessCard) Value() (driver.Value, error) { return jsonbValue(b) }
func (b *BusinessCard) Scan(src interface{}) error  { return jsonbScan(src, b) }

// HeroImage is one cover photo on a business's public page
type HeroImage struct {
	ID    string `json:"id"`
	Path  string `json:"path"`
	Title string `json:"title"`
}

// HeroImageList is stored as a JSONB array
type HeroImageList []HeroImage

func (l HeroImageList) Value() (driver.Value, error) { return jsonbValue(l) }
func (l *HeroImageList) Scan(src interface{}) error  { return jsonbScan(src, l) }

// Facility is a named amenity with an optional icon and description
type Facility struct {
	Name        string `json:"name"`
	Icon        string `json:"icon,omitempty"`
	Description string `json:"description,omitempty"`
}

type FacilityList []Facility

func (l FacilityList) Value() (driver.Value, error) { return jsonbValue(l) }
func (l *FacilityList) Scan(src interface{}) error  { return jsonbScan(src, l) }

// Policy is a titled house rule or terms entry
type Policy struct {
	Title string   `json:"title"`
	Items []string `json:"items"`
}

type PolicyList []Policy

func (l PolicyList) Value() (driver.Value, error) { return jsonbValue(l) }
func (l *PolicyList) Scan(src interface{}) error  { return jsonbScan(src, l) }

// ContactField is one labelled contact channel (phone, email, socials)
type ContactField struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Icon  string `json:"icon,omitempty"`
}

type ContactFieldList []ContactField

func (l ContactFieldList) Value() (driver.Value, error) { return jsonbValue(l) }
func (l *ContactFieldList) Scan(src interface{}) error  { return jsonbScan(src, l) }

// OpeningHour is one weekday's open/close range
type OpeningHour struct {
	Day    string `json:"day"`
	Open   string `json:"open"`
	Close  string `json:"close"`
	Closed bool   `json:"closed,omitempty"`
}

type OpeningHourList []OpeningHour

func (l OpeningHourList) Value() (driver.Value, error) { return jsonbValue(l) }
func (l *OpeningHourList) Scan(src interface{}) error  { return jsonbScan(src, l) }

// ProductImage is one uploaded product photo
type ProductImage struct {
	ID   string `json:"id"`
	Path string `json:"path"`
}

type ProductImageList []ProductImage

func (l ProductImageList) Value() (driver.Value, error) { return jsonbValue(l) }
func (l *ProductImageList) Scan(src interface{}) error  { return jsonbScan(src, l) }

// StringList covers product inclusions, terms and category lists
type StringList []string

func (l StringList) Value() (driver.Value, error) { return jsonbValue(l) }
func (l *StringList) Scan(src interface{}) error  { return jsonbScan(src, l) }

// PinLocation is a map pin serialized as a JSONB object
type PinLocation struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (p PinLocation) Value() (driver.Value, error) { return jsonbValue(p) }
func (p *PinLocation) Scan(src interface{}) error  { return jsonbScan(src, p) }
