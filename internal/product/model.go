// File: internal/product/model.go
package product

import (
	"encoding/json"
	"strconv"
	"strings"

	"sipaling_preloved_client/internal/transport"
)

// Coordinates is a geographical point attached to a product's location.
type Coordinates struct {
	Lat float64
	Lon float64
}

// Product is the domain model of a marketplace item. IsFavorite is a
// per-viewing-user relationship, not an intrinsic attribute; IsOwnProduct is
// derived from the viewer's session.
type Product struct {
	ID             int
	Name           string
	Category       string
	Price          string // display string, e.g. "Rp 1.500.000"
	Description    *string
	Condition      *string
	Location       *string
	Coordinates    *Coordinates
	WhatsappNumber *string
	Images         []string
	IsFavorite     bool
	SellerName     string
	OwnerUserID    int
	IsOwnProduct   bool
}

// PriceValue normalizes the display price to a numeric value. Returns false
// when the string carries no parseable number.
func (p Product) PriceValue() (int64, bool) {
	return NormalizePrice(p.Price)
}

// NormalizePrice strips currency decoration ("Rp", thousands separators,
// whitespace) and parses the remaining digits.
func NormalizePrice(display string) (int64, bool) {
	cleaned := strings.ToLower(strings.TrimSpace(display))
	cleaned = strings.TrimPrefix(cleaned, "rp")
	cleaned = strings.NewReplacer(".", "", ",", "", " ", "").Replace(cleaned)
	if cleaned == "" {
		return 0, false
	}
	value, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// --- Wire DTOs ---

// priceString tolerates the backend sending the price as either a JSON
// string or a bare number.
type priceString string

func (p *priceString) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		*p = priceString(asString)
		return nil
	}
	var asNumber json.Number
	if err := json.Unmarshal(data, &asNumber); err != nil {
		return err
	}
	*p = priceString(asNumber.String())
	return nil
}

// ProductDTO is the wire shape of a product.
type ProductDTO struct {
	ID             int         `json:"id"`
	Name           string      `json:"name"`
	Category       string      `json:"category"`
	Price          priceString `json:"price"`
	Description    *string     `json:"description,omitempty"`
	Condition      *string     `json:"condition,omitempty"`
	Location       *string     `json:"location,omitempty"`
	Latitude       *float64    `json:"latitude,omitempty"`
	Longitude      *float64    `json:"longitude,omitempty"`
	WhatsappNumber *string     `json:"whatsapp_number,omitempty"`
	Images         []string    `json:"images"`
	IsFavorite     bool        `json:"is_favorite"`
	SellerName     string      `json:"seller_name"`
	UserID         int         `json:"user_id"`
}

// ToDomain maps the wire product to the domain model for the given viewer.
// viewerID 0 means anonymous.
func (d ProductDTO) ToDomain(viewerID int) Product {
	p := Product{
		ID:             d.ID,
		Name:           d.Name,
		Category:       d.Category,
		Price:          string(d.Price),
		Description:    d.Description,
		Condition:      d.Condition,
		Location:       d.Location,
		WhatsappNumber: d.WhatsappNumber,
		Images:         d.Images,
		IsFavorite:     d.IsFavorite,
		SellerName:     d.SellerName,
		OwnerUserID:    d.UserID,
		IsOwnProduct:   viewerID != 0 && viewerID == d.UserID,
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	if d.Latitude != nil && d.Longitude != nil {
		p.Coordinates = &Coordinates{Lat: *d.Latitude, Lon: *d.Longitude}
	}
	return p
}

// favoriteToggleDTO is the data payload of the favorite toggle endpoint.
type favoriteToggleDTO struct {
	IsFavorite bool `json:"is_favorite"`
}

// --- Request DTOs ---

// CreateProductRequest defines the fields for listing a new item. A nil
// Image is valid: the backend assigns a placeholder.
type CreateProductRequest struct {
	Name           string   `validate:"required,max=150"`
	Category       string   `validate:"required,max=100"`
	Condition      string   `validate:"required,max=50"`
	Price          string   `validate:"required,max=30"`
	Description    string   `validate:"omitempty,max=2000"`
	Location       string   `validate:"omitempty,max=255"`
	Latitude       *float64 `validate:"omitempty,latitude"`
	Longitude      *float64 `validate:"omitempty,longitude"`
	WhatsappNumber string   `validate:"required,max=20"`
	Image          *transport.FilePart
}

func (r CreateProductRequest) formFields() map[string]string {
	fields := map[string]string{
		"name":            r.Name,
		"category":        r.Category,
		"condition":       r.Condition,
		"price":           r.Price,
		"whatsapp_number": r.WhatsappNumber,
	}
	if r.Description != "" {
		fields["description"] = r.Description
	}
	if r.Location != "" {
		fields["location"] = r.Location
	}
	if r.Latitude != nil {
		fields["latitude"] = strconv.FormatFloat(*r.Latitude, 'f', -1, 64)
	}
	if r.Longitude != nil {
		fields["longitude"] = strconv.FormatFloat(*r.Longitude, 'f', -1, 64)
	}
	return fields
}

// UpdateProductRequest mirrors CreateProductRequest for edits. The call goes
// out as POST with a _method=PUT override because of the optional image part.
type UpdateProductRequest struct {
	Name           string   `validate:"required,max=150"`
	Category       string   `validate:"required,max=100"`
	Condition      string   `validate:"required,max=50"`
	Price          string   `validate:"required,max=30"`
	Description    string   `validate:"omitempty,max=2000"`
	Location       string   `validate:"omitempty,max=255"`
	Latitude       *float64 `validate:"omitempty,latitude"`
	Longitude      *float64 `validate:"omitempty,longitude"`
	WhatsappNumber string   `validate:"required,max=20"`
	Image          *transport.FilePart
}

func (r UpdateProductRequest) formFields() map[string]string {
	return CreateProductRequest{
		Name:           r.Name,
		Category:       r.Category,
		Condition:      r.Condition,
		Price:          r.Price,
		Description:    r.Description,
		Location:       r.Location,
		Latitude:       r.Latitude,
		Longitude:      r.Longitude,
		WhatsappNumber: r.WhatsappNumber,
	}.formFields()
}
