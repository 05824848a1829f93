// File: internal/address/model.go
package address

// Address is a saved delivery/pickup address owned by exactly one user.
type Address struct {
	ID             int
	Label          string
	FullAddress    string
	LocationName   *string
	DetailLocation *string
	Landmark       *string
}

// AddressDTO is the wire shape of an address.
type AddressDTO struct {
	ID             int     `json:"id"`
	Label          string  `json:"label"`
	FullAddress    string  `json:"full_address"`
	LocationName   *string `json:"location_name,omitempty"`
	DetailLocation *string `json:"detail_location,omitempty"`
	Landmark       *string `json:"landmark,omitempty"`
}

// ToDomain maps the wire address to the domain model. Pure function of the DTO.
func (d AddressDTO) ToDomain() Address {
	return Address{
		ID:             d.ID,
		Label:          d.Label,
		FullAddress:    d.FullAddress,
		LocationName:   d.LocationName,
		DetailLocation: d.DetailLocation,
		Landmark:       d.Landmark,
	}
}

// SaveAddressRequest defines the fields for creating or updating an address.
type SaveAddressRequest struct {
	Label          string `json:"label" validate:"required,max=50"`
	FullAddress    string `json:"full_address" validate:"required,max=500"`
	LocationName   string `json:"location_name,omitempty" validate:"omitempty,max=255"`
	DetailLocation string `json:"detail_location,omitempty" validate:"omitempty,max=500"`
	Landmark       string `json:"landmark,omitempty" validate:"omitempty,max=255"`
}
