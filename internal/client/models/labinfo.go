package models

// LabInfo is the single lab settings row.
type LabInfo struct {
	ID                    string    `json:"id,omitempty"`
	LabName               string    `json:"labName" validate:"required"`
	PrincipalInvestigator string    `json:"principalInvestigator" validate:"required"`
	PITitle               string    `json:"piTitle" validate:"required"`
	PIEmail               *string   `json:"piEmail,omitempty" validate:"omitempty,email"`
	PIPhone               *string   `json:"piPhone,omitempty"`
	PIPhoto               *string   `json:"piPhoto,omitempty"`
	PIBio                 *string   `json:"piBio,omitempty"`
	Description           *string   `json:"description,omitempty"`
	Address               string    `json:"address" validate:"required"`
	Latitude              *string   `json:"latitude,omitempty"`
	Longitude             *string   `json:"longitude,omitempty"`
	Building              *string   `json:"building,omitempty"`
	Room                  *string   `json:"room,omitempty"`
	University            string    `json:"university" validate:"required"`
	Department            string    `json:"department" validate:"required"`
	Website               *string   `json:"website,omitempty" validate:"omitempty,url"`
	EstablishedYear       *string   `json:"establishedYear,omitempty"`
	ResearchFocus         *string   `json:"researchFocus,omitempty"`
	ContactEmail          string    `json:"contactEmail" validate:"required,email"`
	ContactPhone          *string   `json:"contactPhone,omitempty"`
	OfficeHours           *string   `json:"officeHours,omitempty"`
	CreatedAt             Timestamp `json:"createdAt"`
	UpdatedAt             Timestamp `json:"updatedAt"`
}
