package models

import "strings"

const (
	PublicationJournal    = "journal"
	PublicationConference = "conference"
)

type Author struct {
	ID            string  `json:"id,omitempty"`
	Name          string  `json:"name"`
	Homepage      *string `json:"homepage,omitempty"`
	Order         int     `json:"order"`
	PublicationID string  `json:"publicationId,omitempty"`
}

type Publication struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Journal      *string   `json:"journal,omitempty"`
	Conference   *string   `json:"conference,omitempty"`
	Year         Year      `json:"year"`
	Type         string    `json:"type"`
	Abstract     string    `json:"abstract"`
	PDFURL       *string   `json:"pdfUrl,omitempty"`
	ImageURL     *string   `json:"imageUrl,omitempty"`
	Order        int       `json:"order"`
	DisplayOrder *int      `json:"displayOrder,omitempty"`
	AuthorID     string    `json:"authorId,omitempty"`
	CreatedAt    Timestamp `json:"createdAt"`
	Authors      []Author  `json:"authors,omitempty"`
	AuthorsHTML  *string   `json:"authorsHtml,omitempty"`
}

// SortOrder is the manual ordering key within a year: DisplayOrder when
// set, otherwise Order.
func (p Publication) SortOrder() int {
	if p.DisplayOrder != nil {
		return *p.DisplayOrder
	}
	return p.Order
}

// AuthorLine is the author credit shown for the publication. A non-blank
// AuthorsHTML wins over the structured Authors list.
func (p Publication) AuthorLine() string {
	if p.AuthorsHTML != nil {
		if html := strings.TrimSpace(*p.AuthorsHTML); html != "" {
			return html
		}
	}
	names := make([]string, 0, len(p.Authors))
	for _, a := range p.Authors {
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}

// Venue is the journal or conference name, whichever the type calls for.
func (p Publication) Venue() string {
	if p.Type == PublicationConference {
		if v := Deref(p.Conference); v != "" {
			return v
		}
		return Deref(p.Journal)
	}
	if v := Deref(p.Journal); v != "" {
		return v
	}
	return Deref(p.Conference)
}

// AuthorInput is one author of a publication being created.
type AuthorInput struct {
	Name     string  `json:"name" validate:"required"`
	Homepage *string `json:"homepage,omitempty" validate:"omitempty,url"`
	Order    int     `json:"order"`
}

// PublicationInput is the publication half of a create request.
type PublicationInput struct {
	Title        string  `json:"title" validate:"required"`
	Journal      *string `json:"journal,omitempty"`
	Conference   *string `json:"conference,omitempty"`
	Year         int     `json:"year" validate:"required,pubyear"`
	Type         string  `json:"type" validate:"required,oneof=journal conference"`
	Abstract     string  `json:"abstract" validate:"required"`
	PDFURL       *string `json:"pdfUrl,omitempty" validate:"omitempty,url"`
	ImageURL     *string `json:"imageUrl,omitempty" validate:"omitempty,url"`
	Order        int     `json:"order"`
	DisplayOrder *int    `json:"displayOrder,omitempty"`
}

// CreatePublicationRequest is the body of POST /publications.
type CreatePublicationRequest struct {
	Publication PublicationInput `json:"publication" validate:"required"`
	Authors     []AuthorInput    `json:"authors" validate:"min=1,dive"`
}
