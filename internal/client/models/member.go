package models

type Member struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Email             *string `json:"email,omitempty"`
	ImageURL          *string `json:"imageUrl,omitempty"`
	Homepage          *string `json:"homepage,omitempty"`
	Degree            string  `json:"degree"`
	JoinedAt          string  `json:"joinedAt"`
	Status            *string `json:"status,omitempty"`
	Bio               *string `json:"bio,omitempty"`
	ResearchInterests *string `json:"researchInterests,omitempty"`
}

// GroupedMembers is the shape of GET /members?grouped=true and of the
// exported members.json.
type GroupedMembers struct {
	Masters   []Member `json:"masters"`
	Bachelors []Member `json:"bachelors"`
	PhD       []Member `json:"phd"`
	Other     []Member `json:"other"`
	Alumni    []Member `json:"alumni"`
}

// MemberGroup is one titled section of GroupedMembers.
type MemberGroup struct {
	Title   string
	Members []Member
}

// Groups lists the non-empty sections in page order.
func (g GroupedMembers) Groups() []MemberGroup {
	all := []MemberGroup{
		{Title: "Ph.D. Students", Members: g.PhD},
		{Title: "Master's Students", Members: g.Masters},
		{Title: "Undergraduate Students", Members: g.Bachelors},
		{Title: "Other Members", Members: g.Other},
		{Title: "Alumni", Members: g.Alumni},
	}
	out := all[:0]
	for _, grp := range all {
		if len(grp.Members) > 0 {
			out = append(out, grp)
		}
	}
	return out
}

type ResearchArea struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	ParentID    *string   `json:"parentId,omitempty"`
	ImageURL    *string   `json:"imageUrl,omitempty"`
	Order       int       `json:"order"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   Timestamp `json:"createdAt"`
	UpdatedAt   Timestamp `json:"updatedAt"`
}

type News struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Summary     *string   `json:"summary,omitempty"`
	ImageURL    *string   `json:"imageUrl,omitempty"`
	PublishedAt Timestamp `json:"publishedAt"`
	AuthorID    string    `json:"authorId"`
	IsPublished bool      `json:"isPublished"`
	CreatedAt   Timestamp `json:"createdAt"`
	UpdatedAt   Timestamp `json:"updatedAt"`
}
