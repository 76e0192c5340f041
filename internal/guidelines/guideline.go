// Package guidelines implements the clinical guideline catalog: the entity
// model, query composition, content resolution against object storage, and
// the role-gated operation set exposed over HTTP.
package guidelines

import (
	"encoding/json"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Guideline is a clinical protocol document contributed by a trust.
// CreatedBy and UpdatedBy hold identity subjects; UpdatedBy is nil until the
// first update.
type Guideline struct {
	ID          uuid.UUID
	TrustName   string
	Title       string
	Description string
	Speciality  Speciality
	Content     Content
	PageCount   *int
	Tags        []string
	IsActive    bool
	CreatedBy   string
	UpdatedBy   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type guidelineJSON struct {
	ID                  uuid.UUID  `json:"id"`
	TrustName           string     `json:"trustName"`
	Title               string     `json:"title"`
	Description         string     `json:"description,omitempty"`
	MedicalSpeciality   Speciality `json:"medicalSpeciality"`
	FormattedSpeciality string     `json:"formattedSpeciality"`
	FileType            FileType   `json:"fileType"`
	URL                 string     `json:"url,omitempty"`
	Content             string     `json:"content,omitempty"`
	PageCount           *int       `json:"pageCount,omitempty"`
	Tags                []string   `json:"tags"`
	IsActive            bool       `json:"isActive"`
	CreatedBy           string     `json:"createdBy"`
	UpdatedBy           *string    `json:"updatedBy,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

// MarshalJSON flattens Content into fileType with exactly one of url or content.
func (g Guideline) MarshalJSON() ([]byte, error) {
	out := guidelineJSON{
		ID:                  g.ID,
		TrustName:           g.TrustName,
		Title:               g.Title,
		Description:         g.Description,
		MedicalSpeciality:   g.Speciality,
		FormattedSpeciality: g.Speciality.Label(),
		PageCount:           g.PageCount,
		Tags:                g.Tags,
		IsActive:            g.IsActive,
		CreatedBy:           g.CreatedBy,
		UpdatedBy:           g.UpdatedBy,
		CreatedAt:           g.CreatedAt,
		UpdatedAt:           g.UpdatedAt,
	}

	switch c := g.Content.(type) {
	case Inline:
		out.FileType = c.FileType()
		out.Content = c.Text
	case Remote:
		out.FileType = c.FileType()
		out.URL = c.URL
	}

	if out.Tags == nil {
		out.Tags = []string{}
	}

	return json.Marshal(out)
}

// clone returns a copy of g that shares no mutable state.
func (g Guideline) clone() Guideline {
	g.Tags = slices.Clone(g.Tags)
	if g.PageCount != nil {
		n := *g.PageCount
		g.PageCount = &n
	}
	if g.UpdatedBy != nil {
		s := *g.UpdatedBy
		g.UpdatedBy = &s
	}
	return g
}
