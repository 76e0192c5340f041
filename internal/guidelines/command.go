package guidelines

import (
	"fmt"
	"strings"
)

// File is a binary payload attached to a create or update request.
type File struct {
	Filename    string
	ContentType string
	Data        []byte
}

// CreateRequest is the decoded body of a create operation.
// File is populated from a multipart upload and never from JSON.
type CreateRequest struct {
	TrustName         string `json:"trustName"`
	Title             string `json:"title"`
	Description       string `json:"description"`
	MedicalSpeciality string `json:"medicalSpeciality"`
	Content           string `json:"content"`
	Tags              Tags   `json:"tags"`
	File              *File  `json:"-"`
}

// CreateCommand is a validated create request. Exactly one of Text and File is set.
type CreateCommand struct {
	TrustName   string
	Title       string
	Description string
	Speciality  Speciality
	Tags        []string
	Text        string
	File        *File
}

// Parse validates the request and produces a command.
func (r CreateRequest) Parse() (CreateCommand, error) {
	cmd := CreateCommand{
		TrustName:   strings.TrimSpace(r.TrustName),
		Title:       strings.TrimSpace(r.Title),
		Description: strings.TrimSpace(r.Description),
		Tags:        normalizeTags(r.Tags),
		File:        r.File,
	}

	if cmd.Title == "" {
		return CreateCommand{}, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if cmd.TrustName == "" {
		return CreateCommand{}, fmt.Errorf("%w: trust name is required", ErrValidation)
	}

	sp, err := ParseSpeciality(r.MedicalSpeciality)
	if err != nil {
		return CreateCommand{}, err
	}
	cmd.Speciality = sp

	hasText := strings.TrimSpace(r.Content) != ""
	switch {
	case hasText && r.File != nil:
		return CreateCommand{}, fmt.Errorf("%w: file and content are mutually exclusive", ErrValidation)
	case !hasText && r.File == nil:
		return CreateCommand{}, fmt.Errorf("%w: either file or content is required", ErrValidation)
	case hasText:
		cmd.Text = r.Content
	}

	return cmd, nil
}

// UpdateRequest is the decoded body of an update operation.
// Nil fields are left unchanged.
type UpdateRequest struct {
	TrustName         *string `json:"trustName"`
	Title             *string `json:"title"`
	Description       *string `json:"description"`
	MedicalSpeciality *string `json:"medicalSpeciality"`
	Content           *string `json:"content"`
	Tags              *Tags   `json:"tags"`
	IsActive          *bool   `json:"isActive"`
	File              *File   `json:"-"`
}

// UpdateCommand is a validated partial update. At most one of Text and File is set.
type UpdateCommand struct {
	TrustName   *string
	Title       *string
	Description *string
	Speciality  *Speciality
	Tags        *[]string
	IsActive    *bool
	Text        *string
	File        *File
}

// Parse validates the supplied fields and produces a command.
func (r UpdateRequest) Parse() (UpdateCommand, error) {
	cmd := UpdateCommand{
		IsActive: r.IsActive,
		File:     r.File,
	}

	if r.Title != nil {
		title := strings.TrimSpace(*r.Title)
		if title == "" {
			return UpdateCommand{}, fmt.Errorf("%w: title must not be empty", ErrValidation)
		}
		cmd.Title = &title
	}

	if r.TrustName != nil {
		trust := strings.TrimSpace(*r.TrustName)
		if trust == "" {
			return UpdateCommand{}, fmt.Errorf("%w: trust name must not be empty", ErrValidation)
		}
		cmd.TrustName = &trust
	}

	if r.Description != nil {
		desc := strings.TrimSpace(*r.Description)
		cmd.Description = &desc
	}

	if r.MedicalSpeciality != nil {
		sp, err := ParseSpeciality(*r.MedicalSpeciality)
		if err != nil {
			return UpdateCommand{}, err
		}
		cmd.Speciality = &sp
	}

	if r.Tags != nil {
		tags := normalizeTags(*r.Tags)
		cmd.Tags = &tags
	}

	if r.Content != nil {
		if strings.TrimSpace(*r.Content) == "" {
			return UpdateCommand{}, fmt.Errorf("%w: content must not be empty", ErrValidation)
		}
		if r.File != nil {
			return UpdateCommand{}, fmt.Errorf("%w: file and content are mutually exclusive", ErrValidation)
		}
		text := *r.Content
		cmd.Text = &text
	}

	return cmd, nil
}

// apply writes the non-content fields of c onto g.
func (c UpdateCommand) apply(g *Guideline) {
	if c.TrustName != nil {
		g.TrustName = *c.TrustName
	}
	if c.Title != nil {
		g.Title = *c.Title
	}
	if c.Description != nil {
		g.Description = *c.Description
	}
	if c.Speciality != nil {
		g.Speciality = *c.Speciality
	}
	if c.Tags != nil {
		g.Tags = *c.Tags
	}
	if c.IsActive != nil {
		g.IsActive = *c.IsActive
	}
}
