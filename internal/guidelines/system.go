package guidelines

import (
	"context"
	"io"

	"github.com/JaimeStill/guidesync/internal/auth"
	"github.com/JaimeStill/guidesync/pkg/pagination"
)

// System defines the public contract for guideline catalog operations.
// Every operation receives the classified caller and enforces its own
// authorization requirement. Malformed IDs are reported as ErrNotFound.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		filters Filters,
		page pagination.PageRequest,
		caller auth.Caller,
	) (*pagination.PageResult[Guideline], error)

	Search(
		ctx context.Context,
		search string,
		filters Filters,
		page pagination.PageRequest,
		caller auth.Caller,
	) (*SearchResult, error)

	Find(ctx context.Context, id string, caller auth.Caller) (*Guideline, error)
	Create(ctx context.Context, req CreateRequest, caller auth.Caller) (*Guideline, error)
	Update(ctx context.Context, id string, req UpdateRequest, caller auth.Caller) (*Guideline, error)
	Delete(ctx context.Context, id string, caller auth.Caller) error
	Download(ctx context.Context, id string, caller auth.Caller) (*Download, error)
	Trusts(ctx context.Context, caller auth.Caller) ([]string, error)
	Specialities() []SpecialityOption
}

// SearchResult is a page of search matches that echoes the search query.
type SearchResult struct {
	pagination.PageResult[Guideline]
	Query string `json:"query"`
}

// Download is a stored guideline file. The caller must close Body.
type Download struct {
	Body        io.ReadCloser
	Filename    string
	ContentType string
}
