package guidelines

import (
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/JaimeStill/guidesync/pkg/query"
	"github.com/JaimeStill/guidesync/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "guidelines", "g").
	Project("id", "ID").
	Project("trust_name", "TrustName").
	Project("title", "Title").
	Project("description", "Description").
	Project("medical_speciality", "Speciality").
	Project("file_type", "FileType").
	Project("url", "URL").
	Project("content", "Content").
	Project("storage_key", "StorageKey").
	Project("page_count", "PageCount").
	Project("tags", "Tags").
	Project("is_active", "IsActive").
	Project("created_by", "CreatedBy").
	Project("updated_by", "UpdatedBy").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt").
	Reference("search_vector", "SearchVector")

var (
	recentSort = []query.SortField{
		{Field: "UpdatedAt", Descending: true},
		{Field: "ID", Descending: true},
	}
	relevanceTiebreak = []query.SortField{
		{Field: "ID", Descending: true},
	}
)

// apply translates q into conditions and ordering on a query builder.
func (q Query) apply(b *query.Builder) *query.Builder {
	var speciality *string
	if q.Speciality != nil {
		s := string(*q.Speciality)
		speciality = &s
	}

	b.
		WhereEquals("IsActive", q.Active).
		WhereEquals("TrustName", q.TrustName).
		WhereEquals("Speciality", speciality).
		WhereOverlaps("Tags", q.Tags).
		WhereTextSearch("SearchVector", q.Search)

	if q.Order == OrderRelevance {
		b.OrderByTextRank("SearchVector", q.Search).OrderByFields(relevanceTiebreak)
	}

	return b
}

// contentColumns returns the file_type, url, content, and storage_key column
// values for c, using nil for NULL.
func contentColumns(c Content) (string, any, any, any) {
	switch v := c.(type) {
	case Inline:
		return string(FileTypeText), nil, v.Text, nil
	case Remote:
		return string(FileTypePDF), v.URL, nil, v.StorageKey
	}
	return "", nil, nil, nil
}

func scanGuideline(s repository.Scanner) (Guideline, error) {
	var (
		g                 Guideline
		fileType          string
		url, text, objKey sql.NullString
	)

	err := s.Scan(
		&g.ID,
		&g.TrustName,
		&g.Title,
		&g.Description,
		&g.Speciality,
		&fileType,
		&url,
		&text,
		&objKey,
		&g.PageCount,
		pq.Array(&g.Tags),
		&g.IsActive,
		&g.CreatedBy,
		&g.UpdatedBy,
		&g.CreatedAt,
		&g.UpdatedAt,
	)
	if err != nil {
		return Guideline{}, err
	}

	switch FileType(fileType) {
	case FileTypeText:
		g.Content = Inline{Text: text.String}
	case FileTypePDF:
		g.Content = Remote{URL: url.String, StorageKey: objKey.String}
	default:
		return Guideline{}, fmt.Errorf("guideline %s: unknown file type %q", g.ID, fileType)
	}

	return g, nil
}

func scanTrust(s repository.Scanner) (string, error) {
	var name string
	err := s.Scan(&name)
	return name, err
}
