package guidelines

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/JaimeStill/guidesync/pkg/pagination"
)

// AllTrusts is the trust filter value that disables trust matching.
const AllTrusts = "all"

// Filters holds the optional query dimensions of a list or search request.
// Nil and empty fields are not applied. IsActive defaults to true.
type Filters struct {
	Search     *string
	TrustName  *string
	Speciality *Speciality
	Tags       []string
	IsActive   *bool
}

// Order selects the result ordering of a query.
type Order int

const (
	// OrderRecent sorts by descending updatedAt.
	OrderRecent Order = iota
	// OrderRelevance sorts by descending text relevance.
	OrderRelevance
)

// Query is a store-independent predicate with ordering and a page window.
// Every set dimension must match. Tags match when any requested tag is
// present; Search matches when any of its terms is present. Results are
// ordered by Order with the guideline ID as the final tiebreaker.
type Query struct {
	Active     bool
	TrustName  *string
	Speciality *Speciality
	Tags       []string
	Search     *string
	Order      Order
	Page       int
	Limit      int
}

// Offset returns the number of matching records preceding the window.
func (q Query) Offset() int {
	return pagination.Offset(q.Page, q.Limit)
}

// BuildQuery composes filters and a normalized page request into a Query.
func BuildQuery(f Filters, page pagination.PageRequest) Query {
	q := Query{
		Active:     true,
		Speciality: f.Speciality,
		Order:      OrderRecent,
		Page:       page.Page,
		Limit:      page.Limit,
	}

	if f.IsActive != nil {
		q.Active = *f.IsActive
	}

	if f.TrustName != nil {
		if trust := strings.TrimSpace(*f.TrustName); trust != "" && trust != AllTrusts {
			q.TrustName = &trust
		}
	}

	if tags := normalizeTags(f.Tags); len(tags) > 0 {
		q.Tags = tags
	}

	if f.Search != nil {
		if search := strings.TrimSpace(*f.Search); search != "" {
			q.Search = &search
			q.Order = OrderRelevance
		}
	}

	return q
}

// Matches reports whether g satisfies every dimension of q.
func (q Query) Matches(g Guideline) bool {
	if g.IsActive != q.Active {
		return false
	}
	if q.TrustName != nil && g.TrustName != *q.TrustName {
		return false
	}
	if q.Speciality != nil && g.Speciality != *q.Speciality {
		return false
	}
	if len(q.Tags) > 0 && !slices.ContainsFunc(q.Tags, func(t string) bool {
		return slices.Contains(g.Tags, t)
	}) {
		return false
	}
	if q.Search != nil && q.Relevance(g) == 0 {
		return false
	}
	return true
}

// Relevance scores g against the search terms of q by term frequency across
// title, description, inline text, tags, and trust name. Returns 0 without a search.
func (q Query) Relevance(g Guideline) int {
	if q.Search == nil {
		return 0
	}

	fields := []string{g.Title, g.Description, g.TrustName}
	if in, ok := g.Content.(Inline); ok {
		fields = append(fields, in.Text)
	}
	fields = append(fields, g.Tags...)

	counts := make(map[string]int)
	for _, f := range fields {
		for _, tok := range tokenize(f) {
			counts[tok]++
		}
	}

	score := 0
	for _, term := range tokenize(*q.Search) {
		score += counts[term]
	}
	return score
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// FiltersFromQuery extracts filter values from URL query parameters.
// Tags may repeat and each value may hold a comma-delimited list.
// Returns a validation error for an unknown speciality or a malformed isActive.
func FiltersFromQuery(values url.Values) (Filters, error) {
	var f Filters

	if s := values.Get("search"); s != "" {
		f.Search = &s
	}

	if t := values.Get("trustName"); t != "" {
		f.TrustName = &t
	}

	if ms := values.Get("medicalSpeciality"); ms != "" {
		sp, err := ParseSpeciality(ms)
		if err != nil {
			return Filters{}, err
		}
		f.Speciality = &sp
	}

	for _, raw := range values["tags"] {
		f.Tags = append(f.Tags, ParseTags(raw)...)
	}

	if a := values.Get("isActive"); a != "" {
		active, err := strconv.ParseBool(a)
		if err != nil {
			return Filters{}, fmt.Errorf("%w: invalid isActive %q", ErrValidation, a)
		}
		f.IsActive = &active
	}

	return f, nil
}
