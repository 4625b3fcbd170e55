// Package shared holds request helpers used by more than one JSON feature.
package shared

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/folio/internal/app/system/apperr"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
)

// IDParam parses a positive integer route parameter.
func IDParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Invalid(name, "must be a positive integer")
	}
	return id, nil
}

// ListFilter holds the optional list query parameters shared by articles
// and works. Zero values mean "no filter".
type ListFilter struct {
	LabelID      int64
	TechnologyID int64
	AuthorID     string
}

// ParseListFilter reads labelId, technologyId and authorId.
func ParseListFilter(r *http.Request) (ListFilter, error) {
	var f ListFilter
	for _, p := range []struct {
		key string
		dst *int64
	}{
		{"labelId", &f.LabelID},
		{"technologyId", &f.TechnologyID},
	} {
		raw := query.Get(r, p.key)
		if raw == "" {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return ListFilter{}, apperr.Invalid(p.key, "must be a positive integer")
		}
		*p.dst = id
	}
	f.AuthorID = query.Get(r, "authorId")
	return f, nil
}

// Match reports whether an entity with the given link sets passes f.
func (f ListFilter) Match(authorIDs []string, labelIDs, technologyIDs []int64) bool {
	if f.LabelID != 0 && !containsInt64(labelIDs, f.LabelID) {
		return false
	}
	if f.TechnologyID != 0 && !containsInt64(technologyIDs, f.TechnologyID) {
		return false
	}
	if f.AuthorID != "" {
		for _, id := range authorIDs {
			if id == f.AuthorID {
				return true
			}
		}
		return false
	}
	return true
}

func containsInt64(ids []int64, want int64) bool {
	for _, id := range ids {
		if id == want {
			return true
		}
	}
	return false
}
