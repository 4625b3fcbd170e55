// Package aggregate folds the rows of an entity × authors × labels ×
// technologies left join back into one record per entity.
//
// A left join over three bridge tables multiplies rows: an entity with two
// authors, three labels and one technology comes back as six rows. Fold
// walks those rows in the order the store returned them and keeps, per
// entity id, the scalar fields of the first row plus three id lists that
// hold each distinct value once, in first-seen order. An entity with no
// bridge rows at all (one row, all bridge columns NULL) still yields a
// record, with empty lists.
//
// Bridge columns are handed over as raw driver values so that a malformed
// id surfaces as ErrDataIntegrity instead of being coerced.
package aggregate

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrDataIntegrity reports an id column whose value has the wrong type.
var ErrDataIntegrity = errors.New("data integrity: malformed id column")

// Row is one line of the joined result. ID must be an integer; AuthorID
// is a string id or nil; LabelID and TechnologyID are integer ids or nil.
type Row[T any] struct {
	ID           any
	Fields       T
	AuthorID     any
	LabelID      any
	TechnologyID any
}

// Record is one folded entity.
type Record[T any] struct {
	ID            int64
	Fields        T
	AuthorIDs     []string
	LabelIDs      []int64
	TechnologyIDs []int64
}

// HasAuthor reports whether userID is among the record's authors.
func (r Record[T]) HasAuthor(userID string) bool {
	if userID == "" {
		return false
	}
	for _, id := range r.AuthorIDs {
		if id == userID {
			return true
		}
	}
	return false
}

type accumulator[T any] struct {
	rec     Record[T]
	authors map[string]struct{}
	labels  map[int64]struct{}
	techs   map[int64]struct{}
}

// Fold groups rows by entity id. It performs no I/O and does not reorder:
// records come out in the order their ids were first seen.
func Fold[T any](rows []Row[T]) ([]Record[T], error) {
	index := make(map[int64]int)
	accs := make([]*accumulator[T], 0)

	for i, row := range rows {
		id, ok, err := Int64ID(row.ID)
		if err != nil {
			return nil, fmt.Errorf("row %d id: %w", i, err)
		}
		if !ok {
			return nil, fmt.Errorf("row %d id is null: %w", i, ErrDataIntegrity)
		}

		pos, seen := index[id]
		if !seen {
			pos = len(accs)
			index[id] = pos
			accs = append(accs, &accumulator[T]{
				rec: Record[T]{
					ID:            id,
					Fields:        row.Fields,
					AuthorIDs:     []string{},
					LabelIDs:      []int64{},
					TechnologyIDs: []int64{},
				},
				authors: make(map[string]struct{}),
				labels:  make(map[int64]struct{}),
				techs:   make(map[int64]struct{}),
			})
		}
		acc := accs[pos]

		author, ok, err := StringID(row.AuthorID)
		if err != nil {
			return nil, fmt.Errorf("row %d author id: %w", i, err)
		}
		if ok {
			if _, dup := acc.authors[author]; !dup {
				acc.authors[author] = struct{}{}
				acc.rec.AuthorIDs = append(acc.rec.AuthorIDs, author)
			}
		}

		label, ok, err := Int64ID(row.LabelID)
		if err != nil {
			return nil, fmt.Errorf("row %d label id: %w", i, err)
		}
		if ok {
			if _, dup := acc.labels[label]; !dup {
				acc.labels[label] = struct{}{}
				acc.rec.LabelIDs = append(acc.rec.LabelIDs, label)
			}
		}

		tech, ok, err := Int64ID(row.TechnologyID)
		if err != nil {
			return nil, fmt.Errorf("row %d technology id: %w", i, err)
		}
		if ok {
			if _, dup := acc.techs[tech]; !dup {
				acc.techs[tech] = struct{}{}
				acc.rec.TechnologyIDs = append(acc.rec.TechnologyIDs, tech)
			}
		}
	}

	out := make([]Record[T], len(accs))
	for i, acc := range accs {
		out[i] = acc.rec
	}
	return out, nil
}

// Int64ID converts a driver value to an integer id. ok is false for NULL.
// Decimal strings are accepted; anything else is ErrDataIntegrity.
func Int64ID(v any) (id int64, ok bool, err error) {
	switch x := v.(type) {
	case nil:
		return 0, false, nil
	case int64:
		return x, true, nil
	case int32:
		return int64(x), true, nil
	case int:
		return int64(x), true, nil
	case []byte:
		return parseInt(string(x))
	case string:
		return parseInt(x)
	default:
		return 0, false, fmt.Errorf("%w: %T", ErrDataIntegrity, v)
	}
}

func parseInt(s string) (int64, bool, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %q is not an integer", ErrDataIntegrity, s)
	}
	return n, true, nil
}

// StringID converts a driver value to a string id. ok is false for NULL.
func StringID(v any) (id string, ok bool, err error) {
	switch x := v.(type) {
	case nil:
		return "", false, nil
	case string:
		return x, true, nil
	case []byte:
		return string(x), true, nil
	default:
		return "", false, fmt.Errorf("%w: %T", ErrDataIntegrity, v)
	}
}
