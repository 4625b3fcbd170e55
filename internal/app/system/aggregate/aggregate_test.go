package aggregate_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/dalemusser/folio/internal/app/system/aggregate"
)

type fields struct {
	Title string
}

func row(id any, title string, author, label, tech any) aggregate.Row[fields] {
	return aggregate.Row[fields]{
		ID:           id,
		Fields:       fields{Title: title},
		AuthorID:     author,
		LabelID:      label,
		TechnologyID: tech,
	}
}

func TestFold_CartesianProduct(t *testing.T) {
	// 2 authors x 3 labels x 2 technologies = 12 rows for one entity.
	var rows []aggregate.Row[fields]
	for _, a := range []string{"u1", "u2"} {
		for _, l := range []int64{10, 11, 12} {
			for _, tc := range []int64{20, 21} {
				rows = append(rows, row(int64(1), "T", a, l, tc))
			}
		}
	}

	got, err := aggregate.Fold(rows)
	if err != nil {
		t.Fatalf("Fold: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	rec := got[0]
	if rec.ID != 1 || rec.Fields.Title != "T" {
		t.Errorf("unexpected record header: %+v", rec)
	}
	if !reflect.DeepEqual(rec.AuthorIDs, []string{"u1", "u2"}) {
		t.Errorf("AuthorIDs = %v", rec.AuthorIDs)
	}
	if !reflect.DeepEqual(rec.LabelIDs, []int64{10, 11, 12}) {
		t.Errorf("LabelIDs = %v", rec.LabelIDs)
	}
	if !reflect.DeepEqual(rec.TechnologyIDs, []int64{20, 21}) {
		t.Errorf("TechnologyIDs = %v", rec.TechnologyIDs)
	}
}

func TestFold_DuplicateRowsDoNotGrowCollections(t *testing.T) {
	rows := []aggregate.Row[fields]{
		row(int64(5), "A", "u1", int64(1), int64(2)),
		row(int64(5), "A", "u1", int64(1), int64(2)),
		row(int64(5), "A", "u1", int64(1), int64(2)),
	}
	got, err := aggregate.Fold(rows)
	if err != nil {
		t.Fatalf("Fold: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	if len(got[0].AuthorIDs) != 1 || len(got[0].LabelIDs) != 1 || len(got[0].TechnologyIDs) != 1 {
		t.Errorf("collections grew past distinct count: %+v", got[0])
	}
}

func TestFold_ZeroBridgeRowsYieldEmptyCollections(t *testing.T) {
	rows := []aggregate.Row[fields]{
		row(int64(3), "lonely", nil, nil, nil),
	}
	got, err := aggregate.Fold(rows)
	if err != nil {
		t.Fatalf("Fold: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	rec := got[0]
	if rec.AuthorIDs == nil || rec.LabelIDs == nil || rec.TechnologyIDs == nil {
		t.Fatal("collections must be empty, not nil")
	}
	if len(rec.AuthorIDs)+len(rec.LabelIDs)+len(rec.TechnologyIDs) != 0 {
		t.Errorf("expected empty collections, got %+v", rec)
	}
}

func TestFold_FirstSeenOrder(t *testing.T) {
	rows := []aggregate.Row[fields]{
		row(int64(9), "nine", "b", int64(3), nil),
		row(int64(2), "two", nil, nil, nil),
		row(int64(9), "nine", "a", int64(1), nil),
		row(int64(9), "nine", "b", int64(3), nil),
		row(int64(4), "four", "c", nil, int64(7)),
	}
	got, err := aggregate.Fold(rows)
	if err != nil {
		t.Fatalf("Fold: %v", err)
	}

	var ids []int64
	for _, r := range got {
		ids = append(ids, r.ID)
	}
	if !reflect.DeepEqual(ids, []int64{9, 2, 4}) {
		t.Errorf("record order = %v, want [9 2 4]", ids)
	}
	if !reflect.DeepEqual(got[0].AuthorIDs, []string{"b", "a"}) {
		t.Errorf("author order = %v, want [b a]", got[0].AuthorIDs)
	}
	if !reflect.DeepEqual(got[0].LabelIDs, []int64{3, 1}) {
		t.Errorf("label order = %v, want [3 1]", got[0].LabelIDs)
	}
}

func TestFold_ScalarsFromFirstRow(t *testing.T) {
	rows := []aggregate.Row[fields]{
		row(int64(1), "first", "u1", nil, nil),
		row(int64(1), "second", "u2", nil, nil),
	}
	got, err := aggregate.Fold(rows)
	if err != nil {
		t.Fatalf("Fold: %v", err)
	}
	if got[0].Fields.Title != "first" {
		t.Errorf("Title = %q, want first", got[0].Fields.Title)
	}
}

func TestFold_Empty(t *testing.T) {
	got, err := aggregate.Fold[fields](nil)
	if err != nil {
		t.Fatalf("Fold: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no records, got %d", len(got))
	}
}

func TestFold_DriverValueShapes(t *testing.T) {
	rows := []aggregate.Row[fields]{
		row([]byte("12"), "bytes", []byte("u1"), "4", int32(5)),
		row(int64(12), "bytes", "u1", int64(4), 5),
	}
	got, err := aggregate.Fold(rows)
	if err != nil {
		t.Fatalf("Fold: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("numeric ids in different driver shapes must group together, got %d records", len(got))
	}
	if !reflect.DeepEqual(got[0].LabelIDs, []int64{4}) || !reflect.DeepEqual(got[0].TechnologyIDs, []int64{5}) {
		t.Errorf("unexpected ids: %+v", got[0])
	}
}

func TestFold_MalformedIDs(t *testing.T) {
	tests := []struct {
		name string
		row  aggregate.Row[fields]
	}{
		{"non-numeric entity id", row("abc", "x", nil, nil, nil)},
		{"null entity id", row(nil, "x", nil, nil, nil)},
		{"non-numeric label id", row(int64(1), "x", nil, "red", nil)},
		{"float technology id", row(int64(1), "x", nil, nil, 1.5)},
		{"numeric author id", row(int64(1), "x", int64(99), nil, nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := aggregate.Fold([]aggregate.Row[fields]{tt.row})
			if !errors.Is(err, aggregate.ErrDataIntegrity) {
				t.Errorf("expected ErrDataIntegrity, got %v", err)
			}
		})
	}
}

func TestRecord_HasAuthor(t *testing.T) {
	rec := aggregate.Record[fields]{AuthorIDs: []string{"u1", "u2"}}
	if !rec.HasAuthor("u2") {
		t.Error("expected u2 to be an author")
	}
	if rec.HasAuthor("u3") {
		t.Error("u3 is not an author")
	}
	if rec.HasAuthor("") {
		t.Error("empty id must never match")
	}
}
