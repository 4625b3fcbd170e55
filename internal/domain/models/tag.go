// internal/domain/models/tag.go
package models

// Tag is an entry in one of the shared vocabularies (labels or technologies).
type Tag struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	NameCI string `json:"-"`
}
