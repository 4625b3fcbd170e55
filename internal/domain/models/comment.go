// internal/domain/models/comment.go
package models

import "time"

// Comment belongs to exactly one article or one work. Only its author may
// edit it.
type Comment struct {
	ID        int64     `json:"id"`
	ArticleID *int64    `json:"articleId,omitempty"`
	WorkID    *int64    `json:"workId,omitempty"`
	UserID    string    `json:"userId"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
