// internal/domain/models/content.go
package models

import "time"

// Visibility values for articles and works.
const (
	VisibilityPreview = "Preview" // draft: owners and elevated roles only
	VisibilityPublic  = "Public"
	VisibilityPrivate = "Private" // signed-in members and above
)

// Article is a written post. Ownership lives in article_authors; there is
// no owner column on the article itself.
type Article struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Date          string    `json:"date"` // YYYY-MM-DD
	Content       string    `json:"content"`
	Visibility    string    `json:"visibility"`
	AuthorIDs     []string  `json:"authorIds"`
	LabelIDs      []int64   `json:"labelIds"`
	TechnologyIDs []int64   `json:"technologyIds"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ArticleInput is the payload for creating an article.
type ArticleInput struct {
	Title         string   `json:"title"`
	Date          string   `json:"date"`
	Content       string   `json:"content"`
	Visibility    string   `json:"visibility"`
	LabelIDs      []int64  `json:"labelIds"`
	TechnologyIDs []int64  `json:"technologyIds"`
	AuthorIDs     []string `json:"authorIds"`
}

// ArticlePatch is a partial update. Nil fields are left unchanged; a
// non-nil id slice replaces the whole link set.
type ArticlePatch struct {
	Title         *string   `json:"title"`
	Date          *string   `json:"date"`
	Content       *string   `json:"content"`
	Visibility    *string   `json:"visibility"`
	LabelIDs      *[]int64  `json:"labelIds"`
	TechnologyIDs *[]int64  `json:"technologyIds"`
	AuthorIDs     *[]string `json:"authorIds"`
}

// Work is a portfolio entry.
type Work struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Date          string    `json:"date"`
	Description   string    `json:"description"`
	URL           string    `json:"url"`
	Visibility    string    `json:"visibility"`
	AuthorIDs     []string  `json:"authorIds"`
	LabelIDs      []int64   `json:"labelIds"`
	TechnologyIDs []int64   `json:"technologyIds"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// WorkInput is the payload for creating a work.
type WorkInput struct {
	Name          string   `json:"name"`
	Date          string   `json:"date"`
	Description   string   `json:"description"`
	URL           string   `json:"url"`
	Visibility    string   `json:"visibility"`
	LabelIDs      []int64  `json:"labelIds"`
	TechnologyIDs []int64  `json:"technologyIds"`
	AuthorIDs     []string `json:"authorIds"`
}

// WorkPatch is a partial update of a work.
type WorkPatch struct {
	Name          *string   `json:"name"`
	Date          *string   `json:"date"`
	Description   *string   `json:"description"`
	URL           *string   `json:"url"`
	Visibility    *string   `json:"visibility"`
	LabelIDs      *[]int64  `json:"labelIds"`
	TechnologyIDs *[]int64  `json:"technologyIds"`
	AuthorIDs     *[]string `json:"authorIds"`
}
