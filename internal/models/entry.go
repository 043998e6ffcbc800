package models

// Entry represents a single blog post.
type Entry struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Text  string `json:"text"`
}
