package domain

import "time"

// DefaultNewsQuery is searched when the caller gives no query.
const DefaultNewsQuery = "agriculture farming india"

// Article is one agricultural news item.
type Article struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"published_at"`
	Source      string    `json:"source"`
	ImageURL    string    `json:"image_url,omitempty"`
}

// NewsFeed is the answer to a news query. Provider names the source that
// produced the articles; "curated" means every live provider came up empty.
type NewsFeed struct {
	Query    string    `json:"query"`
	Articles []Article `json:"articles"`
	Total    int       `json:"total"`
	Provider string    `json:"provider"`
}
