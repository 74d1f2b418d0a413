package entities

import "time"

// BlogPost is a blog entry ready for card and detail rendering.
type BlogPost struct {
	ID          string     `json:"_id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Excerpt     string     `json:"excerpt"`
	CoverImage  string     `json:"coverImage,omitempty"`
	Author      string     `json:"author,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`

	// Content is the raw rich-text document, passed through for the
	// front-end renderer.
	Content any `json:"content,omitempty"`
}

// PhotoAlbum is a gallery of resolved image URLs.
type PhotoAlbum struct {
	ID     string       `json:"_id"`
	Title  string       `json:"title"`
	Slug   string       `json:"slug"`
	Cover  string       `json:"cover,omitempty"`
	Photos []AlbumPhoto `json:"photos"`
}

// AlbumPhoto is one image of an album.
type AlbumPhoto struct {
	URL     string `json:"url"`
	Caption string `json:"caption,omitempty"`
}

// BlogPage is a paged list of blog posts.
type BlogPage struct {
	Items    []BlogPost `json:"items"`
	Total    int        `json:"total"`
	Page     int        `json:"page"`
	PageSize int        `json:"pageSize"`
}
