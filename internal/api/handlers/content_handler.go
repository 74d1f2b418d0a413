package handlers

import (
	"context"
	"net/http"

	"github.com/medtravel/hospitaldirectory/internal/application/services"
	"github.com/medtravel/hospitaldirectory/internal/domain/entities"
)

// ContentReader reads blog and gallery content.
type ContentReader interface {
	ListBlogs(ctx context.Context, page, pageSize int) (*entities.BlogPage, error)
	BlogBySlug(ctx context.Context, slug string) (*entities.BlogPost, error)
	Albums(ctx context.Context) ([]entities.PhotoAlbum, error)
}

// ContentHandler serves blog posts and photo albums.
type ContentHandler struct {
	service ContentReader
}

// NewContentHandler creates a new content handler
func NewContentHandler(service ContentReader) *ContentHandler {
	return &ContentHandler{service: service}
}

// ListBlogs handles GET /api/blogs
func (h *ContentHandler) ListBlogs(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.ListBlogs(r.Context(), queryInt(r, "page", 1), queryInt(r, "pageSize", services.DefaultBlogPageSize))
	if err != nil {
		respondWithAppError(w, err, "failed to fetch blog posts")
		return
	}
	respondWithJSON(w, http.StatusOK, page)
}

// GetBlog handles GET /api/blogs/{slug}
func (h *ContentHandler) GetBlog(w http.ResponseWriter, r *http.Request) {
	post, err := h.service.BlogBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		respondWithAppError(w, err, "failed to fetch blog post")
		return
	}
	respondWithJSON(w, http.StatusOK, post)
}

// ListAlbums handles GET /api/albums
func (h *ContentHandler) ListAlbums(w http.ResponseWriter, r *http.Request) {
	albums, err := h.service.Albums(r.Context())
	if err != nil {
		respondWithAppError(w, err, "failed to fetch albums")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{
		"albums": albums,
		"count":  len(albums),
	})
}
