package services

import (
	"context"
	"strings"

	"github.com/medtravel/hospitaldirectory/internal/adapters/cms"
	"github.com/medtravel/hospitaldirectory/internal/domain/entities"
	"github.com/medtravel/hospitaldirectory/internal/domain/providers"
	"github.com/medtravel/hospitaldirectory/internal/infrastructure/observability"
	apperrors "github.com/medtravel/hospitaldirectory/pkg/errors"
	"github.com/medtravel/hospitaldirectory/pkg/utils"
)

const (
	DefaultBlogPageSize = 9
	MaxBlogPageSize     = 30
	maxAlbums           = 100
	slugScanLimit       = 200
)

// ContentService serves blog posts and photo albums straight from the CMS.
type ContentService struct {
	provider providers.CMSProvider
}

// NewContentService creates a content service.
func NewContentService(provider providers.CMSProvider) *ContentService {
	return &ContentService{provider: provider}
}

// ListBlogs returns one page of posts, newest first.
func (s *ContentService) ListBlogs(ctx context.Context, page, pageSize int) (*entities.BlogPage, error) {
	ctx, span := observability.StartSpan(ctx, "ContentService.ListBlogs")
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultBlogPageSize
	}
	pageSize = min(pageSize, MaxBlogPageSize)

	q := providers.NewQuery(providers.CollectionBlogPosts).
		Descending("firstPublishedDate").
		Skip((page - 1) * pageSize).
		Limit(pageSize)
	res, err := s.provider.Query(ctx, q)
	if err != nil {
		return nil, apperrors.NewExternalError("failed to fetch blog posts", err)
	}

	out := &entities.BlogPage{
		Items:    make([]entities.BlogPost, 0, len(res.Items)),
		Total:    res.TotalCount,
		Page:     page,
		PageSize: pageSize,
	}
	for _, item := range res.Items {
		post := cms.MapBlogPost(item)
		// List cards never render the body.
		post.Content = nil
		out.Items = append(out.Items, post)
	}
	return out, nil
}

// BlogBySlug returns one post. Posts without a stored slug are matched on
// the slug generated from their title.
func (s *ContentService) BlogBySlug(ctx context.Context, slug string) (*entities.BlogPost, error) {
	ctx, span := observability.StartSpan(ctx, "ContentService.BlogBySlug")
	defer span.End()

	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, apperrors.NewValidationError("slug is required")
	}

	res, err := s.provider.Query(ctx, providers.NewQuery(providers.CollectionBlogPosts).Eq("slug", slug).Limit(1))
	if err != nil {
		return nil, apperrors.NewExternalError("failed to fetch blog post", err)
	}
	if len(res.Items) > 0 {
		post := cms.MapBlogPost(res.Items[0])
		return &post, nil
	}

	res, err = s.provider.Query(ctx, providers.NewQuery(providers.CollectionBlogPosts).Limit(slugScanLimit))
	if err != nil {
		return nil, apperrors.NewExternalError("failed to fetch blog posts", err)
	}
	want := utils.GenerateSlug(slug)
	for _, item := range res.Items {
		if post := cms.MapBlogPost(item); post.Slug == want {
			return &post, nil
		}
	}
	return nil, apperrors.NewNotFoundError("blog post not found")
}

// Albums returns every photo album ordered by title.
func (s *ContentService) Albums(ctx context.Context) ([]entities.PhotoAlbum, error) {
	ctx, span := observability.StartSpan(ctx, "ContentService.Albums")
	defer span.End()

	res, err := s.provider.Query(ctx, providers.NewQuery(providers.CollectionAlbums).Ascending("title").Limit(maxAlbums))
	if err != nil {
		return nil, apperrors.NewExternalError("failed to fetch albums", err)
	}
	out := make([]entities.PhotoAlbum, 0, len(res.Items))
	for _, item := range res.Items {
		out = append(out, cms.MapAlbum(item))
	}
	return out, nil
}
