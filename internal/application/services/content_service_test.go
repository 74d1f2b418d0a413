package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medtravel/hospitaldirectory/internal/adapters/cms"
	"github.com/medtravel/hospitaldirectory/internal/domain/providers"
	apperrors "github.com/medtravel/hospitaldirectory/pkg/errors"
)

func contentCMS() *cms.MemoryAdapter {
	m := cms.NewMemoryAdapter()
	m.Put(providers.CollectionBlogPosts,
		providers.CMSItem{
			"_id":                "post-1",
			"title":              "Heart Surgery Abroad",
			"slug":               "heart-surgery-abroad",
			"excerpt":            "What to expect",
			"coverImage":         "wix:image://v1/cover~mv2.jpg/cover.jpg",
			"firstPublishedDate": "2025-03-01T09:00:00Z",
			"richContent":        map[string]any{"nodes": []any{}},
		},
		providers.CMSItem{
			"_id":                "post-2",
			"title":              "Recovering After Knee Replacement",
			"excerpt":            "Physio tips",
			"firstPublishedDate": "2025-05-10T09:00:00Z",
		},
	)
	m.Put(providers.CollectionAlbums,
		providers.CMSItem{
			"_id":   "album-b",
			"title": "Wards",
			"photos": []any{
				"wix:image://v1/ward~mv2.jpg/ward.jpg",
				map[string]any{"src": "https://cdn.example.com/icu.jpg", "description": "ICU"},
			},
		},
		providers.CMSItem{"_id": "album-a", "title": "Arrivals"},
	)
	return m
}

func TestContentService_ListBlogs(t *testing.T) {
	svc := NewContentService(contentCMS())

	page, err := svc.ListBlogs(context.Background(), 0, 0)

	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, DefaultBlogPageSize, page.PageSize)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "post-2", page.Items[0].ID)
	assert.Equal(t, "recovering-after-knee-replacement", page.Items[0].Slug)
	assert.Equal(t, "https://static.wixstatic.com/media/cover~mv2.jpg", page.Items[1].CoverImage)
	assert.Nil(t, page.Items[1].Content)
}

func TestContentService_ListBlogs_Paging(t *testing.T) {
	svc := NewContentService(contentCMS())

	page, err := svc.ListBlogs(context.Background(), 2, 1)

	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "post-1", page.Items[0].ID)

	page, err = svc.ListBlogs(context.Background(), 1, 1000)
	require.NoError(t, err)
	assert.Equal(t, MaxBlogPageSize, page.PageSize)
}

func TestContentService_BlogBySlug(t *testing.T) {
	svc := NewContentService(contentCMS())
	ctx := context.Background()

	post, err := svc.BlogBySlug(ctx, "heart-surgery-abroad")
	require.NoError(t, err)
	assert.Equal(t, "post-1", post.ID)
	assert.NotNil(t, post.Content)

	post, err = svc.BlogBySlug(ctx, "recovering-after-knee-replacement")
	require.NoError(t, err)
	assert.Equal(t, "post-2", post.ID)

	_, err = svc.BlogBySlug(ctx, "missing")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))

	_, err = svc.BlogBySlug(ctx, " ")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}

func TestContentService_Albums(t *testing.T) {
	svc := NewContentService(contentCMS())

	albums, err := svc.Albums(context.Background())

	require.NoError(t, err)
	require.Len(t, albums, 2)
	assert.Equal(t, "Arrivals", albums[0].Title)
	assert.Empty(t, albums[0].Photos)
	wards := albums[1]
	require.Len(t, wards.Photos, 2)
	assert.Equal(t, "https://static.wixstatic.com/media/ward~mv2.jpg", wards.Cover)
	assert.Equal(t, "ICU", wards.Photos[1].Caption)
}

func TestContentService_CMSFailure(t *testing.T) {
	svc := NewContentService(&faultyCMS{inner: contentCMS(), fail: func(*providers.CMSQuery) bool { return true }})

	_, err := svc.ListBlogs(context.Background(), 1, 10)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeExternal))

	_, err = svc.Albums(context.Background())
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeExternal))
}
