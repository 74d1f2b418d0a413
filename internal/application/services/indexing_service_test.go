package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/medtravel/hospitaldirectory/internal/domain/entities"
	"github.com/medtravel/hospitaldirectory/internal/query/directory"
)

func TestDirectoryDocuments(t *testing.T) {
	ds := loadedStore(t).Dataset()

	docs := DirectoryDocuments(ds)

	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	assert.ElementsMatch(t, []string{
		"hospital-h-pacific", "hospital-h-capital", "hospital-h-western",
		"doctor-doc-ana",
		"treatment-t-angio", "treatment-t-knee",
	}, ids)
	assert.Nil(t, DirectoryDocuments(nil))
}

func TestIndexingService_Rebuild(t *testing.T) {
	ctx := context.Background()
	repo := new(MockDirectorySearchRepository)
	repo.On("InitSchema", ctx, true).Return(nil).Once()
	repo.On("IndexBatch", ctx, mock.MatchedBy(func(docs []entities.DirectoryDocument) bool {
		return len(docs) == 6
	})).Return(nil).Once()

	n, err := NewIndexingService(repo).Rebuild(ctx, loadedStore(t).Dataset(), true)

	require.NoError(t, err)
	assert.Equal(t, 6, n)
	repo.AssertExpectations(t)
}

func manyHospitals(n int) *directory.Dataset {
	hospitals := make([]entities.Hospital, 0, n)
	for i := range n {
		hospitals = append(hospitals, entities.Hospital{ID: fmt.Sprintf("h-%03d", i), Name: fmt.Sprintf("Hospital %03d", i)})
	}
	return directory.NewDataset(hospitals)
}

func TestIndexingService_Rebuild_Batches(t *testing.T) {
	ctx := context.Background()
	repo := new(MockDirectorySearchRepository)
	repo.On("InitSchema", ctx, false).Return(nil)
	repo.On("IndexBatch", ctx, mock.MatchedBy(func(docs []entities.DirectoryDocument) bool { return len(docs) == 100 })).Return(nil).Once()
	repo.On("IndexBatch", ctx, mock.MatchedBy(func(docs []entities.DirectoryDocument) bool { return len(docs) == 50 })).Return(nil).Once()

	n, err := NewIndexingService(repo).Rebuild(ctx, manyHospitals(150), false)

	require.NoError(t, err)
	assert.Equal(t, 150, n)
	repo.AssertNumberOfCalls(t, "IndexBatch", 2)
}

func TestIndexingService_Rebuild_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("schema", func(t *testing.T) {
		repo := new(MockDirectorySearchRepository)
		repo.On("InitSchema", ctx, false).Return(errors.New("unauthorized"))

		n, err := NewIndexingService(repo).Rebuild(ctx, manyHospitals(3), false)

		require.Error(t, err)
		assert.Zero(t, n)
		repo.AssertNotCalled(t, "IndexBatch", mock.Anything, mock.Anything)
	})

	t.Run("second batch", func(t *testing.T) {
		repo := new(MockDirectorySearchRepository)
		repo.On("InitSchema", ctx, false).Return(nil)
		repo.On("IndexBatch", ctx, mock.MatchedBy(func(docs []entities.DirectoryDocument) bool { return len(docs) == 100 })).Return(nil).Once()
		repo.On("IndexBatch", ctx, mock.Anything).Return(errors.New("timeout"))

		n, err := NewIndexingService(repo).Rebuild(ctx, manyHospitals(120), false)

		require.Error(t, err)
		assert.Equal(t, 100, n)
	})
}
