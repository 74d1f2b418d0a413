package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/medtravel/hospitaldirectory/internal/domain/entities"
	"github.com/medtravel/hospitaldirectory/internal/domain/repositories"
	"github.com/medtravel/hospitaldirectory/internal/query/directory"
	"github.com/medtravel/hospitaldirectory/pkg/utils"
)

const indexBatchSize = 100

// IndexingService rebuilds the suggestion index from a dataset.
type IndexingService struct {
	repo repositories.DirectorySearchRepository
}

// NewIndexingService creates an indexing service.
func NewIndexingService(repo repositories.DirectorySearchRepository) *IndexingService {
	return &IndexingService{repo: repo}
}

// Rebuild ensures the schema and upserts one document per hospital,
// doctor and treatment. It returns the number of documents indexed.
func (s *IndexingService) Rebuild(ctx context.Context, ds *directory.Dataset, reset bool) (int, error) {
	if err := s.repo.InitSchema(ctx, reset); err != nil {
		return 0, fmt.Errorf("failed to init search schema: %w", err)
	}

	docs := DirectoryDocuments(ds)
	for start := 0; start < len(docs); start += indexBatchSize {
		end := min(start+indexBatchSize, len(docs))
		if err := s.repo.IndexBatch(ctx, docs[start:end]); err != nil {
			return start, fmt.Errorf("failed to index documents %d-%d: %w", start, end, err)
		}
	}

	log.Info().Int("documents", len(docs)).Bool("reset", reset).Msg("Directory index rebuilt")
	return len(docs), nil
}

// DirectoryDocuments flattens a dataset into search documents, hospitals
// first, then doctors and treatments.
func DirectoryDocuments(ds *directory.Dataset) []entities.DirectoryDocument {
	if ds == nil {
		return nil
	}
	docs := make([]entities.DirectoryDocument, 0, len(ds.Hospitals)+len(ds.Doctors)+len(ds.Treatments))

	for _, h := range ds.Hospitals {
		var cities []string
		for _, b := range h.Branches {
			for _, c := range b.Cities {
				cities = appendUnique(cities, c.Name)
			}
		}
		name := utils.CleanHospitalName(h.Name)
		docs = append(docs, entities.DirectoryDocument{
			ID:       documentID(entities.DirectoryKindHospital, h.ID),
			EntityID: h.ID,
			Kind:     entities.DirectoryKindHospital,
			Name:     name,
			Slug:     utils.FirstNonEmpty(h.Slug, utils.GenerateSlug(name)),
			Cities:   cities,
			Context:  strings.Join(cities, ", "),
			Popular:  h.Popular,
		})
	}

	for _, d := range ds.Doctors {
		var cities, hospitals, specs []string
		for _, l := range d.Locations {
			hospitals = appendUnique(hospitals, utils.CleanHospitalName(l.HospitalName))
			for _, c := range l.Cities {
				cities = appendUnique(cities, c.Name)
			}
		}
		for _, s := range d.Specializations {
			specs = appendUnique(specs, s.Name)
		}
		docs = append(docs, entities.DirectoryDocument{
			ID:       documentID(entities.DirectoryKindDoctor, d.BaseID),
			EntityID: d.BaseID,
			Kind:     entities.DirectoryKindDoctor,
			Name:     d.Name,
			Slug:     utils.GenerateSlug(d.Name),
			Cities:   cities,
			Context:  strings.Join(append(specs, hospitals...), ", "),
			Popular:  d.Popular,
		})
	}

	for _, t := range ds.Treatments {
		var cities []string
		for _, l := range t.BranchesAvailableAt {
			for _, c := range l.Cities {
				cities = appendUnique(cities, c.Name)
			}
		}
		var departments []string
		for _, dep := range t.Departments {
			departments = appendUnique(departments, dep.Name)
		}
		docs = append(docs, entities.DirectoryDocument{
			ID:       documentID(entities.DirectoryKindTreatment, t.ID),
			EntityID: t.ID,
			Kind:     entities.DirectoryKindTreatment,
			Name:     t.Name,
			Slug:     utils.GenerateSlug(t.Name),
			Cities:   cities,
			Context:  strings.Join(departments, ", "),
			Popular:  t.Popular,
		})
	}
	return docs
}

// documentID keeps ids unique across kinds and within the character set
// the index accepts.
func documentID(kind entities.DirectoryKind, entityID string) string {
	return string(kind) + "-" + utils.GenerateSlug(entityID)
}

func appendUnique(list []string, value string) []string {
	if value == "" {
		return list
	}
	for _, v := range list {
		if v == value {
			return list
		}
	}
	return append(list, value)
}
