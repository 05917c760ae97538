package documents

import (
	"context"

	"crewport/internal/catalog"
	"crewport/pkg/types"
)

// TypeStatus is one catalog spec augmented with the uploads recorded for it.
type TypeStatus struct {
	Spec     types.DocumentTypeSpec
	Uploaded bool
	Count    int
	Files    []*types.CrewDocument
}

type CategoryStatus struct {
	ID    types.DocumentCategory
	Name  string
	Types []TypeStatus
}

type CompletionReport struct {
	Categories []CategoryStatus
	Percent    int
}

// Complete reports whether every required document type has at least one
// upload.
func (r *CompletionReport) Complete() bool {
	return r.Percent == 100
}

// Completion recomputes the profile completion report from the current
// document log on every call. Nothing is cached or persisted, so the
// percentage always reflects the store's present state.
//
// Percent is floor(100 * uploadedRequired / totalRequired); a catalog with
// zero required specs is vacuously 100% complete. Optional specs are
// reported for display but never counted.
func (s *Service) Completion(ctx context.Context, crewID int64) (*CompletionReport, error) {
	docs, err := s.docs.DocumentsByCrew(ctx, crewID)
	if err != nil {
		return nil, err
	}

	return buildReport(catalog.Categories(), docs), nil
}

func buildReport(cats []catalog.Category, docs []*types.CrewDocument) *CompletionReport {
	byType := make(map[types.DocumentType][]*types.CrewDocument)
	for _, d := range docs {
		byType[d.DocumentType] = append(byType[d.DocumentType], d)
	}

	report := &CompletionReport{Categories: make([]CategoryStatus, 0, len(cats))}

	requiredTotal := 0
	requiredUploaded := 0

	for _, cat := range cats {
		status := CategoryStatus{
			ID:    cat.ID,
			Name:  cat.Name,
			Types: make([]TypeStatus, 0, len(cat.Specs)),
		}

		for _, spec := range cat.Specs {
			files := byType[spec.Type]
			ts := TypeStatus{
				Spec:     spec,
				Uploaded: len(files) > 0,
				Count:    len(files),
				Files:    files,
			}

			if spec.Required {
				requiredTotal++
				if ts.Uploaded {
					requiredUploaded++
				}
			}

			status.Types = append(status.Types, ts)
		}

		report.Categories = append(report.Categories, status)
	}

	if requiredTotal == 0 {
		report.Percent = 100
		return report
	}

	report.Percent = 100 * requiredUploaded / requiredTotal
	return report
}
