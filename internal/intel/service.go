// Package intel layers a small cache over the course-intel endpoints: the
// last good document per (course, term) is kept in the store and served when
// the backend is unreachable.
package intel

import (
	"context"

	"seatwatch/internal/api"
	"seatwatch/internal/store"
	"seatwatch/pkg/logger"
	"seatwatch/pkg/model"
)

type API interface {
	CourseIntel(ctx context.Context, course, term string) (api.IntelResult, error)
	RefreshIntel(ctx context.Context, req api.RefreshRequest) (*model.CourseIntel, error)
}

type Service struct {
	store *store.Store
	api   API
	log   *logger.Logger
}

func New(st *store.Store, a API, log *logger.Logger) *Service {
	return &Service{
		store: st,
		api:   a,
		log:   log.Component("intel"),
	}
}

// Fetch returns advisory content for a course, caching good documents and
// falling back to the cache when the backend is unreachable.
func (s *Service) Fetch(ctx context.Context, course, term string) (api.IntelResult, error) {
	s.store.SetLoading(true)
	defer s.store.SetLoading(false)

	res, err := s.api.CourseIntel(ctx, course, term)
	if err != nil {
		if cached, ok := s.store.Intel(course, term); ok {
			s.log.Warn("Intel fetch failed, serving cached document",
				"course", course,
				"term", term,
				"error", err,
			)
			return api.IntelResult{Status: model.IntelStale, Intel: &cached}, nil
		}
		s.store.SetLastError(err.Error())
		return res, err
	}

	if res.Intel != nil {
		s.store.SetIntel(*res.Intel)
	}
	return res, nil
}

// Refresh regenerates the document server-side and replaces the cached copy.
func (s *Service) Refresh(ctx context.Context, course, term, officialDesc string, snippets []map[string]any) (*model.CourseIntel, error) {
	intel, err := s.api.RefreshIntel(ctx, api.RefreshRequest{
		Course:       course,
		Term:         term,
		OfficialDesc: officialDesc,
		Snippets:     snippets,
	})
	if err != nil {
		s.store.SetLastError(err.Error())
		return nil, err
	}

	s.store.SetIntel(*intel)
	return intel, nil
}
