package intel

import (
	"context"
	"testing"

	"seatwatch/internal/api"
	"seatwatch/internal/store"
	apperrors "seatwatch/pkg/errors"
	"seatwatch/pkg/logger"
	"seatwatch/pkg/model"
)

type mockIntelAPI struct {
	fetchFunc   func(ctx context.Context, course, term string) (api.IntelResult, error)
	refreshFunc func(ctx context.Context, req api.RefreshRequest) (*model.CourseIntel, error)
}

func (m *mockIntelAPI) CourseIntel(ctx context.Context, course, term string) (api.IntelResult, error) {
	return m.fetchFunc(ctx, course, term)
}

func (m *mockIntelAPI) RefreshIntel(ctx context.Context, req api.RefreshRequest) (*model.CourseIntel, error) {
	return m.refreshFunc(ctx, req)
}

func TestFetch_CachesGoodDocument(t *testing.T) {
	st := store.New(logger.Discard())
	doc := model.CourseIntel{Course: "CS101", Term: "FA26", Summary: "Solid intro."}
	mock := &mockIntelAPI{
		fetchFunc: func(ctx context.Context, course, term string) (api.IntelResult, error) {
			return api.IntelResult{Status: model.IntelOK, Intel: &doc}, nil
		},
	}

	svc := New(st, mock, logger.Discard())
	res, err := svc.Fetch(context.Background(), "CS101", "FA26")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if res.Status != model.IntelOK {
		t.Errorf("status = %s, want ok", res.Status)
	}
	if cached, ok := st.Intel("CS101", "FA26"); !ok || cached.Summary != "Solid intro." {
		t.Errorf("document was not cached: ok=%v %+v", ok, cached)
	}
}

func TestFetch_ServesCacheWhenBackendUnreachable(t *testing.T) {
	st := store.New(logger.Discard())
	st.SetIntel(model.CourseIntel{Course: "CS101", Term: "FA26", Summary: "From cache."})
	mock := &mockIntelAPI{
		fetchFunc: func(ctx context.Context, course, term string) (api.IntelResult, error) {
			return api.IntelResult{Status: model.IntelError}, apperrors.Network("request failed", nil)
		},
	}

	svc := New(st, mock, logger.Discard())
	res, err := svc.Fetch(context.Background(), "CS101", "FA26")
	if err != nil {
		t.Fatalf("cached fallback should not error: %v", err)
	}
	if res.Status != model.IntelStale {
		t.Errorf("status = %s, want stale", res.Status)
	}
	if res.Intel == nil || res.Intel.Summary != "From cache." {
		t.Errorf("expected the cached document, got %+v", res.Intel)
	}
}

func TestFetch_ErrorWithoutCachePropagates(t *testing.T) {
	st := store.New(logger.Discard())
	mock := &mockIntelAPI{
		fetchFunc: func(ctx context.Context, course, term string) (api.IntelResult, error) {
			return api.IntelResult{Status: model.IntelError}, apperrors.Network("request failed", nil)
		},
	}

	svc := New(st, mock, logger.Discard())
	_, err := svc.Fetch(context.Background(), "CS101", "FA26")
	if !apperrors.HasCode(err, apperrors.CodeNetworkFailure) {
		t.Fatalf("expected NETWORK_FAILURE, got %v", err)
	}
	if st.LastError() == "" {
		t.Error("last error should be recorded in the store")
	}
}

func TestRefresh_ReplacesCachedCopy(t *testing.T) {
	st := store.New(logger.Discard())
	st.SetIntel(model.CourseIntel{Course: "CS101", Term: "FA26", Summary: "Old."})
	mock := &mockIntelAPI{
		refreshFunc: func(ctx context.Context, req api.RefreshRequest) (*model.CourseIntel, error) {
			if req.Course != "CS101" || req.Term != "FA26" {
				t.Errorf("unexpected refresh request: %+v", req)
			}
			return &model.CourseIntel{Course: "CS101", Term: "FA26", Summary: "New."}, nil
		},
	}

	svc := New(st, mock, logger.Discard())
	if _, err := svc.Refresh(context.Background(), "CS101", "FA26", "", nil); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if cached, _ := st.Intel("CS101", "FA26"); cached.Summary != "New." {
		t.Errorf("cache not replaced: %+v", cached)
	}
}
