package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"

	apperrors "seatwatch/pkg/errors"
	"seatwatch/pkg/logger"
	"seatwatch/pkg/model"
)

func newTestClient(t *testing.T, router *httprouter.Router) *Client {
	t.Helper()
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return New(srv.URL, 5*time.Second, logger.Discard())
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func TestLogin_InstallsToken(t *testing.T) {
	router := httprouter.New()
	router.POST("/api/auth/login", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", ct)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("expected an X-Request-ID header")
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["user_id"] != "student-7" {
			t.Errorf("user_id = %q, want student-7", body["user_id"])
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"user_id": "student-7",
			"token":   "tok-abc",
			"message": "Logged in",
		})
	})

	c := newTestClient(t, router)
	user, err := c.Login(context.Background(), "student-7", "s7@example.edu")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if user.ID != "student-7" || user.Email != "s7@example.edu" {
		t.Errorf("unexpected user: %+v", user)
	}
	if c.Token() != "tok-abc" {
		t.Errorf("Token() = %q, want tok-abc", c.Token())
	}
}

func TestLogin_MissingTokenIsInvalidPayload(t *testing.T) {
	router := httprouter.New()
	router.POST("/api/auth/login", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		writeJSON(w, http.StatusOK, map[string]string{"user_id": "student-7"})
	})

	c := newTestClient(t, router)
	_, err := c.Login(context.Background(), "student-7", "")
	if !apperrors.HasCode(err, apperrors.CodeInvalidPayload) {
		t.Fatalf("expected INVALID_PAYLOAD, got %v", err)
	}
	if c.Token() != "" {
		t.Errorf("no token should be installed on failure, got %q", c.Token())
	}
}

func TestBearerTokenAttached(t *testing.T) {
	router := httprouter.New()
	router.GET("/api/sections/", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-abc" {
			t.Errorf("Authorization = %q, want Bearer tok-abc", got)
		}
		writeJSON(w, http.StatusOK, []any{})
	})

	c := newTestClient(t, router)
	c.SetToken("tok-abc")
	if _, err := c.ListSections(context.Background()); err != nil {
		t.Fatalf("ListSections failed: %v", err)
	}
}

func TestUnauthorizedClearsToken(t *testing.T) {
	router := httprouter.New()
	router.GET("/api/sections/", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid token"})
	})

	c := newTestClient(t, router)
	c.SetToken("stale-token")
	_, err := c.ListSections(context.Background())
	if !apperrors.HasCode(err, apperrors.CodeUnauthenticated) {
		t.Fatalf("expected UNAUTHENTICATED, got %v", err)
	}
	if c.Token() != "" {
		t.Errorf("token should be cleared after a 401, got %q", c.Token())
	}
}

func TestNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(httprouter.New())
	srv.Close()

	c := New(srv.URL, time.Second, logger.Discard())
	_, err := c.ListSections(context.Background())
	if !apperrors.HasCode(err, apperrors.CodeNetworkFailure) {
		t.Fatalf("expected NETWORK_FAILURE, got %v", err)
	}
}

func TestListSections_StrictDecode(t *testing.T) {
	router := httprouter.New()
	router.GET("/api/sections/", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		writeJSON(w, http.StatusOK, []map[string]any{
			{
				"id": "CS101-A", "course_id": "CS101", "title": "Intro to CS",
				"available_seats": 2, "total_capacity": 30,
			},
			{
				// camelCase spelling must decode too
				"id": "CS101-B", "courseId": "CS101", "title": "Intro to CS",
				"availableSeats": 0, "totalCapacity": 30,
			},
		})
	})

	c := newTestClient(t, router)
	sections, err := c.ListSections(context.Background())
	if err != nil {
		t.Fatalf("ListSections failed: %v", err)
	}
	if len(sections) != 2 {
		t.Fatalf("got %d sections, want 2", len(sections))
	}
	if sections[1].CourseID != "CS101" || sections[1].AvailableSeats != 0 {
		t.Errorf("camelCase record decoded wrong: %+v", sections[1])
	}
}

func TestListSections_MalformedRecordFailsListing(t *testing.T) {
	router := httprouter.New()
	router.GET("/api/sections/", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": "CS101-A", "title": "Intro to CS"}, // no course id, no seat counts
		})
	})

	c := newTestClient(t, router)
	_, err := c.ListSections(context.Background())
	if !apperrors.HasCode(err, apperrors.CodeInvalidPayload) {
		t.Fatalf("expected INVALID_PAYLOAD, got %v", err)
	}
}

func TestSectionsForCourse_UnknownCourse(t *testing.T) {
	router := httprouter.New()
	router.GET("/api/sections/:course", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Course not found"})
	})

	c := newTestClient(t, router)
	_, err := c.SectionsForCourse(context.Background(), "NOPE101")
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
	if appErr := apperrors.AsAppError(err); appErr.Message != "Course not found" {
		t.Errorf("message = %q, want the backend's detail", appErr.Message)
	}
}

func TestCreateHold(t *testing.T) {
	claimed := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	router := httprouter.New()
	router.POST("/api/holds/", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		writeJSON(w, http.StatusOK, map[string]any{
			"user_id":    "student-7",
			"section_id": "CS101-A",
			"claimed_at": claimed.Format(time.RFC3339),
			"expires_at": claimed.Add(2 * time.Minute).Format(time.RFC3339),
		})
	})

	c := newTestClient(t, router)
	h, err := c.CreateHold(context.Background(), "student-7", "CS101-A")
	if err != nil {
		t.Fatalf("CreateHold failed: %v", err)
	}
	if !h.ExpiresAt.Equal(claimed.Add(2 * time.Minute)) {
		t.Errorf("ExpiresAt = %v, want claimed+2m", h.ExpiresAt)
	}
}

func TestCreateHold_DuplicateIsConflict(t *testing.T) {
	router := httprouter.New()
	router.POST("/api/holds/", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "User already has a hold"})
	})

	c := newTestClient(t, router)
	_, err := c.CreateHold(context.Background(), "student-7", "CS101-A")
	if !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
}

func TestRegisterNotification(t *testing.T) {
	router := httprouter.New()
	router.POST("/api/notifications/", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["user_email"] != "s7@example.edu" {
			t.Errorf("user_email = %q, want s7@example.edu", body["user_email"])
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"data": map[string]string{
				"user_id":    body["user_id"],
				"section_id": body["section_id"],
				"added_at":   "2026-08-30T10:00:00",
			},
			"message": "Notification registered",
			"success": true,
		})
	})

	c := newTestClient(t, router)
	n, err := c.RegisterNotification(context.Background(), "student-7", "CS101-A", "s7@example.edu")
	if err != nil {
		t.Fatalf("RegisterNotification failed: %v", err)
	}
	if n.UserID != "student-7" || n.SectionID != "CS101-A" {
		t.Errorf("unexpected notification: %+v", n)
	}
	if n.AddedAt.IsZero() {
		t.Error("AddedAt should parse the naive timestamp")
	}
}

func TestRegisterNotification_DuplicateIsConflict(t *testing.T) {
	router := httprouter.New()
	router.POST("/api/notifications/", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Already registered"})
	})

	c := newTestClient(t, router)
	_, err := c.RegisterNotification(context.Background(), "student-7", "CS101-A", "s7@example.edu")
	if !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
}

func TestNotifications(t *testing.T) {
	router := httprouter.New()
	router.GET("/api/notifications/:user", func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		writeJSON(w, http.StatusOK, map[string]any{
			"data": []map[string]string{
				{"user_id": p.ByName("user"), "section_id": "CS101-A"},
				{"user_id": p.ByName("user"), "section_id": "MATH200-C"},
			},
			"success": true,
		})
	})

	c := newTestClient(t, router)
	out, err := c.Notifications(context.Background(), "student-7")
	if err != nil {
		t.Fatalf("Notifications failed: %v", err)
	}
	if len(out) != 2 || out[1].SectionID != "MATH200-C" {
		t.Errorf("unexpected listing: %+v", out)
	}
}

func TestCourseIntel(t *testing.T) {
	tests := []struct {
		name       string
		body       map[string]any
		wantStatus model.IntelStatus
		wantErr    bool
	}{
		{
			name: "hit",
			body: map[string]any{
				"status": "ok",
				"stale":  false,
				"intel":  map[string]any{"course": "CS101", "term": "FA26", "summary": "Solid intro."},
			},
			wantStatus: model.IntelOK,
		},
		{
			name: "stale hit",
			body: map[string]any{
				"status": "ok",
				"stale":  true,
				"intel":  map[string]any{"course": "CS101", "term": "FA26"},
			},
			wantStatus: model.IntelStale,
		},
		{
			name:       "miss",
			body:       map[string]any{"status": "miss"},
			wantStatus: model.IntelMiss,
		},
		{
			name:       "unknown status",
			body:       map[string]any{"status": "maybe"},
			wantStatus: model.IntelError,
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := httprouter.New()
			router.GET("/api/course-intel", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
				if r.URL.Query().Get("course") != "CS101" {
					t.Errorf("course = %q, want CS101", r.URL.Query().Get("course"))
				}
				writeJSON(w, http.StatusOK, tt.body)
			})

			c := newTestClient(t, router)
			res, err := c.CourseIntel(context.Background(), "CS101", "FA26")
			if tt.wantErr {
				if !apperrors.HasCode(err, apperrors.CodeInvalidPayload) {
					t.Fatalf("expected INVALID_PAYLOAD, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("CourseIntel failed: %v", err)
			}
			if res.Status != tt.wantStatus {
				t.Errorf("status = %s, want %s", res.Status, tt.wantStatus)
			}
			if tt.wantStatus == model.IntelMiss && res.Intel != nil {
				t.Error("a miss must carry no document")
			}
		})
	}
}

func TestLogout_DropsTokenEvenOnServerError(t *testing.T) {
	router := httprouter.New()
	router.POST("/api/auth/logout", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "boom"})
	})

	c := newTestClient(t, router)
	c.SetToken("tok-abc")
	err := c.Logout(context.Background())
	if !apperrors.HasCode(err, apperrors.CodeServerError) {
		t.Fatalf("expected SERVER_ERROR, got %v", err)
	}
	if c.Token() != "" {
		t.Errorf("token must be dropped regardless, got %q", c.Token())
	}
}
