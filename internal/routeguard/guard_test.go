package routeguard

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"contractpay/internal/session"
)

func TestDecide(t *testing.T) {
	cases := []struct {
		snap session.Snapshot
		want Decision
	}{
		{session.Snapshot{State: session.StateLoading}, RenderWaiting},
		{session.Snapshot{State: session.StateUnauthenticated}, RedirectToLogin},
		{session.Snapshot{State: session.StateAuthenticated, User: &session.User{ID: "1"}}, RenderProtected},
	}
	for _, c := range cases {
		if got := Decide(c.snap); got != c.want {
			t.Errorf("Decide(%v) = %v, want %v", c.snap.State, got, c.want)
		}
	}
}

type staticSlot struct {
	user *session.User
}

func (s *staticSlot) Read(ctx context.Context) (*session.User, error)  { return s.user, nil }
func (s *staticSlot) Write(ctx context.Context, u *session.User) error { s.user = u; return nil }
func (s *staticSlot) Clear(ctx context.Context) error                  { s.user = nil; return nil }

func guardedRouter(store *session.Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	protected := r.Group("/")
	protected.Use(Middleware(store))
	protected.GET("/dashboard", func(c *gin.Context) {
		u := CurrentUser(c)
		c.String(http.StatusOK, "dashboard for "+u.Name)
	})
	return r
}

func get(t *testing.T, r *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestMiddlewareLoading(t *testing.T) {
	store := session.NewStore(&staticSlot{}, zap.NewNop())
	// Init not called: the store is still loading.
	w := get(t, guardedRouter(store), "/dashboard")

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
	if strings.Contains(w.Body.String(), "dashboard") {
		t.Fatal("protected content rendered while loading")
	}
	if loc := w.Header().Get("Location"); loc != "" {
		t.Fatalf("unexpected redirect to %q while loading", loc)
	}
}

func TestMiddlewareUnauthenticated(t *testing.T) {
	store := session.NewStore(&staticSlot{}, zap.NewNop())
	store.Init(context.Background())
	w := get(t, guardedRouter(store), "/dashboard")

	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != LoginPath {
		t.Fatalf("redirect = %q, want %q", loc, LoginPath)
	}
}

func TestMiddlewareAuthenticated(t *testing.T) {
	store := session.NewStore(&staticSlot{user: &session.User{ID: "1", Name: "jane"}}, zap.NewNop())
	store.Init(context.Background())
	w := get(t, guardedRouter(store), "/dashboard")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "dashboard for jane") {
		t.Fatalf("body = %q", w.Body.String())
	}
}

func TestMiddlewareTransitions(t *testing.T) {
	store := session.NewStore(&staticSlot{}, zap.NewNop())
	r := guardedRouter(store)
	ctx := context.Background()

	store.Init(ctx)
	if w := get(t, r, "/dashboard"); w.Code != http.StatusFound {
		t.Fatalf("unauthenticated: status = %d, want 302", w.Code)
	}

	if _, err := store.Login(ctx, "jane@x.com", "secret1"); err != nil {
		t.Fatal(err)
	}
	if w := get(t, r, "/dashboard"); w.Code != http.StatusOK {
		t.Fatalf("authenticated: status = %d, want 200", w.Code)
	}

	store.Logout(ctx)
	if w := get(t, r, "/dashboard"); w.Code != http.StatusFound {
		t.Fatalf("after logout: status = %d, want 302", w.Code)
	}
}
