package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"mercato-backend/database"
	"mercato-backend/handlers"
	"mercato-backend/identity"
	"mercato-backend/models"
	"mercato-backend/store"
	"mercato-backend/triggers"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Setenv("JWT_SECRET", "test-secret-key-for-unit-tests")
	os.Exit(m.Run())
}

// newTestApp wires the whole service the way main does: memory store,
// sqlite identities, dispatcher with both triggers, default admin seeded.
func newTestApp(t *testing.T) (*gin.Engine, *store.MemStore) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	if err := identity.AutoMigrate(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	ids := identity.NewGormService(db)

	st := store.NewMemStore()
	dispatcher := triggers.NewDispatcher()
	triggers.RegisterNotificationFanout(dispatcher, st)
	triggers.RegisterOrderSuggestions(dispatcher, st)
	st.OnCommit(dispatcher.Listener())

	if err := database.CreateDefaultAdmin(ids, st); err != nil {
		t.Fatalf("seeding admin failed: %v", err)
	}

	r := gin.New()
	email := &handlers.EmailHandler{Send: func(to, subject, htmlBody string) error { return nil }}
	SetupRoutes(r, st, ids, email)
	return r, st
}

func do(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func loginAdmin(t *testing.T, r *gin.Engine) string {
	t.Helper()
	w := do(t, r, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    "admin@mercato.local",
		"password": "admin123",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("admin login failed: %d %s", w.Code, w.Body.String())
	}
	var body struct {
		Token string `json:"token"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return body.Token
}

func TestHealthCheck(t *testing.T) {
	r, _ := newTestApp(t)
	w := do(t, r, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	r, _ := newTestApp(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodPost, "/api/lists/generate"},
		{http.MethodPost, "/api/email/order"},
		{http.MethodGet, "/api/auth/profile"},
		{http.MethodPost, "/api/admin/users/role"},
	} {
		w := do(t, r, route.method, route.path, "", map[string]any{})
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401, got %d", route.method, route.path, w.Code)
		}
	}
}

// End to end: generating a list whose dish tasks include a stock
// requisition fans a notification out to the seeded admin's profile.
func TestGenerateTriggersNotificationFanout(t *testing.T) {
	r, st := newTestApp(t)
	token := loginAdmin(t, r)

	ctx := context.Background()
	err := st.BatchWrite(ctx, []store.Write{
		store.Set("dishes/carbonara", map[string]any{"dishName": "Carbonara"}),
		store.Set("dishes/carbonara/prepTasks/t1", map[string]any{
			"taskName": "Order pecorino", "isStockRequisition": true,
		}),
	})
	if err != nil {
		t.Fatalf("seeding failed: %v", err)
	}

	w := do(t, r, http.MethodPost, "/api/lists/generate", token, map[string]any{
		"dateString":       "2025-06-01",
		"selectedDishRefs": []string{"carbonara"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("generate failed: %d %s", w.Code, w.Body.String())
	}

	users, err := st.Documents(ctx, models.ColUsers, store.Where("role", "==", models.RoleAdmin))
	if err != nil || len(users) != 1 {
		t.Fatalf("expected the seeded admin profile, got %v (%v)", users, err)
	}
	notifications, err := st.Documents(ctx, models.NotificationsCollection(users[0].ID()))
	if err != nil {
		t.Fatalf("listing notifications failed: %v", err)
	}
	if len(notifications) != 1 {
		t.Fatalf("expected 1 notification from the fan-out, got %d", len(notifications))
	}
}

func TestSetUserRoleEndToEnd(t *testing.T) {
	r, st := newTestApp(t)
	token := loginAdmin(t, r)

	w := do(t, r, http.MethodPost, "/api/admin/users/role", token, map[string]any{
		"uid":     "some-uid",
		"newRole": models.RoleKitchenStaff,
	})
	// Unknown uid: rejected as invalid-argument, no mirror write.
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown uid, got %d %s", w.Code, w.Body.String())
	}
	if _, err := st.Get(context.Background(), models.UserPath("some-uid")); err == nil {
		t.Error("no profile doc may be written for a rejected call")
	}
}
