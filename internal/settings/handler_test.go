package settings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
)

// fakeStore mirrors the repository semantics in memory: one active period per
// user, tag-addressed lookups, ownership checks on tag operations.
type fakeStore struct {
	items  []Settings
	nextID int64
}

func (f *fakeStore) Create(_ context.Context, userID string, p CreateParams) (Settings, error) {
	for i := range f.items {
		if f.items[i].UserID == userID {
			f.items[i].IsActive = false
		}
	}
	f.nextID++
	title := p.Title
	if title == "" {
		title = "Budget Period"
	}
	var cur *string
	if p.Currency != "" {
		c := p.Currency
		cur = &c
	}
	s := Settings{
		ID:          f.nextID,
		UserID:      userID,
		TotalAmount: p.TotalAmount,
		PeriodDays:  p.PeriodDays,
		SettingsTag: fmt.Sprintf("tag-%d", f.nextID),
		IsActive:    true,
		Title:       title,
		Currency:    cur,
		StartDate:   time.Now(),
		CreatedAt:   time.Now().Add(time.Duration(f.nextID) * time.Second),
	}
	f.items = append(f.items, s)
	return s, nil
}

func (f *fakeStore) Active(_ context.Context, userID string) (Settings, error) {
	var found []Settings
	for _, s := range f.items {
		if s.UserID == userID && s.IsActive {
			found = append(found, s)
		}
	}
	if len(found) == 0 {
		return Settings{}, ErrNotFound
	}
	sort.Slice(found, func(i, j int) bool { return found[i].CreatedAt.After(found[j].CreatedAt) })
	return found[0], nil
}

func (f *fakeStore) History(_ context.Context, userID string) ([]Settings, error) {
	out := make([]Settings, 0)
	for _, s := range f.items {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeStore) ByTag(_ context.Context, tag string) (Settings, error) {
	for _, s := range f.items {
		if s.SettingsTag == tag {
			return s, nil
		}
	}
	return Settings{}, ErrNotFound
}

func (f *fakeStore) Activate(_ context.Context, userID, tag string) (Settings, error) {
	idx := -1
	for i, s := range f.items {
		if s.SettingsTag == tag {
			idx = i
		}
	}
	if idx == -1 {
		return Settings{}, ErrNotFound
	}
	if f.items[idx].UserID != userID {
		return Settings{}, ErrForbidden
	}
	for i := range f.items {
		if f.items[i].UserID == userID {
			f.items[i].IsActive = false
		}
	}
	f.items[idx].IsActive = true
	return f.items[idx], nil
}

func (f *fakeStore) UpdateActive(_ context.Context, userID string, totalAmount *float64, periodDays *int) (Settings, error) {
	for i := range f.items {
		if f.items[i].UserID == userID && f.items[i].IsActive {
			if totalAmount != nil {
				f.items[i].TotalAmount = *totalAmount
			}
			if periodDays != nil {
				f.items[i].PeriodDays = *periodDays
			}
			return f.items[i], nil
		}
	}
	return Settings{}, ErrNotFound
}

func (f *fakeStore) RenameActive(_ context.Context, userID, title string) (Settings, error) {
	for i := range f.items {
		if f.items[i].UserID == userID && f.items[i].IsActive {
			f.items[i].Title = title
			return f.items[i], nil
		}
	}
	return Settings{}, ErrNotFound
}

func (f *fakeStore) SetActiveCurrency(_ context.Context, userID, code string) (Settings, error) {
	for i := range f.items {
		if f.items[i].UserID == userID && f.items[i].IsActive {
			f.items[i].Currency = &code
			return f.items[i], nil
		}
	}
	return Settings{}, ErrNotFound
}

func (f *fakeStore) Deactivate(_ context.Context, userID string) error {
	for i := range f.items {
		if f.items[i].UserID == userID && f.items[i].IsActive {
			f.items[i].IsActive = false
			return nil
		}
	}
	return ErrNotFound
}

func (f *fakeStore) DeleteByTag(_ context.Context, userID, tag string) error {
	for i, s := range f.items {
		if s.SettingsTag == tag {
			if s.UserID != userID {
				return ErrForbidden
			}
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (f *fakeStore) activeCount(userID string) int {
	n := 0
	for _, s := range f.items {
		if s.UserID == userID && s.IsActive {
			n++
		}
	}
	return n
}

func newTestApp(store Store, userID string) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok {
				code = fe.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", userID)
		return c.Next()
	})
	h := NewHandler(store)
	app.Get("/api/settings/tag/:settingsTag", h.GetByTag)
	app.Post("/api/settings", h.Create)
	app.Patch("/api/settings/active", h.UpdateActive)
	app.Patch("/api/settings/:settingsTag/activate", h.Activate)
	app.Delete("/api/settings/:settingsTag/delete", h.Delete)
	app.Get("/api/settings/:userId/history", h.GetHistory)
	app.Patch("/api/settings/:userId/title", h.RenameTitle)
	app.Patch("/api/settings/:userId/currency", h.SetCurrency)
	app.Get("/api/settings/:userId", h.GetActive)
	app.Delete("/api/settings/:userId", h.Deactivate)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) *http.Response {
	t.Helper()
	var req *http.Request
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decodeSettings(t *testing.T, resp *http.Response) Settings {
	t.Helper()
	var s Settings
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		t.Fatalf("decoding settings: %v", err)
	}
	return s
}

func TestCreateDeactivatesPrevious(t *testing.T) {
	store := &fakeStore{}
	app := newTestApp(store, "user_1")

	resp := doJSON(t, app, "POST", "/api/settings", fiber.Map{"total_amount": 1000.0, "period_days": 30})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("first create: status = %d, want 201", resp.StatusCode)
	}
	first := decodeSettings(t, resp)

	resp = doJSON(t, app, "POST", "/api/settings", fiber.Map{"total_amount": 500.0, "period_days": 15})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("second create: status = %d, want 201", resp.StatusCode)
	}
	second := decodeSettings(t, resp)

	if !second.IsActive {
		t.Error("new settings not active")
	}
	if got := store.activeCount("user_1"); got != 1 {
		t.Errorf("active count = %d, want 1", got)
	}
	old, _ := store.ByTag(context.Background(), first.SettingsTag)
	if old.IsActive {
		t.Error("previous settings still active after create")
	}
}

func TestCreateValidation(t *testing.T) {
	store := &fakeStore{}
	app := newTestApp(store, "user_1")

	cases := []fiber.Map{
		{"period_days": 30},                          // missing amount
		{"total_amount": 1000.0},                     // missing days
		{"total_amount": -5.0, "period_days": 30},    // negative amount
		{"total_amount": 12.345, "period_days": 30},  // 3 decimals
		{"total_amount": 1000000.0, "period_days": 30}, // over cap
		{"total_amount": 1000.0, "period_days": 0},   // zero days
	}
	for _, body := range cases {
		resp := doJSON(t, app, "POST", "/api/settings", body)
		if resp.StatusCode != fiber.StatusBadRequest {
			t.Errorf("body %v: status = %d, want 400", body, resp.StatusCode)
		}
	}
	if len(store.items) != 0 {
		t.Errorf("invalid creates persisted %d rows", len(store.items))
	}
}

func TestGetActiveNotFound(t *testing.T) {
	app := newTestApp(&fakeStore{}, "user_1")
	resp := doJSON(t, app, "GET", "/api/settings/user_1", nil)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestActivateSwitchesActive(t *testing.T) {
	store := &fakeStore{}
	app := newTestApp(store, "user_1")

	respA := doJSON(t, app, "POST", "/api/settings", fiber.Map{"total_amount": 1000.0, "period_days": 30})
	a := decodeSettings(t, respA)
	respB := doJSON(t, app, "POST", "/api/settings", fiber.Map{"total_amount": 500.0, "period_days": 15})
	b := decodeSettings(t, respB)

	resp := doJSON(t, app, "PATCH", "/api/settings/"+a.SettingsTag+"/activate", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("activate: status = %d, want 200", resp.StatusCode)
	}
	if got := store.activeCount("user_1"); got != 1 {
		t.Errorf("active count = %d, want 1", got)
	}
	cur, err := store.Active(context.Background(), "user_1")
	if err != nil || cur.SettingsTag != a.SettingsTag {
		t.Errorf("active tag = %q, want %q", cur.SettingsTag, a.SettingsTag)
	}
	other, _ := store.ByTag(context.Background(), b.SettingsTag)
	if other.IsActive {
		t.Error("previously active settings still active")
	}
}

func TestActivateForeignTagForbidden(t *testing.T) {
	store := &fakeStore{}
	ownerApp := newTestApp(store, "owner")
	resp := doJSON(t, ownerApp, "POST", "/api/settings", fiber.Map{"total_amount": 100.0, "period_days": 7})
	s := decodeSettings(t, resp)

	intruderApp := newTestApp(store, "intruder")
	resp = doJSON(t, intruderApp, "PATCH", "/api/settings/"+s.SettingsTag+"/activate", nil)
	if resp.StatusCode != fiber.StatusForbidden {
		t.Errorf("status = %d, want 403", resp.StatusCode)
	}
}

func TestActivateUnknownTag(t *testing.T) {
	app := newTestApp(&fakeStore{}, "user_1")
	resp := doJSON(t, app, "PATCH", "/api/settings/nope/activate", nil)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestUpdateActiveRequiresAField(t *testing.T) {
	store := &fakeStore{}
	app := newTestApp(store, "user_1")
	doJSON(t, app, "POST", "/api/settings", fiber.Map{"total_amount": 1000.0, "period_days": 30})

	resp := doJSON(t, app, "PATCH", "/api/settings/active", fiber.Map{})
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("empty patch: status = %d, want 400", resp.StatusCode)
	}

	resp = doJSON(t, app, "PATCH", "/api/settings/active", fiber.Map{"total_amount": 750.0})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("partial patch: status = %d, want 200", resp.StatusCode)
	}
	s := decodeSettings(t, resp)
	if s.TotalAmount != 750 || s.PeriodDays != 30 {
		t.Errorf("got amount=%v days=%d, want 750/30", s.TotalAmount, s.PeriodDays)
	}
}

func TestDeactivateThenGetActive(t *testing.T) {
	store := &fakeStore{}
	app := newTestApp(store, "user_1")
	doJSON(t, app, "POST", "/api/settings", fiber.Map{"total_amount": 1000.0, "period_days": 30})

	resp := doJSON(t, app, "DELETE", "/api/settings/user_1", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("deactivate: status = %d, want 200", resp.StatusCode)
	}
	if got := store.activeCount("user_1"); got != 0 {
		t.Errorf("active count = %d, want 0", got)
	}

	resp = doJSON(t, app, "GET", "/api/settings/user_1", nil)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("get after deactivate: status = %d, want 404", resp.StatusCode)
	}

	// A second deactivate has nothing to do.
	resp = doJSON(t, app, "DELETE", "/api/settings/user_1", nil)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("second deactivate: status = %d, want 404", resp.StatusCode)
	}
}

func TestDeleteByTag(t *testing.T) {
	store := &fakeStore{}
	app := newTestApp(store, "user_1")
	resp := doJSON(t, app, "POST", "/api/settings", fiber.Map{"total_amount": 1000.0, "period_days": 30})
	s := decodeSettings(t, resp)

	resp = doJSON(t, app, "DELETE", "/api/settings/"+s.SettingsTag+"/delete", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("delete: status = %d, want 200", resp.StatusCode)
	}

	resp = doJSON(t, app, "GET", "/api/settings/tag/"+s.SettingsTag, nil)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("get deleted tag: status = %d, want 404", resp.StatusCode)
	}
}

func TestHistoryNewestFirst(t *testing.T) {
	store := &fakeStore{}
	app := newTestApp(store, "user_1")
	doJSON(t, app, "POST", "/api/settings", fiber.Map{"total_amount": 100.0, "period_days": 7})
	doJSON(t, app, "POST", "/api/settings", fiber.Map{"total_amount": 200.0, "period_days": 14})

	resp := doJSON(t, app, "GET", "/api/settings/user_1/history", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("history: status = %d, want 200", resp.StatusCode)
	}
	var items []Settings
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Fatalf("history len = %d, want 2", len(items))
	}
	if items[0].TotalAmount != 200 {
		t.Errorf("history[0].TotalAmount = %v, want newest (200)", items[0].TotalAmount)
	}
}

func TestRenameAndCurrency(t *testing.T) {
	store := &fakeStore{}
	app := newTestApp(store, "user_1")
	doJSON(t, app, "POST", "/api/settings", fiber.Map{"total_amount": 100.0, "period_days": 7})

	resp := doJSON(t, app, "PATCH", "/api/settings/user_1/title", fiber.Map{"title": "Vacation"})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("rename: status = %d, want 200", resp.StatusCode)
	}
	if s := decodeSettings(t, resp); s.Title != "Vacation" {
		t.Errorf("title = %q, want Vacation", s.Title)
	}

	resp = doJSON(t, app, "PATCH", "/api/settings/user_1/currency", fiber.Map{"currency": "usd"})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("set currency: status = %d, want 200", resp.StatusCode)
	}
	s := decodeSettings(t, resp)
	if s.Currency == nil || *s.Currency != "USD" {
		t.Errorf("currency = %v, want USD", s.Currency)
	}

	resp = doJSON(t, app, "PATCH", "/api/settings/user_1/currency", fiber.Map{"currency": "not-a-code"})
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("bad currency: status = %d, want 400", resp.StatusCode)
	}
}
