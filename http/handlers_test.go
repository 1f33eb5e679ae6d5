package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"math/rand/v2"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/yourorg/roomeasy-api/internal/auth"
	"github.com/yourorg/roomeasy-api/internal/events"
	"github.com/yourorg/roomeasy-api/internal/model"
	"github.com/yourorg/roomeasy-api/internal/recommend"
	"github.com/yourorg/roomeasy-api/internal/session"
	"github.com/yourorg/roomeasy-api/internal/store"
)

type harness struct {
	srv   *httptest.Server
	store *store.Memory
	pub   events.Publisher
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	st := store.NewMemory()
	pub := events.NewInMemory(64)
	sessions := session.NewManager(session.NewMemory(time.Hour), session.Config{CookieName: "sid"})
	rec := recommend.NewService(st, recommend.WithRand(func() *rand.Rand { return rand.New(rand.NewPCG(1, 2)) }))

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(sessions.Middleware)
		RegisterHome(r, HomeDeps{Recommender: rec, Sessions: sessions})
		RegisterAuth(r, AuthDeps{Auth: auth.NewService(st, auth.WithCost(bcrypt.MinCost)), Sessions: sessions})
		RegisterRooms(r, RoomsDeps{Store: st, Pub: pub, Sessions: sessions})
		RegisterBookings(r, BookingsDeps{Store: st, Pub: pub, Sessions: sessions})
		RegisterWishlist(r, WishlistDeps{Store: st})
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &harness{srv: srv, store: st, pub: pub}
}

// client is a browser-like visitor with its own cookie jar.
type client struct {
	t *testing.T
	h *harness
	c *http.Client
}

func (h *harness) visitor(t *testing.T) *client {
	jar, _ := cookiejar.New(nil)
	return &client{t: t, h: h, c: &http.Client{Jar: jar}}
}

func (c *client) do(method, path, contentType, body string) (int, map[string]any) {
	c.t.Helper()
	req, err := http.NewRequest(method, c.h.srv.URL+path, strings.NewReader(body))
	if err != nil {
		c.t.Fatal(err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := c.c.Do(req)
	if err != nil {
		c.t.Fatal(err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	var out map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			c.t.Fatalf("%s %s: bad json %q", method, path, raw)
		}
	}
	return resp.StatusCode, out
}

func (c *client) get(path string) (int, map[string]any) { return c.do(http.MethodGet, path, "", "") }

func (c *client) postJSON(path, body string) (int, map[string]any) {
	return c.do(http.MethodPost, path, "application/json", body)
}

func (c *client) postForm(path string, v url.Values) (int, map[string]any) {
	return c.do(http.MethodPost, path, "application/x-www-form-urlencoded", v.Encode())
}

func (c *client) signUpAndLogin(email string) {
	c.t.Helper()
	creds := `{"email":"` + email + `","password":"hunter2hunter2"}`
	if code, body := c.postJSON("/signup", creds); code != http.StatusCreated {
		c.t.Fatalf("signup = %d %v", code, body)
	}
	if code, body := c.postJSON("/login", creds); code != http.StatusOK {
		c.t.Fatalf("login = %d %v", code, body)
	}
}

func (c *client) createRoom(title, address, price string) int64 {
	c.t.Helper()
	code, body := c.postForm("/rooms", url.Values{
		"title":     {title},
		"address":   {address},
		"price":     {price},
		"amenities": {"wifi, parking", "ac"},
	})
	if code != http.StatusCreated {
		c.t.Fatalf("create room = %d %v", code, body)
	}
	return int64(body["id"].(float64))
}

func list(body map[string]any, key string) []any {
	v, _ := body[key].([]any)
	return v
}

func TestHomeAnonymous(t *testing.T) {
	h := newHarness(t)
	code, body := h.visitor(t).get("/")
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	for _, k := range []string{"all", "featured", "recently_viewed", "recommended", "flash"} {
		if _, ok := body[k].([]any); !ok {
			t.Errorf("%s = %v, want empty array", k, body[k])
		}
	}
	if body["source"] != string(recommend.SourceDiscovery) {
		t.Errorf("source = %v", body["source"])
	}
	if _, ok := body["user"]; ok {
		t.Error("anonymous home has a user")
	}
}

func TestSignUpLoginFlow(t *testing.T) {
	h := newHarness(t)
	c := h.visitor(t)

	if code, _ := c.postJSON("/signup", `{"email":"bad","password":"x"}`); code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid signup = %d", code)
	}
	c.signUpAndLogin("ana@example.com")
	if code, _ := c.postJSON("/signup", `{"email":"ana@example.com","password":"hunter2hunter2"}`); code != http.StatusConflict {
		t.Fatalf("duplicate signup = %d", code)
	}

	_, home := c.get("/")
	user, _ := home["user"].(map[string]any)
	if user["email"] != "ana@example.com" {
		t.Fatalf("home user = %v", home["user"])
	}
	var msgs []string
	for _, f := range list(home, "flash") {
		msgs = append(msgs, f.(map[string]any)["message"].(string))
	}
	if !strings.Contains(strings.Join(msgs, "|"), "Logged in successfully!") {
		t.Errorf("flash = %v", msgs)
	}
	if _, again := c.get("/"); len(list(again, "flash")) != 0 {
		t.Error("flash not cleared after display")
	}

	if code, _ := c.postForm("/login", url.Values{"email": {"ana@example.com"}, "password": {"wrong-password"}}); code != http.StatusUnauthorized {
		t.Errorf("wrong password = %d", code)
	}

	if code, _ := c.postJSON("/logout", ""); code != http.StatusOK {
		t.Fatalf("logout = %d", code)
	}
	if code, _ := c.get("/me/bookings"); code != http.StatusUnauthorized {
		t.Errorf("after logout = %d", code)
	}
}

func TestRoomLifecycle(t *testing.T) {
	h := newHarness(t)
	owner := h.visitor(t)
	if code, _ := owner.postForm("/rooms", url.Values{"title": {"x"}}); code != http.StatusUnauthorized {
		t.Fatalf("anonymous upload = %d", code)
	}
	owner.signUpAndLogin("owner@example.com")

	id := owner.createRoom("Sunny room", "12  MG Road,, Koramangala , BLR", "9999")
	l, err := h.store.GetListing(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	if l.Address != "12 MG Road, Koramangala, BLR" || l.City != "Bangalore" || l.Nearby != "Koramangala" {
		t.Errorf("stored address = %q city=%q nearby=%q", l.Address, l.City, l.Nearby)
	}
	if len(l.Amenities) != 3 {
		t.Errorf("amenities = %v", l.Amenities)
	}
	select {
	case evt := <-h.pub.SubscribeListingChanged():
		if evt.ListingID != id || evt.Kind != events.ListingCreated {
			t.Errorf("event = %+v", evt)
		}
	default:
		t.Error("no listing event published")
	}

	visitor := h.visitor(t)
	code, detail := visitor.get("/rooms/" + itoa(id))
	if code != http.StatusOK {
		t.Fatalf("detail = %d", code)
	}
	quote := detail["quote"].(map[string]any)
	if quote["lock_amount"].(float64) != 499.95 || quote["visit_fee"].(float64) != 50 {
		t.Errorf("quote = %v", quote)
	}
	_, home := visitor.get("/")
	if rv := list(home, "recently_viewed"); len(rv) != 1 {
		t.Errorf("recently viewed = %v", rv)
	}

	if code, _ := visitor.get("/rooms/999"); code != http.StatusNotFound {
		t.Errorf("missing room = %d", code)
	}
	if code, _ := visitor.get("/rooms/abc"); code != http.StatusBadRequest {
		t.Errorf("bad id = %d", code)
	}

	visitor.signUpAndLogin("visitor@example.com")
	upd := `{"title":"Mine now","address":"1 Road, Baner, Pune","price_per_month":1}`
	if code, _ := visitor.do(http.MethodPut, "/rooms/"+itoa(id), "application/json", upd); code != http.StatusForbidden {
		t.Errorf("non-owner update = %d", code)
	}
	if code, _ := visitor.do(http.MethodDelete, "/rooms/"+itoa(id), "", ""); code != http.StatusForbidden {
		t.Errorf("non-owner delete = %d", code)
	}

	code, body := owner.do(http.MethodPut, "/rooms/"+itoa(id), "application/json",
		`{"title":"Sunnier room","address":"12 MG Road, Koramangala, Bangalore, Karnataka","price_per_month":12000}`)
	if code != http.StatusOK || body["title"] != "Sunnier room" || body["state"] != "Karnataka" {
		t.Fatalf("owner update = %d %v", code, body)
	}
	if _, mine := owner.get("/me/rooms"); mine["count"].(float64) != 1 {
		t.Errorf("my rooms = %v", mine)
	}
	if code, _ := owner.do(http.MethodDelete, "/rooms/"+itoa(id), "", ""); code != http.StatusOK {
		t.Errorf("owner delete = %d", code)
	}
}

func TestBookingFlow(t *testing.T) {
	h := newHarness(t)
	owner := h.visitor(t)
	owner.signUpAndLogin("owner@example.com")
	id := owner.createRoom("Room", "4 Lane, Baner, Pune", "8000")

	guest := h.visitor(t)
	if code, _ := guest.postForm("/rooms/"+itoa(id)+"/book", url.Values{"booking_type": {"visit"}}); code != http.StatusUnauthorized {
		t.Fatalf("anonymous booking = %d", code)
	}
	guest.signUpAndLogin("guest@example.com")

	if code, _ := guest.postForm("/rooms/"+itoa(id)+"/book", url.Values{"booking_type": {"rent"}}); code != http.StatusUnprocessableEntity {
		t.Errorf("invalid kind = %d", code)
	}
	if code, _ := guest.postForm("/rooms/"+itoa(id)+"/book", url.Values{"booking_type": {"visit"}, "amount": {"-5"}}); code != http.StatusUnprocessableEntity {
		t.Errorf("negative amount = %d", code)
	}

	code, b := guest.postForm("/rooms/"+itoa(id)+"/book", url.Values{"booking_type": {"visit"}, "amount": {"50"}})
	if code != http.StatusCreated || b["amount_paid"].(float64) != 50 {
		t.Fatalf("visit = %d %v", code, b)
	}
	if l, _ := h.store.GetListing(context.Background(), id); l.Status != model.StatusAvailable {
		t.Fatalf("visit changed status to %s", l.Status)
	}

	code, b = guest.postJSON("/rooms/"+itoa(id)+"/book", `{"booking_type":"lock","amount":400}`)
	if code != http.StatusCreated || b["booking_type"] != "lock" {
		t.Fatalf("lock = %d %v", code, b)
	}
	if l, _ := h.store.GetListing(context.Background(), id); l.Status != model.StatusBooked {
		t.Fatalf("lock left status %s", l.Status)
	}
	if code, _ := guest.postJSON("/rooms/"+itoa(id)+"/book", `{"booking_type":"full"}`); code != http.StatusConflict {
		t.Errorf("double reservation = %d", code)
	}

	_, mine := guest.get("/me/bookings")
	if mine["count"].(float64) != 2 {
		t.Errorf("bookings = %v", mine)
	}
	_, home := guest.get("/")
	if len(list(home, "all")) != 0 {
		t.Errorf("booked room still on home: %v", home["all"])
	}
}

func TestWishlist(t *testing.T) {
	h := newHarness(t)
	c := h.visitor(t)
	c.signUpAndLogin("fan@example.com")
	id := c.createRoom("Room", "4 Lane, Baner, Pune", "8000")
	path := "/rooms/" + itoa(id) + "/wishlist"

	for i := 0; i < 2; i++ {
		if code, _ := c.postJSON(path, ""); code != http.StatusOK {
			t.Fatalf("like %d = %d", i, code)
		}
	}
	if _, d := c.get("/rooms/" + itoa(id)); d["wishlisted"] != true {
		t.Errorf("detail wishlisted = %v", d["wishlisted"])
	}
	if _, wl := c.get("/me/wishlist"); wl["count"].(float64) != 1 {
		t.Errorf("wishlist = %v", wl)
	}
	if code, _ := c.postJSON("/rooms/999/wishlist", ""); code != http.StatusNotFound {
		t.Errorf("like missing room = %d", code)
	}
	if code, _ := c.do(http.MethodDelete, path, "", ""); code != http.StatusOK {
		t.Fatalf("unlike = %d", code)
	}
	if _, wl := c.get("/me/wishlist"); wl["count"].(float64) != 0 {
		t.Errorf("wishlist after unlike = %v", wl)
	}
}

func TestHomeSearchRemembersQuery(t *testing.T) {
	h := newHarness(t)
	owner := h.visitor(t)
	owner.signUpAndLogin("owner@example.com")
	owner.createRoom("Garden flat", "1 Road, Baner, Pune", "9000")
	owner.createRoom("City studio", "2 Road, Andheri, Mumbai", "15000")

	c := h.visitor(t)
	_, res := c.get("/?q=baner")
	if res["source"] != string(recommend.SourceSearch) || len(list(res, "all")) != 1 {
		t.Fatalf("search = %v", res)
	}
	_, browse := c.get("/")
	if browse["source"] != string(recommend.SourceRemembered) {
		t.Errorf("browse after search source = %v", browse["source"])
	}
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

func TestNonFiniteAndOversizedAmountsRejected(t *testing.T) {
	h := newHarness(t)
	owner := h.visitor(t)
	owner.signUpAndLogin("owner@example.com")

	for _, price := range []string{"inf", "+Inf", "-inf", "NaN"} {
		code, _ := owner.postForm("/rooms", url.Values{"title": {"Room"}, "address": {"1 Road, Baner, Pune"}, "price": {price}})
		if code != http.StatusBadRequest {
			t.Errorf("price %q = %d, want 400", price, code)
		}
	}
	if code, _ := owner.postJSON("/rooms", `{"title":"Room","address":"1 Road, Baner, Pune","price_per_month":1e11}`); code != http.StatusUnprocessableEntity {
		t.Errorf("oversized price = %d, want 422", code)
	}
	if all, _ := h.store.FetchAvailableListings(context.Background()); len(all) != 0 {
		t.Fatalf("rejected listings were stored: %+v", all)
	}

	id := owner.createRoom("Room", "1 Road, Baner, Pune", "8000")
	if code, _ := owner.postForm("/rooms/"+itoa(id)+"/book", url.Values{"booking_type": {"visit"}, "amount": {"inf"}}); code != http.StatusBadRequest {
		t.Errorf("infinite amount = %d, want 400", code)
	}
	if code, _ := owner.postJSON("/rooms/"+itoa(id)+"/book", `{"booking_type":"visit","amount":1e11}`); code != http.StatusUnprocessableEntity {
		t.Errorf("oversized amount = %d, want 422", code)
	}
	if code, body := owner.get("/me/bookings"); code != http.StatusOK || body["count"].(float64) != 0 {
		t.Errorf("bookings = %d %v", code, body)
	}
	if code, _ := h.visitor(t).get("/"); code != http.StatusOK {
		t.Errorf("anonymous home = %d", code)
	}
}
