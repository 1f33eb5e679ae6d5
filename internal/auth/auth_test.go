package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/yourorg/roomeasy-api/internal/model"
	"github.com/yourorg/roomeasy-api/internal/session"
	"github.com/yourorg/roomeasy-api/internal/store"
	"github.com/yourorg/roomeasy-api/internal/validation"
)

func TestSignUpAndLogin(t *testing.T) {
	s := NewService(store.NewMemory(), WithCost(bcrypt.MinCost))
	ctx := context.Background()

	u, err := s.SignUp(ctx, Credentials{Email: " Ana@Example.com ", Password: "correct horse"})
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if u.ID == "" || u.Email != "ana@example.com" || u.PasswordHash == "correct horse" {
		t.Fatalf("user = %+v", u)
	}

	if _, err := s.SignUp(ctx, Credentials{Email: "ana@example.com", Password: "another one"}); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("duplicate sign-up err = %v", err)
	}

	got, err := s.Login(ctx, "ANA@example.com", "correct horse")
	if err != nil || got.ID != u.ID {
		t.Fatalf("Login = %+v, %v", got, err)
	}
	if _, err := s.Login(ctx, "ana@example.com", "wrong password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password err = %v", err)
	}
	if _, err := s.Login(ctx, "nobody@example.com", "correct horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email err = %v", err)
	}
}

func TestSignUpValidates(t *testing.T) {
	s := NewService(store.NewMemory(), WithCost(bcrypt.MinCost))
	_, err := s.SignUp(context.Background(), Credentials{Email: "not-an-email", Password: "short"})
	var ve *validation.Error
	if !errors.As(err, &ve) || len(ve.Fields) != 2 {
		t.Fatalf("err = %v", err)
	}
}

func TestRequireUser(t *testing.T) {
	m := session.NewManager(session.NewMemory(time.Hour), session.Config{CookieName: "sid"})
	h := m.Middleware(RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me/bookings", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous status = %d", rec.Code)
	}

	saved := httptest.NewRecorder()
	if err := m.Save(context.Background(), saved, model.ViewerSession{ID: "5d2c7e9a-1b3f-4c6d-8e0a-9f1b2c3d4e5f", UserID: "u1"}); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodGet, "/me/bookings", nil)
	for _, c := range saved.Result().Cookies() {
		req.AddCookie(c)
	}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("authenticated status = %d", rec.Code)
	}
}
