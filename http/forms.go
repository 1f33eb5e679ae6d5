package httpapi

import (
	"fmt"
	"math"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/render"

	"github.com/yourorg/roomeasy-api/internal/auth"
	"github.com/yourorg/roomeasy-api/internal/canon"
	"github.com/yourorg/roomeasy-api/internal/model"
)

// Handlers accept either a JSON body or a classic form post.

func isJSON(req *http.Request) bool {
	mt, _, _ := mime.ParseMediaType(req.Header.Get("Content-Type"))
	return mt == "application/json"
}

func formValues(req *http.Request) (url.Values, error) {
	if err := req.ParseForm(); err != nil {
		return nil, err
	}
	return req.Form, nil
}

// formList reads repeated keys, splitting comma-joined values.
func formList(v url.Values, key string) []string {
	var out []string
	for _, raw := range v[key] {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func formFloat(v url.Values, keys ...string) (*float64, error) {
	for _, k := range keys {
		raw := strings.TrimSpace(v.Get(k))
		if raw == "" {
			continue
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
			return nil, fmt.Errorf("%s: not a number", k)
		}
		return &f, nil
	}
	return nil, nil
}

type listingInput struct {
	Kind          string   `json:"kind" validate:"omitempty,oneof=room building"`
	Title         string   `json:"title" validate:"required,max=200"`
	Address       string   `json:"address" validate:"required,max=500"`
	PricePerMonth *float64 `json:"price_per_month" validate:"required,finite,gte=0,lte=9999999999.99"`
	Description   string   `json:"description" validate:"max=5000"`
	ImageURL      string   `json:"image_url" validate:"omitempty,url"`
	Gallery       []string `json:"gallery" validate:"max=20,dive,url"`
	Amenities     []string `json:"amenities" validate:"max=50,dive,min=1,max=60"`
}

func decodeListing(req *http.Request) (listingInput, error) {
	var in listingInput
	if isJSON(req) {
		err := render.DecodeJSON(req.Body, &in)
		return in, err
	}
	v, err := formValues(req)
	if err != nil {
		return in, err
	}
	in.Kind = v.Get("kind")
	in.Title = strings.TrimSpace(v.Get("title"))
	in.Address = v.Get("address")
	in.Description = v.Get("description")
	in.ImageURL = strings.TrimSpace(v.Get("image_url"))
	in.Gallery = formList(v, "gallery")
	in.Amenities = formList(v, "amenities")
	in.PricePerMonth, err = formFloat(v, "price_per_month", "price")
	return in, err
}

// listing builds the stored form of in. The address is normalized and its
// nearby area, city and state are derived from it.
func (in listingInput) listing(ownerID string) model.Listing {
	addr := canon.Normalize(in.Address)
	parts := canon.Decompose(addr)
	l := model.Listing{
		OwnerID:     ownerID,
		Kind:        model.ListingKind(in.Kind),
		Title:       strings.TrimSpace(in.Title),
		Address:     addr,
		Nearby:      parts.Nearby,
		City:        parts.City,
		State:       parts.State,
		Description: strings.TrimSpace(in.Description),
		ImageURL:    in.ImageURL,
		Gallery:     in.Gallery,
		Amenities:   in.Amenities,
	}
	if l.Kind == "" {
		l.Kind = model.KindRoom
	}
	if in.PricePerMonth != nil {
		l.PricePerMonth = *in.PricePerMonth
	}
	if l.ImageURL == "" && len(l.Gallery) > 0 {
		l.ImageURL = l.Gallery[0]
	}
	return l
}

func decodeCredentials(req *http.Request) (auth.Credentials, error) {
	var in auth.Credentials
	if isJSON(req) {
		err := render.DecodeJSON(req.Body, &in)
		return in, err
	}
	v, err := formValues(req)
	if err != nil {
		return in, err
	}
	in.Email = v.Get("email")
	in.Password = v.Get("password")
	in.DisplayName = v.Get("display_name")
	return in, nil
}

type bookingInput struct {
	Kind   string   `json:"booking_type" validate:"required,oneof=lock full visit"`
	Amount *float64 `json:"amount" validate:"omitempty,finite,gte=0,lte=9999999999.99"`
}

func decodeBooking(req *http.Request) (bookingInput, error) {
	var in bookingInput
	if isJSON(req) {
		err := render.DecodeJSON(req.Body, &in)
		return in, err
	}
	v, err := formValues(req)
	if err != nil {
		return in, err
	}
	in.Kind = v.Get("booking_type")
	in.Amount, err = formFloat(v, "amount")
	return in, err
}
