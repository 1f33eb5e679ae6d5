// Package seed bulk-loads listings from a YAML file into a store.
package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/yourorg/roomeasy-api/internal/auth"
	"github.com/yourorg/roomeasy-api/internal/canon"
	"github.com/yourorg/roomeasy-api/internal/logger"
	"github.com/yourorg/roomeasy-api/internal/model"
	"github.com/yourorg/roomeasy-api/internal/store"
	"github.com/yourorg/roomeasy-api/internal/validation"
)

type Owner struct {
	Email       string `koanf:"email"`
	Password    string `koanf:"password"`
	DisplayName string `koanf:"display_name"`
}

type Listing struct {
	Kind          string   `koanf:"kind" validate:"omitempty,oneof=room building"`
	Title         string   `koanf:"title" validate:"required,max=200"`
	Address       string   `koanf:"address" validate:"required,max=500"`
	PricePerMonth float64  `koanf:"price_per_month" validate:"finite,gte=0,lte=9999999999.99"`
	Description   string   `koanf:"description"`
	ImageURL      string   `koanf:"image_url" validate:"omitempty,url"`
	Gallery       []string `koanf:"gallery" validate:"dive,url"`
	Amenities     []string `koanf:"amenities"`
}

// File is the seed document:
//
//	owner:
//	  email: host@example.com
//	  password: change-me-please
//	listings:
//	  - title: Sunny room
//	    address: 4 Lane, Baner, Pune
//	    price_per_month: 12000
type File struct {
	Owner    Owner     `koanf:"owner"`
	Listings []Listing `koanf:"listings"`
}

func LoadFile(path string) (File, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return File{}, fmt.Errorf("load seed file %s: %w", path, err)
	}
	var f File
	if err := k.Unmarshal("", &f); err != nil {
		return File{}, fmt.Errorf("decode seed file %s: %w", path, err)
	}
	if strings.TrimSpace(f.Owner.Email) == "" {
		return File{}, errors.New("seed file needs owner.email")
	}
	return f, nil
}

type Job struct {
	Store store.Store
	Auth  *auth.Service
	Path  string
	// Interval re-runs the load. Zero runs once.
	Interval time.Duration
}

func (j *Job) validate() error {
	if j == nil {
		return errors.New("nil seed job")
	}
	if j.Store == nil || j.Auth == nil {
		return errors.New("seed job requires store and auth")
	}
	if j.Path == "" {
		return errors.New("seed job requires a file path")
	}
	return nil
}

// Run calls RunOnce immediately and then on every Interval tick until ctx
// ends. Iteration errors are logged, not returned.
func (j *Job) Run(ctx context.Context) error {
	if err := j.validate(); err != nil {
		return err
	}
	if j.Interval <= 0 {
		_, err := j.RunOnce(ctx)
		return err
	}
	log := logger.Ctx(ctx)
	ticker := time.NewTicker(j.Interval)
	defer ticker.Stop()
	log.Info().Dur("interval", j.Interval).Str("file", j.Path).Msg("seed job starting")

	for {
		if n, err := j.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Int("inserted", n).Msg("seed iteration failed")
		}
		select {
		case <-ctx.Done():
			log.Info().Msg("seed job stopping")
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunOnce reads the file and inserts every listing the owner does not
// already have at the same address with the same title. It returns how many
// were inserted and the per-row errors joined.
func (j *Job) RunOnce(ctx context.Context) (int, error) {
	if err := j.validate(); err != nil {
		return 0, err
	}
	f, err := LoadFile(j.Path)
	if err != nil {
		return 0, err
	}
	owner, err := j.owner(ctx, f.Owner)
	if err != nil {
		return 0, err
	}
	existing, err := j.Store.ListingsByOwner(ctx, owner.ID)
	if err != nil {
		return 0, fmt.Errorf("list owner listings: %w", err)
	}
	have := make(map[string]struct{}, len(existing))
	for _, l := range existing {
		have[dedupKey(l.Title, l.Address)] = struct{}{}
	}

	var (
		joined   error
		inserted int
	)
	for i, in := range f.Listings {
		if ctx.Err() != nil {
			return inserted, ctx.Err()
		}
		if err := validation.Struct(in); err != nil {
			joined = errors.Join(joined, fmt.Errorf("listing %d: %w", i, err))
			continue
		}
		l := in.listing(owner.ID)
		key := dedupKey(l.Title, l.Address)
		if _, dup := have[key]; dup {
			continue
		}
		if _, err := j.Store.CreateListing(ctx, l); err != nil {
			joined = errors.Join(joined, fmt.Errorf("listing %d (%s): %w", i, l.Title, err))
			continue
		}
		have[key] = struct{}{}
		inserted++
	}
	logger.Ctx(ctx).Info().Int("inserted", inserted).Int("rows", len(f.Listings)).Str("owner", owner.Email).Msg("seed run complete")
	return inserted, joined
}

// owner returns the seeding account, signing it up on first use.
func (j *Job) owner(ctx context.Context, o Owner) (model.UserProfile, error) {
	u, err := j.Store.UserByEmail(ctx, strings.ToLower(strings.TrimSpace(o.Email)))
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return u, fmt.Errorf("look up seed owner: %w", err)
	}
	u, err = j.Auth.SignUp(ctx, auth.Credentials{Email: o.Email, Password: o.Password, DisplayName: o.DisplayName})
	if err != nil {
		return u, fmt.Errorf("create seed owner: %w", err)
	}
	return u, nil
}

func (in Listing) listing(ownerID string) model.Listing {
	addr := canon.Normalize(in.Address)
	parts := canon.Decompose(addr)
	l := model.Listing{
		OwnerID:       ownerID,
		Kind:          model.ListingKind(in.Kind),
		Title:         strings.TrimSpace(in.Title),
		Address:       addr,
		Nearby:        parts.Nearby,
		City:          parts.City,
		State:         parts.State,
		PricePerMonth: in.PricePerMonth,
		Description:   strings.TrimSpace(in.Description),
		ImageURL:      in.ImageURL,
		Gallery:       in.Gallery,
		Amenities:     in.Amenities,
		Status:        model.StatusAvailable,
	}
	if l.Kind == "" {
		l.Kind = model.KindRoom
	}
	if l.ImageURL == "" && len(l.Gallery) > 0 {
		l.ImageURL = l.Gallery[0]
	}
	return l
}

func dedupKey(title, address string) string {
	return strings.ToLower(strings.TrimSpace(title)) + "|" + strings.ToLower(address)
}
