package profiles

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/silovra/silovra-api/internal/themes"
)

var (
	// ErrProfileNotFound is terminal: no retry, no side effect, and the HTTP
	// layer renders it as a generic not-found page.
	ErrProfileNotFound = errors.New("profiles: profile not found")

	errMissingDatabase = errors.New("database handle is required")

	noOpLogger = zap.NewNop()
)

const (
	opResolverNew = "profiles.resolver.new"
	opResolve     = "profiles.resolve"
	opOwnerEmail  = "profiles.owner_email"
)

// ServiceError carries an operation.reason code alongside the wrapped cause so
// callers and logs can discriminate failure sites.
type ServiceError struct {
	code string
	err  error
}

func (e *ServiceError) Error() string {
	if e.err == nil {
		return e.code
	}
	return fmt.Sprintf("%s: %v", e.code, e.err)
}

func (e *ServiceError) Unwrap() error {
	return e.err
}

func (e *ServiceError) Code() string {
	return e.code
}

func newServiceError(operation, reason string, cause error) error {
	return &ServiceError{code: fmt.Sprintf("%s.%s", operation, reason), err: cause}
}

// ResolverConfig describes the dependencies for public profile resolution.
type ResolverConfig struct {
	Database *gorm.DB
	Logger   *zap.Logger
}

// Resolver assembles renderable profile views from the store and the theme
// catalog. It performs reads only.
type Resolver struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewResolver constructs a Resolver.
func NewResolver(cfg ResolverConfig) (*Resolver, error) {
	if cfg.Database == nil {
		return nil, newServiceError(opResolverNew, "missing_database", errMissingDatabase)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}
	return &Resolver{db: cfg.Database, logger: logger}, nil
}

// RenderableLink is one entry of the ordered link section.
type RenderableLink struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	URL      string `json:"url"`
	Position int    `json:"position"`
}

// RenderableProfile is the immutable view handed to the delivery layer. The
// theme is already resolved to a concrete style bundle; callers never
// re-resolve the key. ShowAttribution drives the "made with" badge, shown only
// for non-pro profiles.
type RenderableProfile struct {
	Username        string           `json:"username"`
	Bio             string           `json:"bio"`
	IsPro           bool             `json:"is_pro"`
	ShowAttribution bool             `json:"show_attribution"`
	Theme           themes.Theme     `json:"theme"`
	Links           []RenderableLink `json:"links"`
}

// OwnerEmail returns the account email backing a username, with the same
// not-found semantics as Resolve. The delivery layer uses it to authorize
// dashboard access against session claims.
func (r *Resolver) OwnerEmail(ctx context.Context, rawUsername string) (string, error) {
	username, err := NewUsername(rawUsername)
	if err != nil {
		return "", ErrProfileNotFound
	}

	var profile Profile
	err = r.db.WithContext(ctx).
		Select("email").
		Where("username = ?", username.String()).
		Take(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrProfileNotFound
	}
	if err != nil {
		r.logger.Error("owner lookup failed",
			zap.String("operation", opOwnerEmail),
			zap.String("username", username.String()),
			zap.Error(err))
		return "", newServiceError(opOwnerEmail, "profile_select_failed", err)
	}
	return profile.Email, nil
}

// Resolve returns the renderable view for a username, or ErrProfileNotFound.
// A syntactically invalid username is indistinguishable from an absent one.
// Resolution never fails on a missing or stale theme reference; the catalog
// default is substituted. It has no side effects.
func (r *Resolver) Resolve(ctx context.Context, rawUsername string) (RenderableProfile, error) {
	username, err := NewUsername(rawUsername)
	if err != nil {
		return RenderableProfile{}, ErrProfileNotFound
	}

	var profile Profile
	err = r.db.WithContext(ctx).
		Where("username = ?", username.String()).
		Take(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return RenderableProfile{}, ErrProfileNotFound
	}
	if err != nil {
		r.logger.Error("profile lookup failed",
			zap.String("operation", opResolve),
			zap.String("username", username.String()),
			zap.Error(err))
		return RenderableProfile{}, newServiceError(opResolve, "profile_select_failed", err)
	}

	var links []Link
	if err := r.db.WithContext(ctx).
		Where("profile_id = ?", profile.ID).
		Find(&links).Error; err != nil {
		r.logger.Error("link lookup failed",
			zap.String("operation", opResolve),
			zap.String("username", username.String()),
			zap.Error(err))
		return RenderableProfile{}, newServiceError(opResolve, "link_select_failed", err)
	}

	// Ascending position; ties keep fetch order.
	sort.SliceStable(links, func(i, j int) bool {
		return links[i].Position < links[j].Position
	})

	theme, ok := themes.Resolve(profile.Theme)
	if !ok {
		theme = themes.Default()
	}

	view := RenderableProfile{
		Username:        profile.Username,
		Bio:             profile.Bio,
		IsPro:           profile.IsPro,
		ShowAttribution: !profile.IsPro,
		Theme:           theme,
		Links:           make([]RenderableLink, 0, len(links)),
	}
	for _, link := range links {
		view.Links = append(view.Links, RenderableLink{
			ID:       link.ID,
			Title:    link.Title,
			URL:      link.URL,
			Position: link.Position,
		})
	}
	return view, nil
}
