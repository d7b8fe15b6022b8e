package profiles

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	maxUsernameLength = 30
	maxBioLength      = 280
)

var (
	// ErrInvalidUsername indicates that a username is empty, too long, or
	// contains characters outside [a-z0-9_].
	ErrInvalidUsername = errors.New("profiles: invalid username")

	usernamePattern = regexp.MustCompile(`^[a-z0-9_]+$`)
)

// Username represents a validated, lowercase profile handle.
type Username string

// NewUsername normalizes raw input (trim, lowercase) and validates it.
// Callers are not required to pre-normalize; the store is case-sensitive so
// every lookup goes through this constructor.
func NewUsername(rawInput string) (Username, error) {
	normalized := strings.ToLower(strings.TrimSpace(rawInput))
	if normalized == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidUsername)
	}
	if len(normalized) > maxUsernameLength {
		return "", fmt.Errorf("%w: exceeds %d characters", ErrInvalidUsername, maxUsernameLength)
	}
	if !usernamePattern.MatchString(normalized) {
		return "", fmt.Errorf("%w: %q", ErrInvalidUsername, normalized)
	}
	return Username(normalized), nil
}

// String returns the underlying handle.
func (u Username) String() string {
	return string(u)
}

// Profile is the durable record of one published page. Username uniqueness is
// enforced by the store. The is_pro and sale_id columns are owned by the
// billing reconciler; everything else is written by the editing surface.
type Profile struct {
	ID        string    `gorm:"column:id;primaryKey;size:190;not null"`
	Username  string    `gorm:"column:username;size:30;not null;uniqueIndex"`
	Email     string    `gorm:"column:email;size:320;not null;uniqueIndex"`
	Bio       string    `gorm:"column:bio;size:280;not null;default:''"`
	Theme     string    `gorm:"column:theme;size:64;not null;default:''"`
	IsPro     bool      `gorm:"column:is_pro;not null;default:false"`
	SaleID    string    `gorm:"column:sale_id;size:190;not null;default:'';index"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName provides the explicit table binding for GORM.
func (Profile) TableName() string {
	return "profiles"
}

// Link is one ordered entry on a profile's public page. Position is zero-based
// and dense per profile; rendering sorts ascending and keeps fetch order on
// ties.
type Link struct {
	ID        string    `gorm:"column:id;primaryKey;size:190;not null"`
	ProfileID string    `gorm:"column:profile_id;size:190;not null;index"`
	Title     string    `gorm:"column:title;size:190;not null"`
	URL       string    `gorm:"column:url;size:2048;not null"`
	Position  int       `gorm:"column:position;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName provides the explicit table binding for GORM.
func (Link) TableName() string {
	return "links"
}
