package analytics

import (
	"context"

	"github.com/silovra/silovra-api/internal/profiles"
)

// LinkClicks is the click count for one link.
type LinkClicks struct {
	LinkID string `json:"link_id"`
	Clicks int64  `json:"clicks"`
}

// Summary aggregates best-effort counts for one profile's dashboard.
type Summary struct {
	TotalViews  int64        `json:"total_views"`
	TotalClicks int64        `json:"total_clicks"`
	LinkClicks  []LinkClicks `json:"link_clicks"`
}

// Summarize returns per-profile totals. This is a normal read path: errors
// propagate, unlike the ingestion side.
func (i *Ingestor) Summarize(ctx context.Context, rawUsername string) (Summary, error) {
	username, err := profiles.NewUsername(rawUsername)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{LinkClicks: make([]LinkClicks, 0)}

	if err := i.db.WithContext(ctx).
		Model(&Event{}).
		Where("username = ? AND kind = ?", username.String(), EventKindView).
		Count(&summary.TotalViews).Error; err != nil {
		return Summary{}, err
	}

	if err := i.db.WithContext(ctx).
		Model(&Event{}).
		Where("username = ? AND kind = ?", username.String(), EventKindClick).
		Count(&summary.TotalClicks).Error; err != nil {
		return Summary{}, err
	}

	if err := i.db.WithContext(ctx).
		Model(&Event{}).
		Select("link_id, count(*) as clicks").
		Where("username = ? AND kind = ? AND link_id <> ''", username.String(), EventKindClick).
		Group("link_id").
		Order("clicks DESC").
		Scan(&summary.LinkClicks).Error; err != nil {
		return Summary{}, err
	}

	return summary, nil
}
