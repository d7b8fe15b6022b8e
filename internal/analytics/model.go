package analytics

// EventKind enumerates the recorded analytics event types.
type EventKind string

const (
	// EventKindView records one public page render.
	EventKindView EventKind = "view"
	// EventKindClick records one outbound link click.
	EventKindClick EventKind = "click"
)

// Event is one append-only analytics record. There is no uniqueness
// constraint: duplicate events are expected and acceptable, and counting
// semantics belong to the reporting side.
type Event struct {
	ID                string    `gorm:"column:id;primaryKey;size:190;not null"`
	Username          string    `gorm:"column:username;size:30;not null;index:idx_events_user_kind,priority:1"`
	Kind              EventKind `gorm:"column:kind;size:8;not null;index:idx_events_user_kind,priority:2"`
	LinkID            string    `gorm:"column:link_id;size:190;not null;default:''"`
	OccurredAtSeconds int64     `gorm:"column:occurred_at_s;not null"`
}

// TableName provides the explicit table binding for GORM.
func (Event) TableName() string {
	return "analytics_events"
}
