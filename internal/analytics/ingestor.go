package analytics

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/silovra/silovra-api/internal/observability"
	"github.com/silovra/silovra-api/internal/profiles"
)

const (
	defaultWriteTimeout = 5 * time.Second
	maxLinkIDLength     = 190
)

var (
	errMissingDatabase   = errors.New("database handle is required")
	errMissingIDProvider = errors.New("id provider is required")

	noOpLogger = zap.NewNop()
)

// IDProvider issues identifiers for stored events.
type IDProvider interface {
	NewID() (string, error)
}

// IngestorConfig describes the dependencies for analytics ingestion.
type IngestorConfig struct {
	Database     *gorm.DB
	Clock        func() time.Time
	IDProvider   IDProvider
	Logger       *zap.Logger
	WriteTimeout time.Duration
}

// Ingestor appends view and click events off the request's critical path.
// Record calls return as soon as the event is handed off; every downstream
// failure is logged and discarded so it can never reach, delay, or fail the
// triggering request.
type Ingestor struct {
	db         *gorm.DB
	clock      func() time.Time
	idProvider IDProvider
	logger     *zap.Logger
	timeout    time.Duration
	inflight   sync.WaitGroup
}

// NewIngestor constructs an Ingestor.
func NewIngestor(cfg IngestorConfig) (*Ingestor, error) {
	if cfg.Database == nil {
		return nil, errMissingDatabase
	}
	if cfg.IDProvider == nil {
		return nil, errMissingIDProvider
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}
	timeout := cfg.WriteTimeout
	if timeout <= 0 {
		timeout = defaultWriteTimeout
	}
	return &Ingestor{
		db:         cfg.Database,
		clock:      clock,
		idProvider: cfg.IDProvider,
		logger:     logger,
		timeout:    timeout,
	}, nil
}

// RecordView hands off one page-view event. Fire-and-forget.
func (i *Ingestor) RecordView(rawUsername string) {
	i.dispatch(EventKindView, rawUsername, "")
}

// RecordClick hands off one link-click event. Fire-and-forget.
func (i *Ingestor) RecordClick(rawUsername, linkID string) {
	i.dispatch(EventKindClick, rawUsername, linkID)
}

func (i *Ingestor) dispatch(kind EventKind, rawUsername, linkID string) {
	i.inflight.Add(1)
	go func() {
		defer i.inflight.Done()
		defer func() {
			if recovered := recover(); recovered != nil {
				i.logger.Warn("analytics write panicked",
					zap.String("kind", string(kind)),
					zap.Any("panic", recovered))
				observability.AnalyticsEventsDroppedTotal.
					WithLabelValues(string(kind), "panic").Inc()
			}
		}()
		i.persist(kind, rawUsername, linkID)
	}()
}

func (i *Ingestor) persist(kind EventKind, rawUsername, linkID string) {
	username, err := profiles.NewUsername(rawUsername)
	if err != nil {
		i.drop(kind, "invalid_username", err, zap.String("username", rawUsername))
		return
	}

	linkID = strings.TrimSpace(linkID)
	if len(linkID) > maxLinkIDLength {
		i.drop(kind, "invalid_link_id", nil, zap.Int("link_id_length", len(linkID)))
		return
	}

	eventID, err := i.idProvider.NewID()
	if err != nil {
		i.drop(kind, "id_generation_failed", err)
		return
	}

	event := Event{
		ID:                eventID,
		Username:          username.String(),
		Kind:              kind,
		LinkID:            linkID,
		OccurredAtSeconds: i.clock().UTC().Unix(),
	}

	// A slow write is abandoned, not held open.
	ctx, cancel := context.WithTimeout(context.Background(), i.timeout)
	defer cancel()

	if err := i.db.WithContext(ctx).Create(&event).Error; err != nil {
		i.drop(kind, "store_write_failed", err, zap.String("username", username.String()))
		return
	}
	observability.AnalyticsEventsTotal.WithLabelValues(string(kind)).Inc()
}

func (i *Ingestor) drop(kind EventKind, reason string, err error, fields ...zap.Field) {
	attrs := []zap.Field{
		zap.String("kind", string(kind)),
		zap.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, zap.Error(err))
	}
	attrs = append(attrs, fields...)
	i.logger.Warn("analytics event dropped", attrs...)
	observability.AnalyticsEventsDroppedTotal.WithLabelValues(string(kind), reason).Inc()
}

// Drain blocks until every handed-off write has finished or the context
// expires. Called on shutdown and by tests.
func (i *Ingestor) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		i.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
