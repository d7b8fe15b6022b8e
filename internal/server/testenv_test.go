package server

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/silovra/silovra-api/internal/analytics"
	"github.com/silovra/silovra-api/internal/auth"
	"github.com/silovra/silovra-api/internal/billing"
	"github.com/silovra/silovra-api/internal/profiles"
)

const (
	testProduct       = "silovra-pro"
	testSessionIssuer = "silovra-auth"
	testSessionCookie = "silovra_session"
)

var (
	testSessionSecret = []byte("test-session-secret")
	testClockTime     = time.Unix(1700000600, 0).UTC()
)

type testEnv struct {
	handler  http.Handler
	db       *gorm.DB
	ingestor *analytics.Ingestor
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:silovra_server_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&profiles.Profile{}, &profiles.Link{}, &analytics.Event{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	resolver, err := profiles.NewResolver(profiles.ResolverConfig{Database: db})
	if err != nil {
		t.Fatalf("failed to construct resolver: %v", err)
	}

	ingestor, err := analytics.NewIngestor(analytics.IngestorConfig{
		Database:   db,
		Clock:      func() time.Time { return testClockTime },
		IDProvider: analytics.NewUUIDProvider(),
	})
	if err != nil {
		t.Fatalf("failed to construct ingestor: %v", err)
	}

	reconciler, err := billing.NewReconciler(billing.ReconcilerConfig{
		Database:         db,
		ProductPermalink: testProduct,
		Clock:            func() time.Time { return testClockTime },
	})
	if err != nil {
		t.Fatalf("failed to construct reconciler: %v", err)
	}

	sessions, err := auth.NewSessionValidator(auth.SessionValidatorConfig{
		SigningSecret: testSessionSecret,
		Issuer:        testSessionIssuer,
		CookieName:    testSessionCookie,
		Clock:         func() time.Time { return testClockTime },
	})
	if err != nil {
		t.Fatalf("failed to construct session validator: %v", err)
	}

	handler, err := NewHTTPHandler(Dependencies{
		Resolver:   resolver,
		Ingestor:   ingestor,
		Reconciler: reconciler,
		Sessions:   sessions,
	})
	if err != nil {
		t.Fatalf("failed to construct handler: %v", err)
	}

	return &testEnv{handler: handler, db: db, ingestor: ingestor}
}

func (env *testEnv) serve(t *testing.T, request *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	recorder := httptest.NewRecorder()
	env.handler.ServeHTTP(recorder, request)
	return recorder
}

func (env *testEnv) drain(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := env.ingestor.Drain(ctx); err != nil {
		t.Fatalf("failed to drain ingestor: %v", err)
	}
}

func (env *testEnv) seedProfile(t *testing.T, profile profiles.Profile) {
	t.Helper()
	if err := env.db.Create(&profile).Error; err != nil {
		t.Fatalf("failed to seed profile: %v", err)
	}
}

func (env *testEnv) seedLink(t *testing.T, link profiles.Link) {
	t.Helper()
	if err := env.db.Create(&link).Error; err != nil {
		t.Fatalf("failed to seed link: %v", err)
	}
}

func mintSessionToken(t *testing.T, email string) string {
	t.Helper()
	claims := auth.SessionClaims{
		UserEmail: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			Issuer:    testSessionIssuer,
			IssuedAt:  jwt.NewNumericDate(testClockTime),
			ExpiresAt: jwt.NewNumericDate(testClockTime.Add(30 * time.Minute)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(testSessionSecret)
	if err != nil {
		t.Fatalf("failed to sign session token: %v", err)
	}
	return signed
}
