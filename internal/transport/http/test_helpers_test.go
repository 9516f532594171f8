package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/parleychat/parley-server/internal/auth"
	"github.com/parleychat/parley-server/internal/config"
	"github.com/parleychat/parley-server/internal/core"
	"github.com/parleychat/parley-server/internal/room"
	"github.com/parleychat/parley-server/internal/store/sqlite"
)

func startTestServer(t *testing.T) (*httptest.Server, *auth.Service) {
	t.Helper()

	testStore, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { testStore.Close() })

	authService := auth.NewService(testStore, &auth.JWTConfig{
		Secret:   []byte("test-secret"),
		Issuer:   "parley-server",
		Audience: "parley-client",
		TTL:      time.Hour,
	})

	hub := core.NewHub(room.NewRegistry(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	disabledLogger := zerolog.Nop()
	cfg := config.Config{
		Addr:              ":0",
		ReadHeaderTimeout: time.Second,
		ShutdownTimeout:   time.Second,
	}

	server := NewServer(hub, authService, testStore, &cfg, &disabledLogger)
	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return ts, authService
}

func guestToken(t *testing.T, authService *auth.Service) (token, userID string) {
	t.Helper()

	token, err := authService.GuestLogin(context.Background())
	if err != nil {
		t.Fatalf("guest login: %v", err)
	}
	claims, err := authService.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate guest token: %v", err)
	}
	return token, claims.UserID
}

// decodeData re-marshals an Outbound's loosely-typed Data field into the
// concrete payload struct.
func decodeData(t *testing.T, data any, dst any) {
	t.Helper()

	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal outbound data: %v", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		t.Fatalf("unmarshal outbound data: %v", err)
	}
}
