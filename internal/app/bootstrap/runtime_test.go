package bootstrap

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/wolfman30/storefront-platform/internal/config"
	"github.com/wolfman30/storefront-platform/internal/catalog"
	"github.com/wolfman30/storefront-platform/internal/notify"
	"github.com/wolfman30/storefront-platform/internal/otp"
	"github.com/wolfman30/storefront-platform/internal/ratelimit"
	"github.com/wolfman30/storefront-platform/internal/stores"
	"github.com/wolfman30/storefront-platform/pkg/logging"
)

func TestBuildRedisClientDisabled(t *testing.T) {
	if client := BuildRedisClient(context.Background(), &appconfig.Config{}, nil, true); client != nil {
		t.Fatalf("expected nil client without REDIS_ADDR")
	}
	if client := BuildRedisClient(context.Background(), nil, nil, true); client != nil {
		t.Fatalf("expected nil client without config")
	}
}

func TestBuildRedisClientPingsServer(t *testing.T) {
	mr := miniredis.RunT(t)
	logger := logging.New("error")

	client := BuildRedisClient(context.Background(), &appconfig.Config{RedisAddr: mr.Addr()}, logger, true)
	require.NotNil(t, client)
	defer client.Close()

	mr.Close()
	client = BuildRedisClient(context.Background(), &appconfig.Config{RedisAddr: mr.Addr()}, logger, true)
	assert.Nil(t, client, "unreachable redis must not be returned when verified")
}

func TestBuildPostgresPoolDisabled(t *testing.T) {
	pool, err := BuildPostgresPool(context.Background(), &appconfig.Config{}, nil)
	require.NoError(t, err)
	assert.Nil(t, pool)

	_, err = BuildPostgresPool(context.Background(), &appconfig.Config{DatabaseURL: "://bad"}, nil)
	assert.Error(t, err)
}

func TestBuildFallbacks(t *testing.T) {
	assert.IsType(t, &otp.MemoryStore{}, BuildOTPStore(nil))
	limiter := BuildLimiter(nil, "test:", 5, time.Minute)
	require.IsType(t, &ratelimit.MemoryLimiter{}, limiter)
	limiter.(*ratelimit.MemoryLimiter).Close()

	mr := miniredis.RunT(t)
	client := BuildRedisClient(context.Background(), &appconfig.Config{RedisAddr: mr.Addr()}, nil, false)
	defer client.Close()
	assert.IsType(t, &otp.RedisStore{}, BuildOTPStore(client))
	assert.IsType(t, &ratelimit.RedisLimiter{}, BuildLimiter(client, "test:", 5, time.Minute))
}

func TestHealthChecks(t *testing.T) {
	assert.Empty(t, HealthChecks(nil, nil))

	mr := miniredis.RunT(t)
	client := BuildRedisClient(context.Background(), &appconfig.Config{RedisAddr: mr.Addr()}, nil, false)
	defer client.Close()
	checks := HealthChecks(nil, client)
	require.Contains(t, checks, "redis")
	assert.NoError(t, checks["redis"](context.Background()))
}

func TestBuildRepositoriesInMemory(t *testing.T) {
	repos := BuildRepositories(nil, time.Minute)
	assert.False(t, repos.Durable)
	assert.IsType(t, &stores.InMemoryRepository{}, repos.Stores)
	assert.IsType(t, &catalog.CachedRepository{}, repos.Catalog)

	ctx := context.Background()
	owner, err := repos.Merchants.GetOrCreateByEmail(ctx, "owner@example.com")
	require.NoError(t, err)
	store, err := repos.Stores.Create(ctx, &stores.CreateStoreRequest{MerchantID: owner.ID, Subdomain: "acme"})
	require.NoError(t, err)
	ok, err := repos.Stores.CanAccess(ctx, store.ID, owner.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestBuildEmailSender(t *testing.T) {
	ctx := context.Background()
	logger := logging.New("error")

	sender, err := BuildEmailSender(ctx, &appconfig.Config{EmailProvider: "log"}, logger)
	require.NoError(t, err)
	assert.IsType(t, &notify.LogEmailSender{}, sender)

	sender, err = BuildEmailSender(ctx, &appconfig.Config{EmailProvider: "sendgrid", SendGridAPIKey: "key", EmailFrom: "a@example.com"}, logger)
	require.NoError(t, err)
	assert.IsType(t, &notify.SendGridSender{}, sender)

	_, err = BuildEmailSender(ctx, &appconfig.Config{EmailProvider: "sendgrid"}, logger)
	assert.Error(t, err)

	sender, err = BuildEmailSender(ctx, &appconfig.Config{EmailProvider: "ses", AWSRegion: "us-east-1", EmailFrom: "a@example.com"}, logger)
	require.NoError(t, err)
	assert.IsType(t, &notify.SESSender{}, sender)
}
