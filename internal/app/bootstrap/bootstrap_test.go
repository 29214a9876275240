package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/anzhiyu-c/anheyu-attachment/internal/infra/persistence/ent"
	"github.com/anzhiyu-c/anheyu-attachment/internal/pkg/event"
	"github.com/anzhiyu-c/anheyu-attachment/internal/testutil"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/config"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/constant"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/domain/repository"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/service/setting"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/service/utility"
)

func newBootstrapper(t *testing.T, values map[string]interface{}) (*Bootstrapper, repository.SettingRepository) {
	t.Helper()
	repo := ent.NewSettingRepo(testutil.NewDriver(t))
	bus := event.NewEventBus(zap.NewNop())
	t.Cleanup(bus.Shutdown)
	svc := setting.NewSettingService(repo, utility.NewMemoryCacheService(), bus, zap.NewNop())
	return NewBootstrapper(svc, repo, config.NewFromMap(values), zap.NewNop()), repo
}

func TestInitializeDatabase_SeedsDefaults(t *testing.T) {
	ctx := context.Background()
	b, repo := newBootstrapper(t, nil)
	require.NoError(t, b.InitializeDatabase(ctx))
	require.NoError(t, b.InitializeDatabase(ctx))

	s, err := repo.FindByKey(ctx, constant.KeyStorageActiveProvider.String())
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "disabled", s.Value)
}

func TestLoadSecrets_GeneratedOnceAndReused(t *testing.T) {
	ctx := context.Background()
	b, _ := newBootstrapper(t, nil)

	first, err := b.LoadSecrets(ctx)
	require.NoError(t, err)
	assert.Len(t, first.JWTSecret, 32)
	assert.Len(t, first.IDSeed, 32)
	assert.NotEqual(t, first.JWTSecret, first.IDSeed)

	second, err := b.LoadSecrets(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestLoadSecrets_ConfiguredValuesWin(t *testing.T) {
	b, repo := newBootstrapper(t, map[string]interface{}{
		config.KeyJWTSecret: "from-config",
		config.KeyIDSeed:    "seed-from-config",
	})
	secrets, err := b.LoadSecrets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "from-config", secrets.JWTSecret)
	assert.Equal(t, "seed-from-config", secrets.IDSeed)

	s, err := repo.FindByKey(context.Background(), keyJWTSecret)
	require.NoError(t, err)
	assert.Nil(t, s)
}
