package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/tenant-config-api/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "domaincfg:shop.example.com", map[string]string{"theme": "blue"}, time.Minute))

	var got map[string]string
	err := repo.Get(ctx, "domaincfg:shop.example.com", &got)
	assert.ErrorIs(t, err, appErrors.ErrCacheMiss)
	assert.Nil(t, got)

	assert.NoError(t, repo.Delete(ctx, "domaincfg:shop.example.com"))
	assert.NoError(t, repo.DeleteByPattern(ctx, "domaincfg:*.example.com"))
	assert.NoError(t, repo.Close())
}
