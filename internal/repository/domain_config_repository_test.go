package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tenant-config-api/internal/models"
)

var domainConfigColumns = []string{"id", "tenant_id", "domain_name", "config", "created_at", "updated_at"}

func TestDomainConfigRepositoryFindForDomain(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewDomainConfigRepository(db)
	now := time.Now()
	mock.ExpectQuery("SELECT id, tenant_id, domain_name, config").
		WithArgs("shop.example.com", "example.com").
		WillReturnRows(sqlmock.NewRows(domainConfigColumns).
			AddRow("cfg-1", "tenant-1", "shop.example.com", []byte(`{"theme":"blue"}`), now, now))

	cfg, err := repo.FindForDomain(context.Background(), "shop.example.com", "example.com")
	require.NoError(t, err)
	assert.Equal(t, "tenant-1", cfg.TenantID)
	assert.JSONEq(t, `{"theme":"blue"}`, string(cfg.Config))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDomainConfigRepositoryFindForDomainDefaultsRoot(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewDomainConfigRepository(db)
	mock.ExpectQuery("FROM tenant_app_config").
		WithArgs("localhost", "localhost").
		WillReturnRows(sqlmock.NewRows(domainConfigColumns))

	_, err := repo.FindForDomain(context.Background(), "localhost", "")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestDomainConfigRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	observer := &observerStub{}
	repo := NewDomainConfigRepository(db).WithObserver(observer)
	created := time.Now().Add(-time.Hour)
	updated := time.Now()
	mock.ExpectQuery("INSERT INTO tenant_app_config").
		WithArgs(sqlmock.AnyArg(), "tenant-1", "shop.example.com", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow("cfg-1", created, updated))

	cfg := &models.TenantAppConfig{TenantID: "tenant-1", DomainName: "shop.example.com", Config: []byte(`{"a":1}`)}
	require.NoError(t, repo.Upsert(context.Background(), cfg))
	assert.Equal(t, "cfg-1", cfg.ID)
	assert.Equal(t, created, cfg.CreatedAt)
	assert.Equal(t, []string{"tenant_app_config.upsert"}, observer.labels)
}

func TestDomainConfigRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewDomainConfigRepository(db)
	mock.ExpectExec("DELETE FROM tenant_app_config").
		WithArgs("shop.example.com").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM tenant_app_config").
		WithArgs("gone.example.com").
		WillReturnResult(sqlmock.NewResult(0, 0))

	deleted, err := repo.Delete(context.Background(), "shop.example.com")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(context.Background(), "gone.example.com")
	require.NoError(t, err)
	assert.False(t, deleted)
}
