package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/tenant-config-api/internal/models"
)

const settingsColumns = `id, owner_id, section, meta_key, meta_value, created_at, updated_at`

// SettingsRepository persists (owner, section, key) -> JSON text records for one scope.
// Tenant and user records live in separate tables with the same shape.
type SettingsRepository struct {
	db       *sqlx.DB
	table    string
	observer QueryObserver
}

// NewSettingsRepository constructs a repository bound to the tenant or user table.
func NewSettingsRepository(db *sqlx.DB, scope models.SettingsScope) *SettingsRepository {
	return &SettingsRepository{db: db, table: settingsTable(scope)}
}

// WithObserver attaches a query timing observer.
func (r *SettingsRepository) WithObserver(observer QueryObserver) *SettingsRepository {
	r.observer = observer
	return r
}

// Table returns the backing table name.
func (r *SettingsRepository) Table() string {
	return r.table
}

// GetConfigByKey fetches one record. sql.ErrNoRows is returned unwrapped when absent.
func (r *SettingsRepository) GetConfigByKey(ctx context.Context, ownerID, section, key string) (*models.SettingsRecord, error) {
	defer observe(r.observer, r.table+".get", time.Now())
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE owner_id = $1 AND section = $2 AND meta_key = $3`, settingsColumns, r.table)
	var record models.SettingsRecord
	if err := r.db.GetContext(ctx, &record, query, ownerID, section, key); err != nil {
		return nil, err
	}
	return &record, nil
}

// SaveOrUpdateConfigByKey inserts the record or replaces the value of the existing one and
// returns the stored row.
func (r *SettingsRepository) SaveOrUpdateConfigByKey(ctx context.Context, record *models.SettingsRecord) (*models.SettingsRecord, error) {
	defer observe(r.observer, r.table+".upsert", time.Now())
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	query := fmt.Sprintf(`INSERT INTO %s (%s)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (owner_id, section, meta_key)
DO UPDATE SET meta_value = EXCLUDED.meta_value, updated_at = EXCLUDED.updated_at
RETURNING %s`, r.table, settingsColumns, settingsColumns)

	var stored models.SettingsRecord
	row := r.db.QueryRowxContext(ctx, query, record.ID, record.OwnerID, record.Section, record.MetaKey, record.MetaValue, now, now)
	if err := row.StructScan(&stored); err != nil {
		return nil, fmt.Errorf("upsert %s record: %w", r.table, err)
	}
	return &stored, nil
}

func settingsTable(scope models.SettingsScope) string {
	if scope == models.ScopeTenant {
		return "tenant_meta"
	}
	return "user_meta"
}
