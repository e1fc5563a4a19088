package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/storefront/pkg/db"
	"github.com/angelmondragon/storefront/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SQLBackend stores records in the local_records table. The namespace column holds
// "<prefix>:<session>" so several deployments can share one table.
type SQLBackend struct {
	client *db.Client
	prefix string
	now    func() time.Time
}

// NewSQLBackend wraps a gorm client whose schema has been migrated.
func NewSQLBackend(client *db.Client, prefix string) *SQLBackend {
	return &SQLBackend{client: client, prefix: strings.TrimSpace(prefix), now: time.Now}
}

func (s *SQLBackend) scoped(namespace string) string {
	if s.prefix == "" {
		return namespace
	}
	return s.prefix + ":" + namespace
}

func (s *SQLBackend) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	var record models.LocalRecord
	err := s.client.DB().WithContext(ctx).
		Where("namespace = ? AND record_key = ?", s.scoped(namespace), key).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load record %s: %w", key, err)
	}
	return []byte(record.Value), nil
}

func (s *SQLBackend) Set(ctx context.Context, namespace, key string, value []byte) error {
	record := models.LocalRecord{
		Namespace: s.scoped(namespace),
		Key:       key,
		Value:     string(value),
		UpdatedAt: s.now().UTC(),
	}
	err := s.client.DB().WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "namespace"}, {Name: "record_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&record).Error
	if err != nil {
		return fmt.Errorf("save record %s: %w", key, err)
	}
	return nil
}

func (s *SQLBackend) Delete(ctx context.Context, namespace, key string) error {
	err := s.client.DB().WithContext(ctx).
		Where("namespace = ? AND record_key = ?", s.scoped(namespace), key).
		Delete(&models.LocalRecord{}).Error
	if err != nil {
		return fmt.Errorf("delete record %s: %w", key, err)
	}
	return nil
}

func (s *SQLBackend) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

func (s *SQLBackend) Close() error {
	return s.client.Close()
}
