package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/akulov/spacefs/pkg/models"
)

// ============================================
// SETTINGS OPERATIONS
// ============================================

func (s *GORMStore) GetSetting(ctx context.Context, key string) (string, error) {
	var setting models.Setting
	if err := s.db.WithContext(ctx).Where("key = ?", key).First(&setting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return setting.Value, nil
}

func (s *GORMStore) SetSetting(ctx context.Context, key, value string) error {
	setting := models.Setting{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now(),
	}
	return s.db.WithContext(ctx).Save(&setting).Error
}

func (s *GORMStore) DeleteSetting(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Where("key = ?", key).Delete(&models.Setting{}).Error
}

// GetAccessRules loads the ordered admin rule list from its settings
// document. The list order is user-configured priority and is preserved
// exactly as stored. A missing document means no rules.
//
// Rules are re-read on every access decision; nothing caches them, so an
// admin edit takes effect on the very next request.
func (s *GORMStore) GetAccessRules(ctx context.Context) ([]models.AccessRule, error) {
	raw, err := s.GetSetting(ctx, models.SettingAccessRules)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, nil
	}
	var rules []models.AccessRule
	if err := json.Unmarshal([]byte(raw), &rules); err != nil {
		return nil, fmt.Errorf("failed to parse access rules document: %w", err)
	}
	return rules, nil
}

// SetAccessRules replaces the whole ordered rule list.
func (s *GORMStore) SetAccessRules(ctx context.Context, rules []models.AccessRule) error {
	for i := range rules {
		if !rules[i].Permission.Valid() {
			return fmt.Errorf("invalid rule permission %q at index %d", rules[i].Permission, i)
		}
	}
	data, err := json.Marshal(rules)
	if err != nil {
		return fmt.Errorf("failed to encode access rules document: %w", err)
	}
	return s.SetSetting(ctx, models.SettingAccessRules, string(data))
}
