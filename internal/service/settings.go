package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/target/totem-api/internal/domain/model"
	apperrors "github.com/target/totem-api/internal/errors"
	"github.com/target/totem-api/internal/ports"
)

var settingSelect = []string{model.FieldTitle, model.FieldSettingValue, model.FieldSettingDescription}

// SettingsServiceOptions groups dependencies for SettingsService.
type SettingsServiceOptions struct {
	Lists  ports.ListStore // Required: remote list store
	ListID string          // Required: settings list id
	Logger *slog.Logger    // Optional: structured logger
}

// SettingsService reads and writes the kiosk key/value settings list.
// The list is small, so lookups read it whole and match keys locally.
type SettingsService struct {
	lists  ports.ListStore
	listID string
	logger *slog.Logger
}

// NewSettingsService constructs a new SettingsService.
func NewSettingsService(opts SettingsServiceOptions) (*SettingsService, error) {
	if opts.Lists == nil {
		return nil, errors.New("ListStore is required")
	}
	if opts.ListID == "" {
		return nil, errors.New("settings list id is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SettingsService{
		lists:  opts.Lists,
		listID: opts.ListID,
		logger: logger.With("component", "settings_service"),
	}, nil
}

// AllSettings returns every setting row.
func (s *SettingsService) AllSettings(ctx context.Context) ([]model.Setting, error) {
	items, err := s.lists.ListItems(ctx, s.listID, ports.ListQuery{Select: settingSelect})
	if err != nil {
		s.logger.ErrorContext(ctx, "read settings failed", "error", err)
		return nil, fmt.Errorf("read settings: %w", err)
	}
	out := make([]model.Setting, 0, len(items))
	for _, it := range items {
		out = append(out, model.SettingFromFields(it.ID, it.Fields))
	}
	return out, nil
}

// Setting returns one setting by key. Any failure, including a store error,
// reports the setting as absent.
func (s *SettingsService) Setting(ctx context.Context, key string) (model.Setting, bool) {
	key = strings.TrimSpace(key)
	if key == "" {
		return model.Setting{}, false
	}
	settings, err := s.AllSettings(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "setting treated as absent", "key", key, "error", err)
		return model.Setting{}, false
	}
	return findSetting(settings, key)
}

// UpdateSetting sets the value of key, creating the row when it is missing.
func (s *SettingsService) UpdateSetting(ctx context.Context, key, value string) (*model.Setting, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, apperrors.Wrap(model.ErrSettingKeyRequired, apperrors.ErrCodeValidation, model.ErrSettingKeyRequired.Error())
	}

	settings, err := s.AllSettings(ctx)
	if err != nil {
		return nil, err
	}

	if existing, ok := findSetting(settings, key); ok && existing.ItemID != "" {
		fields := map[string]any{model.FieldSettingValue: value}
		if err := s.lists.UpdateItemFields(ctx, s.listID, existing.ItemID, fields); err != nil {
			s.logger.ErrorContext(ctx, "update setting failed", "key", key, "error", err)
			return nil, fmt.Errorf("update setting %q: %w", key, err)
		}
		existing.Value = value
		s.logger.InfoContext(ctx, "setting updated", "key", key)
		return &existing, nil
	}

	item, err := s.lists.CreateItem(ctx, s.listID, map[string]any{
		model.FieldTitle:        key,
		model.FieldSettingValue: value,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "create setting failed", "key", key, "error", err)
		return nil, fmt.Errorf("create setting %q: %w", key, err)
	}
	s.logger.InfoContext(ctx, "setting created", "key", key)
	return &model.Setting{ItemID: item.ID, Key: key, Value: value}, nil
}

func findSetting(settings []model.Setting, key string) (model.Setting, bool) {
	for _, st := range settings {
		if st.Key == key {
			return st, true
		}
	}
	return model.Setting{}, false
}
