package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lintasnet/paygate/internal/models"
	"github.com/lintasnet/paygate/pkg/types"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Service reads and writes the gateway_setting table: one row per provider
// plus the reserved active_gateway row. The orchestrator consumes it at
// initialization and on reload; the admin UI collaborator writes it.
type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func New(db *gorm.DB, log *zap.SugaredLogger) *Service { return &Service{db: db, log: log} }

func (s *Service) All(ctx context.Context) ([]*models.GatewaySetting, error) {
	var rows []*models.GatewaySetting
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load gateway settings: %w", err)
	}
	return rows, nil
}

func (s *Service) Get(ctx context.Context, gateway string) (*models.GatewaySetting, error) {
	var row models.GatewaySetting
	err := s.db.WithContext(ctx).Where("gateway = ?", gateway).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load gateway setting %s: %w", gateway, err)
	}
	return &row, nil
}

type activeGatewayValue struct {
	Gateway types.PaymentProvider `json:"gateway"`
}

// ActiveGateway returns the explicitly selected provider, or "" when the
// operator never picked one and the priority fallback should apply.
func (s *Service) ActiveGateway(ctx context.Context) (types.PaymentProvider, error) {
	row, err := s.Get(ctx, models.ActiveGatewayKey)
	if err != nil || row == nil || !row.Enabled {
		return "", err
	}
	var v activeGatewayValue
	if err := json.Unmarshal(row.Credentials, &v); err != nil {
		s.log.Warnw("active_gateway row holds malformed value", "err", err)
		return "", nil
	}
	if !v.Gateway.Valid() {
		return "", nil
	}
	return v.Gateway, nil
}

// SetActiveGateway records the operator's explicit provider choice.
func (s *Service) SetActiveGateway(ctx context.Context, provider types.PaymentProvider) error {
	if !provider.Valid() {
		return fmt.Errorf("unknown gateway: %s", provider)
	}
	raw, _ := json.Marshal(activeGatewayValue{Gateway: provider})
	row := &models.GatewaySetting{Gateway: models.ActiveGatewayKey, Enabled: true, Credentials: datatypes.JSON(raw)}
	if err := s.db.WithContext(ctx).Save(row).Error; err != nil {
		return fmt.Errorf("failed to set active gateway: %w", err)
	}
	return nil
}

var Module = fx.Options(
	fx.Provide(New),
)
