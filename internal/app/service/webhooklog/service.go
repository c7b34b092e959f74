package webhooklog

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/lintasnet/paygate/internal/models"
	"github.com/lintasnet/paygate/pkg/logctx"
	"github.com/lintasnet/paygate/pkg/tool"
)

// Service persists the append-only webhook audit trail.
type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func New(db *gorm.DB, log *zap.SugaredLogger) *Service { return &Service{db: db, log: log} }

// Record synchronously inserts the received entry. It runs before signature
// verification so even spoofed attempts leave a row; failure to write the
// audit row fails the webhook call.
func (s *Service) Record(ctx context.Context, gateway string, payload []byte, headers map[string][]string) (*models.WebhookLog, error) {
	headerBytes, _ := json.Marshal(headers)
	entry := &models.WebhookLog{
		ID:         tool.GenerateUUIDV7(),
		Gateway:    gateway,
		Payload:    datatypes.JSON(payload),
		Headers:    datatypes.JSON(headerBytes),
		ReceivedAt: time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

// MarkVerified flips signature_valid and fills the extracted order reference
// once verification completed.
func (s *Service) MarkVerified(ctx context.Context, id, orderRef string) {
	err := s.db.WithContext(ctx).Model(&models.WebhookLog{}).
		Where("id = ?", id).
		Updates(map[string]any{"signature_valid": true, "order_ref": orderRef}).Error
	if err != nil {
		logctx.FromCtx(ctx, s.log).Errorw("failed to mark webhook log verified", "id", id, "err", err)
	}
}

// SaveResult asynchronously attaches the handling outcome to the log entry.
func (s *Service) SaveResult(ctx context.Context, id string, result map[string]any) {
	go func() {
		resBytes, _ := json.Marshal(result)
		j := datatypes.JSON(resBytes)
		err := s.db.Model(&models.WebhookLog{}).
			Where("id = ?", id).
			Update("result", &j).Error
		if err != nil {
			logctx.FromCtx(ctx, s.log).Errorf("failed to save webhook log result: %v", err)
		}
	}()
}

var Module = fx.Options(
	fx.Provide(New),
)
