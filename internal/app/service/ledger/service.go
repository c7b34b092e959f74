package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lintasnet/paygate/internal/models"
	"github.com/lintasnet/paygate/pkg/config"
	"github.com/lintasnet/paygate/pkg/logctx"
	"github.com/lintasnet/paygate/pkg/tool"
	"github.com/lintasnet/paygate/pkg/types"
)

var (
	// ErrInvoiceNotPayable covers both a missing invoice and one whose
	// status is not unpaid/overdue.
	ErrInvoiceNotPayable = errors.New("invoice is not payable")
	// ErrInvalidStateTransition: the transaction is not pending anymore.
	ErrInvalidStateTransition = errors.New("invalid transaction state transition")
	// ErrTransactionNotFound for reads.
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrPendingExists: the partial unique index rejected a second pending
	// transaction for the same invoice.
	ErrPendingExists = errors.New("invoice already has a pending transaction")
)

// Service is the transaction ledger. Every mutation is a conditional update
// guarded on the pending status; that guard is what keeps concurrent webhook
// delivery, cancellation and double-submit safe across server instances.
type Service struct {
	cfg *config.Config
	log *zap.SugaredLogger
	db  *gorm.DB
}

func New(cfg *config.Config, log *zap.SugaredLogger, db *gorm.DB) *Service {
	return &Service{cfg: cfg, log: log, db: db}
}

// ValidatePayable loads the invoice and checks it can take a payment.
func (s *Service) ValidatePayable(ctx context.Context, invoiceID string) (*models.Invoice, error) {
	var inv models.Invoice
	err := s.db.WithContext(ctx).Where("id = ?", invoiceID).First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: invoice %s not found", ErrInvoiceNotPayable, invoiceID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load invoice: %w", err)
	}
	if !inv.Payable() {
		return nil, fmt.Errorf("%w: invoice %s is %s", ErrInvoiceNotPayable, inv.Number, inv.Status)
	}
	return &inv, nil
}

// InvoiceByNumber resolves the webhook order reference back to an invoice.
func (s *Service) InvoiceByNumber(ctx context.Context, number string) (*models.Invoice, error) {
	var inv models.Invoice
	err := s.db.WithContext(ctx).Where("number = ?", number).First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load invoice by number: %w", err)
	}
	return &inv, nil
}

// FindPending returns the latest pending, non-expired transaction for the
// invoice, or nil. A create-payment call checks this first so a double-submit
// returns the first attempt instead of opening a second one.
func (s *Service) FindPending(ctx context.Context, invoiceID string) (*models.PaymentTransaction, error) {
	var tx models.PaymentTransaction
	err := s.db.WithContext(ctx).
		Where("invoice_id = ? AND status = ? AND expires_at > ?", invoiceID, models.TransactionStatusPending, time.Now()).
		Order("created_at DESC").
		First(&tx).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query pending transaction: %w", err)
	}
	return &tx, nil
}

// FindPendingByOrderID locates the most recent pending transaction matching a
// provider order reference and gateway. Used on the webhook path.
func (s *Service) FindPendingByOrderID(ctx context.Context, gateway types.PaymentProvider, orderID string) (*models.PaymentTransaction, error) {
	var tx models.PaymentTransaction
	err := s.db.WithContext(ctx).
		Where("order_id = ? AND gateway = ? AND status = ?", orderID, gateway, models.TransactionStatusPending).
		Order("created_at DESC").
		First(&tx).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction by order id: %w", err)
	}
	return &tx, nil
}

// Create persists a new pending transaction and stamps the invoice's gateway
// markers. Request and provider response are stored verbatim for audit. A
// concurrent create for the same invoice loses to the unique index and gets
// ErrPendingExists.
func (s *Service) Create(ctx context.Context, inv *models.Invoice, req *types.PaymentRequest, res *types.PaymentResult) (*models.PaymentTransaction, error) {
	reqPayload, _ := json.Marshal(req)
	resPayload, _ := json.Marshal(res)

	now := time.Now()
	tx := &models.PaymentTransaction{
		ID:              tool.GenerateUUIDV7(),
		InvoiceID:       inv.ID,
		Gateway:         res.Gateway,
		GatewayRef:      res.Token,
		OrderID:         res.OrderID,
		Method:          res.Method,
		Amount:          req.Amount,
		FeeAmount:       res.FeeAmount,
		NetAmount:       req.Amount - res.FeeAmount,
		Status:          models.TransactionStatusPending,
		RequestPayload:  datatypes.JSON(reqPayload),
		ResponsePayload: func() *datatypes.JSON { j := datatypes.JSON(resPayload); return &j }(),
		ExpiresAt:       now.Add(s.cfg.Gateway.TransactionTTL),
	}

	err := s.db.WithContext(ctx).Transaction(func(dbtx *gorm.DB) error {
		if err := dbtx.Create(tx).Error; err != nil {
			return err
		}
		gw := string(res.Gateway)
		updates := map[string]any{"payment_gateway": gw}
		if res.Token != "" {
			updates["payment_gateway_ref"] = res.Token
		}
		if res.Method != "" {
			updates["payment_method"] = res.Method
		}
		return dbtx.Model(&models.Invoice{}).Where("id = ?", inv.ID).Updates(updates).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: invoice %s", ErrPendingExists, inv.Number)
		}
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	return tx, nil
}

// Cancel moves a pending transaction to cancelled, records the reason in the
// stored response metadata, and reverts the invoice's gateway markers.
// Anything not pending fails with ErrInvalidStateTransition.
func (s *Service) Cancel(ctx context.Context, id, reason string) error {
	return s.db.WithContext(ctx).Transaction(func(dbtx *gorm.DB) error {
		res := dbtx.Model(&models.PaymentTransaction{}).
			Where("id = ? AND status = ?", id, models.TransactionStatusPending).
			Updates(map[string]any{
				"status": models.TransactionStatusCancelled,
				"response_payload": gorm.Expr(
					"jsonb_set(COALESCE(response_payload, '{}'::jsonb), '{cancel_reason}', to_jsonb(?::text))",
					reason,
				),
			})
		if res.Error != nil {
			return fmt.Errorf("failed to cancel transaction: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: transaction %s is not pending", ErrInvalidStateTransition, id)
		}

		var tx models.PaymentTransaction
		if err := dbtx.Where("id = ?", id).First(&tx).Error; err != nil {
			return err
		}
		return dbtx.Model(&models.Invoice{}).
			Where("id = ? AND status != ?", tx.InvoiceID, models.InvoiceStatusPaid).
			Updates(map[string]any{
				"payment_gateway":     nil,
				"payment_gateway_ref": nil,
				"payment_method":      nil,
			}).Error
	})
}

// SettlePaid applies the paid transition and the invoice update as one
// logically-atomic unit. Returns false without error when the transaction was
// already terminal, which makes repeated webhook delivery a no-op.
func (s *Service) SettlePaid(ctx context.Context, txID, invoiceID, gatewayRef string, paidAt time.Time) (bool, error) {
	applied := false
	err := s.db.WithContext(ctx).Transaction(func(dbtx *gorm.DB) error {
		res := dbtx.Model(&models.PaymentTransaction{}).
			Where("id = ? AND status = ?", txID, models.TransactionStatusPending).
			Updates(map[string]any{
				"status":  models.TransactionStatusPaid,
				"paid_at": paidAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		applied = true

		updates := map[string]any{
			"status":          models.InvoiceStatusPaid,
			"payment_date":    paidAt,
			"settlement_date": paidAt,
		}
		if gatewayRef != "" {
			updates["payment_gateway_ref"] = gatewayRef
		}
		return dbtx.Model(&models.Invoice{}).Where("id = ?", invoiceID).Updates(updates).Error
	})
	if err != nil {
		return false, fmt.Errorf("failed to settle transaction: %w", err)
	}
	return applied, nil
}

// MarkFailed moves a pending transaction to failed without touching the
// invoice's paid markers. Idempotent the same way SettlePaid is.
func (s *Service) MarkFailed(ctx context.Context, txID string) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.PaymentTransaction{}).
		Where("id = ? AND status = ?", txID, models.TransactionStatusPending).
		Update("status", models.TransactionStatusFailed)
	if res.Error != nil {
		return false, fmt.Errorf("failed to mark transaction failed: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// TransactionDetail is the read model for a single transaction, surfacing
// the cached provider response fields the payment page needs.
type TransactionDetail struct {
	*models.PaymentTransaction
	RemainingSeconds int64                 `json:"remaining_seconds"`
	PaymentURL       string                `json:"payment_url,omitempty"`
	QRString         string                `json:"qr_string,omitempty"`
	Instructions     []types.ManualAccount `json:"instructions,omitempty"`
}

// Get loads one transaction. A non-empty invoiceID scopes the read to that
// invoice (customer-facing path); empty means admin access.
func (s *Service) Get(ctx context.Context, id, invoiceID string) (*TransactionDetail, error) {
	q := s.db.WithContext(ctx).Where("id = ?", id)
	if invoiceID != "" {
		q = q.Where("invoice_id = ?", invoiceID)
	}
	var tx models.PaymentTransaction
	err := q.First(&tx).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction: %w", err)
	}

	detail := &TransactionDetail{
		PaymentTransaction: &tx,
		RemainingSeconds:   tx.RemainingSeconds(time.Now()),
	}
	if tx.ResponsePayload != nil {
		var res types.PaymentResult
		if err := json.Unmarshal(*tx.ResponsePayload, &res); err != nil {
			logctx.FromCtx(ctx, s.log).Warnw("stored response payload is not a payment result",
				"transaction_id", tx.ID, "err", err)
		} else {
			detail.PaymentURL = res.PaymentURL
			detail.QRString = res.QRString
			detail.Instructions = res.Instructions
		}
	}
	return detail, nil
}

// Scan implements paginated admin listing with filters, in the same shape the
// rest of the admin API uses.
type ScanRequest struct {
	Filters   []*types.CommonFilter `json:"filters"`
	From      int                   `json:"from"`
	Size      int                   `json:"size"`
	SortBy    string                `json:"sort_by"`
	SortOrder string                `json:"sort_order"`
}

type ScanResponse struct {
	Items []*models.PaymentTransaction `json:"items"`
	Total int64                        `json:"total"`
}

// filtersAnd combines multiple CommonFilter into a single clause.Expression.
type filtersAnd struct{ filters []*types.CommonFilter }

func (w filtersAnd) Build(builder clause.Builder) {
	if len(w.filters) == 0 {
		builder.WriteString("1=1")
		return
	}
	exprs := make([]clause.Expression, 0, len(w.filters))
	for _, f := range w.filters {
		exprs = append(exprs, f)
	}
	clause.And(exprs...).Build(builder)
}

func (s *Service) Scan(ctx context.Context, req *ScanRequest) (*ScanResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}
	if req.Size <= 0 {
		req.Size = 10
	}
	if req.From < 0 {
		req.From = 0
	}

	tx := s.db.WithContext(ctx).Model(&models.PaymentTransaction{})
	if len(req.Filters) > 0 {
		tx = tx.Where(clause.Where{Exprs: []clause.Expression{filtersAnd{filters: req.Filters}}})
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count transactions: %w", err)
	}

	var rows []*models.PaymentTransaction
	q := tx.Limit(req.Size)
	if req.From > 0 {
		q = q.Offset(req.From)
	}
	if req.SortBy != "" {
		q = q.Order(clause.OrderBy{Columns: []clause.OrderByColumn{{Column: clause.Column{Name: req.SortBy}, Desc: req.SortOrder != "asc"}}})
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return &ScanResponse{Items: rows, Total: total}, nil
}

// Stats aggregates counts and money sums by status. Read-only.
type Stats struct {
	ByStatus map[models.TransactionStatus]int64 `json:"by_status"`
	TotalFee int64                              `json:"total_fee"`
	TotalNet int64                              `json:"total_net"`
}

func (s *Service) Statistics(ctx context.Context) (*Stats, error) {
	type row struct {
		Status models.TransactionStatus
		Count  int64
		Fee    int64
		Net    int64
	}
	var rows []row
	err := s.db.WithContext(ctx).Model(&models.PaymentTransaction{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(fee_amount),0) AS fee, COALESCE(SUM(net_amount),0) AS net").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate transactions: %w", err)
	}

	stats := &Stats{ByStatus: make(map[models.TransactionStatus]int64, len(rows))}
	for _, r := range rows {
		stats.ByStatus[r.Status] = r.Count
		if r.Status == models.TransactionStatusPaid {
			stats.TotalFee += r.Fee
			stats.TotalNet += r.Net
		}
	}
	return stats, nil
}
