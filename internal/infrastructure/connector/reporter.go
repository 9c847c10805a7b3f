package connector

import (
	"context"

	"go.uber.org/zap"

	"github.com/erplink/backend/internal/domain/erp"
)

// ZapReporter logs classified errors through zap and never re-raises.
// Operations continue with an empty result after reporting.
type ZapReporter struct {
	log *zap.Logger
}

// NewZapReporter creates a reporter over the given logger.
func NewZapReporter(log *zap.Logger) *ZapReporter {
	return &ZapReporter{log: log}
}

// Report implements erp.ErrorReporter
func (r *ZapReporter) Report(_ context.Context, backend string, err *erp.Error) {
	fields := []zap.Field{
		zap.String("backend", backend),
		zap.String("code", err.Code),
		zap.Int("status", err.Status),
	}
	if err.VendorMessage != "" && err.VendorMessage != err.Message {
		fields = append(fields, zap.String("vendor_message", err.VendorMessage))
	}
	r.log.Error(err.Message, fields...)
}

var _ erp.ErrorReporter = (*ZapReporter)(nil)
