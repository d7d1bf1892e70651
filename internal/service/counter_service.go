package service

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/ergo/ergo/api/internal/codec"
	"github.com/ergo/ergo/api/internal/domain"
	apperrors "github.com/ergo/ergo/api/internal/pkg/errors"
	"github.com/ergo/ergo/api/internal/pkg/metrics"
)

// CounterService runs one counter operation: decode, check, decrement,
// evaluate. It holds no per-request state.
type CounterService struct {
	decoder codec.Decoder
	encoder codec.Encoder
	logger  *zap.Logger
}

// NewCounterService creates a new counter service
func NewCounterService(decoder codec.Decoder, encoder codec.Encoder, logger *zap.Logger) *CounterService {
	return &CounterService{
		decoder: decoder,
		encoder: encoder,
		logger:  logger,
	}
}

// Encoder returns the encoder used for success bodies
func (s *CounterService) Encoder() codec.Encoder {
	return s.encoder
}

// Handle decodes raw, evaluates op on the decremented count and returns the
// resulting counter. Every returned error is an *apperrors.AppError.
func (s *CounterService) Handle(ctx context.Context, op domain.Operation, raw []byte) (*domain.Counter, error) {
	counter, err := s.decoder.Decode(raw)
	if err != nil {
		return nil, s.fail(op, apperrors.Decode(s.decoder.Name(), err))
	}

	s.logger.Info("counter received",
		zap.String("operation", op.String()),
		zap.Uint64("count", counter.Count),
	)
	metrics.RecordCount(op.String(), counter.Count)

	// The count is decremented before evaluation; zero has no predecessor
	if counter.Count == 0 {
		return nil, s.fail(op, apperrors.DivisionByZero())
	}
	counter.Count--

	result, err := domain.Evaluate(op, counter.Count)
	if err != nil {
		return nil, s.fail(op, apperrors.FromDomain(err))
	}
	counter.Count = result

	metrics.RecordEvaluation(op.String(), metrics.OutcomeOK)
	return counter, nil
}

// Respond runs Handle and encodes the outcome without a transport: a
// success body with status 200, or the translated failure.
func (s *CounterService) Respond(ctx context.Context, op domain.Operation, raw []byte) apperrors.WireResponse {
	counter, err := s.Handle(ctx, op, raw)
	if err != nil {
		return apperrors.Translate(err)
	}
	return apperrors.WireResponse{
		Status: http.StatusOK,
		Body:   string(s.encoder.Encode(counter)),
	}
}

func (s *CounterService) fail(op domain.Operation, err *apperrors.AppError) error {
	metrics.RecordEvaluation(op.String(), err.Code)
	s.logger.Debug("counter operation failed",
		zap.String("operation", op.String()),
		zap.String("kind", err.Code),
		zap.Error(err),
	)
	return err
}
