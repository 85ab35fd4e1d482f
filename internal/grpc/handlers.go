package grpc

import (
	"context"
	"errors"
	"time"

	pb "github.com/godilite/gradebook/api/v1"
	"github.com/godilite/gradebook/internal/service"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const defaultGRPCTimeout = 10 * time.Second

type GRPCHandlers struct {
	pb.UnimplementedGradeStatsServer
	stats   StatsService
	logger  *zap.Logger
	timeout time.Duration
}

// NewGRPCHandlers initializes the gRPC handlers.
func NewGRPCHandlers(stats StatsService, logger *zap.Logger, timeout time.Duration) *GRPCHandlers {
	if stats == nil {
		panic("nil StatsService provided to NewGRPCHandlers")
	}
	if timeout <= 0 {
		timeout = defaultGRPCTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GRPCHandlers{
		stats:   stats,
		logger:  logger.Named("grpc-handler"),
		timeout: timeout,
	}
}

func (s *GRPCHandlers) handleError(ctx context.Context, op string, err error) error {
	switch ctx.Err() {
	case context.Canceled:
		s.logger.Warn("request canceled", zap.String("op", op))
		return status.Error(codes.Canceled, "request canceled")
	case context.DeadlineExceeded:
		s.logger.Warn("request timeout", zap.String("op", op))
		return status.Error(codes.DeadlineExceeded, "request timed out")
	}

	switch {
	case errors.Is(err, service.ErrNotFound):
		s.logger.Info("no grade records found", zap.String("op", op))
		return status.Error(codes.NotFound, "no grade records found")
	case errors.Is(err, context.DeadlineExceeded):
		s.logger.Warn("storage timeout", zap.String("op", op), zap.Error(err))
		return status.Error(codes.DeadlineExceeded, "storage timed out")
	case errors.Is(err, service.ErrStorageFailure):
		s.logger.Error("storage failure", zap.String("op", op), zap.Error(err))
		return status.Error(codes.Internal, "database error")
	default:
		s.logger.Error("unexpected error", zap.String("op", op), zap.Error(err))
		return status.Errorf(codes.Internal, "%s failed: %v", op, err)
	}
}

func (s *GRPCHandlers) GetClassAverages(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	learnerID, _, err := parseLearnerRequest(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	averages, err := s.stats.GetClassAverages(ctx, learnerID)
	if err != nil {
		return nil, s.handleError(ctx, "GetClassAverages", err)
	}

	return classAveragesMessage(learnerID, averages)
}

func (s *GRPCHandlers) GetOverallAverage(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	learnerID, _, err := parseLearnerRequest(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	avg, err := s.stats.GetOverallAverage(ctx, learnerID)
	if err != nil {
		return nil, s.handleError(ctx, "GetOverallAverage", err)
	}

	return overallAverageMessage(avg)
}

func (s *GRPCHandlers) GetWeightedComposite(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	learnerID, classID, err := parseLearnerRequest(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	score, err := s.stats.GetWeightedComposite(ctx, learnerID, classID)
	if err != nil {
		return nil, s.handleError(ctx, "GetWeightedComposite", err)
	}

	return weightedScoreMessage(score)
}

func (s *GRPCHandlers) GetCohortStats(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	classID, err := optionalClass(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cohort, err := s.stats.GetCohortStats(ctx, classID)
	if err != nil {
		return nil, s.handleError(ctx, "GetCohortStats", err)
	}

	return cohortMessage(cohort)
}
