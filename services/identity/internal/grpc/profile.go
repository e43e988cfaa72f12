package grpc

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	identityv1 "github.com/Ariuko0507/huwaari/services/identity/identity/v1"
	"github.com/Ariuko0507/huwaari/services/identity/internal/model"
)

type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (model.Profile, error)
}

type ProfileServer struct {
	store  ProfileStore
	logger *zap.Logger
}

func NewProfileServer(store ProfileStore, logger *zap.Logger) *ProfileServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileServer{store: store, logger: logger}
}

func (s *ProfileServer) GetProfile(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	userID := req.GetValue()
	if _, err := uuid.Parse(userID); err != nil {
		return nil, status.Error(codes.InvalidArgument, "invalid user_id")
	}
	profile, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, status.Error(codes.NotFound, "profile not found")
		}
		s.logger.Error("profile lookup failed", zap.String("user_id", userID), zap.Error(err))
		return nil, status.Error(codes.Internal, "lookup failed")
	}

	out := identityv1.Profile{ID: profile.ID, Email: profile.Email, Role: profile.Role}
	if profile.ClassID != nil {
		out.ClassID = *profile.ClassID
	}
	resp, err := identityv1.ProfileToStruct(out)
	if err != nil {
		return nil, status.Error(codes.Internal, "encode failed")
	}
	return resp, nil
}
