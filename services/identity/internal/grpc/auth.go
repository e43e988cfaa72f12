package grpc

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	identityv1 "github.com/Ariuko0507/huwaari/services/identity/identity/v1"
)

// serviceTokenHeader carries the shared secret the timetable service sends
// with every profile lookup.
const serviceTokenHeader = "x-service-token"

var profileMethodPrefix = "/" + identityv1.ProfileService_ServiceDesc.ServiceName + "/"

// NewProfileAuthInterceptor guards ProfileService calls with the shared
// service token. tokens may hold several comma-separated values so a new
// token can be rolled out before the old one is retired. Calls to other
// services pass through.
func NewProfileAuthInterceptor(tokens string, logger *zap.Logger) (grpc.UnaryServerInterceptor, error) {
	accepted := splitTokens(tokens)
	if len(accepted) == 0 {
		return nil, errors.New("profile service requires SERVICE_AUTH_TOKEN")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if !strings.HasPrefix(info.FullMethod, profileMethodPrefix) {
			return handler(ctx, req)
		}
		presented := presentedToken(ctx)
		if presented == "" {
			logger.Debug("profile call without service token", zap.String("method", info.FullMethod))
			return nil, status.Error(codes.Unauthenticated, "service token required")
		}
		if !tokenAccepted(accepted, presented) {
			logger.Warn("profile call with unknown service token", zap.String("method", info.FullMethod))
			return nil, status.Error(codes.PermissionDenied, "service token rejected")
		}
		return handler(ctx, req)
	}, nil
}

func splitTokens(raw string) [][]byte {
	var tokens [][]byte
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			tokens = append(tokens, []byte(part))
		}
	}
	return tokens
}

// tokenAccepted compares against every configured token.
func tokenAccepted(accepted [][]byte, presented string) bool {
	match := 0
	for _, token := range accepted {
		match |= subtle.ConstantTimeCompare(token, []byte(presented))
	}
	return match == 1
}

func presentedToken(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get(serviceTokenHeader)
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}
