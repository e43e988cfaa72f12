package clients

import (
	"context"
	"errors"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	identityv1 "github.com/Ariuko0507/huwaari/services/identity/identity/v1"
)

// ErrProfileNotFound is returned when identity has no profile for a user.
var ErrProfileNotFound = errors.New("profile not found")

type Clients struct {
	IdentityConn *grpc.ClientConn
	Profiles     identityv1.ProfileServiceClient
}

const serviceTokenHeader = "x-service-token"

func New(ctx context.Context, identityAddr, serviceToken string, timeout time.Duration) (*Clients, error) {
	if serviceToken == "" {
		return nil, errors.New("service auth token required")
	}
	conn, err := dial(ctx, identityAddr, serviceToken, timeout)
	if err != nil {
		return nil, err
	}
	return &Clients{
		IdentityConn: conn,
		Profiles:     identityv1.NewProfileServiceClient(conn),
	}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.IdentityConn != nil {
		_ = c.IdentityConn.Close()
	}
}

// ProfileLookup resolves a user id to the stored profile.
type ProfileLookup struct {
	client identityv1.ProfileServiceClient
}

func NewProfileLookup(client identityv1.ProfileServiceClient) *ProfileLookup {
	return &ProfileLookup{client: client}
}

func (l *ProfileLookup) GetProfile(ctx context.Context, userID string) (identityv1.Profile, error) {
	resp, err := l.client.GetProfile(ctx, wrapperspb.String(userID))
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return identityv1.Profile{}, ErrProfileNotFound
		}
		return identityv1.Profile{}, err
	}
	return identityv1.ProfileFromStruct(resp), nil
}

func dial(ctx context.Context, addr, serviceToken string, timeout time.Duration, extra ...grpc.DialOption) (*grpc.ClientConn, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	opts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(serviceAuthUnaryClientInterceptor(serviceToken)),
	}, extra...)
	return grpc.DialContext(ctx, addr, opts...)
}

func serviceAuthUnaryClientInterceptor(serviceToken string) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		ctx = metadata.AppendToOutgoingContext(ctx, serviceTokenHeader, serviceToken)
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}
