// Package identityv1 defines the ProfileService gRPC contract. Messages use
// protobuf well-known types so no generated code is required.
package identityv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const ProfileService_GetProfile_FullMethodName = "/huwaari.identity.v1.ProfileService/GetProfile"

// Profile is the typed view of the GetProfile response struct.
type Profile struct {
	ID      string
	Email   string
	Role    string
	ClassID string
}

func ProfileToStruct(profile Profile) (*structpb.Struct, error) {
	var classID interface{}
	if profile.ClassID != "" {
		classID = profile.ClassID
	}
	return structpb.NewStruct(map[string]interface{}{
		"id":       profile.ID,
		"email":    profile.Email,
		"role":     profile.Role,
		"class_id": classID,
	})
}

func ProfileFromStruct(value *structpb.Struct) Profile {
	fields := value.GetFields()
	return Profile{
		ID:      fields["id"].GetStringValue(),
		Email:   fields["email"].GetStringValue(),
		Role:    fields["role"].GetStringValue(),
		ClassID: fields["class_id"].GetStringValue(),
	}
}

type ProfileServiceClient interface {
	GetProfile(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type profileServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewProfileServiceClient(cc grpc.ClientConnInterface) ProfileServiceClient {
	return &profileServiceClient{cc: cc}
}

func (c *profileServiceClient) GetProfile(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ProfileService_GetProfile_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

type ProfileServiceServer interface {
	GetProfile(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error)
}

func RegisterProfileServiceServer(s grpc.ServiceRegistrar, srv ProfileServiceServer) {
	s.RegisterService(&ProfileService_ServiceDesc, srv)
}

func _ProfileService_GetProfile_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ProfileServiceServer).GetProfile(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: ProfileService_GetProfile_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ProfileServiceServer).GetProfile(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

var ProfileService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "huwaari.identity.v1.ProfileService",
	HandlerType: (*ProfileServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetProfile",
			Handler:    _ProfileService_GetProfile_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "identity/v1/profile.proto",
}
