// Package v1 holds the gRPC service definition for grade statistics.
// Messages are google.protobuf.Struct values; see grade_stats.proto.
package v1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const GradeStats_ServiceName = "gradebook.v1.GradeStats"

const (
	GradeStats_GetClassAverages_FullMethodName     = "/gradebook.v1.GradeStats/GetClassAverages"
	GradeStats_GetOverallAverage_FullMethodName    = "/gradebook.v1.GradeStats/GetOverallAverage"
	GradeStats_GetWeightedComposite_FullMethodName = "/gradebook.v1.GradeStats/GetWeightedComposite"
	GradeStats_GetCohortStats_FullMethodName       = "/gradebook.v1.GradeStats/GetCohortStats"
)

// GradeStatsClient is the client API for the GradeStats service.
type GradeStatsClient interface {
	GetClassAverages(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetOverallAverage(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetWeightedComposite(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetCohortStats(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type gradeStatsClient struct {
	cc grpc.ClientConnInterface
}

func NewGradeStatsClient(cc grpc.ClientConnInterface) GradeStatsClient {
	return &gradeStatsClient{cc}
}

func (c *gradeStatsClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *gradeStatsClient) GetClassAverages(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, GradeStats_GetClassAverages_FullMethodName, in, opts...)
}

func (c *gradeStatsClient) GetOverallAverage(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, GradeStats_GetOverallAverage_FullMethodName, in, opts...)
}

func (c *gradeStatsClient) GetWeightedComposite(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, GradeStats_GetWeightedComposite_FullMethodName, in, opts...)
}

func (c *gradeStatsClient) GetCohortStats(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, GradeStats_GetCohortStats_FullMethodName, in, opts...)
}

// GradeStatsServer is the server API for the GradeStats service. All
// implementations must embed UnimplementedGradeStatsServer.
type GradeStatsServer interface {
	GetClassAverages(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetOverallAverage(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetWeightedComposite(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetCohortStats(context.Context, *structpb.Struct) (*structpb.Struct, error)
	mustEmbedUnimplementedGradeStatsServer()
}

type UnimplementedGradeStatsServer struct{}

func (UnimplementedGradeStatsServer) GetClassAverages(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method GetClassAverages not implemented")
}

func (UnimplementedGradeStatsServer) GetOverallAverage(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method GetOverallAverage not implemented")
}

func (UnimplementedGradeStatsServer) GetWeightedComposite(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method GetWeightedComposite not implemented")
}

func (UnimplementedGradeStatsServer) GetCohortStats(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method GetCohortStats not implemented")
}

func (UnimplementedGradeStatsServer) mustEmbedUnimplementedGradeStatsServer() {}

func RegisterGradeStatsServer(s grpc.ServiceRegistrar, srv GradeStatsServer) {
	s.RegisterService(&GradeStats_ServiceDesc, srv)
}

type structMethod func(GradeStatsServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// unaryHandler adapts one server method to the grpc.MethodDesc handler shape.
func unaryHandler(fullMethod string, call structMethod) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(GradeStatsServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(GradeStatsServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var GradeStats_ServiceDesc = grpc.ServiceDesc{
	ServiceName: GradeStats_ServiceName,
	HandlerType: (*GradeStatsServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetClassAverages",
			Handler:    unaryHandler(GradeStats_GetClassAverages_FullMethodName, GradeStatsServer.GetClassAverages),
		},
		{
			MethodName: "GetOverallAverage",
			Handler:    unaryHandler(GradeStats_GetOverallAverage_FullMethodName, GradeStatsServer.GetOverallAverage),
		},
		{
			MethodName: "GetWeightedComposite",
			Handler:    unaryHandler(GradeStats_GetWeightedComposite_FullMethodName, GradeStatsServer.GetWeightedComposite),
		},
		{
			MethodName: "GetCohortStats",
			Handler:    unaryHandler(GradeStats_GetCohortStats_FullMethodName, GradeStatsServer.GetCohortStats),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "api/v1/grade_stats.proto",
}
