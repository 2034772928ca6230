package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified name of the product gRPC service.
const ServiceName = "catalog.product.v1.ProductService"

const (
	getProductMethod    = "/" + ServiceName + "/GetProduct"
	increaseStockMethod = "/" + ServiceName + "/IncreaseStock"
	decreaseStockMethod = "/" + ServiceName + "/DecreaseStock"
)

// ProductServiceServer is the server API of ServiceName.
// Messages are protobuf well-known types so no generated stubs are needed.
type ProductServiceServer interface {
	GetProduct(ctx context.Context, id *wrapperspb.Int32Value) (*structpb.Struct, error)
	IncreaseStock(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	DecreaseStock(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// ServiceDesc describes ServiceName for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ProductServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetProduct", Handler: getProductHandler},
		{MethodName: "IncreaseStock", Handler: increaseStockHandler},
		{MethodName: "DecreaseStock", Handler: decreaseStockHandler},
	},
	Streams: []grpc.StreamDesc{},
}

// RegisterProductServiceServer registers srv on s.
func RegisterProductServiceServer(s grpc.ServiceRegistrar, srv ProductServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func getProductHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.Int32Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ProductServiceServer).GetProduct(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getProductMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ProductServiceServer).GetProduct(ctx, req.(*wrapperspb.Int32Value))
	}
	return interceptor(ctx, in, info, handler)
}

func increaseStockHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ProductServiceServer).IncreaseStock(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: increaseStockMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ProductServiceServer).IncreaseStock(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func decreaseStockHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ProductServiceServer).DecreaseStock(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: decreaseStockMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ProductServiceServer).DecreaseStock(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}
