package grpc

import (
	"context"
	"fmt"

	"github.com/abgdnv/catalog/internal/product/service"
	"github.com/abgdnv/catalog/pkg/client/grpc/interceptors"
	"github.com/abgdnv/catalog/pkg/config"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Client calls ServiceName on a remote product service.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Dial opens a connection to cfg.Addr. Every attempt passes the circuit breaker and gets its own timeout.
func Dial(cfg config.GrpcClientConfig, opts ...grpc.DialOption) (*grpc.ClientConn, error) {
	base := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
		grpc.WithChainUnaryInterceptor(
			interceptors.NewRetryInterceptor(cfg.Resilience.Retry),
			interceptors.NewCircuitBreaker(cfg.Resilience.CircuitBreaker),
			interceptors.NewTimeoutInterceptor(cfg.Timeout),
		),
	}
	conn, err := grpc.NewClient(cfg.Addr, append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create product service client: %w", err)
	}
	return conn, nil
}

// GetProduct fetches a product by id.
func (c *Client) GetProduct(ctx context.Context, id int32, opts ...grpc.CallOption) (*service.ProductDto, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, getProductMethod, wrapperspb.Int32(id), out, opts...); err != nil {
		return nil, err
	}
	return productFromStruct(out)
}

// IncreaseStock adds quantity to the stock of product id and returns the updated product.
func (c *Client) IncreaseStock(ctx context.Context, id, quantity int32, opts ...grpc.CallOption) (*service.ProductDto, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, increaseStockMethod, stockRequest(id, quantity), out, stockWriteOptions(opts)...); err != nil {
		return nil, err
	}
	return productFromStruct(out)
}

// DecreaseStock removes quantity from the stock of product id and returns the updated product.
// Fails with codes.FailedPrecondition when the stock is too small.
func (c *Client) DecreaseStock(ctx context.Context, id, quantity int32, opts ...grpc.CallOption) (*service.ProductDto, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, decreaseStockMethod, stockRequest(id, quantity), out, stockWriteOptions(opts)...); err != nil {
		return nil, err
	}
	return productFromStruct(out)
}

// stockWriteOptions puts RetryOnlyConflicts ahead of the caller's options so callers can still override it.
func stockWriteOptions(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{interceptors.RetryOnlyConflicts()}, opts...)
}
