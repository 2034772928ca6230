// Package grpc exposes product lookups and stock changes to other services over gRPC.
package grpc

import (
	"context"
	"errors"
	"log/slog"

	perrors "github.com/abgdnv/catalog/internal/product/errors"
	"github.com/abgdnv/catalog/internal/product/service"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ProductService defines the subset of the product service used over gRPC.
type ProductService interface {
	FindByID(ctx context.Context, id int32) (*service.ProductDto, error)
	IncreaseStock(ctx context.Context, id int32, quantity int32) (*service.ProductDto, error)
	DecreaseStock(ctx context.Context, id int32, quantity int32) (*service.ProductDto, error)
}

type Server struct {
	service ProductService
	logger  *slog.Logger
}

var _ ProductServiceServer = (*Server)(nil)

func NewServer(service ProductService, logger *slog.Logger) *Server {
	return &Server{service: service, logger: logger.With("component", "grpc")}
}

func (s *Server) GetProduct(ctx context.Context, req *wrapperspb.Int32Value) (*structpb.Struct, error) {
	id := req.GetValue()
	found, err := s.service.FindByID(ctx, id)
	if err != nil {
		return nil, s.toStatus(ctx, "FindByID", id, err)
	}
	return productToStruct(found), nil
}

func (s *Server) IncreaseStock(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, quantity, err := parseStockRequest(req)
	if err != nil {
		return nil, err
	}
	updated, err := s.service.IncreaseStock(ctx, id, quantity)
	if err != nil {
		return nil, s.toStatus(ctx, "IncreaseStock", id, err)
	}
	return productToStruct(updated), nil
}

func (s *Server) DecreaseStock(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, quantity, err := parseStockRequest(req)
	if err != nil {
		return nil, err
	}
	updated, err := s.service.DecreaseStock(ctx, id, quantity)
	if err != nil {
		return nil, s.toStatus(ctx, "DecreaseStock", id, err)
	}
	return productToStruct(updated), nil
}

func parseStockRequest(req *structpb.Struct) (id, quantity int32, err error) {
	if id, err = int32Field(req, fieldID); err != nil {
		return 0, 0, status.Error(codes.InvalidArgument, err.Error())
	}
	if quantity, err = int32Field(req, fieldQuantity); err != nil {
		return 0, 0, status.Error(codes.InvalidArgument, err.Error())
	}
	return id, quantity, nil
}

// toStatus maps service errors to gRPC codes. Not-found and insufficient stock stay distinct.
func (s *Server) toStatus(ctx context.Context, op string, id int32, err error) error {
	switch {
	case errors.Is(err, perrors.ErrProductNotFound):
		return status.Errorf(codes.NotFound, "product %d not found", id)
	case errors.Is(err, perrors.ErrInsufficientStock):
		return status.Errorf(codes.FailedPrecondition, "insufficient stock for product %d", id)
	case errors.Is(err, perrors.ErrConcurrencyConflict):
		return status.Errorf(codes.Aborted, "product %d was modified concurrently", id)
	case errors.Is(err, perrors.ErrInvalidQuantity), errors.Is(err, perrors.ErrNegativeStock), errors.Is(err, perrors.ErrInvalidPrice):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		s.logger.ErrorContext(ctx, "service call failed", "op", op, "id", id, "error", err)
		return status.Error(codes.Internal, "internal server error")
	}
}
