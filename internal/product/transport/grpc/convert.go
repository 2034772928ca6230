package grpc

import (
	"fmt"
	"math"

	"github.com/abgdnv/catalog/internal/product/service"
	"github.com/shopspring/decimal"
	"google.golang.org/protobuf/types/known/structpb"
)

// Struct field names shared by server and client.
const (
	fieldID          = "id"
	fieldName        = "name"
	fieldDescription = "description"
	fieldCategory    = "category"
	fieldPrice       = "price"
	fieldStock       = "stock"
	fieldVersion     = "version"
	fieldQuantity    = "quantity"
)

// productToStruct encodes a product. Price travels as a decimal string to keep its scale.
func productToStruct(p *service.ProductDto) *structpb.Struct {
	fields := map[string]*structpb.Value{
		fieldID:          structpb.NewNumberValue(float64(p.ID)),
		fieldName:        optionalString(p.Name),
		fieldDescription: optionalString(p.Description),
		fieldCategory:    optionalString(p.Category),
		fieldPrice:       structpb.NewNullValue(),
		fieldStock:       structpb.NewNumberValue(float64(p.Stock)),
		fieldVersion:     structpb.NewNumberValue(float64(p.Version)),
	}
	if p.Price != nil {
		fields[fieldPrice] = structpb.NewStringValue(p.Price.String())
	}
	return &structpb.Struct{Fields: fields}
}

func productFromStruct(s *structpb.Struct) (*service.ProductDto, error) {
	id, err := int32Field(s, fieldID)
	if err != nil {
		return nil, err
	}
	stock, err := int32Field(s, fieldStock)
	if err != nil {
		return nil, err
	}
	version, err := int32Field(s, fieldVersion)
	if err != nil {
		return nil, err
	}
	p := &service.ProductDto{
		ID:          id,
		Name:        stringField(s, fieldName),
		Description: stringField(s, fieldDescription),
		Category:    stringField(s, fieldCategory),
		Stock:       stock,
		Version:     version,
	}
	if raw := stringField(s, fieldPrice); raw != nil {
		price, err := decimal.NewFromString(*raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", fieldPrice, err)
		}
		p.Price = &price
	}
	return p, nil
}

func stockRequest(id, quantity int32) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldID:       structpb.NewNumberValue(float64(id)),
		fieldQuantity: structpb.NewNumberValue(float64(quantity)),
	}}
}

func optionalString(s *string) *structpb.Value {
	if s == nil {
		return structpb.NewNullValue()
	}
	return structpb.NewStringValue(*s)
}

func stringField(s *structpb.Struct, key string) *string {
	v, ok := s.GetFields()[key].GetKind().(*structpb.Value_StringValue)
	if !ok {
		return nil
	}
	str := v.StringValue
	return &str
}

// int32Field reads a required integral number field.
func int32Field(s *structpb.Struct, key string) (int32, error) {
	v, ok := s.GetFields()[key]
	if !ok {
		return 0, fmt.Errorf("missing field %q", key)
	}
	num, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("field %q must be a number", key)
	}
	f := num.NumberValue
	if f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
		return 0, fmt.Errorf("field %q must be a 32-bit integer, got %v", key, f)
	}
	return int32(f), nil
}
