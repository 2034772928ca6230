package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/abgdnv/catalog/pkg/messaging"
)

// ProductChangedEvent carries the state of a product after a successful write.
type ProductChangedEvent struct {
	ProductID  int32     `json:"product_id"`
	Version    int32     `json:"version"`
	Stock      int32     `json:"stock"`
	OccurredAt time.Time `json:"occurred_at"`

	subject string
}

func ProductCreated(id, version, stock int32) ProductChangedEvent {
	return newProductEvent(messaging.ProductsCreatedSubject, id, version, stock)
}

func ProductUpdated(id, version, stock int32) ProductChangedEvent {
	return newProductEvent(messaging.ProductsUpdatedSubject, id, version, stock)
}

func ProductDeleted(id, version int32) ProductChangedEvent {
	return newProductEvent(messaging.ProductsDeletedSubject, id, version, 0)
}

func StockChanged(id, version, stock int32) ProductChangedEvent {
	return newProductEvent(messaging.ProductsStockChangedSubject, id, version, stock)
}

func newProductEvent(subject string, id, version, stock int32) ProductChangedEvent {
	return ProductChangedEvent{
		ProductID:  id,
		Version:    version,
		Stock:      stock,
		OccurredAt: time.Now().UTC(),
		subject:    subject,
	}
}

func (e ProductChangedEvent) Subject() string {
	return e.subject
}

// ID is unique per product write as long as product IDs are never reused: a version is produced once
// and each subject marks a different kind of write. Stores that restart their identities need a ScopedPublisher.
func (e ProductChangedEvent) ID() string {
	return fmt.Sprintf("%s:%d:%d", e.subject, e.ProductID, e.Version)
}

func (e ProductChangedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}
