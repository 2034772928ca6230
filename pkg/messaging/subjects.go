package messaging

const (
	// ProductsStream is the JetStream stream capturing every product subject.
	ProductsStream = "PRODUCTS"

	ProductsCreatedSubject      = "products.created"
	ProductsUpdatedSubject      = "products.updated"
	ProductsDeletedSubject      = "products.deleted"
	ProductsStockChangedSubject = "products.stock.changed"

	// ProductsWildcardSubject matches all product subjects.
	ProductsWildcardSubject = "products.>"
)
