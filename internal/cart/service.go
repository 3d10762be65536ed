package cart

import (
	"context"
	"strings"

	"github.com/Ayuoyi/AsiliConnect/pkg/bus"
	pkgerrors "github.com/Ayuoyi/AsiliConnect/pkg/errors"
	"github.com/Ayuoyi/AsiliConnect/pkg/kv"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItem is one product's aggregated quantity and price within a cart.
// A persisted cart holds at most one line per product and never a line
// with zero quantity.
type LineItem struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Unit        string          `json:"unit"`
	Quantity    int             `json:"quantity"`
}

// Snapshot is the full cart for one session, published on every mutation.
type Snapshot struct {
	SessionID string     `json:"sessionId"`
	Items     []LineItem `json:"items"`
}

// TopicUpdated carries the resulting cart after each mutation.
var TopicUpdated = bus.NewTopic[Snapshot]("cart:updated")

const storeKind = "cart"

// AddInput is the payload for adding a product to the cart.
type AddInput struct {
	ProductID   string
	ProductName string
	UnitPrice   decimal.Decimal
	Unit        string
	Quantity    int
}

// Service is the cart ledger. Mutations persist the resulting cart and
// publish it before returning; reads operate on whatever the store yields.
type Service interface {
	Get(ctx context.Context, sessionID string) []LineItem
	Add(ctx context.Context, sessionID string, input AddInput) ([]LineItem, error)
	Update(ctx context.Context, sessionID, productID string, quantity int) []LineItem
	Remove(ctx context.Context, sessionID, productID string) []LineItem
	Clear(ctx context.Context, sessionID string)
}

type service struct {
	store kv.Store
	bus   *bus.Bus
}

// NewService wires the ledger's dependencies.
func NewService(store kv.Store, b *bus.Bus) (Service, error) {
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "cart store required")
	}
	if b == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "broadcast bus required")
	}
	return &service{store: store, bus: b}, nil
}

func (s *service) Get(ctx context.Context, sessionID string) []LineItem {
	return kv.ReadList[LineItem](ctx, s.store, kv.Key(storeKind, sessionID))
}

// Add accumulates quantity onto an existing line for the product, or
// appends a fresh line. Quantity must be positive; unit price must not be
// negative.
func (s *service) Add(ctx context.Context, sessionID string, input AddInput) ([]LineItem, error) {
	if strings.TrimSpace(input.ProductID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if strings.TrimSpace(input.ProductName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if input.UnitPrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit price cannot be negative")
	}

	items := s.Get(ctx, sessionID)
	found := false
	for i := range items {
		if items[i].ProductID == input.ProductID {
			items[i].Quantity += input.Quantity
			found = true
			break
		}
	}
	if !found {
		items = append(items, LineItem{
			ID:          uuid.NewString(),
			ProductID:   input.ProductID,
			ProductName: input.ProductName,
			UnitPrice:   input.UnitPrice,
			Unit:        input.Unit,
			Quantity:    input.Quantity,
		})
	}

	s.persist(ctx, sessionID, items)
	return items, nil
}

// Update sets the absolute quantity for the product's line. Negative input
// clamps to zero, and a zero quantity removes the line. Unknown products
// leave the cart untouched.
func (s *service) Update(ctx context.Context, sessionID, productID string, quantity int) []LineItem {
	if quantity < 0 {
		quantity = 0
	}

	items := s.Get(ctx, sessionID)
	found := false
	for i := range items {
		if items[i].ProductID == productID {
			items[i].Quantity = quantity
			found = true
			break
		}
	}
	if !found {
		return items
	}

	filtered := items[:0]
	for _, item := range items {
		if item.Quantity > 0 {
			filtered = append(filtered, item)
		}
	}

	s.persist(ctx, sessionID, filtered)
	return filtered
}

// Remove drops the product's line regardless of quantity. Removing an
// absent product persists and publishes the unchanged cart.
func (s *service) Remove(ctx context.Context, sessionID, productID string) []LineItem {
	items := s.Get(ctx, sessionID)
	filtered := items[:0]
	for _, item := range items {
		if item.ProductID != productID {
			filtered = append(filtered, item)
		}
	}

	s.persist(ctx, sessionID, filtered)
	return filtered
}

// Clear destroys the session's cart.
func (s *service) Clear(ctx context.Context, sessionID string) {
	s.store.Remove(ctx, kv.Key(storeKind, sessionID))
	bus.Publish(s.bus, TopicUpdated, Snapshot{SessionID: sessionID, Items: []LineItem{}})
}

func (s *service) persist(ctx context.Context, sessionID string, items []LineItem) {
	if items == nil {
		items = []LineItem{}
	}
	kv.WriteList(ctx, s.store, kv.Key(storeKind, sessionID), items)
	bus.Publish(s.bus, TopicUpdated, Snapshot{SessionID: sessionID, Items: items})
}

// Subtotal derives the display total as the sum of unit price times
// quantity. It is never stored.
func Subtotal(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}
