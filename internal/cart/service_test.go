package cart

import (
	"context"
	"testing"

	"github.com/Ayuoyi/AsiliConnect/pkg/bus"
	pkgerrors "github.com/Ayuoyi/AsiliConnect/pkg/errors"
	"github.com/Ayuoyi/AsiliConnect/pkg/kv"
	"github.com/shopspring/decimal"
)

const testSession = "sess-1"

func newTestService(t *testing.T) (Service, *bus.Bus) {
	t.Helper()
	store, err := kv.NewFileStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	b := bus.New(bus.Options{})
	svc, err := NewService(store, b)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, b
}

func addTomatoes(t *testing.T, svc Service, qty int) []LineItem {
	t.Helper()
	items, err := svc.Add(context.Background(), testSession, AddInput{
		ProductID:   "t1",
		ProductName: "Tomatoes",
		UnitPrice:   decimal.NewFromInt(50),
		Unit:        "kg",
		Quantity:    qty,
	})
	if err != nil {
		t.Fatalf("add to cart: %v", err)
	}
	return items
}

func TestAddAccumulatesQuantityPerProduct(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	addTomatoes(t, svc, 2)
	items := svc.Get(ctx, testSession)
	if len(items) != 1 {
		t.Fatalf("expected 1 line item, got %d", len(items))
	}
	if items[0].ProductID != "t1" || items[0].Quantity != 2 {
		t.Fatalf("unexpected line %+v", items[0])
	}
	if !items[0].UnitPrice.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("unexpected unit price %s", items[0].UnitPrice)
	}

	addTomatoes(t, svc, 3)
	items = svc.Get(ctx, testSession)
	if len(items) != 1 {
		t.Fatalf("add for same product must not create a second line, got %d", len(items))
	}
	if items[0].Quantity != 5 {
		t.Fatalf("expected accumulated quantity 5, got %d", items[0].Quantity)
	}
}

func TestAddRejectsInvalidInput(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tests := []AddInput{
		{ProductID: "", ProductName: "Tomatoes", Quantity: 1},
		{ProductID: "t1", ProductName: "", Quantity: 1},
		{ProductID: "t1", ProductName: "Tomatoes", Quantity: 0},
		{ProductID: "t1", ProductName: "Tomatoes", Quantity: -2},
		{ProductID: "t1", ProductName: "Tomatoes", Quantity: 1, UnitPrice: decimal.NewFromInt(-5)},
	}
	for _, input := range tests {
		if _, err := svc.Add(ctx, testSession, input); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
			t.Fatalf("expected validation error for %+v, got %v", input, err)
		}
	}

	if items := svc.Get(ctx, testSession); len(items) != 0 {
		t.Fatalf("rejected adds must not mutate the cart, got %d items", len(items))
	}
}

func TestUpdateToZeroRemovesLine(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	addTomatoes(t, svc, 5)
	items := svc.Update(ctx, testSession, "t1", 0)
	if len(items) != 0 {
		t.Fatalf("expected empty cart after zero update, got %d items", len(items))
	}
	if persisted := svc.Get(ctx, testSession); len(persisted) != 0 {
		t.Fatalf("zero-quantity line must not be persisted, got %d items", len(persisted))
	}
}

func TestUpdateClampsNegativeToZero(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	addTomatoes(t, svc, 5)
	items := svc.Update(ctx, testSession, "t1", -3)
	if len(items) != 0 {
		t.Fatalf("negative update should clamp to zero and remove the line, got %+v", items)
	}
}

func TestUpdateUnknownProductLeavesCartUntouched(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	addTomatoes(t, svc, 2)
	items := svc.Update(ctx, testSession, "nope", 7)
	if len(items) != 1 || items[0].Quantity != 2 {
		t.Fatalf("unknown product update must be a no-op, got %+v", items)
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	addTomatoes(t, svc, 2)
	first := svc.Remove(ctx, testSession, "t1")
	second := svc.Remove(ctx, testSession, "t1")

	if len(first) != 0 || len(second) != 0 {
		t.Fatalf("expected empty cart after removes, got %d then %d", len(first), len(second))
	}
}

func TestClearPublishesEmptyCart(t *testing.T) {
	svc, b := newTestService(t)
	ctx := context.Background()

	addTomatoes(t, svc, 2)

	var published *Snapshot
	bus.Subscribe(b, TopicUpdated, func(snap Snapshot) { published = &snap })

	svc.Clear(ctx, testSession)

	if published == nil {
		t.Fatal("clear must publish")
	}
	if published.SessionID != testSession || len(published.Items) != 0 {
		t.Fatalf("expected empty snapshot for session, got %+v", published)
	}
	if items := svc.Get(ctx, testSession); len(items) != 0 {
		t.Fatalf("expected empty persisted cart, got %d items", len(items))
	}
}

func TestMutationsPublishFullCart(t *testing.T) {
	svc, b := newTestService(t)
	ctx := context.Background()

	var snapshots []Snapshot
	bus.Subscribe(b, TopicUpdated, func(snap Snapshot) { snapshots = append(snapshots, snap) })

	addTomatoes(t, svc, 2)
	svc.Update(ctx, testSession, "t1", 4)
	svc.Remove(ctx, testSession, "t1")

	if len(snapshots) != 3 {
		t.Fatalf("expected 3 publishes, got %d", len(snapshots))
	}
	if snapshots[0].Items[0].Quantity != 2 {
		t.Fatalf("first publish should carry quantity 2, got %+v", snapshots[0].Items)
	}
	if snapshots[1].Items[0].Quantity != 4 {
		t.Fatalf("second publish should carry quantity 4, got %+v", snapshots[1].Items)
	}
	if len(snapshots[2].Items) != 0 {
		t.Fatalf("third publish should carry the empty cart, got %+v", snapshots[2].Items)
	}
}

func TestSubtotalDerivesFromLines(t *testing.T) {
	items := []LineItem{
		{UnitPrice: decimal.NewFromInt(50), Quantity: 2},
		{UnitPrice: decimal.RequireFromString("12.50"), Quantity: 4},
	}
	if got := Subtotal(items); !got.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("expected subtotal 150, got %s", got)
	}
	if got := Subtotal(nil); !got.Equal(decimal.Zero) {
		t.Fatalf("expected zero subtotal for empty cart, got %s", got)
	}
}

func TestScenarioAddAddUpdateZero(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	addTomatoes(t, svc, 2)
	items := svc.Get(ctx, testSession)
	if len(items) != 1 || items[0].Quantity != 2 || items[0].Unit != "kg" {
		t.Fatalf("unexpected cart after first add: %+v", items)
	}

	addTomatoes(t, svc, 3)
	items = svc.Get(ctx, testSession)
	if items[0].Quantity != 5 {
		t.Fatalf("expected quantity 5 after second add, got %d", items[0].Quantity)
	}

	svc.Update(ctx, testSession, "t1", 0)
	if items = svc.Get(ctx, testSession); len(items) != 0 {
		t.Fatalf("expected empty cart, got %+v", items)
	}
}
