package products

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/Ayuoyi/AsiliConnect/internal/notifications"
	"github.com/Ayuoyi/AsiliConnect/pkg/ai"
	"github.com/Ayuoyi/AsiliConnect/pkg/bus"
	"github.com/Ayuoyi/AsiliConnect/pkg/kv"
	"github.com/Ayuoyi/AsiliConnect/pkg/logger"
)

const testSession = "sess-1"

type fakeDescriber struct {
	result *ai.Description
	err    error
	calls  int
}

func (f *fakeDescriber) Describe(ctx context.Context, req ai.DescribeRequest) (*ai.Description, error) {
	f.calls++
	return f.result, f.err
}

func newTestService(t *testing.T, describer Describer) (Service, notifications.Service, *bus.Bus) {
	t.Helper()
	store, err := kv.NewFileStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	b := bus.New(bus.Options{})
	feed, err := notifications.NewService(store, b, 0)
	if err != nil {
		t.Fatalf("new notifications service: %v", err)
	}
	svc, err := NewService(store, b, describer, feed, logger.New(logger.Options{Output: io.Discard}))
	if err != nil {
		t.Fatalf("new products service: %v", err)
	}
	return svc, feed, b
}

func TestPublishGeneratesCopyAndFansOut(t *testing.T) {
	describer := &fakeDescriber{result: &ai.Description{
		Description: "Sweet vine-ripened tomatoes.",
		Tags:        []string{"fresh", "organic"},
	}}
	svc, feed, b := newTestService(t, describer)
	ctx := context.Background()

	var announced []Product
	bus.Subscribe(b, TopicAdded, func(p Product) {
		announced = append(announced, p)
	})

	product, err := svc.Publish(ctx, testSession, PublishInput{
		Name:     "Tomatoes",
		Farmer:   "Wanjiku Farm",
		Location: "Nakuru",
		Price:    "120",
		Unit:     "kg",
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if product.ID == "" {
		t.Fatal("expected a generated product id")
	}
	if product.Description != "Sweet vine-ripened tomatoes." {
		t.Fatalf("unexpected description %q", product.Description)
	}
	if len(product.Tags) != 2 {
		t.Fatalf("unexpected tags %v", product.Tags)
	}

	if len(announced) != 1 || announced[0].ID != product.ID {
		t.Fatalf("expected one bus announcement for %s, got %+v", product.ID, announced)
	}

	records := feed.List(ctx, testSession)
	if len(records) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(records))
	}
	if records[0].ProductID != product.ID || records[0].Name != "Tomatoes" {
		t.Fatalf("unexpected record %+v", records[0])
	}

	catalog := svc.List(ctx, testSession)
	if len(catalog) != 1 || catalog[0].ID != product.ID {
		t.Fatalf("unexpected catalog %+v", catalog)
	}
}

func TestPublishProceedsWhenDescriptionFails(t *testing.T) {
	describer := &fakeDescriber{err: errors.New("model down")}
	svc, feed, _ := newTestService(t, describer)
	ctx := context.Background()

	product, err := svc.Publish(ctx, testSession, PublishInput{Name: "Kale"})
	if err != nil {
		t.Fatalf("publish must survive a describe failure: %v", err)
	}
	if product.Description != "" || len(product.Tags) != 0 {
		t.Fatalf("expected no generated copy, got %+v", product)
	}
	if describer.calls != 1 {
		t.Fatalf("expected one describe attempt, got %d", describer.calls)
	}
	if len(feed.List(ctx, testSession)) != 1 {
		t.Fatal("notification fan-out must still run")
	}
}

func TestPublishWithoutDescriber(t *testing.T) {
	svc, _, _ := newTestService(t, nil)

	product, err := svc.Publish(context.Background(), testSession, PublishInput{Name: "Millet"})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if product.Description != "" {
		t.Fatalf("unexpected description %q", product.Description)
	}
}

func TestPublishValidation(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	ctx := context.Background()

	if _, err := svc.Publish(ctx, testSession, PublishInput{Name: "   "}); err == nil {
		t.Fatal("expected error for blank name")
	}
	if _, err := svc.Publish(ctx, testSession, PublishInput{Name: "Beans", Price: "not-a-price"}); err == nil {
		t.Fatal("expected error for unparseable price")
	}
	if _, err := svc.Publish(ctx, testSession, PublishInput{Name: "Beans", Price: "-5"}); err == nil {
		t.Fatal("expected error for negative price")
	}
	if got := svc.List(ctx, testSession); len(got) != 0 {
		t.Fatalf("rejected publishes must not persist, got %+v", got)
	}
}

func TestListMostRecentFirst(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	ctx := context.Background()

	for _, name := range []string{"Maize", "Beans", "Kale"} {
		if _, err := svc.Publish(ctx, testSession, PublishInput{Name: name}); err != nil {
			t.Fatalf("publish %s: %v", name, err)
		}
	}

	catalog := svc.List(ctx, testSession)
	if len(catalog) != 3 {
		t.Fatalf("expected 3 products, got %d", len(catalog))
	}
	if catalog[0].Name != "Kale" || catalog[2].Name != "Maize" {
		t.Fatalf("expected most recent first, got %+v", catalog)
	}
}
