package products

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Ayuoyi/AsiliConnect/internal/notifications"
	"github.com/Ayuoyi/AsiliConnect/pkg/ai"
	"github.com/Ayuoyi/AsiliConnect/pkg/bus"
	pkgerrors "github.com/Ayuoyi/AsiliConnect/pkg/errors"
	"github.com/Ayuoyi/AsiliConnect/pkg/kv"
	"github.com/Ayuoyi/AsiliConnect/pkg/logger"
)

// Product is one published listing.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Farmer      string          `json:"farmer,omitempty"`
	Location    string          `json:"location,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Unit        string          `json:"unit,omitempty"`
	Image       string          `json:"image,omitempty"`
	Description string          `json:"description,omitempty"`
	Tags        []string        `json:"tags,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// TopicAdded fires once per published product, after persistence.
var TopicAdded = bus.NewTopic[Product]("product:added")

const storeKind = "products"

// PublishInput is the farmer-entered listing form.
type PublishInput struct {
	Name     string `json:"name" validate:"required"`
	Farmer   string `json:"farmer"`
	Location string `json:"location"`
	Price    string `json:"price"`
	Unit     string `json:"unit"`
	Image    string `json:"image"`
}

// Describer generates listing copy for a product.
type Describer interface {
	Describe(ctx context.Context, req ai.DescribeRequest) (*ai.Description, error)
}

// Service owns the published catalog. Publishing a product enriches it
// with generated copy when the describer cooperates, announces it on the
// bus, and drops a record into the notification feed.
type Service interface {
	List(ctx context.Context, sessionID string) []Product
	Publish(ctx context.Context, sessionID string, input PublishInput) (*Product, error)
}

type service struct {
	store     kv.Store
	bus       *bus.Bus
	describer Describer
	notifier  notifications.Service
	logg      *logger.Logger
	now       func() time.Time
}

// NewService wires the catalog. The describer may be nil; publishing then
// skips description generation entirely.
func NewService(store kv.Store, b *bus.Bus, describer Describer, notifier notifications.Service, logg *logger.Logger) (Service, error) {
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "products store required")
	}
	if b == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "broadcast bus required")
	}
	if notifier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notification feed required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{
		store:     store,
		bus:       b,
		describer: describer,
		notifier:  notifier,
		logg:      logg,
		now:       time.Now,
	}, nil
}

// List returns the session's catalog, most recent first.
func (s *service) List(ctx context.Context, sessionID string) []Product {
	return kv.ReadList[Product](ctx, s.store, kv.Key(storeKind, sessionID))
}

func (s *service) Publish(ctx context.Context, sessionID string, input PublishInput) (*Product, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}

	price := decimal.Zero
	if raw := strings.TrimSpace(input.Price); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "price must be a number")
		}
		if parsed.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
		}
		price = parsed
	}

	product := Product{
		ID:        uuid.NewString(),
		Name:      name,
		Farmer:    strings.TrimSpace(input.Farmer),
		Location:  strings.TrimSpace(input.Location),
		Price:     price,
		Unit:      strings.TrimSpace(input.Unit),
		Image:     strings.TrimSpace(input.Image),
		CreatedAt: s.now().UTC(),
	}

	// Listing copy is a nicety. A dead or grumpy model must never block
	// the publish itself.
	if s.describer != nil {
		generated, err := s.describer.Describe(ctx, ai.DescribeRequest{
			Name:     product.Name,
			Farmer:   product.Farmer,
			Location: product.Location,
			Price:    product.Price.String(),
			Unit:     product.Unit,
			Image:    product.Image,
		})
		if err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "product_id", product.ID), "description generation failed; publishing without copy")
		} else {
			product.Description = generated.Description
			product.Tags = generated.Tags
		}
	}

	key := kv.Key(storeKind, sessionID)
	catalog := append([]Product{product}, kv.ReadList[Product](ctx, s.store, key)...)
	kv.WriteList(ctx, s.store, key, catalog)
	bus.Publish(s.bus, TopicAdded, product)

	if _, err := s.notifier.Add(ctx, sessionID, notifications.AddInput{
		ProductID: product.ID,
		Name:      product.Name,
		Farmer:    product.Farmer,
	}); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "product_id", product.ID), "notification fan-out failed")
	}

	return &product, nil
}
