package notifications

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Ayuoyi/AsiliConnect/pkg/bus"
	pkgerrors "github.com/Ayuoyi/AsiliConnect/pkg/errors"
	"github.com/Ayuoyi/AsiliConnect/pkg/kv"
)

// Record is one new-product announcement in a session's feed.
type Record struct {
	ID        string    `json:"id"`
	ProductID string    `json:"productId"`
	Name      string    `json:"name"`
	Farmer    string    `json:"farmer,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	Read      bool      `json:"read"`
}

// Snapshot is the full feed for one session, most recent first.
type Snapshot struct {
	SessionID string   `json:"sessionId"`
	Records   []Record `json:"records"`
}

// TopicUpdated carries the resulting feed after each mutation.
var TopicUpdated = bus.NewTopic[Snapshot]("notifications:updated")

const storeKind = "notifications"

// AddInput describes the product a notification announces.
type AddInput struct {
	ProductID string
	Name      string
	Farmer    string
}

// Service is the notification feed. New records are prepended; the stored
// feed is trimmed to the configured retention, oldest first.
type Service interface {
	List(ctx context.Context, sessionID string) []Record
	Add(ctx context.Context, sessionID string, input AddInput) (*Record, error)
	MarkRead(ctx context.Context, sessionID, id string) []Record
	MarkAllRead(ctx context.Context, sessionID string) []Record
	Clear(ctx context.Context, sessionID string)
}

type service struct {
	store     kv.Store
	bus       *bus.Bus
	retention int
	now       func() time.Time
}

// NewService wires the feed. Retention of 0 disables the cap.
func NewService(store kv.Store, b *bus.Bus, retention int) (Service, error) {
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications store required")
	}
	if b == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "broadcast bus required")
	}
	if retention < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "retention cannot be negative")
	}
	return &service{
		store:     store,
		bus:       b,
		retention: retention,
		now:       time.Now,
	}, nil
}

func (s *service) List(ctx context.Context, sessionID string) []Record {
	return kv.ReadList[Record](ctx, s.store, kv.Key(storeKind, sessionID))
}

// Add prepends an unread record with an id derived from the product
// identity and the current timestamp.
func (s *service) Add(ctx context.Context, sessionID string, input AddInput) (*Record, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}

	now := s.now().UTC()
	productID := input.ProductID
	if strings.TrimSpace(productID) == "" {
		productID = Slugify(input.Name)
	}

	record := Record{
		ID:        fmt.Sprintf("%s-%d", productID, now.UnixMilli()),
		ProductID: productID,
		Name:      input.Name,
		Farmer:    input.Farmer,
		CreatedAt: now,
		Read:      false,
	}

	records := append([]Record{record}, s.List(ctx, sessionID)...)
	if s.retention > 0 && len(records) > s.retention {
		records = records[:s.retention]
	}

	s.persist(ctx, sessionID, records)
	return &record, nil
}

// MarkRead flips the matching record only. An unknown id persists and
// publishes the unchanged feed.
func (s *service) MarkRead(ctx context.Context, sessionID, id string) []Record {
	records := s.List(ctx, sessionID)
	for i := range records {
		if records[i].ID == id {
			records[i].Read = true
			break
		}
	}
	s.persist(ctx, sessionID, records)
	return records
}

// MarkAllRead flips every record, preserving count and order.
func (s *service) MarkAllRead(ctx context.Context, sessionID string) []Record {
	records := s.List(ctx, sessionID)
	for i := range records {
		records[i].Read = true
	}
	s.persist(ctx, sessionID, records)
	return records
}

// Clear destroys the session's feed.
func (s *service) Clear(ctx context.Context, sessionID string) {
	s.store.Remove(ctx, kv.Key(storeKind, sessionID))
	bus.Publish(s.bus, TopicUpdated, Snapshot{SessionID: sessionID, Records: []Record{}})
}

func (s *service) persist(ctx context.Context, sessionID string, records []Record) {
	if records == nil {
		records = []Record{}
	}
	kv.WriteList(ctx, s.store, kv.Key(storeKind, sessionID), records)
	bus.Publish(s.bus, TopicUpdated, Snapshot{SessionID: sessionID, Records: records})
}

// UnreadCount derives the badge count. It is never stored.
func UnreadCount(records []Record) int {
	count := 0
	for _, record := range records {
		if !record.Read {
			count++
		}
	}
	return count
}

var slugPattern = regexp.MustCompile(`\s+`)

// Slugify lowercases a product name and collapses whitespace into hyphens,
// matching the derived ids used for products published without one.
func Slugify(name string) string {
	return slugPattern.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
}
