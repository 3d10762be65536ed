package bus

import (
	"testing"
)

var testTopic = NewTopic[[]string]("test:updated")

func TestPublishDeliversInSubscriptionOrder(t *testing.T) {
	b := New(Options{})

	var order []int
	Subscribe(b, testTopic, func([]string) { order = append(order, 1) })
	Subscribe(b, testTopic, func([]string) { order = append(order, 2) })
	Subscribe(b, testTopic, func([]string) { order = append(order, 3) })

	Publish(b, testTopic, []string{"a"})

	if len(order) != 3 {
		t.Fatalf("expected 3 deliveries, got %d", len(order))
	}
	for i, got := range order {
		if got != i+1 {
			t.Fatalf("delivery order broken: %v", order)
		}
	}
}

func TestPublishWithoutSubscribersIsNoOp(t *testing.T) {
	b := New(Options{})
	Publish(b, testTopic, []string{"nobody listening"})
}

func TestPublishCarriesLatestSnapshot(t *testing.T) {
	b := New(Options{})

	var seen []string
	Subscribe(b, testTopic, func(payload []string) { seen = payload })

	Publish(b, testTopic, []string{"a", "b"})

	if len(seen) != 2 || seen[0] != "a" {
		t.Fatalf("unexpected payload %v", seen)
	}
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	b := New(Options{})

	calls := 0
	unsub := Subscribe(b, testTopic, func([]string) { calls++ })
	remaining := 0
	Subscribe(b, testTopic, func([]string) { remaining++ })

	Publish(b, testTopic, nil)
	unsub()
	unsub()
	Publish(b, testTopic, nil)

	if calls != 1 {
		t.Fatalf("unsubscribed handler was invoked, calls=%d", calls)
	}
	if remaining != 2 {
		t.Fatalf("remaining handler should see both publishes, got %d", remaining)
	}
}

func TestOnPublishHookCountsEveryPublish(t *testing.T) {
	var topics []string
	b := New(Options{OnPublish: func(topic string) { topics = append(topics, topic) }})

	Publish(b, testTopic, nil)
	Publish(b, testTopic, nil)

	if len(topics) != 2 || topics[0] != "test:updated" {
		t.Fatalf("unexpected hook invocations %v", topics)
	}
}

func TestDistinctTopicsDoNotCross(t *testing.T) {
	b := New(Options{})
	other := NewTopic[[]string]("other:updated")

	crossed := false
	Subscribe(b, other, func([]string) { crossed = true })

	Publish(b, testTopic, []string{"a"})

	if crossed {
		t.Fatal("handler for a different topic was invoked")
	}
}
