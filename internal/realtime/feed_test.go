package realtime

import (
	"testing"

	"github.com/pterm/pterm"
)

func testFeed() *Feed {
	return NewFeed(pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace))
}

func TestFeed_NotifyReachesSubscribers(t *testing.T) {
	f := testFeed()
	_, a := f.Subscribe()
	_, b := f.Subscribe()

	f.Notify()

	for name, ch := range map[string]<-chan struct{}{"a": a, "b": b} {
		select {
		case <-ch:
		default:
			t.Errorf("Subscriber %s did not receive a signal", name)
		}
	}
}

func TestFeed_NotifyDoesNotBlockOnSlowClient(t *testing.T) {
	f := testFeed()
	_, ch := f.Subscribe()

	f.Notify()
	f.Notify()
	f.Notify()

	<-ch
	select {
	case <-ch:
		t.Error("Expected signals to coalesce into one")
	default:
	}

	if stats := f.GetStats(); stats.Notifications != 3 {
		t.Errorf("Expected 3 notifications, got %d", stats.Notifications)
	}
}

func TestFeed_Unsubscribe(t *testing.T) {
	f := testFeed()
	id, ch := f.Subscribe()
	if f.SubscriberCount() != 1 {
		t.Fatalf("Expected 1 subscriber, got %d", f.SubscriberCount())
	}

	f.Unsubscribe(id)
	f.Unsubscribe(id)

	if _, open := <-ch; open {
		t.Error("Expected channel to be closed")
	}
	if f.SubscriberCount() != 0 {
		t.Errorf("Expected 0 subscribers, got %d", f.SubscriberCount())
	}
	f.Notify()
}
