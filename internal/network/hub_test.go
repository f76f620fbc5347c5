package network

import (
	"testing"

	"energosphere-server/pkg/api"
)

func TestRegister_ReplacesOldChannel(t *testing.T) {
	b := NewBroadcaster()

	old := b.Register("p")
	fresh := b.Register("p")

	if _, ok := <-old; ok {
		t.Error("Old channel must be closed on re-register")
	}

	b.SendTo("p", api.ServerMessage{Topic: api.TopicNotice})
	select {
	case msg := <-fresh:
		if msg.Topic != api.TopicNotice {
			t.Errorf("Unexpected topic %q", msg.Topic)
		}
	default:
		t.Error("Fresh channel must receive unicasts")
	}
}

func TestUnregister_StaleChannelIsNoOp(t *testing.T) {
	b := NewBroadcaster()

	old := b.Register("p")
	fresh := b.Register("p")

	// Отставшее соединение пытается снять подписку уже замененным
	// каналом: живая сессия не должна пострадать.
	if b.Unregister("p", old) {
		t.Error("Stale unregister must report false")
	}
	if !b.HasSubscriber("p") {
		t.Fatal("Live subscription must survive a stale unregister")
	}

	b.Broadcast(api.ServerMessage{Topic: api.TopicChatMessage})
	select {
	case _, ok := <-fresh:
		if !ok {
			t.Fatal("Live channel must not be closed by a stale unregister")
		}
	default:
		t.Error("Live channel must keep receiving broadcasts")
	}

	// Актуальный канал снимается штатно.
	if !b.Unregister("p", fresh) {
		t.Error("Current channel unregister must report true")
	}
	if b.HasSubscriber("p") {
		t.Error("Subscription must be gone after a real unregister")
	}
	if b.SubscriberCount() != 0 {
		t.Errorf("Expected 0 subscribers, got %d", b.SubscriberCount())
	}
}
