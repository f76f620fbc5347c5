package server

import (
	"testing"
	"time"

	"energosphere-server/pkg/api"
)

func TestForwardUpdates_StopsWhenWritePumpGone(t *testing.T) {
	c := NewClient(nil, nil, nil)
	c.updates = make(chan api.ServerMessage, 1)

	finished := make(chan struct{})
	go func() {
		c.forwardUpdates()
		close(finished)
	}()

	// Забиваем Send до отказа: писателя уже нет, читать некому.
	for i := 0; i < cap(c.Send); i++ {
		c.Send <- api.ServerMessage{Topic: api.TopicNotice}
	}
	c.updates <- api.ServerMessage{Topic: api.TopicNotice}

	close(c.done)

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("Forwarder must stop once the write pump is gone")
	}
}

func TestForwardUpdates_DrainsAndClosesSend(t *testing.T) {
	c := NewClient(nil, nil, nil)
	c.updates = make(chan api.ServerMessage, 1)
	c.updates <- api.ServerMessage{Topic: api.TopicChatMessage}
	close(c.updates)

	c.forwardUpdates()

	if msg, ok := <-c.Send; !ok || msg.Topic != api.TopicChatMessage {
		t.Errorf("Expected forwarded chat message, got %+v (open=%v)", msg, ok)
	}
	if _, ok := <-c.Send; ok {
		t.Error("Send must be closed after the subscription ends")
	}
}
