package network

import (
	"sync"

	"energosphere-server/internal/domain"
	"energosphere-server/pkg/api"
)

// Broadcaster занимается только рассылкой сообщений подписчикам
type Broadcaster struct {
	mu sync.RWMutex
	// Мапа: PlayerID -> Личный канал
	subscribers map[string]chan api.ServerMessage
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[string]chan api.ServerMessage),
	}
}

// Register создает личный канал для игрока.
// Повторное подключение под тем же ID закрывает старый канал.
func (b *Broadcaster) Register(playerID domain.PlayerID) chan api.ServerMessage {
	b.mu.Lock()
	defer b.mu.Unlock()

	if old, ok := b.subscribers[playerID.String()]; ok {
		close(old)
	}

	ch := make(chan api.ServerMessage, 100)
	b.subscribers[playerID.String()] = ch
	return ch
}

// Unregister снимает подписку, только если ch все еще текущий канал
// игрока. Отставшее соединение (игрок успел переподключиться) не
// должно закрывать канал живой сессии. Возвращает true, если
// подписка действительно снята.
func (b *Broadcaster) Unregister(playerID domain.PlayerID, ch chan api.ServerMessage) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	cur, ok := b.subscribers[playerID.String()]
	if !ok || cur != ch {
		return false
	}
	close(cur)
	delete(b.subscribers, playerID.String())
	return true
}

// SendTo отправляет сообщение конкретному игроку (Unicast)
func (b *Broadcaster) SendTo(playerID domain.PlayerID, msg api.ServerMessage) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if ch, ok := b.subscribers[playerID.String()]; ok {
		select {
		case ch <- msg:
		default:
			// Канал полон: медленный клиент теряет сообщение,
			// но не блокирует остальных
		}
	}
}

// Broadcast отправляет сообщение всем подключенным
func (b *Broadcaster) Broadcast(msg api.ServerMessage) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers {
		select {
		case ch <- msg:
		default:
		}
	}
}

// HasSubscriber проверяет, подключен ли игрок
func (b *Broadcaster) HasSubscriber(playerID domain.PlayerID) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.subscribers[playerID.String()]
	return ok
}

// SubscriberCount возвращает количество активных подписчиков.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
