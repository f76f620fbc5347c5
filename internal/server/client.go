package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"energosphere-server/internal/auth"
	"energosphere-server/internal/domain"
	"energosphere-server/internal/registry"
	"energosphere-server/pkg/api"
	"energosphere-server/pkg/logger"
	"energosphere-server/pkg/utils"
)

// Настройки WebSocket
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Client - посредник между Websocket и Session Registry
type Client struct {
	Registry *registry.Service
	Auth     *auth.Auth
	Conn     *websocket.Conn
	Send     chan api.ServerMessage
	PlayerID domain.PlayerID

	// updates - канал подписки, выданный хабом этому соединению.
	// Нужен при teardown: снимать можно только СВОЮ подписку.
	updates chan api.ServerMessage
	// done закрывается при выходе writePump: форвардер не должен
	// вечно ждать отправки в Send, который никто не читает.
	done chan struct{}
}

func NewClient(reg *registry.Service, a *auth.Auth, conn *websocket.Conn) *Client {
	return &Client{
		Registry: reg,
		Auth:     a,
		Conn:     conn,
		Send:     make(chan api.ServerMessage, 256),
		done:     make(chan struct{}),
	}
}

// readPump читает команды от клиента
func (c *Client) readPump() {
	defer func() {
		// Disconnect уходит в реестр, только если это соединение все
		// еще было текущим транспортом игрока. При реконнекте старое
		// соединение умирает молча, не трогая живую сессию.
		if c.PlayerID != "" && c.updates != nil {
			if c.Registry.Hub.Unregister(c.PlayerID, c.updates) {
				c.Registry.Disconnect(c.PlayerID)
			}
		}
		if err := c.Conn.Close(); err != nil {
			logger.Log.WithError(err).Debug("failed to close websocket connection")
		}
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	if err := c.Conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logger.Log.WithError(err).Warn("failed to set read deadline")
	}
	c.Conn.SetPongHandler(func(string) error {
		if err := c.Conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			logger.Log.WithError(err).Warn("failed to set pong read deadline")
		}
		return nil
	})

	// 1. HANDSHAKE (LOGIN)
	// Первое сообщение несет токен. Валидный JWT дает постоянную
	// личность; пустой или битый токен - гостевую.
	var loginCmd api.ClientCommand
	if err := c.Conn.ReadJSON(&loginCmd); err != nil {
		logger.Log.Warn("Handshake failed")
		return
	}

	if username, err := c.Auth.VerifyToken(loginCmd.Token); err == nil {
		c.PlayerID = domain.PlayerID(username)
	} else {
		c.PlayerID = domain.PlayerID(utils.GenerateID())
	}

	logger.Log.WithField("player", c.PlayerID).Info("Client logged in")

	// 2. ПОДПИСКА НА ОБНОВЛЕНИЯ
	// Подписка оформляется ДО Connect, чтобы не потерять стартовый снапшот.
	c.updates = c.Registry.Hub.Register(c.PlayerID)

	go c.forwardUpdates()

	// 3. МАТЕРИАЛИЗАЦИЯ ИГРОКА (триггер стартового снапшота)
	c.Registry.Connect(c.PlayerID)

	// 4. ЦИКЛ ЧТЕНИЯ КОМАНД
	for {
		var cmd api.ClientCommand
		err := c.Conn.ReadJSON(&cmd)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Log.Errorf("WS Error: %v", err)
			}
			break
		}
		// Личность берется из рукопожатия, а не из сообщения.
		c.Registry.ProcessCommand(c.PlayerID, cmd)
	}
}

// forwardUpdates переливает сообщения хаба в канал writePump.
// Завершается при закрытии подписки ИЛИ при смерти writePump:
// иначе отправка в переполненный Send зависла бы навсегда.
func (c *Client) forwardUpdates() {
	defer close(c.Send)
	for msg := range c.updates {
		select {
		case c.Send <- msg:
		case <-c.done:
			return
		}
	}
}

// writePump отправляет данные клиенту + Ping
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		close(c.done)
		if err := c.Conn.Close(); err != nil {
			logger.Log.WithError(err).Debug("failed to close websocket connection in writePump")
		}
	}()

	for {
		select {
		case message, ok := <-c.Send:
			if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logger.Log.WithError(err).Warn("failed to set write deadline")
			}
			if !ok {
				if err := c.Conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					logger.Log.WithError(err).Debug("write close message failed")
				}
				return
			}
			if err := c.Conn.WriteJSON(message); err != nil {
				logger.Log.WithError(err).Debug("write json message failed")
				return
			}

		case <-ticker.C:
			if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logger.Log.WithError(err).Warn("failed to set ping write deadline")
			}
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logger.Log.WithError(err).Debug("ping failed")
				return
			}
		}
	}
}
