package domain

import "encoding/json"

// InternalCommand - команда для run-цикла Session Registry.
// Подключение, отключение и игровые действия идут через один канал,
// поэтому порядок событий одного клиента сохраняется.
type InternalCommand struct {
	Action  ActionType      // Число! Быстро и безопасно.
	Player  PlayerID        // Чья команда
	Payload json.RawMessage // Сырые данные (парсятся хендлером)
}
