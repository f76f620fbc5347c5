package config

import "time"

// Config хранит параметры баланса и кадансы движка.
type Config struct {
	// Seed - зерно генератора случайных чисел планировщика событий.
	// 0 означает случайное зерно (выставляется в main).
	Seed int64

	// Планировщик событий
	EventCheckInterval time.Duration // период тика планировщика
	EventMinInterval   time.Duration // минимум между ЗАПУСКАМИ событий
	MaxActiveEvents    int           // максимум одновременно активных событий
	EventHistoryLimit  int           // окно хранения истории запусков

	// Сессии
	SessionTickInterval time.Duration // период счетчика времени сессии

	// Чат
	ChatHistoryLimit int // размер хранимой истории
	ChatBacklog      int // сколько сообщений отправлять при входе
}

// Default возвращает конфиг по умолчанию (значения оригинального баланса).
func Default() Config {
	return Config{
		EventCheckInterval:  30 * time.Second,
		EventMinInterval:    10 * time.Minute,
		MaxActiveEvents:     3,
		EventHistoryLimit:   100,
		SessionTickInterval: time.Second,
		ChatHistoryLimit:    1000,
		ChatBacklog:         50,
	}
}
