// Package events реализует планировщик временных глобальных событий.
//
// Жизненный цикл события: dormant -> active -> expired, без отмены.
// Планировщик - единственный владелец набора активных событий;
// остальные компоненты получают только снапшоты.
package events

import (
	"math"
	"math/rand"
	"strconv"
	"time"

	"energosphere-server/internal/domain"
)

// defaultReward выдается участникам события с неизвестным ID
// (таблица наград может отставать от таблицы определений).
var defaultReward = domain.EventReward{Energy: 100}

// ActiveEvent это запущенное событие.
// Participants отслеживаются по идентификатору, а не по живому
// соединению: отключившийся участник все равно получит награду.
type ActiveEvent struct {
	ID           string
	Def          domain.EventDefinition
	StartTime    time.Time
	Participants map[domain.PlayerID]struct{}
}

// Remaining возвращает оставшееся время события (не меньше нуля).
func (e *ActiveEvent) Remaining(now time.Time) time.Duration {
	end := e.StartTime.Add(time.Duration(e.Def.Duration) * time.Second)
	if now.After(end) {
		return 0
	}
	return end.Sub(now)
}

// EndedEvent это результат завершения: событие плюс рассчитанные награды.
type EndedEvent struct {
	Event   *ActiveEvent
	Rewards map[domain.PlayerID]domain.EventReward
}

// HistoryRecord это запись о запуске события.
type HistoryRecord struct {
	EventID   string    `json:"eventId"`
	Name      string    `json:"name"`
	Timestamp time.Time `json:"timestamp"`
}

// Summary это снапшот активного события для клиентов и дашбордов.
type Summary struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	TimeLeft     float64 `json:"timeLeft"` // секунды
	Participants int     `json:"participants"`
}

// HistoryView это запись истории с человекочитаемой давностью.
type HistoryView struct {
	EventID   string `json:"eventId"`
	Name      string `json:"name"`
	Timestamp int64  `json:"timestamp"` // Unix milliseconds
	TimeAgo   string `json:"timeAgo"`
}

// Config задает инварианты планировщика.
type Config struct {
	MaxActive    int           // максимум одновременно активных событий
	MinInterval  time.Duration // минимум между ЗАПУСКАМИ (не завершениями)
	HistoryLimit int           // окно хранения истории
}

// EligibilityFunc отвечает, выполняется ли требование определения
// в текущем состоянии мира. Предоставляется Session Registry.
type EligibilityFunc func(req domain.Requirement) bool

// Scheduler управляет набором активных событий.
// Не потокобезопасен: все вызовы должны приходить из одного цикла
// исполнения (в нашем случае - из run-цикла Session Registry).
type Scheduler struct {
	defs        []domain.EventDefinition
	baseRewards map[string]domain.EventReward
	cfg         Config

	rng *rand.Rand
	now func() time.Time

	active  []*ActiveEvent
	history []HistoryRecord
}

// NewScheduler создает планировщик.
// rng и now инжектируются для детерминированных тестов;
// nil now означает time.Now.
func NewScheduler(defs []domain.EventDefinition, baseRewards map[string]domain.EventReward, cfg Config, rng *rand.Rand, now func() time.Time) *Scheduler {
	if now == nil {
		now = time.Now
	}
	return &Scheduler{
		defs:        defs,
		baseRewards: baseRewards,
		cfg:         cfg,
		rng:         rng,
		now:         now,
	}
}

// Tick выполняет один шаг планировщика: сначала безусловно завершает
// истекшие события (с расчетом наград), затем пытается запустить новое.
// Возвращает завершенные события и запущенное (nil, если бросок не удался).
func (s *Scheduler) Tick(eligible EligibilityFunc) (ended []EndedEvent, started *ActiveEvent) {
	ended = s.reapExpired()
	started = s.tryStart(eligible)
	return ended, started
}

// reapExpired удаляет события, прожившие полную длительность,
// и считает награды их участникам.
func (s *Scheduler) reapExpired() []EndedEvent {
	now := s.now()
	var ended []EndedEvent
	remaining := s.active[:0]

	for _, ev := range s.active {
		elapsed := now.Sub(ev.StartTime).Seconds()
		if elapsed >= float64(ev.Def.Duration) {
			ended = append(ended, EndedEvent{Event: ev, Rewards: s.computeRewards(ev)})
		} else {
			remaining = append(remaining, ev)
		}
	}

	s.active = remaining
	return ended
}

// tryStart бросает кубик на новое событие.
// Отказ (лимит, кулдаун, нет подходящих определений, не выпал шанс) -
// тихий no-op: это штатные исходы, а не ошибки.
func (s *Scheduler) tryStart(eligible EligibilityFunc) *ActiveEvent {
	if len(s.active) >= s.cfg.MaxActive {
		return nil
	}

	// Кулдаун считается от последнего ЗАПУСКА; истории достаточно
	// одной последней записи, поэтому окно можно безопасно обрезать.
	if len(s.history) > 0 {
		last := s.history[len(s.history)-1]
		if s.now().Sub(last.Timestamp) < s.cfg.MinInterval {
			return nil
		}
	}

	var candidates []domain.EventDefinition
	for _, def := range s.defs {
		if eligible == nil || eligible(def.Requirement) {
			candidates = append(candidates, def)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	// Двухэтапный бросок: равномерный выбор из подходящих определений,
	// затем независимая проверка шанса. Сворачивать в один взвешенный
	// бросок нельзя - это изменит наблюдаемое распределение.
	def := candidates[s.rng.Intn(len(candidates))]
	if s.rng.Float64() > def.Chance {
		return nil
	}

	return s.start(def)
}

func (s *Scheduler) start(def domain.EventDefinition) *ActiveEvent {
	ev := &ActiveEvent{
		ID:           def.ID,
		Def:          def,
		StartTime:    s.now(),
		Participants: make(map[domain.PlayerID]struct{}),
	}
	s.active = append(s.active, ev)

	s.history = append(s.history, HistoryRecord{
		EventID:   def.ID,
		Name:      def.Name,
		Timestamp: ev.StartTime,
	})
	if s.cfg.HistoryLimit > 0 && len(s.history) > s.cfg.HistoryLimit {
		s.history = s.history[len(s.history)-s.cfg.HistoryLimit:]
	}

	return ev
}

// Join добавляет игрока к активному событию.
// Возвращает false, если событие не найдено (уже истекло или не
// существовало) - это ожидаемая гонка между клиентом и сервером,
// поэтому ошибки нет.
func (s *Scheduler) Join(playerID domain.PlayerID, eventID string) bool {
	for _, ev := range s.active {
		if ev.ID == eventID {
			ev.Participants[playerID] = struct{}{}
			return true
		}
	}
	return false
}

// computeRewards считает награды всем участникам завершенного события.
// Энергетическая компонента масштабируется числом участников:
// floor(base * (1 + participants/100)); остальные поля не масштабируются.
func (s *Scheduler) computeRewards(ev *ActiveEvent) map[domain.PlayerID]domain.EventReward {
	base, ok := s.baseRewards[ev.ID]
	if !ok {
		base = defaultReward
	}

	mult := 1 + float64(len(ev.Participants))/100
	reward := base
	reward.Energy = math.Floor(base.Energy * mult)

	rewards := make(map[domain.PlayerID]domain.EventReward, len(ev.Participants))
	for id := range ev.Participants {
		rewards[id] = reward
	}
	return rewards
}

// ActiveSummaries возвращает снапшоты активных событий.
func (s *Scheduler) ActiveSummaries() []Summary {
	now := s.now()
	summaries := make([]Summary, 0, len(s.active))
	for _, ev := range s.active {
		summaries = append(summaries, Summary{
			ID:           ev.ID,
			Name:         ev.Def.Name,
			Description:  ev.Def.Description,
			TimeLeft:     ev.Remaining(now).Seconds(),
			Participants: len(ev.Participants),
		})
	}
	return summaries
}

// ActiveCount возвращает число активных событий.
func (s *Scheduler) ActiveCount() int { return len(s.active) }

// History возвращает последние limit записей истории, новые в конце.
func (s *Scheduler) History(limit int) []HistoryView {
	records := s.history
	if limit > 0 && len(records) > limit {
		records = records[len(records)-limit:]
	}

	now := s.now()
	views := make([]HistoryView, 0, len(records))
	for _, r := range records {
		views = append(views, HistoryView{
			EventID:   r.EventID,
			Name:      r.Name,
			Timestamp: r.Timestamp.UnixMilli(),
			TimeAgo:   formatTimeAgo(now.Sub(r.Timestamp)),
		})
	}
	return views
}

// formatTimeAgo переводит давность в человекочитаемую строку.
func formatTimeAgo(d time.Duration) string {
	seconds := int(d.Seconds())
	switch {
	case seconds < 60:
		return pluralAgo(seconds, "секунду", "секунды", "секунд")
	case seconds < 3600:
		return pluralAgo(seconds/60, "минуту", "минуты", "минут")
	case seconds < 86400:
		return pluralAgo(seconds/3600, "час", "часа", "часов")
	default:
		return pluralAgo(seconds/86400, "день", "дня", "дней")
	}
}

// pluralAgo склоняет единицу времени по правилам русского языка.
func pluralAgo(n int, one, few, many string) string {
	form := many
	switch {
	case n%10 == 1 && n%100 != 11:
		form = one
	case n%10 >= 2 && n%10 <= 4 && (n%100 < 10 || n%100 >= 20):
		form = few
	}
	return strconv.Itoa(n) + " " + form + " назад"
}
