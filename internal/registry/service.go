// Package registry реализует Session Registry - авторитетную
// in-memory картотеку игроков. Он принимает команды клиентов,
// прогоняет их через Economy Engine, Achievement Evaluator и
// Event Scheduler и рассылает изменения через Hub.
//
// ИЗВЕСТНАЯ ПРОБЛЕМА ЦЕЛОСТНОСТИ: энергия кликов (CLICK) и параметры
// перерождения (REBIRTH) принимаются от клиента на веру, без
// серверного пересчета. Поведение сохранено намеренно - см. DESIGN.md.
package registry

import (
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"energosphere-server/internal/achievements"
	"energosphere-server/internal/config"
	"energosphere-server/internal/domain"
	"energosphere-server/internal/economy"
	"energosphere-server/internal/events"
	"energosphere-server/internal/network"
	"energosphere-server/internal/store"
	"energosphere-server/pkg/api"
	"energosphere-server/pkg/logger"
)

type handlerFunc func(p *domain.Player, payload json.RawMessage)

// Service владеет картой игроков и набором подключенных.
// Вся мутация происходит в одном run-цикле; mu защищает только
// read-only запросы дашбордов, приходящие из HTTP-горутин.
type Service struct {
	cfg          config.Config
	economy      *economy.Engine
	achievements *achievements.Evaluator
	scheduler    *events.Scheduler
	upgrades     []domain.UpgradeDefinition
	repo         store.PlayerRepo

	Hub         *network.Broadcaster
	CommandChan chan domain.InternalCommand

	mu      sync.RWMutex
	players map[domain.PlayerID]*domain.Player
	online  map[domain.PlayerID]struct{}
	chat    []api.ChatMessage

	// degraded - сессии, стартовавшие с нуля после сбоя загрузки.
	// Их сохранения пропускаются: пустая запись затерла бы реальный
	// прогресс в хранилище. Снимается после успешной повторной загрузки.
	degraded map[domain.PlayerID]struct{}

	handlers map[domain.ActionType]handlerFunc

	now       func() time.Time
	startedAt time.Time
	stop      chan struct{}
}

// NewService собирает ядро симуляции.
// rng инжектируется ради воспроизводимых прогонов (флаг -seed в main).
func NewService(cfg config.Config, repo store.PlayerRepo, rng *rand.Rand) *Service {
	s := &Service{
		cfg:          cfg,
		economy:      economy.NewEngine(domain.DefaultGenerators()),
		achievements: achievements.NewEvaluator(domain.DefaultAchievements()),
		upgrades:     domain.DefaultUpgrades(),
		repo:         repo,
		Hub:          network.NewBroadcaster(),
		CommandChan:  make(chan domain.InternalCommand, 100),
		players:      make(map[domain.PlayerID]*domain.Player),
		online:       make(map[domain.PlayerID]struct{}),
		degraded:     make(map[domain.PlayerID]struct{}),
		now:          time.Now,
		stop:         make(chan struct{}),
	}
	s.startedAt = s.now()
	s.scheduler = events.NewScheduler(
		domain.DefaultEvents(),
		domain.DefaultEventRewards(),
		events.Config{
			MaxActive:    cfg.MaxActiveEvents,
			MinInterval:  cfg.EventMinInterval,
			HistoryLimit: cfg.EventHistoryLimit,
		},
		rng,
		s.clock,
	)
	s.registerHandlers()
	return s
}

// clock позволяет тестам подменять s.now после конструирования.
func (s *Service) clock() time.Time { return s.now() }

// loadOrCreate поднимает игрока из хранилища или заводит нового.
// Сбой хранилища не фатален: играем in-memory сессией, но помечаем
// ее деградировавшей, чтобы не затирать реальную запись сохранениями.
func (s *Service) loadOrCreate(id domain.PlayerID, now time.Time) *domain.Player {
	loaded, err := s.repo.Load(id)
	switch {
	case err == nil:
		return loaded
	case errors.Is(err, store.ErrNotFound):
	default:
		logger.Log.WithError(err).WithField("player", id).
			Warn("Persistence load failed, starting degraded in-memory session")
		s.degraded[id] = struct{}{}
	}

	p := domain.NewPlayer(id, s.economy.Definitions())
	p.LastSeen = now
	return p
}

// persist сохраняет игрока, пропуская деградировавшие сессии.
func (s *Service) persist(p *domain.Player, failMsg string) {
	if _, deg := s.degraded[p.ID]; deg {
		logger.Log.WithField("player", p.ID).Warn("Save skipped for degraded session")
		return
	}
	if err := s.repo.Save(p); err != nil {
		logger.Log.WithError(err).WithField("player", p.ID).Warn(failMsg)
	}
}

func (s *Service) registerHandlers() {
	s.handlers = map[domain.ActionType]handlerFunc{
		domain.ActionClick:            s.handleClick,
		domain.ActionRebirth:          s.handleRebirth,
		domain.ActionJoinEvent:        s.handleJoinEvent,
		domain.ActionBuyGenerator:     s.handleBuyGenerator,
		domain.ActionUpgradeGenerator: s.handleUpgradeGenerator,
		domain.ActionBuyUpgrade:       s.handleBuyUpgrade,
		domain.ActionChat:             s.handleChat,
	}
}

// Start запускает run-цикл.
func (s *Service) Start() {
	go s.Run()
}

// Stop останавливает run-цикл (уже принятые команды не доигрываются).
func (s *Service) Stop() {
	close(s.stop)
}

// Run крутит единственный цикл исполнения: команды клиентов и оба
// периодических тика сериализуются здесь, поэтому хендлерам не нужны
// блокировки между собой.
func (s *Service) Run() {
	logger.Log.Info("[LOOP] Session registry loop started")

	sessionTicker := time.NewTicker(s.cfg.SessionTickInterval)
	eventTicker := time.NewTicker(s.cfg.EventCheckInterval)
	defer sessionTicker.Stop()
	defer eventTicker.Stop()

	for {
		select {
		case <-s.stop:
			logger.Log.Info("[LOOP] Session registry loop stopped")
			return

		case cmd := <-s.CommandChan:
			s.execute(cmd)

		case <-sessionTicker.C:
			s.sessionTick()

		case <-eventTicker.C:
			s.eventTick()
		}
	}
}

// Checkpoint сохраняет всех известных игроков.
// Вызывается из main при остановке сервера, когда цикл уже стоит.
func (s *Service) Checkpoint() {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.players {
		s.persist(p, "Checkpoint save failed")
	}
}

// ProcessCommand принимает команду от внешнего мира (WebSocket).
// Аутентификация должна произойти ДО этого вызова: id - проверенная
// личность игрока, а не поле из сообщения.
func (s *Service) ProcessCommand(id domain.PlayerID, externalCmd api.ClientCommand) {
	actionType := domain.ParseAction(externalCmd.Action)
	if actionType == domain.ActionUnknown {
		logger.Log.WithField("action", externalCmd.Action).Debug("Unknown action ignored")
		return
	}

	s.CommandChan <- domain.InternalCommand{
		Action:  actionType,
		Player:  id,
		Payload: externalCmd.Payload,
	}
}

// Connect ставит подключение игрока в очередь цикла.
func (s *Service) Connect(id domain.PlayerID) {
	s.CommandChan <- domain.InternalCommand{Action: domain.ActionConnect, Player: id}
}

// Disconnect ставит отключение игрока в очередь цикла.
func (s *Service) Disconnect(id domain.PlayerID) {
	s.CommandChan <- domain.InternalCommand{Action: domain.ActionDisconnect, Player: id}
}

func (s *Service) execute(cmd domain.InternalCommand) {
	switch cmd.Action {
	case domain.ActionConnect:
		s.handleConnect(cmd.Player)
		return
	case domain.ActionDisconnect:
		s.handleDisconnect(cmd.Player)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.players[cmd.Player]
	if !ok {
		// Команда до CONNECT или после рестарта: игнорируем молча.
		logger.Log.WithField("player", cmd.Player).Debug("Command for unknown player dropped")
		return
	}

	if handler, ok := s.handlers[cmd.Action]; ok {
		handler(p, cmd.Payload)
	}
}

// --- ПОДКЛЮЧЕНИЕ / ОТКЛЮЧЕНИЕ ---

func (s *Service) handleConnect(id domain.PlayerID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	p, known := s.players[id]
	if !known {
		p = s.loadOrCreate(id, now)
		s.players[id] = p
	} else if _, deg := s.degraded[id]; deg {
		// Деградировавшая сессия: пробуем загрузку еще раз. Успех
		// значит, что в хранилище лежит реальная запись - она
		// побеждает, деградировавшая стартовала с нуля.
		switch loaded, err := s.repo.Load(id); {
		case err == nil:
			p = loaded
			s.players[id] = p
			delete(s.degraded, id)
		case errors.Is(err, store.ErrNotFound):
			// Хранилище ожило и не знает игрока: затирать нечего.
			delete(s.degraded, id)
		default:
			logger.Log.WithError(err).WithField("player", id).
				Warn("Persistence still failing, session stays degraded")
		}
	}

	// Офлайн-доначисление за время отсутствия.
	var offlineEnergy float64
	if _, wasOnline := s.online[id]; !wasOnline && !p.LastSeen.IsZero() {
		away := now.Sub(p.LastSeen).Seconds()
		if away > 1 {
			offlineEnergy = s.economy.OfflineProduction(p.Generators, away, p.Upgrades)
			p.Energy += offlineEnergy
			p.TotalEnergyEarned += offlineEnergy
		}
	}

	p.SessionTime = 0
	p.LastSeen = now
	s.online[id] = struct{}{}

	logger.Log.WithFields(logrus.Fields{
		"player": id,
		"online": len(s.online),
	}).Info("Player connected")

	// Личный снапшот + история чата, затем общее оповещение.
	state := s.stateView(p)
	state.OfflineEnergy = offlineEnergy
	s.Hub.SendTo(id, api.ServerMessage{Topic: api.TopicStateUpdate, Payload: state})

	backlog := s.chat
	if len(backlog) > s.cfg.ChatBacklog {
		backlog = backlog[len(backlog)-s.cfg.ChatBacklog:]
	}
	s.Hub.SendTo(id, api.ServerMessage{Topic: api.TopicChatHistory, Payload: append([]api.ChatMessage(nil), backlog...)})

	s.Hub.Broadcast(api.ServerMessage{
		Topic:   api.TopicPresenceChanged,
		Payload: api.PresenceView{ID: id.String(), Online: true, OnlineCount: len(s.online)},
	})
}

func (s *Service) handleDisconnect(id domain.PlayerID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.online[id]; !ok {
		return
	}
	delete(s.online, id)

	// Запись игрока остается в памяти: реконнект продолжает сессию
	// без перезагрузки. Вечную эвикцию решает внешний коллаборатор.
	if p, ok := s.players[id]; ok {
		p.LastSeen = s.now()
		s.persist(p, "Persistence save failed on disconnect")
	}

	logger.Log.WithFields(logrus.Fields{
		"player": id,
		"online": len(s.online),
	}).Info("Player disconnected")

	s.Hub.Broadcast(api.ServerMessage{
		Topic:   api.TopicPresenceChanged,
		Payload: api.PresenceView{ID: id.String(), Online: false, OnlineCount: len(s.online)},
	})
}

// --- ИГРОВЫЕ КОМАНДЫ ---

// handleClick применяет заявленную клиентом энергию.
// Дельта НЕ пересчитывается сервером (см. примечание в шапке пакета).
func (s *Service) handleClick(p *domain.Player, payload json.RawMessage) {
	var click api.ClickPayload
	if err := json.Unmarshal(payload, &click); err != nil {
		return
	}

	if click.Energy > 0 {
		p.Energy += click.Energy
		p.TotalEnergyEarned += click.Energy
	}
	p.TotalClicks++
	p.LastSeen = s.now()

	s.checkAchievements(p)

	s.Hub.Broadcast(api.ServerMessage{
		Topic:   api.TopicEnergyDelta,
		Payload: api.EnergyDeltaView{ID: p.ID.String(), Energy: p.Energy},
	})
}

// handleRebirth применяет заявленное клиентом перерождение:
// прогресс сбрасывается, квантовые очки остаются навсегда.
func (s *Service) handleRebirth(p *domain.Player, payload json.RawMessage) {
	var rb api.RebirthPayload
	if err := json.Unmarshal(payload, &rb); err != nil {
		return
	}

	p.RebirthCount = rb.RebirthCount
	p.QuantumPoints += rb.QuantumGained
	p.SessionTime = 0

	// Сброс прогресса: энергия, генераторы и улучшения обнуляются,
	// TotalEnergyEarned и достижения - нет (они монотонны).
	p.Energy = 0
	p.Upgrades = nil
	for i := range p.Generators {
		p.Generators[i].Count = 0
		p.Generators[i].Level = 1
	}

	s.checkAchievements(p)

	logger.Log.WithFields(logrus.Fields{
		"player":  p.ID,
		"rebirth": p.RebirthCount,
	}).Info("Player rebirthed")

	s.Hub.Broadcast(api.ServerMessage{
		Topic:   api.TopicRebirthAnnounced,
		Payload: api.RebirthView{ID: p.ID.String(), RebirthCount: p.RebirthCount},
	})
	s.Hub.SendTo(p.ID, api.ServerMessage{Topic: api.TopicStateUpdate, Payload: s.stateView(p)})
}

// handleJoinEvent присоединяет игрока к активному событию.
// Опоздание (событие истекло) - штатный no-op, не ошибка.
func (s *Service) handleJoinEvent(p *domain.Player, payload json.RawMessage) {
	var ev api.EventPayload
	if err := json.Unmarshal(payload, &ev); err != nil || ev.Validate() != nil {
		return
	}

	if !s.scheduler.Join(p.ID, ev.EventID) {
		logger.Log.WithFields(logrus.Fields{
			"player": p.ID,
			"event":  ev.EventID,
		}).Debug("Join on absent event ignored")
	}
}

func (s *Service) handleBuyGenerator(p *domain.Player, payload json.RawMessage) {
	var req api.GeneratorPayload
	if err := json.Unmarshal(payload, &req); err != nil || req.Validate() != nil {
		return
	}

	t := domain.GeneratorType(req.Type)
	gen := p.Generator(t)
	if gen == nil || !s.economy.IsAvailable(t, p.RebirthCount) {
		s.notice(p.ID, "Генератор недоступен")
		return
	}

	cost := s.economy.Cost(t, gen.Count, gen.Level)
	if p.Energy < cost {
		s.notice(p.ID, "Недостаточно энергии")
		return
	}

	p.Energy -= cost
	gen.Count++

	s.checkAchievements(p)
	s.Hub.SendTo(p.ID, api.ServerMessage{Topic: api.TopicStateUpdate, Payload: s.stateView(p)})
}

func (s *Service) handleUpgradeGenerator(p *domain.Player, payload json.RawMessage) {
	var req api.GeneratorPayload
	if err := json.Unmarshal(payload, &req); err != nil || req.Validate() != nil {
		return
	}

	t := domain.GeneratorType(req.Type)
	gen := p.Generator(t)
	if gen == nil || !s.economy.IsAvailable(t, p.RebirthCount) {
		s.notice(p.ID, "Генератор недоступен")
		return
	}

	cost := s.economy.UpgradeCost(t, gen.Level)
	if p.Energy < cost {
		s.notice(p.ID, "Недостаточно энергии")
		return
	}

	p.Energy -= cost
	gen.Level++

	s.Hub.SendTo(p.ID, api.ServerMessage{Topic: api.TopicStateUpdate, Payload: s.stateView(p)})
}

func (s *Service) handleBuyUpgrade(p *domain.Player, payload json.RawMessage) {
	var req api.UpgradePayload
	if err := json.Unmarshal(payload, &req); err != nil || req.Validate() != nil {
		return
	}

	var def *domain.UpgradeDefinition
	for i := range s.upgrades {
		if s.upgrades[i].ID == req.UpgradeID {
			def = &s.upgrades[i]
			break
		}
	}
	if def == nil {
		s.notice(p.ID, "Улучшение недоступно")
		return
	}
	if p.HasUpgrade(def.ID) {
		return
	}
	if p.Energy < def.Cost {
		s.notice(p.ID, "Недостаточно энергии")
		return
	}

	p.Energy -= def.Cost
	p.Upgrades = append(p.Upgrades, def.ID)

	s.Hub.SendTo(p.ID, api.ServerMessage{Topic: api.TopicStateUpdate, Payload: s.stateView(p)})
}

func (s *Service) handleChat(p *domain.Player, payload json.RawMessage) {
	var req api.ChatPayload
	if err := json.Unmarshal(payload, &req); err != nil || req.Validate() != nil {
		return
	}

	msg := api.ChatMessage{
		Player:    p.ID.String(),
		Message:   req.Message,
		Timestamp: s.now().UnixMilli(),
	}
	s.chat = append(s.chat, msg)
	if len(s.chat) > s.cfg.ChatHistoryLimit {
		s.chat = s.chat[len(s.chat)-s.cfg.ChatHistoryLimit:]
	}

	s.Hub.Broadcast(api.ServerMessage{Topic: api.TopicChatMessage, Payload: msg})
}

// --- ПЕРИОДИЧЕСКИЕ ТИКИ ---

// sessionTick раз в секунду двигает счетчики времени сессии
// подключенных игроков. Независим от тика планировщика событий.
func (s *Service) sessionTick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id := range s.online {
		p, ok := s.players[id]
		if !ok {
			continue
		}
		p.SessionTime++
		s.Hub.SendTo(id, api.ServerMessage{
			Topic: api.TopicStateUpdate,
			Payload: api.StateView{
				ID:                p.ID.String(),
				Energy:            p.Energy,
				QuantumPoints:     p.QuantumPoints,
				TotalEnergyEarned: p.TotalEnergyEarned,
				RebirthCount:      p.RebirthCount,
				SessionTime:       p.SessionTime,
				Production:        s.economy.TotalProduction(p.Generators, p.Upgrades),
			},
		})
	}
}

// eventTick прогоняет планировщик: завершения, награды, новый бросок.
func (s *Service) eventTick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	ended, started := s.scheduler.Tick(s.eligibility)

	if started != nil {
		logger.Log.WithField("event", started.ID).Info("Event started")
		s.Hub.Broadcast(api.ServerMessage{
			Topic: api.TopicEventStarted,
			Payload: api.EventStartedView{
				ID:          started.ID,
				Name:        started.Def.Name,
				Description: started.Def.Description,
				Duration:    started.Def.Duration,
			},
		})
	}

	for _, e := range ended {
		logger.Log.WithFields(logrus.Fields{
			"event":        e.Event.ID,
			"participants": len(e.Event.Participants),
		}).Info("Event ended")

		// Награды применяются по идентичности: отключившийся участник
		// тоже получает свое, если его запись известна.
		for pid, reward := range e.Rewards {
			p, ok := s.players[pid]
			if !ok {
				continue
			}
			p.Energy += reward.Energy
			p.TotalEnergyEarned += reward.Energy
			p.QuantumPoints += reward.Quantum

			s.Hub.SendTo(pid, api.ServerMessage{
				Topic: api.TopicEventEnded,
				Payload: api.EventRewardView{
					EventID: e.Event.ID,
					Energy:  reward.Energy,
					Quantum: reward.Quantum,
				},
			})
		}

		s.Hub.Broadcast(api.ServerMessage{
			Topic: api.TopicEventEnded,
			Payload: api.EventEndedView{
				ID:           e.Event.ID,
				Name:         e.Event.Def.Name,
				Participants: len(e.Event.Participants),
			},
		})
	}
}

// eligibility отвечает планировщику, выполняется ли требование
// определения хотя бы у одного подключенного игрока.
// Вызывается из eventTick, то есть под уже взятым s.mu.
func (s *Service) eligibility(req domain.Requirement) bool {
	switch req.Kind {
	case domain.ReqNone, "":
		return true
	case domain.ReqRebirthCount:
		for id := range s.online {
			if p, ok := s.players[id]; ok && p.RebirthCount >= req.Threshold {
				return true
			}
		}
		return false
	case domain.ReqInGuild:
		for id := range s.online {
			if p, ok := s.players[id]; ok && p.GuildID != "" {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// --- ВСПОМОГАТЕЛЬНОЕ ---

// checkAchievements прогоняет evaluator и доставляет результат.
// Доставка и контрольная точка сохранения живут здесь, а не в
// evaluator: разделение вычисления и I/O.
func (s *Service) checkAchievements(p *domain.Player) {
	unlocked := s.achievements.CheckAndUnlock(p)
	if len(unlocked) == 0 {
		return
	}

	for _, def := range unlocked {
		logger.Log.WithFields(logrus.Fields{
			"player":      p.ID,
			"achievement": def.ID,
		}).Info("Achievement unlocked")

		s.Hub.SendTo(p.ID, api.ServerMessage{
			Topic: api.TopicAchievementUnlocked,
			Payload: api.AchievementView{
				ID:            def.ID,
				Name:          def.Name,
				Description:   def.Description,
				RewardEnergy:  def.Reward.Energy,
				RewardQuantum: def.Reward.Quantum,
			},
		})
	}

	// Контрольная точка: открытия необратимы, терять их нельзя.
	s.persist(p, "Checkpoint save failed")
}

func (s *Service) notice(id domain.PlayerID, text string) {
	s.Hub.SendTo(id, api.ServerMessage{Topic: api.TopicNotice, Payload: api.NoticeView{Text: text}})
}

// stateView собирает персональный снапшот игрока.
func (s *Service) stateView(p *domain.Player) api.StateView {
	gens := make([]api.GeneratorView, 0, len(p.Generators))
	for _, g := range p.Generators {
		gens = append(gens, api.GeneratorView{
			Type:       string(g.Type),
			Level:      g.Level,
			Count:      g.Count,
			Production: s.economy.Production(g.Type, g.Count, g.Level, g.Efficiency),
			NextCost:   s.economy.Cost(g.Type, g.Count, g.Level),
			Unlocked:   s.economy.IsAvailable(g.Type, p.RebirthCount),
		})
	}

	return api.StateView{
		ID:                p.ID.String(),
		Energy:            p.Energy,
		QuantumPoints:     p.QuantumPoints,
		TotalEnergyEarned: p.TotalEnergyEarned,
		RebirthCount:      p.RebirthCount,
		SessionTime:       p.SessionTime,
		Production:        s.economy.TotalProduction(p.Generators, p.Upgrades),
		Generators:        gens,
		Upgrades:          append([]string(nil), p.Upgrades...),
		Achievements:      append([]string(nil), p.Achievements...),
	}
}
