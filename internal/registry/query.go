package registry

import (
	"sort"

	"energosphere-server/internal/events"
	"energosphere-server/pkg/api"
)

// Read-only запросы для дашбордов и REST. Берут RLock и не мутируют
// состояние; run-цикл держит полный Lock на время каждого хендлера,
// поэтому снапшоты всегда консистентны.

// ConnectedCount возвращает число подключенных игроков.
func (s *Service) ConnectedCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.online)
}

// TopByEnergy возвращает до n игроков, отсортированных по энергии.
func (s *Service) TopByEnergy(n int) []api.PlayerSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := s.summariesLocked()
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Energy > summaries[j].Energy
	})
	return clip(summaries, n)
}

// TopByRebirth возвращает до n игроков по перерождениям,
// при равенстве - по энергии.
func (s *Service) TopByRebirth(n int) []api.PlayerSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := s.summariesLocked()
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].RebirthCount != summaries[j].RebirthCount {
			return summaries[i].RebirthCount > summaries[j].RebirthCount
		}
		return summaries[i].Energy > summaries[j].Energy
	})
	return clip(summaries, n)
}

// Stats возвращает агрегаты по всем известным игрокам.
func (s *Service) Stats() api.StatsView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := api.StatsView{
		TotalPlayers:  len(s.players),
		OnlinePlayers: len(s.online),
		ServerUptime:  s.now().Sub(s.startedAt).Seconds(),
	}
	for _, p := range s.players {
		stats.TotalEnergy += p.Energy
		stats.TotalRebirths += p.RebirthCount
	}
	return stats
}

// ActiveEvents возвращает снапшоты активных событий.
func (s *Service) ActiveEvents() []events.Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scheduler.ActiveSummaries()
}

// EventHistory возвращает последние limit запусков событий.
func (s *Service) EventHistory(limit int) []events.HistoryView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scheduler.History(limit)
}

func (s *Service) summariesLocked() []api.PlayerSummary {
	summaries := make([]api.PlayerSummary, 0, len(s.players))
	for _, p := range s.players {
		summaries = append(summaries, api.PlayerSummary{
			ID:            p.ID.String(),
			Energy:        p.Energy,
			QuantumPoints: p.QuantumPoints,
			RebirthCount:  p.RebirthCount,
		})
	}
	return summaries
}

func clip(s []api.PlayerSummary, n int) []api.PlayerSummary {
	if n > 0 && len(s) > n {
		return s[:n]
	}
	return s
}
