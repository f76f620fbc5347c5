// Package achievements реализует одноразовые достижения игрока.
//
// Evaluator только мутирует состояние и возвращает данные; доставку
// уведомлений и сохранение выполняет Session Registry. Условия
// достижений монотонны, поэтому открытие необратимо и повторная
// проверка уже открытых ID не нужна.
package achievements

import (
	"energosphere-server/internal/domain"
)

// Evaluator проверяет определения достижений против состояния игрока.
type Evaluator struct {
	defs []domain.AchievementDefinition
}

// NewEvaluator создает evaluator по таблице определений.
func NewEvaluator(defs []domain.AchievementDefinition) *Evaluator {
	return &Evaluator{defs: defs}
}

// Definitions возвращает таблицу определений в порядке проверки.
func (ev *Evaluator) Definitions() []domain.AchievementDefinition {
	return ev.defs
}

// CheckAndUnlock проверяет все определения в порядке таблицы.
// Каждое выполненное и еще не открытое достижение добавляется в
// player.Achievements, его награда начисляется, а определение
// попадает в результат. Повторный вызов на неизменном состоянии
// возвращает пустой срез: награды не выдаются дважды.
func (ev *Evaluator) CheckAndUnlock(player *domain.Player) []domain.AchievementDefinition {
	var unlocked []domain.AchievementDefinition

	for _, def := range ev.defs {
		if player.HasAchievement(def.ID) {
			continue
		}
		if !satisfied(def.Condition, player) {
			continue
		}

		player.Achievements = append(player.Achievements, def.ID)
		applyReward(def.Reward, player)
		unlocked = append(unlocked, def)
	}

	return unlocked
}

// satisfied интерпретирует типизированное условие.
// Неизвестный вид условия считается невыполненным (достижение
// просто никогда не откроется, ошибки нет).
func satisfied(c domain.Condition, p *domain.Player) bool {
	switch c.Kind {
	case domain.CondTotalClicks:
		return float64(p.TotalClicks) >= c.Threshold
	case domain.CondTotalEnergy:
		return p.TotalEnergyEarned >= c.Threshold
	case domain.CondAnyGenerator:
		for _, g := range p.Generators {
			if g.Count > 0 {
				return true
			}
		}
		return false
	case domain.CondRebirthCount:
		return float64(p.RebirthCount) >= c.Threshold
	case domain.CondInGuild:
		return p.GuildID != ""
	default:
		return false
	}
}

func applyReward(r domain.Reward, p *domain.Player) {
	// Награда увеличивает только текущую энергию: TotalEnergyEarned
	// отражает добытое игроком и не включает бонусы достижений.
	if r.Energy > 0 {
		p.Energy += r.Energy
	}
	if r.Quantum > 0 {
		p.QuantumPoints += r.Quantum
	}
}
