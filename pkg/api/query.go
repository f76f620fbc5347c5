package api

// --- READ-ONLY QUERY SURFACE (дашборды, REST) ---

// PlayerSummary это строка лидерборда.
type PlayerSummary struct {
	ID            string  `json:"id"`
	Energy        float64 `json:"energy"`
	QuantumPoints int     `json:"quantumPoints"`
	RebirthCount  int     `json:"rebirthCount"`
}

// StatsView это агрегированная статистика сервера.
type StatsView struct {
	TotalPlayers  int     `json:"totalPlayers"`
	OnlinePlayers int     `json:"onlinePlayers"`
	TotalEnergy   float64 `json:"totalEnergy"`
	TotalRebirths int     `json:"totalRebirths"`
	ServerUptime  float64 `json:"serverUptime"` // секунды
}
