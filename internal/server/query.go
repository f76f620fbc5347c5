package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"energosphere-server/internal/registry"
)

// QueryHandler предоставляет read-only доступ к состоянию симуляции
type QueryHandler struct {
	Service *registry.Service
}

func NewQueryHandler(s *registry.Service) *QueryHandler {
	return &QueryHandler{Service: s}
}

// RegisterRoutes регистрирует REST-эндпоинты дашбордов
func (h *QueryHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/players", h.handlePlayers)
	mux.HandleFunc("/api/leaderboard", h.handleLeaderboard)
	mux.HandleFunc("/api/stats", h.handleStats)
	mux.HandleFunc("/api/events", h.handleEvents)
}

// /api/players - топ игроков по энергии
func (h *QueryHandler) handlePlayers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Service.TopByEnergy(limitParam(r, 100)))
}

// /api/leaderboard - топ по перерождениям (при равенстве - по энергии)
func (h *QueryHandler) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Service.TopByRebirth(limitParam(r, 50)))
}

// /api/stats - агрегированная статистика сервера
func (h *QueryHandler) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Service.Stats())
}

// /api/events - активные события плюс недавняя история
func (h *QueryHandler) handleEvents(w http.ResponseWriter, r *http.Request) {
	type eventsView struct {
		Active  interface{} `json:"active"`
		History interface{} `json:"history"`
	}
	writeJSON(w, eventsView{
		Active:  h.Service.ActiveEvents(),
		History: h.Service.EventHistory(limitParam(r, 10)),
	})
}

// limitParam читает ?limit= с верхней границей по умолчанию
func limitParam(r *http.Request, def int) int {
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= def {
			return n
		}
	}
	return def
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	// Разрешаем запросы с любого источника (нужно для внешних дашбордов)
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	w.Header().Set("Content-Type", "application/json")

	// Если data == nil (например, пустой список), возвращаем [], а не null
	if data == nil {
		if _, err := w.Write([]byte("[]")); err != nil {
			return
		}
		return
	}

	if err := json.NewEncoder(w).Encode(data); err != nil {
		return
	}
}
