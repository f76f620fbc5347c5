package server

import (
	"encoding/json"
	"net/http"
	_ "net/http/pprof" // Profiling

	"energosphere-server/internal/auth"
	"energosphere-server/internal/registry"
	"energosphere-server/internal/version"
	"energosphere-server/pkg/logger"
)

type Server struct {
	Registry *registry.Service
	Auth     *auth.Auth
	Port     string
}

func New(reg *registry.Service, a *auth.Auth, port string) *Server {
	return &Server{
		Registry: reg,
		Auth:     a,
		Port:     port,
	}
}

// Run запускает HTTP сервер
func (s *Server) Run() error {
	mux := http.DefaultServeMux

	// Регистрируем роуты
	mux.HandleFunc("/ws", enableCORS(s.handleWS))
	mux.HandleFunc("/health", enableCORS(s.handleHealth))
	mux.HandleFunc("/version", enableCORS(s.handleVersion))

	mux.HandleFunc("/api/register", enableCORS(s.Auth.HandleRegister))
	mux.HandleFunc("/api/login", enableCORS(s.Auth.HandleLogin))

	// Read-only запросы для дашбордов
	queryHandler := NewQueryHandler(s.Registry)
	queryHandler.RegisterRoutes(mux)

	logger.Log.Infof("⚡ Energosphere Server running on :%s", s.Port)
	return http.ListenAndServe(":"+s.Port, mux)
}

func enableCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Разрешаем запросы с фронтенда
		w.Header().Set("Access-Control-Allow-Origin", "*")
		// Разрешаем заголовки, если фронт шлет что-то нестандартное
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		next(w, r)
	}
}

// handleWS обрабатывает подключение по WebSocket
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Error("Upgrade error:", err)
		return
	}

	client := NewClient(s.Registry, s.Auth, conn)

	// Запускаем пампы
	go client.writePump()
	go client.readPump()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ok")); err != nil {
		logger.Log.WithError(err).Debug("health write failed")
	}
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(version.Info()); err != nil {
		logger.Log.WithError(err).Debug("version write failed")
	}
}
