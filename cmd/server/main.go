package main

import (
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"botholdem/holdem"
	"botholdem/internal/auth"
	"botholdem/internal/controller"
	"botholdem/internal/gateway"
	"botholdem/internal/ledger"
	"botholdem/replay"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	logger := log.With().Str("component", "server").Logger()

	authService, authMode, err := auth.NewServiceFromEnv()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init auth service")
	}
	defer authService.Close()

	ledgerService, ledgerMode, err := ledger.NewServiceFromEnv(authMode)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init ledger service")
	}
	defer ledgerService.Close()

	clock := quartz.NewReal()
	cfg := defaultTableConfig()

	recorder := replay.NewRecorder(
		intEnvOrDefault("MAX_REPLAYS_IN_MEMORY", 100),
		intEnvOrDefault("REPLAY_CHECKPOINT_INTERVAL", 50),
		nil,
	)
	defer recorder.Close()

	gw := gateway.New(authService, nil)
	broadcaster := controller.NewHistoryBroadcaster(gw, ledgerService)
	manager := controller.NewManager(cfg, broadcaster, clock)
	manager.SetRecorder(recorder)
	defer manager.Stop()
	gw.SetManager(manager)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", gw.HandleWebSocket)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	addr := strings.TrimSpace(os.Getenv("SERVER_ADDR"))
	if addr == "" {
		addr = ":18080"
	}
	logger.Info().Str("auth_mode", authMode).Str("ledger_mode", ledgerMode).Str("addr", addr).Msg("starting server")
	if err := http.ListenAndServe(addr, withCORS(mux)); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

func defaultTableConfig() controller.Config {
	return controller.Config{
		Engine:         engineConfigFromEnv(),
		TurnTimeLimit:  durationEnvSeconds("TURN_TIME_LIMIT_SECONDS", 20*time.Second),
		HandStartDelay: durationEnvMillis("HAND_START_DELAY_MS", 2000*time.Millisecond),
		IdleSeatTTL:    durationEnvSeconds("IDLE_SEAT_TTL_SECONDS", 30*time.Second),
		Start:          controller.StartPolicy{MinPlayers: intEnvOrDefault("AUTO_START_MIN_PLAYERS", 2)},
	}
}

func engineConfigFromEnv() holdem.EngineConfig {
	return holdem.EngineConfig{
		MaxPlayers: intEnvOrDefault("TABLE_MAX_PLAYERS", 6),
		MinPlayers: intEnvOrDefault("TABLE_MIN_PLAYERS", 2),
		SmallBlind: int64EnvOrDefault("SMALL_BLIND", 50),
		BigBlind:   int64EnvOrDefault("BIG_BLIND", 100),
		MinBuyIn:   int64EnvOrDefault("MIN_BUY_IN", 1000),
		MaxBuyIn:   int64EnvOrDefault("MAX_BUY_IN", 20000),
	}
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func intEnvOrDefault(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func int64EnvOrDefault(key string, fallback int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func durationEnvSeconds(key string, fallback time.Duration) time.Duration {
	n := int64EnvOrDefault(key, -1)
	if n < 0 {
		return fallback
	}
	return time.Duration(n) * time.Second
}

func durationEnvMillis(key string, fallback time.Duration) time.Duration {
	n := int64EnvOrDefault(key, -1)
	if n < 0 {
		return fallback
	}
	return time.Duration(n) * time.Millisecond
}
