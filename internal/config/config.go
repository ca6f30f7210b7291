package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Storage
	DBPath    string
	ModelPath string

	// NHL API
	NHLBaseURL   string
	NHLStatsURL  string
	SeasonID     string
	GameType     int

	// The Odds API
	OddsBaseURL string
	OddsAPIKey  string
	Bookmaker   string

	// Player name -> ID resolution table
	PlayerMapPath string

	// Edge engine thresholds
	EdgeLimitsPath string

	// Fetch concurrency
	FetchWorkers int

	// Telemetry
	LogLevel string
}

func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		DBPath:    envStr("SOG_DB_PATH", "data/sog_edge.db"),
		ModelPath: envStr("SOG_MODEL_PATH", "data/shots_model.json"),

		NHLBaseURL:  envStr("NHL_BASE_URL", "https://api-web.nhle.com/v1"),
		NHLStatsURL: envStr("NHL_STATS_URL", "https://api.nhle.com/stats/rest/en"),
		SeasonID:    envStr("SEASON_ID", "20252026"),
		GameType:    envInt("GAME_TYPE", 2),

		OddsBaseURL: envStr("ODDS_BASE_URL", "https://api.the-odds-api.com/v4"),
		OddsAPIKey:  envStr("ODDS_API_KEY", ""),
		Bookmaker:   envStr("BOOKMAKER", "fanduel"),

		PlayerMapPath: envStr("PLAYER_MAP_PATH", "data/player_name_to_id.csv"),

		EdgeLimitsPath: envStr("EDGE_LIMITS_PATH", "internal/config/edge_limits.yaml"),

		// Bounded pool for concurrent odds/boxscore fetches. Upstream quotas
		// are enforced per-client; this only caps in-flight requests.
		FetchWorkers: envInt("FETCH_WORKERS", 4),

		LogLevel: envStr("LOG_LEVEL", "info"),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
