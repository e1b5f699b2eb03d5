package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"paper-soccer/internal/game"
)

// Weights tune the built-in strategies.
type Weights struct {
	WGoal    int `json:"wGoal"`
	WOwnGoal int `json:"wOwnGoal"`
	WAdvance int `json:"wAdvance"`
	WBounce  int `json:"wBounce"`
	WExpose  int `json:"wExpose"`
}

type Link struct {
	Port            int
	ConnectTimeout  time.Duration
	AcceptTimeout   time.Duration
	ConnectAttempts int
}

type Config struct {
	HTTPAddr       string
	LogLevel       string
	Board          game.Dimensions
	Rules          game.Rules
	StartingPlayer game.Player
	Strategy       string
	SearchBudget   int
	Weights        Weights
	Link           Link
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func DefaultWeights() Weights {
	return Weights{
		WGoal:    10000,
		WOwnGoal: 20000,
		WAdvance: 100,
		WBounce:  40,
		WExpose:  5000,
	}
}

// Load reads an optional .env file and then the environment. Unparseable
// values fall back to defaults; Validate reports semantic problems.
func Load() Config {
	_ = godotenv.Load()

	rules, err := game.ParseRules(getenv("RULES", "bounce"))
	if err != nil {
		rules = game.RulesBounce
	}
	starting, err := game.ParsePlayer(getenv("STARTING_PLAYER", "A"))
	if err != nil {
		starting = game.PlayerA
	}
	dw := DefaultWeights()

	return Config{
		HTTPAddr: getenv("HTTP_ADDR", ":8080"),
		LogLevel: getenv("LOG_LEVEL", "info"),
		Board: game.Dimensions{
			Width:     getenvInt("BOARD_WIDTH", 8),
			Height:    getenvInt("BOARD_HEIGHT", 10),
			GoalWidth: getenvInt("GOAL_WIDTH", 2),
		},
		Rules:          rules,
		StartingPlayer: starting,
		Strategy:       strings.ToLower(getenv("STRATEGY", "greedy")),
		SearchBudget:   getenvInt("LOOKAHEAD_BUDGET", 2000),
		Weights: Weights{
			WGoal:    getenvInt("W_GOAL", dw.WGoal),
			WOwnGoal: getenvInt("W_OWN_GOAL", dw.WOwnGoal),
			WAdvance: getenvInt("W_ADVANCE", dw.WAdvance),
			WBounce:  getenvInt("W_BOUNCE", dw.WBounce),
			WExpose:  getenvInt("W_EXPOSE", dw.WExpose),
		},
		Link: Link{
			Port:            getenvInt("LINK_PORT", 8988),
			ConnectTimeout:  getenvDuration("CONNECT_TIMEOUT", 500*time.Millisecond),
			AcceptTimeout:   getenvDuration("ACCEPT_TIMEOUT", 30*time.Second),
			ConnectAttempts: getenvInt("CONNECT_ATTEMPTS", 3),
		},
	}
}

func (c Config) Validate() error {
	if err := c.Board.Validate(); err != nil {
		return fmt.Errorf("board: %w", err)
	}
	if c.Link.Port < 0 || c.Link.Port > 65535 {
		return fmt.Errorf("link port %d out of range", c.Link.Port)
	}
	if c.Link.ConnectTimeout <= 0 || c.Link.AcceptTimeout <= 0 {
		return fmt.Errorf("link timeouts must be positive")
	}
	if c.Link.ConnectAttempts < 1 {
		return fmt.Errorf("connect attempts must be at least 1")
	}
	if c.SearchBudget < 1 {
		return fmt.Errorf("lookahead budget must be at least 1")
	}
	return nil
}
