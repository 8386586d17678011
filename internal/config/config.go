package config

import (
	"encoding/base64"
	"fmt"
	"time"
)

type Config struct {
	ServerAddr     string
	DatabaseDSN    string
	SigningKey     []byte
	AllowedOrigins []string
	YouTubeAPIKey  string
	StatsKey       string
	RoomCapacity   int
	IdleRoomGrace  time.Duration
}

func decodeSigningSecret(base64Secret string) ([]byte, error) {
	if base64Secret == "" {
		return nil, fmt.Errorf("signing secret cannot be empty")
	}
	return base64.StdEncoding.DecodeString(base64Secret)
}

// NewConfig validates and assembles the server configuration. The
// database DSN, YouTube key, and stats key are optional: an empty DSN
// selects the in-memory store, and empty keys disable their features.
func NewConfig(serverAddr, databaseDSN, base64Secret string, allowedOrigins []string,
	youtubeKey, statsKey string, roomCapacity int, idleRoomGrace time.Duration) (*Config, error) {
	if serverAddr == "" {
		return nil, fmt.Errorf("server address cannot be empty")
	}
	if roomCapacity < 0 {
		return nil, fmt.Errorf("room capacity cannot be negative")
	}
	if idleRoomGrace < 0 {
		return nil, fmt.Errorf("idle room grace cannot be negative")
	}

	signingKey, err := decodeSigningSecret(base64Secret)
	if err != nil {
		return nil, fmt.Errorf("decode signing secret: %w", err)
	}

	return &Config{
		ServerAddr:     serverAddr,
		DatabaseDSN:    databaseDSN,
		SigningKey:     signingKey,
		AllowedOrigins: allowedOrigins,
		YouTubeAPIKey:  youtubeKey,
		StatsKey:       statsKey,
		RoomCapacity:   roomCapacity,
		IdleRoomGrace:  idleRoomGrace,
	}, nil
}
