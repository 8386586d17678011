package config

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_NewConfig(t *testing.T) {
	secret := base64.StdEncoding.EncodeToString([]byte("test-signing-key"))

	tt := []struct {
		name          string
		serverAddr    string
		base64Secret  string
		roomCapacity  int
		idleRoomGrace time.Duration
		wantErr       bool
	}{
		{
			name:         "valid",
			serverAddr:   "localhost:8080",
			base64Secret: secret,
		},
		{
			name:         "empty address",
			serverAddr:   "",
			base64Secret: secret,
			wantErr:      true,
		},
		{
			name:         "empty secret",
			serverAddr:   "localhost:8080",
			base64Secret: "",
			wantErr:      true,
		},
		{
			name:         "secret not base64",
			serverAddr:   "localhost:8080",
			base64Secret: "not base64!!!",
			wantErr:      true,
		},
		{
			name:         "negative capacity",
			serverAddr:   "localhost:8080",
			base64Secret: secret,
			roomCapacity: -1,
			wantErr:      true,
		},
		{
			name:          "negative idle grace",
			serverAddr:    "localhost:8080",
			base64Secret:  secret,
			idleRoomGrace: -time.Minute,
			wantErr:       true,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := NewConfig(tc.serverAddr, "", tc.base64Secret, nil, "", "",
				tc.roomCapacity, tc.idleRoomGrace)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.serverAddr, cfg.ServerAddr)
			assert.Equal(t, []byte("test-signing-key"), cfg.SigningKey)
		})
	}
}

func Test_NewConfig_optionalFields(t *testing.T) {
	secret := base64.StdEncoding.EncodeToString([]byte("test-signing-key"))

	cfg, err := NewConfig("localhost:8080", "postgres://localhost/couchcast", secret,
		[]string{"http://localhost:3000"}, "yt-key", "stats-key", 20, 5*time.Minute)
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/couchcast", cfg.DatabaseDSN)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Equal(t, "yt-key", cfg.YouTubeAPIKey)
	assert.Equal(t, "stats-key", cfg.StatsKey)
	assert.Equal(t, 20, cfg.RoomCapacity)
	assert.Equal(t, 5*time.Minute, cfg.IdleRoomGrace)
}
