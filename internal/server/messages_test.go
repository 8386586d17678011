package server

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ClientCommand_decode(t *testing.T) {
	tt := []struct {
		name  string
		input string
		check func(t *testing.T, cmd ClientCommand)
	}{
		{
			name:  "set name",
			input: `{"setName":"alice"}`,
			check: func(t *testing.T, cmd ClientCommand) {
				require.NotNil(t, cmd.SetName)
				assert.Equal(t, "alice", *cmd.SetName)
			},
		},
		{
			name:  "seek",
			input: `{"seek":42.5}`,
			check: func(t *testing.T, cmd ClientCommand) {
				require.NotNil(t, cmd.Seek)
				assert.Equal(t, 42.5, *cmd.Seek)
			},
		},
		{
			name:  "lock",
			input: `{"lock":{"uid":"u1","token":"t1","locked":true}}`,
			check: func(t *testing.T, cmd ClientCommand) {
				require.NotNil(t, cmd.Lock)
				assert.Equal(t, "u1", cmd.Lock.Uid)
				assert.True(t, cmd.Lock.Locked)
			},
		},
		{
			name:  "change controller keeps its wire name",
			input: `{"changeController":"conn2"}`,
			check: func(t *testing.T, cmd ClientCommand) {
				require.NotNil(t, cmd.ChangeControl)
				assert.Equal(t, "conn2", *cmd.ChangeControl)
			},
		},
		{
			name:  "delete chat messages",
			input: `{"deleteChatMessages":{"uid":"u1","token":"t1","author":"conn1"}}`,
			check: func(t *testing.T, cmd ClientCommand) {
				require.NotNil(t, cmd.DeleteChat)
				assert.Equal(t, "conn1", cmd.DeleteChat.Author)
				assert.Empty(t, cmd.DeleteChat.Timestamp)
			},
		},
		{
			name:  "empty envelope",
			input: `{}`,
			check: func(t *testing.T, cmd ClientCommand) {
				assert.Nil(t, cmd.SetName)
				assert.Nil(t, cmd.Host)
				assert.Nil(t, cmd.Chat)
			},
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			var cmd ClientCommand
			require.NoError(t, json.Unmarshal([]byte(tc.input), &cmd))
			tc.check(t, cmd)
		})
	}
}

func Test_ServerEvent_marshalOmitsEmpty(t *testing.T) {
	v := 10.5
	data, err := json.Marshal(&ServerEvent{Seek: &v})
	require.NoError(t, err)
	assert.JSONEq(t, `{"seek":10.5}`, string(data),
		"expected unset event fields to be omitted")
}

func Test_ServerEvent_positionMapWireName(t *testing.T) {
	data, err := json.Marshal(&ServerEvent{
		PositionMap: &PositionMapEvent{Positions: map[string]float64{"conn1": 3}},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"tsMap":{"positions":{"conn1":3}}}`, string(data))
}

func Test_Now_format(t *testing.T) {
	ts := Now()
	parsed, err := time.Parse(time.RFC3339Nano, ts)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, parsed.Location())
}
