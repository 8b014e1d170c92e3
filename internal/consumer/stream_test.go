package consumer_test

import (
	"testing"

	"github.com/redis/go-redis/v9"

	"github.com/XavierBriggs/fortuna/services/value-engine/internal/consumer"
)

func TestDecodeMessage(t *testing.T) {
	const stream = "odds.snapshots.soccer_epl"

	tests := []struct {
		name      string
		values    map[string]interface{}
		wantErr   bool
		wantSport string
	}{
		{
			name: "Valid snapshot",
			values: map[string]interface{}{
				"data": `{"id":"abc","sport_key":"soccer_epl","home_team":"Arsenal","away_team":"Chelsea",` +
					`"commence_time":"2025-03-01T15:00:00Z","bookmakers":[{"key":"unibet","title":"Unibet",` +
					`"markets":[{"key":"h2h","outcomes":[{"name":"Arsenal","price":2.3}]}]}]}`,
			},
			wantSport: "soccer_epl",
		},
		{
			name:      "Sport key falls back to the stream",
			values:    map[string]interface{}{"data": `{"id":"abc","home_team":"Arsenal","away_team":"Chelsea"}`},
			wantSport: "soccer_epl",
		},
		{
			name:    "Missing data field",
			values:  map[string]interface{}{"snapshot": "{}"},
			wantErr: true,
		},
		{
			name:    "Malformed JSON",
			values:  map[string]interface{}{"data": `{"id":`},
			wantErr: true,
		},
		{
			name:    "Missing fixture id",
			values:  map[string]interface{}{"data": `{"home_team":"Arsenal"}`},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := consumer.DecodeMessage(stream, redis.XMessage{ID: "1-0", Values: tt.values})

			if msg.ID != "1-0" || msg.StreamKey != stream {
				t.Errorf("message identity lost: %+v", msg)
			}
			if (msg.Err != nil) != tt.wantErr {
				t.Fatalf("Err = %v, wantErr %v", msg.Err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if msg.Snapshot.SportKey != tt.wantSport {
				t.Errorf("SportKey = %s, want %s", msg.Snapshot.SportKey, tt.wantSport)
			}
			if msg.Snapshot.HomeTeam != "Arsenal" {
				t.Errorf("HomeTeam = %s, want Arsenal", msg.Snapshot.HomeTeam)
			}
		})
	}
}
