package hub_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/XavierBriggs/fortuna/services/value-engine/internal/client"
	"github.com/XavierBriggs/fortuna/services/value-engine/internal/hub"
	"github.com/XavierBriggs/fortuna/services/value-engine/internal/metrics"
	"github.com/XavierBriggs/fortuna/services/value-engine/pkg/models"
)

func startHub(t *testing.T, m *metrics.Metrics) *hub.Hub {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	h := hub.NewHub(1.5, m, zap.NewNop())
	go h.Run(ctx)
	return h
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestHub_BroadcastRespectsFilters(t *testing.T) {
	h := startHub(t, nil)

	epl := client.NewClient("epl", nil, h, zap.NewNop())
	epl.SetFilter(models.SubscriptionFilter{Sports: []string{"soccer_epl"}})
	swe := client.NewClient("swe", nil, h, zap.NewNop())
	swe.SetFilter(models.SubscriptionFilter{Sports: []string{"soccer_sweden_allsvenskan"}})

	h.Register(epl)
	h.Register(swe)

	if !h.Broadcast(models.Valuation{FixtureID: "f1", SportKey: "soccer_epl"}) {
		t.Fatal("broadcast should be accepted")
	}

	select {
	case msg := <-epl.Send:
		if msg.Type != models.MessageTypeValuation {
			t.Errorf("expected valuation message, got %s", msg.Type)
		}
		v, ok := msg.Payload.(models.Valuation)
		if !ok || v.FixtureID != "f1" {
			t.Errorf("unexpected payload %+v", msg.Payload)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("subscribed client did not receive the valuation")
	}

	select {
	case msg := <-swe.Send:
		t.Errorf("filtered client received %+v", msg)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHub_DisconnectsSlowClient(t *testing.T) {
	m := metrics.New()
	h := startHub(t, m)

	slow := client.NewClient("slow", nil, h, zap.NewNop())
	h.Register(slow)
	waitFor(t, func() bool { return h.GetClientCount() == 1 })

	for i := 0; i < client.SendBufferSize; i++ {
		slow.TrySend(models.ServerMessage{Type: models.MessageTypeHeartbeat})
	}

	h.Broadcast(models.Valuation{FixtureID: "f1", SportKey: "soccer_epl"})
	waitFor(t, func() bool {
		return h.GetClientCount() == 0 && testutil.ToFloat64(m.WSClients) == 0
	})
	if got := testutil.ToFloat64(m.ErrorsTotal.WithLabelValues(metrics.StageBroadcast)); got != 1 {
		t.Errorf("broadcast errors = %v, want 1", got)
	}

	// Unregistering an already removed client is a no-op
	h.Unregister(slow)
}

func TestHub_UnregisterAfterShutdownDoesNotBlock(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := hub.NewHub(1.5, nil, zap.NewNop())

	stopped := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(stopped)
	}()

	c := client.NewClient("late", nil, h, zap.NewNop())
	h.Register(c)
	cancel()
	<-stopped

	done := make(chan struct{})
	go func() {
		h.Unregister(c)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Unregister blocked after hub shutdown")
	}
}
