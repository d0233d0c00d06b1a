package mqtt

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborops/recvplan/core/events"
	"github.com/harborops/recvplan/core/model"
	"github.com/harborops/recvplan/internal/eventbus"
)

type published struct {
	topic   string
	qos     byte
	payload []byte
}

type mockClient struct {
	mu        sync.Mutex
	published []published
}

func (m *mockClient) IsConnected() bool   { return true }
func (m *mockClient) Connect() paho.Token { return dummyToken{} }
func (m *mockClient) Disconnect(uint)     {}
func (m *mockClient) Publish(topic string, qos byte, _ bool, payload interface{}) paho.Token {
	m.mu.Lock()
	m.published = append(m.published, published{topic, qos, payload.([]byte)})
	m.mu.Unlock()
	return dummyToken{}
}

func (m *mockClient) snapshot() []published {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]published(nil), m.published...)
}

type dummyToken struct{ err error }

func (d dummyToken) Wait() bool                     { return true }
func (d dummyToken) WaitTimeout(time.Duration) bool { return true }
func (d dummyToken) Done() <-chan struct{}          { ch := make(chan struct{}); close(ch); return ch }
func (d dummyToken) Error() error                   { return d.err }

func newMockNotifier(t *testing.T) (*Notifier, *mockClient) {
	t.Helper()
	mc := &mockClient{}
	orig := newMQTTClient
	newMQTTClient = func(*paho.ClientOptions) pahoClient { return mc }
	t.Cleanup(func() { newMQTTClient = orig })
	n, err := NewNotifier(Config{Broker: "tcp://localhost:1883", ClientID: "test", TopicPrefix: "cfs", QoS: 1})
	require.NoError(t, err)
	return n, mc
}

func TestNotifierPublishesPlanTransitions(t *testing.T) {
	n, mc := newMockNotifier(t)
	bus := eventbus.New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		n.Run(ctx, bus)
		close(done)
	}()
	// Give Run time to subscribe; events published with no subscriber are dropped.
	time.Sleep(100 * time.Millisecond)

	bus.Publish(events.PlanTransitionEvent{
		PlanID: "p1", PlanCode: "A",
		From: model.PlanScheduled, To: model.PlanInProgress,
		At: time.Now().UTC(),
	})

	require.Eventually(t, func() bool { return len(mc.snapshot()) == 1 }, time.Second, 10*time.Millisecond)
	got := mc.snapshot()[0]
	assert.Equal(t, "cfs/plans/p1/status", got.topic)
	assert.Equal(t, byte(1), got.qos)
	var ev events.PlanTransitionEvent
	require.NoError(t, json.Unmarshal(got.payload, &ev))
	assert.Equal(t, model.PlanInProgress, ev.To)

	cancel()
	<-done
}

func TestNotifierPublishesContainerActions(t *testing.T) {
	n, mc := newMockNotifier(t)
	bus := eventbus.New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go n.Run(ctx, bus)
	// Give Run time to subscribe; events published with no subscriber are dropped.
	time.Sleep(100 * time.Millisecond)

	bus.Publish(events.ContainerActionEvent{
		PlanID: "p1", ContainerID: "c1",
		Action: "receive", Status: model.ContainerReceived,
	})
	require.Eventually(t, func() bool { return len(mc.snapshot()) == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, "cfs/plans/p1/containers", mc.snapshot()[0].topic)
}

func TestNotifierStopsWhenBusCloses(t *testing.T) {
	n, _ := newMockNotifier(t)
	bus := eventbus.New()
	done := make(chan struct{})
	go func() {
		n.Run(context.Background(), bus)
		close(done)
	}()
	bus.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("notifier did not stop on bus close")
	}
}

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	cfg.SetDefaults()
	assert.Equal(t, "recvplan", cfg.ClientID)
	assert.Equal(t, "cfs", cfg.TopicPrefix)
}
