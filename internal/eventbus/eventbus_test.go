package eventbus

import (
	"context"
	"testing"
	"time"

	"github.com/annel0/veinminer/internal/vec"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestNewEnvelope(t *testing.T) {
	payload := BlockRemoved{SearchID: "s1", Pos: vec.Vec3{X: 1, Y: 2, Z: 3}, Block: "iron_ore", Remaining: 4}

	ev, err := NewEnvelope(SourceHarvest, EventBlockRemoved, "s1", payload)
	require.NoError(t, err)

	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, EventBlockRemoved, ev.EventType)
	assert.Equal(t, PayloadVersion, ev.Version)
	assert.Equal(t, "s1", ev.CorrelationID)

	var decoded BlockRemoved
	require.NoError(t, ev.Decode(&decoded))
	assert.Equal(t, payload, decoded)

	other, err := NewEnvelope(SourceHarvest, EventBlockRemoved, "s1", payload)
	require.NoError(t, err)
	assert.NotEqual(t, ev.ID, other.ID)
}

func TestMemoryBus_FilteredDelivery(t *testing.T) {
	defer goleak.VerifyNone(t)

	bus := NewMemoryBus(16)
	defer bus.Close()

	got := make(chan *Envelope, 4)
	_, err := bus.Subscribe(context.Background(), Filter{Types: []string{EventClusterFound}}, func(ctx context.Context, ev *Envelope) {
		got <- ev
	})
	require.NoError(t, err)

	found, err := NewEnvelope(SourceHarvest, EventClusterFound, "s1", ClusterFound{SearchID: "s1", Blocks: 3})
	require.NoError(t, err)
	removed, err := NewEnvelope(SourceHarvest, EventBlockRemoved, "s1", BlockRemoved{SearchID: "s1"})
	require.NoError(t, err)

	require.NoError(t, bus.Publish(context.Background(), removed))
	require.NoError(t, bus.Publish(context.Background(), found))

	select {
	case ev := <-got:
		assert.Equal(t, found.ID, ev.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("Событие не доставлено")
	}

	require.NoError(t, bus.Close())
	assert.Empty(t, got, "Отфильтрованное событие не должно доставляться")

	stats := bus.Metrics()
	assert.Equal(t, uint64(2), stats.Published)
	assert.Equal(t, uint64(1), stats.Consumed)
}

func TestMemoryBus_Closed(t *testing.T) {
	// Close дожидается цикла рассылки
	defer goleak.VerifyNone(t)

	bus := NewMemoryBus(4)
	require.NoError(t, bus.Close())
	require.NoError(t, bus.Close())

	assert.ErrorIs(t, bus.Publish(context.Background(), &Envelope{}), ErrBusClosed)
	_, err := bus.Subscribe(context.Background(), Filter{}, func(context.Context, *Envelope) {})
	assert.ErrorIs(t, err, ErrBusClosed)
}

func TestGlobalPublish(t *testing.T) {
	Init(nil)
	assert.NoError(t, Publish(context.Background(), &Envelope{}), "Без шины публикация — no-op")

	bus := NewMemoryBus(4)
	defer bus.Close()
	Init(bus)
	defer Init(nil)

	require.NoError(t, Publish(context.Background(), &Envelope{EventType: EventClusterFound}))
	assert.Equal(t, uint64(1), bus.Metrics().Published)
}

type fixedStats struct {
	EventBus
	stats Stats
}

func (f *fixedStats) Metrics() Stats { return f.stats }

func TestMetricsExporter_Sync(t *testing.T) {
	bus := &fixedStats{stats: Stats{Published: 5, Consumed: 3, Dropped: 1, InFlight: 2}}
	reg := prometheus.NewRegistry()
	me := NewMetricsExporter(bus, reg)

	me.sync()
	assert.Equal(t, 5.0, testutil.ToFloat64(me.published))
	assert.Equal(t, 3.0, testutil.ToFloat64(me.consumed))
	assert.Equal(t, 2.0, testutil.ToFloat64(me.inflight))

	bus.stats.Published = 8
	bus.stats.InFlight = 0
	me.sync()
	assert.Equal(t, 8.0, testutil.ToFloat64(me.published))
	assert.Equal(t, 0.0, testutil.ToFloat64(me.inflight))

	me.Stop()
}
