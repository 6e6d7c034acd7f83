package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/fleet-maintenance/internal/config"
	"github.com/ukydev/fleet-maintenance/internal/db"
	"github.com/ukydev/fleet-maintenance/internal/scoring"
)

// MeterReading is the payload vehicles and equipment publish on the meter
// topic: the asset and its current odometer or hour-meter value.
type MeterReading struct {
	AssetID string  `json:"asset_id"`
	Reading float64 `json:"reading"`
}

// UsageListener subscribes to meter readings and folds them into the stored
// usage counters. It keeps a session-local cache of the last reading per
// asset; cache and incoming values are reconciled by taking the maximum
// before the store applies the same rule against the server-held counter.
type UsageListener struct {
	client mqtt.Client
	assets db.AssetCollection
	topic  string

	mu    sync.Mutex
	cache map[string]float64
}

// NewUsageListener creates a listener for the configured broker and topic.
func NewUsageListener(cfg config.MQTTConfig, assets db.AssetCollection) *UsageListener {
	l := &UsageListener{
		assets: assets,
		topic:  cfg.Topic,
		cache:  make(map[string]float64),
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(10 * time.Second)
	l.client = mqtt.NewClient(opts)
	return l
}

// Start connects to the broker and subscribes to the meter topic.
func (l *UsageListener) Start() error {
	if token := l.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt connect: %w", token.Error())
	}
	if token := l.client.Subscribe(l.topic, 1, l.handleMessage); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt subscribe %s: %w", l.topic, token.Error())
	}
	log.WithField("topic", l.topic).Info("usage listener started")
	return nil
}

// Stop disconnects from the broker.
func (l *UsageListener) Stop() {
	l.client.Disconnect(250)
}

func (l *UsageListener) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := l.apply(ctx, msg.Payload()); err != nil {
		log.WithError(err).WithField("topic", msg.Topic()).Warn("meter reading dropped")
	}
}

// apply parses one reading and writes the reconciled counter. Malformed or
// negative readings are dropped; a valid reading lower than the cached one
// still reaches the store, where $max keeps the counter from rolling back.
func (l *UsageListener) apply(ctx context.Context, payload []byte) error {
	var reading MeterReading
	if err := json.Unmarshal(payload, &reading); err != nil {
		return fmt.Errorf("invalid meter payload: %w", err)
	}
	if reading.AssetID == "" {
		return fmt.Errorf("meter payload missing asset_id")
	}
	if math.IsNaN(reading.Reading) || reading.Reading < 0 {
		return fmt.Errorf("unusable meter value %v for asset %s", reading.Reading, reading.AssetID)
	}

	l.mu.Lock()
	merged := scoring.ReconcileUsage(l.cache[reading.AssetID], reading.Reading)
	l.cache[reading.AssetID] = merged
	l.mu.Unlock()

	if err := l.assets.RecordUsageReading(ctx, reading.AssetID, merged); err != nil {
		return fmt.Errorf("record usage for asset %s: %w", reading.AssetID, err)
	}
	return nil
}
