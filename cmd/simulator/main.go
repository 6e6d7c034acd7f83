package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
)

// MeterReading mirrors the ingest payload: an asset and its current odometer
// or hour-meter value.
type MeterReading struct {
	AssetID string  `json:"asset_id"`
	Reading float64 `json:"reading"`
}

// simulatedAsset tracks one meter the simulator advances.
type simulatedAsset struct {
	id      string
	reading float64
	perTick float64 // average usage added per tick
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	broker := envOr("MQTT_BROKER", "tcp://localhost:1883")
	topic := envOr("MQTT_METER_TOPIC", "fleet/meters/sim")
	interval := 5 * time.Second
	if s := os.Getenv("SIM_INTERVAL_SECONDS"); s != "" {
		if parsed, err := strconv.Atoi(s); err == nil && parsed > 0 {
			interval = time.Duration(parsed) * time.Second
		}
	}

	assetIDs := os.Args[1:]
	if len(assetIDs) == 0 {
		log.Fatal("usage: simulator <asset-id> [asset-id...]")
	}

	fleet := make([]*simulatedAsset, 0, len(assetIDs))
	for i, id := range assetIDs {
		vehicle := i%2 == 0
		perTick := 2.5 // equipment hours
		if vehicle {
			perTick = 40 // vehicle distance
		}
		fleet = append(fleet, &simulatedAsset{
			id:      id,
			reading: rand.Float64() * 1000,
			perTick: perTick,
		})
	}

	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(fmt.Sprintf("fleet-meter-sim-%d", os.Getpid()))
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalf("Failed to connect to broker: %v", token.Error())
	}
	defer client.Disconnect(250)

	log.WithFields(log.Fields{
		"broker": broker,
		"topic":  topic,
		"assets": len(fleet),
	}).Info("meter simulator started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		for _, asset := range fleet {
			// Usage only accumulates while the asset is working
			if rand.Float64() < 0.3 {
				continue
			}
			asset.reading += asset.perTick * (0.5 + rand.Float64())

			payload, err := json.Marshal(MeterReading{AssetID: asset.id, Reading: asset.reading})
			if err != nil {
				log.WithError(err).Error("failed to marshal reading")
				continue
			}
			token := client.Publish(topic, 1, false, payload)
			token.Wait()
			if token.Error() != nil {
				log.WithError(token.Error()).WithField("asset", asset.id).Warn("publish failed")
				continue
			}
			log.WithFields(log.Fields{
				"asset":   asset.id,
				"reading": fmt.Sprintf("%.1f", asset.reading),
			}).Debug("published meter reading")
		}
	}
}
