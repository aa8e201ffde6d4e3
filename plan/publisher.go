package plan

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Publisher pushes reconstruction results to MQTT so downstream consumers
// (placement engines, dashboards) can react without polling. Results are
// published retained so late subscribers get the latest reconstruction.
type Publisher struct {
	client mqtt.Client
	prefix string
	qos    byte
	retain bool
}

// NewPublisher creates a result publisher. If client is nil, publishing is
// disabled (for testing and CLI-only runs).
func NewPublisher(client mqtt.Client, prefix string) *Publisher {
	if prefix == "" {
		prefix = "planrecon"
	}
	return &Publisher{
		client: client,
		prefix: prefix,
		qos:    1, // results are few and must arrive
		retain: true,
	}
}

// PublishResult publishes the walls and rooms as GeoJSON plus the quality
// report, each to its own retained topic under the configured prefix.
func (p *Publisher) PublishResult(res *Result) error {
	if p.client == nil || !p.client.IsConnected() {
		return fmt.Errorf("MQTT client not connected")
	}
	if res == nil {
		return fmt.Errorf("nil result")
	}

	if err := p.publishJSON("walls", WallsToFeatureCollection(res.Walls)); err != nil {
		return err
	}
	if err := p.publishJSON("rooms", RoomsToFeatureCollection(res.Rooms)); err != nil {
		return err
	}
	if err := p.publishJSON("report", res.Report); err != nil {
		return err
	}

	log.Printf("[MQTT] published result: %d walls, %d rooms (high=%d medium=%d low=%d)",
		len(res.Walls), len(res.Rooms), res.Report.High, res.Report.Medium, res.Report.Low)
	return nil
}

func (p *Publisher) publishJSON(subtopic string, payload interface{}) error {
	topic := fmt.Sprintf("%s/%s", p.prefix, subtopic)

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", subtopic, err)
	}

	token := p.client.Publish(topic, p.qos, p.retain, data)
	if token.WaitTimeout(2*time.Second) && token.Error() != nil {
		return fmt.Errorf("publishing to %s: %w", topic, token.Error())
	}
	return nil
}

// ConnectMQTT builds and connects an MQTT client from config. Returns nil
// when cfg is nil (MQTT disabled).
func ConnectMQTT(cfg *MQTTConfig) (mqtt.Client, error) {
	if cfg == nil {
		return nil, nil
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "planrecon"
	}
	opts.SetClientID(clientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetConnectTimeout(10 * time.Second)
	opts.SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("MQTT connect timeout to %s", cfg.Broker)
	}
	if token.Error() != nil {
		return nil, fmt.Errorf("MQTT connect to %s: %w", cfg.Broker, token.Error())
	}

	log.Printf("[MQTT] connected to %s as %s", cfg.Broker, clientID)
	return client, nil
}
