package plan

import (
	"os"
	"path/filepath"
	"testing"
)

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func validConfigYAML() string {
	return `envelope:
  xMin: 0
  xMax: 12.5
  yMin: 0
  yMax: 9
  height: 2.7
tolerances:
  mergeGapM: 0.8
  overlapFraction: 0.75
scoring:
  highThreshold: 0.95
  mediumThreshold: 0.85
mqtt:
  broker: tcp://localhost:1883
  publishPrefix: planrecon
  clientId: planrecon-test
render:
  gridSpacingM: 0.5
  resolution: 300
`
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config fixture: %v", err)
	}
	return path
}

// ---------------------------------------------------------------------------
// LoadConfig
// ---------------------------------------------------------------------------

func TestLoadConfig_Valid(t *testing.T) {
	config, err := LoadConfig(writeConfig(t, validConfigYAML()))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if config.Envelope == nil {
		t.Fatal("envelope not parsed")
	}
	if config.Envelope.XMax != 12.5 {
		t.Errorf("envelope.xMax = %f, want 12.5", config.Envelope.XMax)
	}
	if config.Tolerances.MergeGapM != 0.8 {
		t.Errorf("tolerances.mergeGapM = %f, want 0.8", config.Tolerances.MergeGapM)
	}
	if config.MQTT == nil || config.MQTT.Broker != "tcp://localhost:1883" {
		t.Errorf("mqtt config not parsed: %+v", config.MQTT)
	}
	if config.Render.Resolution != 300 {
		t.Errorf("render.resolution = %f, want 300", config.Render.Resolution)
	}
}

func TestLoadConfig_NotExists(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing config file, got nil")
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "envelope: [not: a map"))
	if err == nil {
		t.Fatal("expected error for invalid YAML, got nil")
	}
}

func TestLoadConfig_MalformedEnvelope(t *testing.T) {
	body := `envelope:
  xMin: 10
  xMax: 0
  yMin: 0
  yMax: 8
`
	_, err := LoadConfig(writeConfig(t, body))
	if err == nil {
		t.Fatal("expected error for inverted envelope bounds, got nil")
	}
}

func TestLoadConfig_NegativeHeight(t *testing.T) {
	body := `envelope:
  xMin: 0
  xMax: 10
  yMin: 0
  yMax: 8
  height: -2
`
	_, err := LoadConfig(writeConfig(t, body))
	if err == nil {
		t.Fatal("expected error for negative envelope height, got nil")
	}
}

func TestLoadConfig_OverlapFractionOutOfRange(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "tolerances:\n  overlapFraction: 1.5\n"))
	if err == nil {
		t.Fatal("expected error for overlapFraction > 1, got nil")
	}
}

func TestLoadConfig_ThresholdOrdering(t *testing.T) {
	body := `scoring:
  highThreshold: 0.8
  mediumThreshold: 0.9
`
	_, err := LoadConfig(writeConfig(t, body))
	if err == nil {
		t.Fatal("expected error for mediumThreshold above highThreshold, got nil")
	}
}

func TestLoadConfig_MQTTWithoutBroker(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "mqtt:\n  clientId: x\n"))
	if err == nil {
		t.Fatal("expected error for mqtt section without broker, got nil")
	}
}

func TestLoadConfig_Empty(t *testing.T) {
	config, err := LoadConfig(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("empty config should load with zero values: %v", err)
	}
	if config.Envelope != nil || config.MQTT != nil {
		t.Error("empty config should leave optional sections nil")
	}
}

// ---------------------------------------------------------------------------
// SaveConfig
// ---------------------------------------------------------------------------

func TestSaveConfig_RoundTrip(t *testing.T) {
	original := &Config{
		Envelope:   &Envelope{XMin: 0, XMax: 10, YMin: 0, YMax: 8, Height: 2.7},
		Tolerances: Tolerances{MergeGapM: 0.4},
		MQTT:       &MQTTConfig{Broker: "tcp://broker:1883", ClientID: "rt"},
	}

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := SaveConfig(path, original); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if *loaded.Envelope != *original.Envelope {
		t.Errorf("envelope round trip: %+v vs %+v", loaded.Envelope, original.Envelope)
	}
	if loaded.MQTT.Broker != original.MQTT.Broker {
		t.Errorf("mqtt broker round trip: %q vs %q", loaded.MQTT.Broker, original.MQTT.Broker)
	}
}
