package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Clock         ClockJSON    `json:"clock"`
	Ready         bool         `json:"ready"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Counts        CountsJSON   `json:"event_counts"`
	Losses        LossesJSON   `json:"losses"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// ClockJSON is what the clock is currently keeping and showing.
type ClockJSON struct {
	Time       string `json:"time"`
	Date       string `json:"date"`
	View       string `json:"view"`
	Power      string `json:"power"`
	Lit        bool   `json:"lit"`
	Brightness uint8  `json:"brightness"`
	Session    string `json:"session"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	Ticks         int `json:"ticks"`
	DateSets      int `json:"date_sets"`
	TimeSets      int `json:"time_sets"`
	CommandErrors int `json:"command_errors"`
	Overflows     int `json:"overflows"`
	ButtonPresses int `json:"button_presses"`
	Rollovers     int `json:"rollovers"`
}

// LossesJSON is the JSON representation of the loss counters.
type LossesJSON struct {
	ButtonEdges  uint32 `json:"button_edges"`
	ADCCoalesced uint32 `json:"adc_coalesced"`
	ADCResults   uint32 `json:"adc_results"`
	MQTTQueue    uint32 `json:"mqtt_queue"`
	MQTTOutbox   uint32 `json:"mqtt_outbox"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	TickMs      int64  `json:"tick_ms"`
	DebounceMs  int64  `json:"debounce_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Broker      string `json:"broker"`
	HTTPPort    string `json:"http_port"`
	Serial      string `json:"serial"`
	Baud        int    `json:"baud"`
}

func orUnknown(s string) string {
	if s == "" {
		return "UNKNOWN"
	}
	return s
}

func buildInner(snap Snapshot) StatusInner {
	c := snap.Clock
	counts := c.Counts

	return StatusInner{
		Clock: ClockJSON{
			Time:       c.Time.String(),
			Date:       c.Date.String(),
			View:       orUnknown(string(c.View)),
			Power:      orUnknown(string(c.Power)),
			Lit:        c.Lit,
			Brightness: c.Brightness,
			Session:    c.Session.String(),
		},
		Ready:         snap.Ready,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Ticks:         counts.Ticks,
			DateSets:      counts.DateSets,
			TimeSets:      counts.TimeSets,
			CommandErrors: counts.CommandErrors,
			Overflows:     counts.Overflows,
			ButtonPresses: counts.ButtonPresses,
			Rollovers:     counts.Rollovers,
		},
		Losses: LossesJSON{
			ButtonEdges:  snap.Losses.ButtonEdges,
			ADCCoalesced: snap.Losses.ADCCoalesced,
			ADCResults:   snap.Losses.ADCResults,
			MQTTQueue:    snap.Losses.MQTTQueue,
			MQTTOutbox:   snap.Losses.MQTTOutbox,
		},
		Config: ConfigJSON{
			TickMs:      snap.Config.TickMs,
			DebounceMs:  snap.Config.DebounceMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Broker:      snap.Config.Broker,
			HTTPPort:    snap.Config.HTTPPort,
			Serial:      snap.Config.Serial,
			Baud:        snap.Config.Baud,
		},
	}
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
