package mqtt

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/ledclock/internal/calendar"
	"github.com/sweeney/ledclock/internal/logic"
)

var ts = time.Date(2026, 1, 3, 12, 0, 0, 0, time.UTC)

func sampleEvent(typ logic.EventType) logic.Event {
	return logic.Event{
		Timestamp: ts,
		Type:      typ,
		Time:      calendar.Time{Hour: 13, Minute: 5, Second: 9},
		Date:      calendar.Date{Day: 3, Month: 1, Year: 2026},
		View:      logic.ViewTime,
		Power:     logic.PowerOn,
	}
}

func TestFormatPayload(t *testing.T) {
	data, err := FormatPayload(sampleEvent(logic.EventTimeSet))
	if err != nil {
		t.Fatalf("FormatPayload: %v", err)
	}

	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := ClockPayload{
		Timestamp: "2026-01-03T12:00:00Z",
		Event:     "TIME_SET",
		Time:      "13-05-09",
		Date:      "03.01.2026",
		View:      "TIME",
		Power:     "ON",
	}
	if p.Clock != want {
		t.Errorf("payload = %+v, want %+v", p.Clock, want)
	}
}

func TestFormatPayloadOmitsEmptyDetail(t *testing.T) {
	data, _ := FormatPayload(sampleEvent(logic.EventViewDate))
	if strings.Contains(string(data), "detail") {
		t.Errorf("expected no detail field, got %s", data)
	}

	e := sampleEvent(logic.EventCommandError)
	e.Detail = "parse date: invalid format"
	data, _ = FormatPayload(e)
	if !strings.Contains(string(data), `"detail":"parse date: invalid format"`) {
		t.Errorf("expected detail field, got %s", data)
	}
}

func TestFormatPayloadConvertsToUTC(t *testing.T) {
	e := sampleEvent(logic.EventDayRollover)
	e.Timestamp = time.Date(2026, 1, 3, 13, 0, 0, 0, time.FixedZone("CET", 3600))
	data, _ := FormatPayload(e)
	if !strings.Contains(string(data), `"timestamp":"2026-01-03T12:00:00Z"`) {
		t.Errorf("timestamp not UTC: %s", data)
	}
}

func TestFormatSystemPayload(t *testing.T) {
	tests := []struct {
		name  string
		event SystemEvent
		want  string
	}{
		{
			name:  "shutdown with reason",
			event: SystemEvent{Timestamp: ts, Event: "SHUTDOWN", Reason: "SIGTERM"},
			want:  `{"system":{"timestamp":"2026-01-03T12:00:00Z","event":"SHUTDOWN","reason":"SIGTERM"}}`,
		},
		{
			name:  "reconnected without reason",
			event: SystemEvent{Timestamp: ts, Event: "RECONNECTED"},
			want:  `{"system":{"timestamp":"2026-01-03T12:00:00Z","event":"RECONNECTED"}}`,
		},
		{
			name:  "raw payload wins",
			event: SystemEvent{Event: "STARTUP", RawPayload: []byte(`{"x":1}`)},
			want:  `{"x":1}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatSystemPayload(tt.event)
			if err != nil {
				t.Fatalf("FormatSystemPayload: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestWillPayload(t *testing.T) {
	want := `{"system":{"event":"OFFLINE","reason":"CONNECTION_LOST"}}`
	if got := string(WillPayload()); got != want {
		t.Errorf("WillPayload() = %s, want %s", got, want)
	}
}

func TestTopics(t *testing.T) {
	if Topic != "clock/ledclock/events" {
		t.Errorf("Topic = %q", Topic)
	}
	if TopicSystem != "clock/ledclock/system" {
		t.Errorf("TopicSystem = %q", TopicSystem)
	}
}

func TestFakePublisherRecords(t *testing.T) {
	f := NewFakePublisher()
	if !f.IsConnected() {
		t.Error("new fake should report connected")
	}

	_ = f.Publish(sampleEvent(logic.EventDateSet))
	_ = f.Publish(sampleEvent(logic.EventDisplayOff))
	_ = f.PublishSystem(SystemEvent{Timestamp: ts, Event: "HEARTBEAT"})

	types := f.Types()
	if len(types) != 2 || types[0] != logic.EventDateSet || types[1] != logic.EventDisplayOff {
		t.Errorf("Types() = %v", types)
	}
	if len(f.Payloads) != 2 {
		t.Errorf("expected 2 payloads, got %d", len(f.Payloads))
	}
	if got := f.SystemTypes(); len(got) != 1 || got[0] != "HEARTBEAT" {
		t.Errorf("SystemTypes() = %v", got)
	}
}

func TestFakePublisherErrors(t *testing.T) {
	f := NewFakePublisher()
	f.PublishError = errors.New("boom")
	f.PublishSystemError = errors.New("bang")

	if err := f.Publish(sampleEvent(logic.EventTimeSet)); err == nil {
		t.Error("expected publish error")
	}
	if err := f.PublishSystem(SystemEvent{Event: "STARTUP"}); err == nil {
		t.Error("expected system publish error")
	}
	if len(f.Events) != 0 || len(f.SystemEvents) != 0 {
		t.Error("failed publishes must not be recorded")
	}
}

func TestFakePublisherClose(t *testing.T) {
	f := NewFakePublisher()
	if err := f.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !f.Closed {
		t.Error("expected Closed")
	}
}

// Compile-time interface checks.
var (
	_ Publisher        = (*FakePublisher)(nil)
	_ Publisher        = (*RealPublisher)(nil)
	_ ConnectionStatus = (*FakePublisher)(nil)
	_ ConnectionStatus = (*RealPublisher)(nil)
)
