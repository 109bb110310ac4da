package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/ledclock/internal/calendar"
	"github.com/sweeney/ledclock/internal/logic"
	"github.com/sweeney/ledclock/internal/session"
	"github.com/sweeney/ledclock/internal/status"
)

func newTestServer(t *testing.T) (*httptest.Server, *status.Tracker) {
	t.Helper()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := status.Config{
		TickMs:      250,
		DebounceMs:  20,
		HeartbeatMs: 900000,
		Broker:      "tcp://192.168.1.200:1883",
		HTTPPort:    ":80",
		Serial:      "/dev/ttyAMA0",
		Baud:        19200,
	}
	tr := status.NewTracker(start, cfg)
	srv := New(":0", tr)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, tr
}

func clock(view logic.View, power logic.Power) logic.Snapshot {
	return logic.Snapshot{
		Time:       calendar.Time{Hour: 7, Minute: 30, Second: 5},
		Date:       calendar.Date{Day: 29, Month: 2, Year: 2024},
		View:       view,
		Power:      power,
		Lit:        power == logic.PowerOn,
		Brightness: 12,
		Session:    session.Idle,
		Counts:     logic.EventCounts{Ticks: 8, TimeSets: 1},
	}
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func TestJSONEndpoint(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.Update(clock(logic.ViewTime, logic.PowerOn))
	tr.SetMQTTConnected(true)

	resp, body := get(t, ts.URL+"/index.json")
	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}

	var sj status.StatusJSON
	if err := json.Unmarshal([]byte(body), &sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	if sj.Status.Clock.Time != "07-30-05" {
		t.Errorf("Time: got %q, want 07-30-05", sj.Status.Clock.Time)
	}
	if sj.Status.Clock.Date != "29.02.2024" {
		t.Errorf("Date: got %q, want 29.02.2024", sj.Status.Clock.Date)
	}
	if sj.Status.Clock.Brightness != 12 {
		t.Errorf("Brightness: got %d, want 12", sj.Status.Clock.Brightness)
	}
	if !sj.Status.Ready {
		t.Error("expected Ready=true")
	}
	if !sj.Status.MQTT.Connected {
		t.Error("expected MQTT connected")
	}
	if sj.Status.Counts.TimeSets != 1 {
		t.Errorf("TimeSets: got %d, want 1", sj.Status.Counts.TimeSets)
	}
	if sj.Status.Config.Serial != "/dev/ttyAMA0" {
		t.Errorf("Serial: got %q", sj.Status.Config.Serial)
	}
}

func TestJSONBeforeFirstTick(t *testing.T) {
	ts, _ := newTestServer(t)

	_, body := get(t, ts.URL+"/index.json")
	var sj status.StatusJSON
	json.Unmarshal([]byte(body), &sj)

	if sj.Status.Ready {
		t.Error("expected Ready=false before the first tick")
	}
	if sj.Status.Clock.View != "UNKNOWN" {
		t.Errorf("View: got %q, want UNKNOWN", sj.Status.Clock.View)
	}
}

func TestJSONNetworkInfo(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.SetNetwork(&status.NetworkInfo{Type: "ethernet", IP: "10.0.0.5", Status: "connected"})

	_, body := get(t, ts.URL+"/index.json")
	var sj status.StatusJSON
	json.Unmarshal([]byte(body), &sj)

	if sj.Status.Network == nil || sj.Status.Network.IP != "10.0.0.5" {
		t.Errorf("Network: got %+v", sj.Status.Network)
	}
}

func TestLossesReported(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.SetLosses(status.Losses{ButtonEdges: 2, ADCResults: 1, MQTTQueue: 40, MQTTOutbox: 6})

	_, body := get(t, ts.URL+"/index.json")
	var sj status.StatusJSON
	if err := json.Unmarshal([]byte(body), &sj); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	want := status.LossesJSON{ButtonEdges: 2, ADCResults: 1, MQTTQueue: 40, MQTTOutbox: 6}
	if sj.Status.Losses != want {
		t.Errorf("Losses: got %+v, want %+v", sj.Status.Losses, want)
	}

	_, body = get(t, ts.URL+"/")
	for _, want := range []string{`id="loss-buttons">2<`, `id="loss-mqtt-queue">40<`, `id="loss-mqtt-outbox">6<`} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestHTMLEndpointRoot(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.Update(clock(logic.ViewTime, logic.PowerOn))

	resp, body := get(t, ts.URL+"/")
	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type: got %q", ct)
	}
	for _, want := range []string{"LED Clock", "07-30-05", "29.02.2024", "12/15", "IDLE", "/dev/ttyAMA0 @ 19200"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestHTMLFaceFollowsView(t *testing.T) {
	ts, tr := newTestServer(t)

	tr.Update(clock(logic.ViewDate, logic.PowerOn))
	_, body := get(t, ts.URL+"/")
	if !strings.Contains(body, `class="face on">29.02.2024</p>`) {
		t.Error("expected date on the face in DATE view")
	}

	tr.Update(clock(logic.ViewTime, logic.PowerOff))
	_, body = get(t, ts.URL+"/")
	if !strings.Contains(body, `class="face off">07-30-05</p>`) {
		t.Error("expected unlit time face when powered off")
	}
}

func TestHTMLEndpointIndexHTML(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, _ := get(t, ts.URL+"/index.html")
	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
}

func TestNotFoundForUnknownPath(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, _ := get(t, ts.URL+"/nope")
	if resp.StatusCode != 404 {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestStateChangesReflectedInResponse(t *testing.T) {
	ts, tr := newTestServer(t)

	tr.Update(clock(logic.ViewTime, logic.PowerOn))
	_, body := get(t, ts.URL+"/index.json")
	if !strings.Contains(body, `"power": "ON"`) {
		t.Errorf("expected power ON, got %s", body)
	}

	tr.Update(clock(logic.ViewTime, logic.PowerOff))
	_, body = get(t, ts.URL+"/index.json")
	if !strings.Contains(body, `"power": "OFF"`) {
		t.Errorf("expected power OFF, got %s", body)
	}
}
