// Package status provides a thread-safe status tracker for the ledclock daemon.
// It is read by the HTTP handlers and by the MQTT lifecycle events.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/ledclock/internal/logic"
)

// NetworkInfo contains network state as reported by pi-helper.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	TickMs      int64
	DebounceMs  int64
	HeartbeatMs int64
	Broker      string
	HTTPPort    string
	Serial      string
	Baud        int
}

// Losses counts input and output the daemon discarded because a consumer
// was behind. All counters are cumulative since start.
type Losses struct {
	ButtonEdges  uint32 // edges dropped before the dispatcher read them
	ADCCoalesced uint32 // conversion requests merged into a pending one
	ADCResults   uint32 // conversions dropped before the dispatcher read them
	MQTTQueue    uint32 // messages dropped by the publish queue
	MQTTOutbox   uint32 // buffered messages discarded while disconnected
}

// Total returns the sum of all counters except ADCCoalesced, which merges
// requests rather than losing data.
func (l Losses) Total() uint32 {
	return l.ButtonEdges + l.ADCResults + l.MQTTQueue + l.MQTTOutbox
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Clock         logic.Snapshot
	Ready         bool // true once the first tick has been handled
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Losses        Losses
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update stores the latest coordinator snapshot.
// Called from runLoop after every handled event.
func (t *Tracker) Update(clock logic.Snapshot) {
	t.mu.Lock()
	t.snap.Clock = clock
	if clock.Counts.Ticks > 0 {
		t.snap.Ready = true
	}
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetLosses stores the latest loss counters.
func (t *Tracker) SetLosses(l Losses) {
	t.mu.Lock()
	t.snap.Losses = l
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
