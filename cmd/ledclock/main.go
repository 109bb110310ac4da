// Command ledclock keeps time and date on a MAX7219 seven-segment display,
// takes settings over a serial line and publishes clock events to MQTT.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/ads1x15"
	"periph.io/x/host/v3"

	"github.com/sweeney/ledclock/internal/adc"
	"github.com/sweeney/ledclock/internal/display"
	"github.com/sweeney/ledclock/internal/gpio"
	"github.com/sweeney/ledclock/internal/logic"
	"github.com/sweeney/ledclock/internal/mqtt"
	"github.com/sweeney/ledclock/internal/status"
	"github.com/sweeney/ledclock/internal/uart"
	"github.com/sweeney/ledclock/internal/web"
)

type config struct {
	tick       time.Duration
	serial     string
	baud       int
	chip       string
	pinMode    int
	pinPower   int
	debounce   time.Duration
	spi        string
	i2c        string
	vref       physic.ElectricPotential
	broker     string
	heartbeat  time.Duration
	httpAddr   string
	printState bool
}

func main() {
	cfg := config{vref: 3300 * physic.MilliVolt}
	flag.DurationVar(&cfg.tick, "tick", logic.TickInterval, "Tick interval (four ticks per clock second)")
	flag.StringVar(&cfg.serial, "serial", "/dev/ttyAMA0", "Serial device for setting commands")
	flag.IntVar(&cfg.baud, "baud", uart.DefaultBaud, "Serial baud rate (8N1)")
	flag.StringVar(&cfg.chip, "gpio-chip", "gpiochip0", "GPIO character device for the buttons")
	flag.IntVar(&cfg.pinMode, "pin-mode", gpio.DefaultPinMode, "BCM pin number for the view (mode) button")
	flag.IntVar(&cfg.pinPower, "pin-power", gpio.DefaultPinPower, "BCM pin number for the display power button")
	flag.DurationVar(&cfg.debounce, "debounce", 20*time.Millisecond, "Button debounce period (0 to disable)")
	flag.StringVar(&cfg.spi, "spi", "", "SPI port for the MAX7219 (empty for the first one)")
	flag.StringVar(&cfg.i2c, "i2c", "", "I2C bus for the ADS1015 (empty for the first one)")
	flag.Var(&cfg.vref, "adc-vref", "Potentiometer supply voltage (full-scale brightness)")
	flag.StringVar(&cfg.broker, "broker", "tcp://192.168.1.200:1883", "MQTT broker address")
	flag.DurationVar(&cfg.heartbeat, "heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	flag.StringVar(&cfg.httpAddr, "http", ":80", "HTTP status address (empty to disable)")
	flag.BoolVar(&cfg.printState, "print-state", false, "Print the power-on clock state and exit")

	flag.Parse()

	if err := run(cfg); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

// publishQueueSize is how many MQTT messages may wait for the broker before
// new ones are dropped.
const publishQueueSize = 64

// validate rejects settings that would otherwise fail deep inside a
// peripheral or the ticker.
func (c config) validate() error {
	if c.tick <= 0 {
		return fmt.Errorf("invalid tick interval %v: must be positive", c.tick)
	}
	if c.baud <= 0 {
		return fmt.Errorf("invalid baud rate %d: must be positive", c.baud)
	}
	if c.debounce < 0 {
		return fmt.Errorf("invalid debounce %v: must not be negative", c.debounce)
	}
	if c.pinMode == c.pinPower {
		return fmt.Errorf("mode and power buttons share pin %d", c.pinMode)
	}
	return nil
}

func run(cfg config) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	if cfg.printState {
		printBootState(os.Stdout)
		return nil
	}

	if _, err := host.Init(); err != nil {
		return fmt.Errorf("init host: %w", err)
	}

	// Display
	spiPort, err := spireg.Open(cfg.spi)
	if err != nil {
		return fmt.Errorf("open spi %q: %w", cfg.spi, err)
	}
	defer spiPort.Close()
	disp, err := display.OpenMAX7219(spiPort)
	if err != nil {
		return fmt.Errorf("init display: %w", err)
	}

	// Brightness
	bus, err := i2creg.Open(cfg.i2c)
	if err != nil {
		return fmt.Errorf("open i2c %q: %w", cfg.i2c, err)
	}
	defer bus.Close()
	sensor, err := adc.OpenADS1015(bus, ads1x15.Channel0, cfg.vref)
	if err != nil {
		return fmt.Errorf("init adc: %w", err)
	}
	defer sensor.Close()
	converter := adc.NewConverter(sensor, 0)

	// Buttons
	buttons, err := gpio.NewRealButtons(cfg.chip, cfg.pinMode, cfg.pinPower, cfg.debounce)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer buttons.Close()

	// Serial
	port, err := uart.OpenSerial(cfg.serial, cfg.baud)
	if err != nil {
		return fmt.Errorf("init uart: %w", err)
	}
	defer port.Close()
	reader := uart.NewReader(port, uart.IdleTimeout(cfg.baud, uart.DefaultIdleChars))

	// MQTT
	client := mqtt.NewRealPublisher(cfg.broker)
	publisher := mqtt.NewQueue(client, publishQueueSize)
	// Close flushes the queue (including SHUTDOWN) before disconnecting.
	defer publisher.Close()

	// Status tracker (before STARTUP so a snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		TickMs:      cfg.tick.Milliseconds(),
		DebounceMs:  cfg.debounce.Milliseconds(),
		HeartbeatMs: cfg.heartbeat.Milliseconds(),
		Broker:      cfg.broker,
		HTTPPort:    cfg.httpAddr,
		Serial:      cfg.serial,
		Baud:        cfg.baud,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	coord := logic.NewCoordinator(disp, uart.WriterTransmitter{W: port}, converter, time.Now)
	tracker.Update(coord.Snapshot())

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	// Start HTTP status server
	if cfg.httpAddr != "" {
		srv := web.New(cfg.httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.httpAddr)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go converter.Run(ctx)

	rx := make(chan uart.RxEvent, 64)
	go func() {
		if err := reader.Run(ctx, rx); err != nil {
			log.Printf("uart: reader stopped: %v", err)
		}
	}()

	log.Printf("started: tick=%v serial=%s@%d broker=%s heartbeat=%v", cfg.tick, cfg.serial, cfg.baud, cfg.broker, cfg.heartbeat)

	ticker := time.NewTicker(cfg.tick)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	losses := func() status.Losses {
		coalesced, adcDrops := converter.Stats()
		return status.Losses{
			ButtonEdges:  buttons.Dropped(),
			ADCCoalesced: coalesced,
			ADCResults:   adcDrops,
			MQTTQueue:    publisher.Dropped(),
			MQTTOutbox:   client.Dropped(),
		}
	}

	return runLoop(coord, publisher, publisher, tracker, cfg.heartbeat, time.Now, sources{
		tick:    ticker.C,
		rx:      rx,
		buttons: buttons.Edges(),
		adc:     converter.Results(),
		sig:     sigCh,
		losses:  losses,
	})
}

// sources are the event channels runLoop dispatches from. A nil channel is
// never ready.
type sources struct {
	tick    <-chan time.Time
	rx      <-chan uart.RxEvent
	buttons <-chan gpio.Button
	adc     <-chan uint16
	sig     <-chan os.Signal

	// losses reads the drop counters of the goroutines feeding the
	// channels above. Optional.
	losses func() status.Losses
}

// runLoop is the single dispatcher. Whenever several events are ready it
// serves a tick first, then buttons and serial input, then ADC results.
// Handlers never block; a failing peripheral is logged and the loop goes on.
// publisher must not block either: run hands it an mqtt.Queue.
func runLoop(coord *logic.Coordinator, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, heartbeat time.Duration, now func() time.Time, src sources) error {
	lastHeartbeat := now()
	var pending []gpio.Button

	publish := func(events []logic.Event) {
		for _, event := range events {
			log.Printf("event: %s (time=%s date=%s view=%s power=%s)", event.Type, event.Time, event.Date, event.View, event.Power)
			if err := publisher.Publish(event); err != nil {
				// Don't crash on publish failure
				log.Printf("publish error: %v", err)
			}
		}
	}

	refresh := func() {
		if tracker == nil {
			return
		}
		tracker.Update(coord.Snapshot())
		if mqttStatus != nil {
			tracker.SetMQTTConnected(mqttStatus.IsConnected())
		}
		if src.losses != nil {
			tracker.SetLosses(src.losses())
		}
	}

	onTick := func() {
		events, err := coord.HandleTick()
		if err != nil {
			log.Printf("display error: %v", err)
		}
		publish(events)
		refresh()

		t := now()
		if heartbeat <= 0 || t.Sub(lastHeartbeat) < heartbeat {
			return
		}
		lastHeartbeat = t
		clock := coord.Snapshot()
		var lost status.Losses
		if src.losses != nil {
			lost = src.losses()
		}
		log.Printf("heartbeat: time=%s date=%s ticks=%d date_sets=%d time_sets=%d errors=%d lost=%d (buttons=%d adc=%d mqtt_queue=%d mqtt_outbox=%d)",
			clock.Time, clock.Date, clock.Counts.Ticks, clock.Counts.DateSets, clock.Counts.TimeSets, clock.Counts.CommandErrors,
			lost.Total(), lost.ButtonEdges, lost.ADCResults, lost.MQTTQueue, lost.MQTTOutbox)

		hbEvent := mqtt.SystemEvent{Timestamp: t, Event: "HEARTBEAT"}
		if tracker != nil {
			// Refresh network info for heartbeat
			if net := readNetworkInfo(); net != nil {
				tracker.SetNetwork(net)
			}
			hbEvent.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), "HEARTBEAT", "")
		}
		if err := publisher.PublishSystem(hbEvent); err != nil {
			log.Printf("heartbeat publish error: %v", err)
		}
	}

	onButtons := func() {
		publish(coord.HandleButtons(pending))
		pending = removeButton(pending, winner(pending))
		refresh()
	}

	onRx := func(ev uart.RxEvent) {
		events, err := coord.HandleRx(ev)
		if err != nil {
			log.Printf("uart error: %v", err)
		}
		publish(events)
		refresh()
	}

	onADC := func(raw uint16) {
		if err := coord.HandleADC(raw); err != nil {
			log.Printf("display error: %v", err)
		}
		refresh()
	}

	for {
		// Priority pass: take the most urgent ready event, if any.
		select {
		case s := <-src.sig:
			shutdown(s, publisher, mqttStatus, tracker, now)
			return nil
		default:
		}
		select {
		case <-src.tick:
			onTick()
			continue
		default:
		}
		pending = collectButtons(src.buttons, pending)
		if len(pending) > 0 {
			onButtons()
			continue
		}
		select {
		case ev := <-src.rx:
			onRx(ev)
			continue
		default:
		}
		select {
		case raw := <-src.adc:
			onADC(raw)
			continue
		default:
		}

		// Nothing ready: wait for whatever comes first.
		select {
		case s := <-src.sig:
			shutdown(s, publisher, mqttStatus, tracker, now)
			return nil
		case <-src.tick:
			onTick()
		case b := <-src.buttons:
			pending = append(pending, b)
		case ev := <-src.rx:
			onRx(ev)
		case raw := <-src.adc:
			onADC(raw)
		}
	}
}

// collectButtons moves every edge already queued on ch into pending.
func collectButtons(ch <-chan gpio.Button, pending []gpio.Button) []gpio.Button {
	for {
		select {
		case b := <-ch:
			pending = append(pending, b)
		default:
			return pending
		}
	}
}

// winner is the button HandleButtons serves out of pending: mode first.
func winner(pending []gpio.Button) gpio.Button {
	for _, b := range pending {
		if b == gpio.ButtonMode {
			return b
		}
	}
	return pending[0]
}

func removeButton(pending []gpio.Button, b gpio.Button) []gpio.Button {
	for i, p := range pending {
		if p == b {
			return append(pending[:i], pending[i+1:]...)
		}
	}
	return pending
}

func shutdown(s os.Signal, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, now func() time.Time) {
	log.Printf("received %v, shutting down", s)
	signalName := "UNKNOWN"
	if s == syscall.SIGINT {
		signalName = "SIGINT"
	} else if s == syscall.SIGTERM {
		signalName = "SIGTERM"
	}
	event := mqtt.SystemEvent{
		Timestamp: now(),
		Event:     "SHUTDOWN",
		Reason:    signalName,
		Retained:  true,
	}
	if tracker != nil {
		if mqttStatus != nil {
			tracker.SetMQTTConnected(mqttStatus.IsConnected())
		}
		event.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), "SHUTDOWN", signalName)
	}
	if err := publisher.PublishSystem(event); err != nil {
		log.Printf("failed to publish shutdown event: %v", err)
	} else {
		log.Printf("published shutdown event")
	}
}

// printBootState writes what the clock shows right after power-on.
func printBootState(w io.Writer) {
	snap := logic.NewCoordinator(nil, nil, nil, time.Now).Snapshot()
	fmt.Fprintf(w, "Time: %s, Date: %s, View: %s, Power: %s\n", snap.Time, snap.Date, snap.View, snap.Power)
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}
