package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/ledclock/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"orUnknown": func(s string) string {
		if s == "" {
			return "UNKNOWN"
		}
		return s
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="5">
<title>LED Clock</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.face { font-size: 2em; letter-spacing: 0.1em; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.unknown { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>LED Clock</h1>

<p id="face" class="face {{if .Clock.Lit}}on{{else}}off{{end}}">{{if eq (printf "%s" .Clock.View) "DATE"}}{{.Clock.Date}}{{else}}{{.Clock.Time}}{{end}}</p>

<h2>Clock</h2>
<table>
<tr><th>Time</th><td id="time">{{.Clock.Time}}</td></tr>
<tr><th>Date</th><td id="date">{{.Clock.Date}}</td></tr>
<tr><th>View</th><td id="view">{{orUnknown (printf "%s" .Clock.View)}}</td></tr>
<tr><th>Display</th><td id="power" class="{{if eq (printf "%s" .Clock.Power) "ON"}}on{{else if eq (printf "%s" .Clock.Power) "OFF"}}off{{else}}unknown{{end}}">{{orUnknown (printf "%s" .Clock.Power)}}</td></tr>
<tr><th>Brightness</th><td>{{.Clock.Brightness}}/15</td></tr>
<tr><th>Setting</th><td id="session">{{.Clock.Session}}</td></tr>
<tr><th>Ready</th><td>{{if .Ready}}yes{{else}}no{{end}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
<tr><th>Serial</th><td>{{.Config.Serial}} @ {{.Config.Baud}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>Event Counts</h2>
<table>
<tr><th>Ticks</th><td>{{.Clock.Counts.Ticks}}</td></tr>
<tr><th>Date set</th><td>{{.Clock.Counts.DateSets}}</td></tr>
<tr><th>Time set</th><td>{{.Clock.Counts.TimeSets}}</td></tr>
<tr><th>Command errors</th><td>{{.Clock.Counts.CommandErrors}}</td></tr>
<tr><th>Line overflows</th><td>{{.Clock.Counts.Overflows}}</td></tr>
<tr><th>Button presses</th><td>{{.Clock.Counts.ButtonPresses}}</td></tr>
<tr><th>Day rollovers</th><td>{{.Clock.Counts.Rollovers}}</td></tr>
</table>

<h2>Losses</h2>
<table>
<tr><th>Button edges</th><td id="loss-buttons">{{.Losses.ButtonEdges}}</td></tr>
<tr><th>ADC results</th><td id="loss-adc">{{.Losses.ADCResults}}</td></tr>
<tr><th>ADC coalesced</th><td id="loss-adc-coalesced">{{.Losses.ADCCoalesced}}</td></tr>
<tr><th>MQTT queue</th><td id="loss-mqtt-queue">{{.Losses.MQTTQueue}}</td></tr>
<tr><th>MQTT outbox</th><td id="loss-mqtt-outbox">{{.Losses.MQTTOutbox}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Tick</th><td>{{.Config.TickMs}}ms</td></tr>
<tr><th>Debounce</th><td>{{.Config.DebounceMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPPort}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) error {
	// Snapshot has an Uptime method but the template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	return indexTmpl.Execute(w, data)
}
