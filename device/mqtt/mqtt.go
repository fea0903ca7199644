// Package mqtt implements the Zigbee2mqtt driver adapter: one publish
// per configured lamp to zigbee2mqtt/<name>/set, with a 200ms ack-wait
// before the next frame
// is accepted, using github.com/eclipse/paho.mqtt.golang.
package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	mqttlib "github.com/eclipse/paho.mqtt.golang"

	"github.com/ledstream/core/device"
	"github.com/ledstream/core/engine/config"
	"github.com/ledstream/core/ledmap"
)

// ackWaitTimeout bounds how long Write waits for its publish tokens to
// complete. Publishes use QoS 0, so a token completes once the message
// is sent; no broker acknowledgement or lamp state message is awaited.
const ackWaitTimeout = 200 * time.Millisecond

// ColorModel selects which color object a lamp's /set payload carries.
type ColorModel int

const (
	ModelRGB ColorModel = iota
	ModelHSV
)

// Lamp is one configured Zigbee2mqtt device friendly name.
type Lamp struct {
	Name       string
	ColorModel ColorModel
}

// Driver implements device.Driver against a Zigbee2mqtt bridge over a
// single long-lived MQTT client connection.
type Driver struct {
	log config.Logger

	brokerURL          string
	lamps              []Lamp
	transitionMs       int
	constantBrightness int

	client mqttlib.Client
}

// New returns a Driver that will connect to brokerURL
// ("tcp://broker.local:1883") and publish to each lamp's topic.
func New(brokerURL string, lamps []Lamp, transitionMs, constantBrightness int, log config.Logger) *Driver {
	if log == nil {
		log = config.NewDiscardLogger()
	}
	return &Driver{
		brokerURL: brokerURL, lamps: lamps,
		transitionMs: transitionMs, constantBrightness: constantBrightness,
		log: log,
	}
}

func (d *Driver) Init(cfg config.Config) error {
	if cfg.DriverAddress != "" {
		d.brokerURL = cfg.DriverAddress
	}
	return nil
}

func (d *Driver) Open() (device.Status, error) {
	opts := mqttlib.NewClientOptions().AddBroker(d.brokerURL)
	opts.SetAutoReconnect(true)
	d.client = mqttlib.NewClient(opts)
	if token := d.client.Connect(); token.Wait() && token.Error() != nil {
		return device.StatusError, token.Error()
	}
	return device.StatusOK, nil
}

func (d *Driver) Close() (device.Status, error) {
	if d.client != nil {
		d.client.Disconnect(250)
		d.client = nil
	}
	return device.StatusOK, nil
}

// Write publishes one /set message per (lamp, color) pair at QoS 0,
// then waits up to ackWaitTimeout in total for the publish tokens to
// complete before returning. It does not wait for the lamps to report
// their new state.
func (d *Driver) Write(colors []ledmap.ColorRGB) (device.Status, error) {
	if d.client == nil {
		return device.StatusError, fmt.Errorf("mqtt: not open")
	}
	n := len(colors)
	if len(d.lamps) < n {
		n = len(d.lamps)
	}

	tokens := make([]mqttlib.Token, 0, n)
	for i := 0; i < n; i++ {
		payload, err := d.framePayload(d.lamps[i], colors[i])
		if err != nil {
			return device.StatusError, err
		}
		topic := fmt.Sprintf("zigbee2mqtt/%s/set", d.lamps[i].Name)
		tokens = append(tokens, d.client.Publish(topic, 0, false, payload))
	}

	deadline := time.Now().Add(ackWaitTimeout)
	for _, tok := range tokens {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}
		tok.WaitTimeout(remaining)
	}
	return device.StatusOK, nil
}

func (d *Driver) framePayload(lamp Lamp, c ledmap.ColorRGB) ([]byte, error) {
	row := map[string]interface{}{}
	if d.transitionMs > 0 {
		row["transition"] = float64(d.transitionMs) / 1000.0
	}

	var brightness int
	if lamp.ColorModel == ModelRGB {
		row["color"] = map[string]int{"r": int(c.R), "g": int(c.G), "b": int(c.B)}
		brightness = clampByte(luma601(c))
	} else {
		h, s, v := rgbToHSV(c)
		row["color"] = map[string]int{"hue": int(h + 0.5), "saturation": int(s*100 + 0.5)}
		brightness = clampByte(int(v*255 + 0.5))
	}
	if brightness > 0 && d.constantBrightness > 0 {
		brightness = d.constantBrightness
	}
	row["brightness"] = brightness

	return json.Marshal(row)
}

// PowerOn/PowerOff publish {"state":"ON"/"OFF"} to every lamp.
func (d *Driver) PowerOn() error  { return d.setState("ON") }
func (d *Driver) PowerOff() error { return d.setState("OFF") }

func (d *Driver) setState(state string) error {
	if d.client == nil {
		return fmt.Errorf("mqtt: not open")
	}
	payload, err := json.Marshal(map[string]string{"state": state})
	if err != nil {
		return err
	}
	for _, lamp := range d.lamps {
		topic := fmt.Sprintf("zigbee2mqtt/%s/set", lamp.Name)
		tok := d.client.Publish(topic, 0, false, payload)
		tok.WaitTimeout(ackWaitTimeout)
	}
	return nil
}

func (d *Driver) Discover(params map[string]string) ([]string, error) { return nil, nil }

func (d *Driver) GetProperties(params map[string]string) (device.Properties, error) {
	return device.Properties{"broker": d.brokerURL, "lampCount": len(d.lamps)}, nil
}

func (d *Driver) Identify(params map[string]string) error { return nil }

func luma601(c ledmap.ColorRGB) int {
	return int(0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B) + 0.5)
}

func clampByte(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

// rgbToHSV converts an 8-bit RGB color to (hue degrees, saturation,
// value) for Zigbee2mqtt's {hue,saturation} color object.
func rgbToHSV(c ledmap.ColorRGB) (h, s, v float64) {
	r, g, b := float64(c.R)/255, float64(c.G)/255, float64(c.B)/255
	max := maxF(r, g, b)
	min := minF(r, g, b)
	v = max
	delta := max - min
	if max > 0 {
		s = delta / max
	}
	if delta == 0 {
		return 0, s, v
	}
	switch max {
	case r:
		h = 60 * modF((g-b)/delta, 6)
	case g:
		h = 60 * ((b-r)/delta + 2)
	default:
		h = 60 * ((r-g)/delta + 4)
	}
	if h < 0 {
		h += 360
	}
	return h, s, v
}

func modF(a, m float64) float64 {
	r := a
	for r < 0 {
		r += m
	}
	for r >= m {
		r -= m
	}
	return r
}

func maxF(vs ...float64) float64 {
	m := vs[0]
	for _, v := range vs[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func minF(vs ...float64) float64 {
	m := vs[0]
	for _, v := range vs[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
