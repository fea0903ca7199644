// Package rest implements the Home Assistant REST driver adapter:
// one POST per configured lamp to /api/services/light/turn_on, RGB or
// HS color, optional constant brightness, and optional original-state
// snapshot/replay.
package rest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/ledstream/core/device"
	"github.com/ledstream/core/engine/config"
	"github.com/ledstream/core/ledmap"
)

// ColorModel selects which color field a lamp accepts.
type ColorModel int

const (
	ModelRGB ColorModel = iota
	ModelHSV
)

// Lamp is one configured Home Assistant light entity.
type Lamp struct {
	EntityID   string
	ColorModel ColorModel
}

type originalState struct {
	poweredOn  bool
	known      bool
	brightness int
	raw        json.RawMessage
}

// Driver implements device.Driver against a Home Assistant instance's
// REST API, one POST per lamp per frame.
type Driver struct {
	log config.Logger

	host                string
	token               string
	transitionMs        int
	constantBrightness  int
	restoreOriginalState bool

	httpClient *http.Client
	lamps      []Lamp
	saved      map[string]originalState
}

// New returns a Driver for host ("homeassistant.local:8123"),
// authenticating with a long-lived access token, driving lamps in
// order against successive frame colors.
func New(host, token string, lamps []Lamp, transitionMs, constantBrightness int, restoreOriginalState bool, log config.Logger) *Driver {
	if log == nil {
		log = config.NewDiscardLogger()
	}
	return &Driver{
		host: host, token: token, lamps: lamps,
		transitionMs: transitionMs, constantBrightness: constantBrightness,
		restoreOriginalState: restoreOriginalState,
		httpClient:           &http.Client{Timeout: 3 * time.Second},
		saved:                make(map[string]originalState),
	}
}

func (d *Driver) Init(cfg config.Config) error {
	if cfg.DriverAddress != "" {
		d.host = cfg.DriverAddress
	}
	if cfg.DriverAuth != "" {
		d.token = cfg.DriverAuth
	}
	return nil
}

func (d *Driver) Open() (device.Status, error)  { return device.StatusOK, nil }
func (d *Driver) Close() (device.Status, error) { return device.StatusOK, nil }

// Write posts one turn_on call per lamp, pairing lamps with colors in
// order (extra colors beyond len(lamps) are ignored, matching the
// original's rgb-iterator-bounded-by-lamp-list loop).
func (d *Driver) Write(colors []ledmap.ColorRGB) (device.Status, error) {
	for i, lamp := range d.lamps {
		if i >= len(colors) {
			break
		}
		if err := d.turnOn(lamp, colors[i]); err != nil {
			return device.StatusError, err
		}
	}
	return device.StatusOK, nil
}

func (d *Driver) turnOn(lamp Lamp, c ledmap.ColorRGB) error {
	row := map[string]interface{}{"entity_id": lamp.EntityID}
	if d.transitionMs > 0 {
		row["transition"] = float64(d.transitionMs) / 1000.0
	}

	var brightness int
	if lamp.ColorModel == ModelRGB {
		row["rgb_color"] = []int{int(c.R), int(c.G), int(c.B)}
		brightness = clampByte(luma601(c))
	} else {
		h, s, v := rgbToHSV(c)
		row["hs_color"] = []float64{h, round1(s * 100)}
		brightness = clampByte(int(v*255 + 0.5))
	}
	if d.constantBrightness == 0 {
		row["brightness"] = brightness
	} else if brightness > 0 {
		row["brightness"] = d.constantBrightness
	} else {
		row["brightness"] = 0
	}

	return d.post("/api/services/light/turn_on", row)
}

func (d *Driver) post(path string, body interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, fmt.Sprintf("http://%s%s", d.host, path), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+d.token)
	req.Header.Set("Content-Type", "application/json")
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("rest: %s returned %s", path, resp.Status)
	}
	return nil
}

// PowerOn snapshots each lamp's current state (if restoreOriginalState
// is set) and issues a turn_on for the whole lamp set.
func (d *Driver) PowerOn() error {
	if d.restoreOriginalState {
		for _, lamp := range d.lamps {
			d.saveState(lamp)
		}
	}
	return d.powerAll(true)
}

// PowerOff restores each lamp's saved state, or else issues turn_off
// for the whole lamp set.
func (d *Driver) PowerOff() error {
	if d.restoreOriginalState {
		for _, lamp := range d.lamps {
			d.restoreState(lamp)
		}
		return nil
	}
	return d.powerAll(false)
}

func (d *Driver) powerAll(on bool) error {
	entities := make([]string, len(d.lamps))
	for i, l := range d.lamps {
		entities[i] = l.EntityID
	}
	action := "turn_off"
	if on {
		action = "turn_on"
	}
	return d.post(fmt.Sprintf("/api/services/light/%s", action), map[string]interface{}{"entity_id": entities})
}

func (d *Driver) saveState(lamp Lamp) {
	req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("http://%s/api/states/%s", d.host, lamp.EntityID), nil)
	if err != nil {
		return
	}
	req.Header.Set("Authorization", "Bearer "+d.token)
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return
	}
	defer resp.Body.Close()

	var doc struct {
		State      string `json:"state"`
		Attributes struct {
			Brightness int `json:"brightness"`
		} `json:"attributes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return
	}
	d.saved[lamp.EntityID] = originalState{
		poweredOn: doc.State == "on",
		known:     true,
		brightness: doc.Attributes.Brightness,
	}
}

func (d *Driver) restoreState(lamp Lamp) {
	st, ok := d.saved[lamp.EntityID]
	if !ok || !st.known {
		return
	}
	if !st.poweredOn {
		d.post("/api/services/light/turn_off", map[string]interface{}{"entity_id": lamp.EntityID})
		return
	}
	d.post("/api/services/light/turn_on", map[string]interface{}{"entity_id": lamp.EntityID, "brightness": st.brightness})
}

func (d *Driver) Discover(params map[string]string) ([]string, error) { return nil, nil }

func (d *Driver) GetProperties(params map[string]string) (device.Properties, error) {
	return device.Properties{"host": d.host, "lampCount": len(d.lamps)}, nil
}

func (d *Driver) Identify(params map[string]string) error { return nil }

// rgbToHSV converts an 8-bit RGB color to (hue in degrees, saturation,
// value), all in the ranges Home Assistant's hs_color/brightness
// fields expect.
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
		h = 60 * (math.Mod((g-b)/delta, 6))
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

func round1(v float64) float64 {
	return float64(int(v+0.5*sign(v)))
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
