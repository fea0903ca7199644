// Package wled implements the WLED UDP/REST driver adapter: realtime
// color frames over UDP using protocol/wledudp, and pre-roll/post-roll/
// handshake over WLED's JSON REST API.
package wled

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/ledstream/core/device"
	"github.com/ledstream/core/engine/config"
	"github.com/ledstream/core/ledmap"
	"github.com/ledstream/core/protocol/wledudp"
)

// handshakeDoc is the subset of WLED's /json response this driver
// reads at Open.
type handshakeDoc struct {
	Info struct {
		LEDCount int `json:"leds"`
		UDPPort  int `json:"udpport"`
		WiFi     struct {
			Signal int `json:"signal"`
		} `json:"wifi"`
		MaxPower int `json:"maxpower"`
	} `json:"info"`
}

// Driver implements device.Driver against a WLED controller.
type Driver struct {
	log config.Logger

	host       string
	httpClient *http.Client
	udpConn    net.Conn

	savedState json.RawMessage
	properties device.Properties
}

// New returns a WLED Driver targeting host ("192.168.1.50" or
// "wled.local"), with no network connection opened yet.
func New(host string, log config.Logger) *Driver {
	if log == nil {
		log = config.NewDiscardLogger()
	}
	return &Driver{host: host, log: log, httpClient: &http.Client{Timeout: 3 * time.Second}}
}

func (d *Driver) Init(cfg config.Config) error {
	if cfg.DriverAddress != "" {
		d.host = cfg.DriverAddress
	}
	return nil
}

// Open performs the /json handshake and opens the realtime UDP socket.
func (d *Driver) Open() (device.Status, error) {
	var doc handshakeDoc
	resp, err := d.httpClient.Get(fmt.Sprintf("http://%s/json", d.host))
	if err != nil {
		return device.StatusError, err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return device.StatusError, err
	}
	if doc.Info.MaxPower > 0 {
		d.log.Warning("wled: device reports an active power limiter", "maxpower", doc.Info.MaxPower)
	}
	d.properties = device.Properties{
		"ledCount":  doc.Info.LEDCount,
		"udpPort":   doc.Info.UDPPort,
		"wifiRSSI":  doc.Info.WiFi.Signal,
		"maxPower":  doc.Info.MaxPower,
	}

	udpPort := doc.Info.UDPPort
	if udpPort == 0 {
		udpPort = 21324
	}
	conn, err := net.Dial("udp", fmt.Sprintf("%s:%d", d.host, udpPort))
	if err != nil {
		return device.StatusError, err
	}
	d.udpConn = conn
	return device.StatusOK, nil
}

func (d *Driver) Close() (device.Status, error) {
	if d.udpConn != nil {
		d.udpConn.Close()
		d.udpConn = nil
	}
	return device.StatusOK, nil
}

// Write sends colors as one or more realtime UDP datagrams.
func (d *Driver) Write(colors []ledmap.ColorRGB) (device.Status, error) {
	if d.udpConn == nil {
		return device.StatusError, fmt.Errorf("wled: not open")
	}
	for _, chunk := range wledudp.Pack(colors) {
		if _, err := d.udpConn.Write(chunk.Data); err != nil {
			return device.StatusError, err
		}
	}
	return device.StatusOK, nil
}

// PowerOn performs the pre-roll REST call: PUT /json/state
// {"on":true,"live":true}.
func (d *Driver) PowerOn() error {
	saved, err := d.fetchState()
	if err == nil {
		d.savedState = saved
	}
	return d.putState(map[string]interface{}{"on": true, "live": true})
}

// PowerOff restores the saved pre-roll state if available, or else
// simply clears the "live" flag.
func (d *Driver) PowerOff() error {
	if d.savedState != nil {
		return d.putStateRaw(d.savedState)
	}
	return d.putState(map[string]interface{}{"live": false})
}

func (d *Driver) fetchState() (json.RawMessage, error) {
	resp, err := d.httpClient.Get(fmt.Sprintf("http://%s/json/state", d.host))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (d *Driver) putState(state map[string]interface{}) error {
	body, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return d.putStateRaw(body)
}

func (d *Driver) putStateRaw(body []byte) error {
	req, err := http.NewRequest(http.MethodPut, fmt.Sprintf("http://%s/json/state", d.host), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return nil
}

// Discover performs no search: it always returns an error. WLED hosts
// are configured by address; protocol/ssdp provides only an M-SEARCH
// responder, not a search client.
func (d *Driver) Discover(params map[string]string) ([]string, error) {
	return nil, fmt.Errorf("wled: active discovery requires a network-wide SSDP search, not a per-adapter one; use protocol/ssdp from the engine's discovery service instead")
}

func (d *Driver) GetProperties(params map[string]string) (device.Properties, error) {
	return d.properties, nil
}

func (d *Driver) Identify(params map[string]string) error {
	return d.putState(map[string]interface{}{"live": true, "seg": []map[string]interface{}{{"col": [][]int{{255, 255, 255}}}}})
}
