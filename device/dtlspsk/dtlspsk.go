// Package dtlspsk implements the DTLS-PSK driver adapter: a long-lived UDP+DTLS session authenticated by a
// pre-shared key, using github.com/pion/dtls/v2.
package dtlspsk

import (
	"context"
	"encoding/hex"
	"fmt"
	"net"
	"time"

	"github.com/pion/dtls/v2"

	"github.com/ledstream/core/device"
	"github.com/ledstream/core/engine/config"
	"github.com/ledstream/core/ledmap"
)

// handshakeRetrySpacing and writeErrorCooldown bound the retry
// behavior: handshake retries up to a configured budget with 200ms
// spacing, and any write error tears down the connection and waits a
// 3000ms cooldown; reopening is left to the caller.
const (
	handshakeRetrySpacing = 200 * time.Millisecond
	writeErrorCooldown    = 3000 * time.Millisecond
)

// requiredCipher is the only cipher suite offered in the handshake; a
// peer that does not support it fails the handshake, which Open reports
// as its generic "handshake failed after N attempts" error.
var requiredCipher = dtls.TLS_PSK_WITH_AES_128_GCM_SHA256

// Driver implements device.Driver over a DTLS-PSK UDP session.
type Driver struct {
	log config.Logger

	addr       string
	identity   string
	pskHex     string
	hsAttempts int

	conn *dtls.Conn
}

// New returns a Driver targeting addr ("host:port"), authenticating
// with identity and a hex-encoded pre-shared key, retrying the
// handshake up to hsAttempts times.
func New(addr, identity, pskHex string, hsAttempts int, log config.Logger) *Driver {
	if log == nil {
		log = config.NewDiscardLogger()
	}
	if hsAttempts <= 0 {
		hsAttempts = 5
	}
	return &Driver{addr: addr, identity: identity, pskHex: pskHex, hsAttempts: hsAttempts, log: log}
}

func (d *Driver) Init(cfg config.Config) error {
	if cfg.DriverAddress != "" {
		d.addr = cfg.DriverAddress
	}
	if cfg.DriverAuth != "" {
		d.pskHex = cfg.DriverAuth
	}
	return nil
}

// Open dials and performs the DTLS handshake, retrying up to
// hsAttempts times with handshakeRetrySpacing between attempts.
func (d *Driver) Open() (device.Status, error) {
	psk, err := hex.DecodeString(d.pskHex)
	if err != nil {
		return device.StatusError, fmt.Errorf("dtlspsk: invalid PSK hex: %w", err)
	}

	dtlsCfg := &dtls.Config{
		PSK: func([]byte) ([]byte, error) { return psk, nil },
		PSKIdentityHint:      []byte(d.identity),
		CipherSuites:         []dtls.CipherSuiteID{requiredCipher},
		ConnectContextMaker: func() (context.Context, func()) {
			return context.WithTimeout(context.Background(), handshakeRetrySpacing)
		},
	}

	udpAddr, err := net.ResolveUDPAddr("udp", d.addr)
	if err != nil {
		return device.StatusError, err
	}

	var lastErr error
	for attempt := 0; attempt < d.hsAttempts; attempt++ {
		conn, err := dtls.Dial("udp", udpAddr, dtlsCfg)
		if err == nil {
			d.conn = conn
			return device.StatusOK, nil
		}
		lastErr = err
		d.log.Debug("dtlspsk: handshake attempt failed", "attempt", attempt, "err", err)
		time.Sleep(handshakeRetrySpacing)
	}
	return device.StatusError, fmt.Errorf("dtlspsk: handshake failed after %d attempts: %w", d.hsAttempts, lastErr)
}

func (d *Driver) Close() (device.Status, error) {
	if d.conn != nil {
		err := d.conn.Close()
		d.conn = nil
		if err != nil {
			return device.StatusError, err
		}
	}
	return device.StatusOK, nil
}

// Write sends one frame over the DTLS connection, which encrypts it. On
// any write error the session is torn down and Write itself sleeps for
// writeErrorCooldown before returning the error; reopening is left to
// the dispatcher's ERROR-state retry path, which re-runs Init+Open.
func (d *Driver) Write(colors []ledmap.ColorRGB) (device.Status, error) {
	if d.conn == nil {
		return device.StatusError, fmt.Errorf("dtlspsk: not open")
	}
	buf := make([]byte, 2+3*len(colors))
	buf[0] = 0x02
	buf[1] = 0xFF
	for i, c := range colors {
		buf[2+3*i] = c.R
		buf[2+3*i+1] = c.G
		buf[2+3*i+2] = c.B
	}
	if _, err := d.conn.Write(buf); err != nil {
		d.conn.Close()
		d.conn = nil
		time.Sleep(writeErrorCooldown)
		return device.StatusError, err
	}
	return device.StatusOK, nil
}

func (d *Driver) PowerOn() error  { return nil }
func (d *Driver) PowerOff() error { return nil }

func (d *Driver) Discover(params map[string]string) ([]string, error) { return nil, nil }

func (d *Driver) GetProperties(params map[string]string) (device.Properties, error) {
	return device.Properties{"addr": d.addr, "identity": d.identity}, nil
}

func (d *Driver) Identify(params map[string]string) error { return nil }
