// Package ssdp implements the SSDP M-SEARCH discovery responder: listens on the SSDP multicast group and
// answers search requests with the engine's custom HYPERHDR-FBS-PORT,
// HYPERHDR-JSS-PORT, and HYPERHDR-NAME headers, kept bit-exact so
// existing discovery clients keep working.
package ssdp

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/ledstream/core/engine/config"
)

// multicastAddr is the SSDP multicast group and port every M-SEARCH
// request and this responder's listener use.
const multicastAddr = "239.255.255.250:1900"

// searchTarget is the ST header value this engine answers to.
const searchTarget = "urn:hyperhdr:device:basic:1"

// Responder listens for M-SEARCH requests and unicasts a 200 OK
// response carrying the engine's discovery headers.
type Responder struct {
	log config.Logger

	instanceName string
	fbsPort      int
	jssPort      int

	conn *net.UDPConn
	stop chan struct{}
	done chan struct{}
}

// New returns a Responder that will advertise instanceName and the two
// forwarding/server ports once Start is called.
func New(instanceName string, fbsPort, jssPort int, log config.Logger) *Responder {
	if log == nil {
		log = config.NewDiscardLogger()
	}
	return &Responder{instanceName: instanceName, fbsPort: fbsPort, jssPort: jssPort, log: log}
}

// Start joins the SSDP multicast group and begins answering M-SEARCH
// requests in a background goroutine.
func (r *Responder) Start() error {
	groupAddr, err := net.ResolveUDPAddr("udp4", multicastAddr)
	if err != nil {
		return err
	}
	conn, err := net.ListenMulticastUDP("udp4", nil, groupAddr)
	if err != nil {
		return err
	}
	conn.SetReadBuffer(8192)

	r.conn = conn
	r.stop = make(chan struct{})
	r.done = make(chan struct{})
	go r.serve()
	return nil
}

// Stop leaves the multicast group and terminates the responder
// goroutine.
func (r *Responder) Stop() {
	if r.conn == nil {
		return
	}
	close(r.stop)
	r.conn.Close()
	<-r.done
}

func (r *Responder) serve() {
	defer close(r.done)
	buf := make([]byte, 2048)
	for {
		n, src, err := r.conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-r.stop:
				return
			default:
				r.log.Debug("ssdp: read error", "err", err)
				continue
			}
		}
		if isMSearch(buf[:n]) {
			r.respond(src)
		}
	}
}

// isMSearch reports whether data is an M-SEARCH request line targeting
// this responder's search target (or the wildcard "ssdp:all").
func isMSearch(data []byte) bool {
	text := string(data)
	if !strings.HasPrefix(text, "M-SEARCH * HTTP/1.1") {
		return false
	}
	for _, line := range strings.Split(text, "\r\n") {
		if !strings.HasPrefix(strings.ToUpper(line), "ST:") {
			continue
		}
		st := strings.TrimSpace(line[3:])
		return st == searchTarget || st == "ssdp:all"
	}
	return false
}

// respond unicasts the HTTP/1.1 200 OK response carrying the engine's
// custom discovery headers back to src.
func (r *Responder) respond(src *net.UDPAddr) {
	msg := fmt.Sprintf(
		"HTTP/1.1 200 OK\r\n"+
			"CACHE-CONTROL: max-age=1800\r\n"+
			"DATE: %s\r\n"+
			"ST: %s\r\n"+
			"USN: %s\r\n"+
			"HYPERHDR-FBS-PORT: %d\r\n"+
			"HYPERHDR-JSS-PORT: %d\r\n"+
			"HYPERHDR-NAME: %s\r\n"+
			"\r\n",
		time.Now().UTC().Format(time.RFC1123), searchTarget, searchTarget, r.fbsPort, r.jssPort, r.instanceName)

	if _, err := r.conn.WriteToUDP([]byte(msg), src); err != nil {
		r.log.Debug("ssdp: response write failed", "err", err)
	}
}
