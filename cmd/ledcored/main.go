// Command ledcored is the ambient-lighting engine's daemon: it loads
// settings from a local store, builds a running engine.Engine, and
// keeps it in sync with settings changes until told to stop.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ausocean/utils/logging"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ledstream/core/device"
	"github.com/ledstream/core/device/dtlspsk"
	"github.com/ledstream/core/device/mqtt"
	"github.com/ledstream/core/device/rest"
	"github.com/ledstream/core/device/serial"
	"github.com/ledstream/core/device/wled"
	"github.com/ledstream/core/engine"
	"github.com/ledstream/core/engine/config"
	"github.com/ledstream/core/ledmap"
	"github.com/ledstream/core/protocol/ssdp"
	"github.com/ledstream/core/settings"
)

// Current software version.
const version = "v0.1.0"

// Logging configuration: rotate to disk via lumberjack and mirror to
// stderr.
const (
	logMaxSize   = 50 // MB
	logMaxBackup = 5
	logMaxAge    = 28 // days
)

// pollInterval is how often the settings store is re-checked for
// changes made outside this process (e.g. a companion UI editing the
// JSON files directly).
const pollInterval = 2 * time.Second

const pkg = "ledcored: "

func main() {
	showVersion := flag.Bool("version", false, "show version")
	settingsDir := flag.String("settings", "/var/lib/ledcored", "settings store directory")
	logPath := flag.String("log", "/var/log/ledcored/ledcored.log", "log file path")
	instanceName := flag.String("name", "ledcored", "SSDP instance name")
	fbsPort := flag.Int("fbs-port", 19400, "flatbuffer forwarding port advertised over SSDP")
	jssPort := flag.Int("jss-port", 19444, "JSON server port advertised over SSDP")
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	fileLog := &lumberjack.Logger{
		Filename:   *logPath,
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAge,
	}
	log := logging.New(logging.Info, io.MultiWriter(fileLog, os.Stderr), true)
	config.SetDefaultLogger(log)

	log.Info("starting ledcored", "version", version)

	store, err := settings.NewStore(*settingsDir, log)
	if err != nil {
		log.Fatal(pkg+"could not open settings store", "error", err.Error())
	}

	cfg := config.New(log)
	applyStoredSettings(store, &cfg, log)
	cfg.Validate()

	strip := defaultStrip(cfg.LEDCount)

	driver, err := buildDriver(cfg, log)
	if err != nil {
		log.Fatal(pkg+"could not build device driver", "error", err.Error())
	}

	eng, err := engine.New(cfg, strip, driver)
	if err != nil {
		log.Fatal(pkg+"could not construct engine", "error", err.Error())
	}

	responder := ssdp.New(*instanceName, *fbsPort, *jssPort, log)
	if err := responder.Start(); err != nil {
		log.Warning(pkg+"SSDP responder failed to start", "error", err.Error())
	}
	defer responder.Stop()

	if err := eng.Start(); err != nil {
		log.Fatal(pkg+"could not start engine", "error", err.Error())
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	log.Debug("entering settings-poll loop")
	run(eng, store, sig, log)

	log.Info("stopping engine")
	eng.Stop()
}

// run re-checks the "general" settings document every pollInterval and
// applies it to the running engine when it has changed, until sig
// fires. Other document kinds are not polled.
func run(eng *engine.Engine, store *settings.Store, sig <-chan os.Signal, log config.Logger) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	last := map[string]string{}
	for {
		select {
		case <-sig:
			log.Info("received shutdown signal")
			return
		case <-ticker.C:
			raw, ok, err := store.Load(settings.KindGeneral)
			if err != nil {
				log.Warning(pkg+"failed to poll general settings", "error", err.Error())
				continue
			}
			if !ok {
				continue
			}
			if string(raw) == last[settings.KindGeneral] {
				continue
			}
			last[settings.KindGeneral] = string(raw)

			vars, err := stringVars(raw)
			if err != nil {
				log.Warning(pkg+"bad general settings document", "error", err.Error())
				continue
			}
			log.Info("general settings changed, updating engine", "vars", vars)
			if err := eng.Update(vars); err != nil {
				log.Error(pkg+"engine update failed", "error", err.Error())
			}
		}
	}
}

// applyStoredSettings layers every available settings document onto
// cfg, leaving fields untouched for kinds with no document yet (a
// brand-new install falls back to config.New's defaults).
func applyStoredSettings(store *settings.Store, cfg *config.Config, log config.Logger) {
	if raw, ok, err := store.Load(settings.KindGeneral); err == nil && ok {
		if vars, err := stringVars(raw); err == nil {
			cfg.Update(vars)
		} else {
			log.Warning(pkg+"bad general settings document", "error", err.Error())
		}
	}

	if raw, ok, err := store.Load(settings.KindLeds); err == nil && ok {
		var doc struct {
			Count int `json:"count"`
		}
		if err := json.Unmarshal(raw, &doc); err == nil && doc.Count > 0 {
			cfg.LEDCount = doc.Count
		}
	}

	if raw, ok, err := store.Load(settings.KindDevice); err == nil && ok {
		var doc struct {
			Driver  string `json:"driver"`
			Address string `json:"address"`
			Auth    string `json:"auth"`
		}
		if err := json.Unmarshal(raw, &doc); err == nil {
			if kind, known := driverKinds[doc.Driver]; known {
				cfg.Driver = kind
			}
			cfg.DriverAddress = doc.Address
			cfg.DriverAuth = doc.Auth
		}
	}

	if raw, ok, err := store.Load(settings.KindColor); err == nil && ok {
		var cal config.CalibrationConfig
		if err := json.Unmarshal(raw, &cal); err == nil {
			cfg.Calibration = cal
		}
	}
}

// driverKinds maps the "device" settings document's driver name to a
// config.Driver* constant.
var driverKinds = map[string]int{
	"wled":    config.DriverWLED,
	"dtlspsk": config.DriverDTLSPSK,
	"serial":  config.DriverSerial,
	"spi":     config.DriverSPI,
	"rest":    config.DriverREST,
	"mqtt":    config.DriverMQTT,
}

// buildDriver constructs the device.Driver named by cfg.Driver. SPI is
// not wired here since it needs a concrete periph.io spi.Port opened
// against real hardware, host-specific setup a generic daemon
// bootstrap cannot supply.
func buildDriver(cfg config.Config, log config.Logger) (device.Driver, error) {
	switch cfg.Driver {
	case config.DriverWLED:
		return wled.New(cfg.DriverAddress, log), nil
	case config.DriverDTLSPSK:
		return dtlspsk.New(cfg.DriverAddress, "ledcored", cfg.DriverAuth, 5, log), nil
	case config.DriverSerial:
		return serial.New(cfg.DriverAddress, 115200, true, log), nil
	case config.DriverREST:
		return rest.New(cfg.DriverAddress, cfg.DriverAuth, nil, 0, 0, true, log), nil
	case config.DriverMQTT:
		return mqtt.New(cfg.DriverAddress, nil, 0, 0, log), nil
	default:
		return nil, fmt.Errorf("unsupported driver kind %d (SPI requires host-specific wiring)", cfg.Driver)
	}
}

// stringVars flattens a JSON object of arbitrary-typed values into the
// map[string]string shape config.Config.Update expects, matching the
// netsender pin convention of always-stringly-typed variables.
func stringVars(raw json.RawMessage) (map[string]string, error) {
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	vars := make(map[string]string, len(m))
	for k, v := range m {
		switch t := v.(type) {
		case string:
			vars[k] = t
		default:
			b, _ := json.Marshal(t)
			vars[k] = string(b)
		}
	}
	return vars, nil
}

// defaultStrip lays out n LEDs evenly along a single row, the simplest
// strip geometry; a real installation overrides it with a leds
// document describing each LED's actual border position.
func defaultStrip(n int) ledmap.Strip {
	if n <= 0 {
		n = 1
	}
	strip := make(ledmap.Strip, n)
	for i := range strip {
		strip[i] = ledmap.LED{
			MinXFrac: float64(i) / float64(n),
			MaxXFrac: float64(i+1) / float64(n),
			MinYFrac: 0,
			MaxYFrac: 1,
		}
	}
	return strip
}
