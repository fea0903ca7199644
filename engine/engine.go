// Package engine wires components C1 through C9 into the running
// ambient-lighting pipeline, mirroring revid.Revid's New/Start/Stop/
// Update lifecycle and its "stop-then-reconfigure-then-restart"
// behavior for Update.
package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/ledstream/core/calib"
	"github.com/ledstream/core/device"
	"github.com/ledstream/core/dispatch"
	"github.com/ledstream/core/engine/config"
	"github.com/ledstream/core/grabber"
	"github.com/ledstream/core/interp"
	"github.com/ledstream/core/ledmap"
	"github.com/ledstream/core/mux"
)

// imagePriority is the fixed mux priority the grabber pipeline's
// averaged frames register at; effects/colors register at
// numerically-lower (higher-precedence) priorities assigned by the
// caller through Mux().
const imagePriority = 200

// evaluateInterval is the mux re-evaluation/time-trigger cadence,
// intended to be driven by a ~250ms ticker.
const evaluateInterval = 250 * time.Millisecond

// tickInterval is the interpolator step cadence, running at a
// conventional ~60fps to keep transitions visually smooth without
// saturating the dispatcher.
const tickInterval = 16 * time.Millisecond

// Engine owns one running instance of the full grabber→mux→interp→
// calib→dispatch pipeline (components C4-C9) over a single LED strip.
type Engine struct {
	cfg    config.Config
	log    config.Logger
	driver device.Driver

	strip    ledmap.Strip
	mappingW int
	mappingH int
	mapping  *ledmap.Mapping
	imgPool  *ledmap.Pool
	average  ledmap.Averager

	pool *grabber.Pool
	mux  *mux.Muxer

	interpolator interp.Interpolator
	calib        *calib.Stage
	dispatcher   *dispatch.Dispatcher

	running bool
	stop    chan struct{}
	wg      sync.WaitGroup

	latestMu    sync.Mutex
	latestFrame []ledmap.Float3
}

// New constructs an Engine from cfg, targeting driver for output. It
// does not start any background processing; call Start for that.
func New(cfg config.Config, strip ledmap.Strip, driver device.Driver) (*Engine, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("engine: cfg.Logger must be set")
	}
	e := &Engine{cfg: cfg, log: cfg.Logger, strip: strip, driver: driver}
	if err := e.setConfig(cfg, driver); err != nil {
		return nil, err
	}
	return e, nil
}

// Config returns a copy of the engine's current config.
func (e *Engine) Config() config.Config { return e.cfg }

// Running reports whether the engine's background loops are active.
func (e *Engine) Running() bool { return e.running }

func (e *Engine) setConfig(cfg config.Config, driver device.Driver) error {
	e.cfg = cfg
	e.log = cfg.Logger

	e.mapping = nil
	e.mappingW, e.mappingH = 0, 0
	e.imgPool = ledmap.NewPool(64 << 20)
	e.average = ledmap.Averager{Mode: cfg.MappingType, Linear: cfg.Linearize}

	e.pool = grabber.New(cfg.GrabberWorkers, e.imgPool, e.log)
	e.mux = mux.New()
	e.mux.Register(imagePriority, "video", "grabber", 0, "engine")

	e.interpolator = interp.New(interp.Config{
		Family:             interp.Family(cfg.Interpolator),
		TransitionDuration: float64(cfg.TransitionDuration / time.Millisecond),
		SmoothingFactor:    cfg.SmoothingFactor,
		SpringStiffness:    cfg.SpringStiffness,
		SpringDamping:      cfg.SpringDamping,
		YUVDeltaYCap:       cfg.YUVStepLimit,
	})

	e.calib = calib.Build(cfg.Calibration)
	e.dispatcher = dispatch.New(driver, len(e.strip), cfg)

	return nil
}

// Pool exposes the grabber pool so a capture source can Submit
// buffers into the pipeline.
func (e *Engine) Pool() *grabber.Pool { return e.pool }

// Mux exposes the multiplexer so effect/color sources outside the
// grabber pipeline can Register/SetInput at their own priority.
func (e *Engine) Mux() *mux.Muxer { return e.mux }

// Start begins the background frame-collection, mux-evaluation, and
// interpolation/dispatch loops.
func (e *Engine) Start() error {
	if e.running {
		e.log.Warning("engine: start called, but already running")
		return nil
	}
	if err := e.dispatcher.Init(); err != nil {
		return fmt.Errorf("engine: dispatcher init failed: %w", err)
	}
	if err := e.dispatcher.Enable(); err != nil {
		return fmt.Errorf("engine: dispatcher enable failed: %w", err)
	}

	e.stop = make(chan struct{})
	e.wg.Add(2)
	go e.collectFrames()
	go e.runPipeline()

	e.running = true
	e.log.Info("engine: started")
	return nil
}

// Stop halts every background loop and disables the dispatcher
// (writing blacks on the way out).
func (e *Engine) Stop() {
	if !e.running {
		e.log.Warning("engine: stop called but not running")
		return
	}
	close(e.stop)
	e.pool.Stop()
	e.wg.Wait()

	if err := e.dispatcher.Disable(); err != nil {
		e.log.Error("engine: dispatcher disable failed", "err", err.Error())
	}
	e.running = false
	e.log.Info("engine: stopped")
}

// Update applies vars to the config, stopping and restarting the
// engine around the change exactly as revid.Revid.Update does.
func (e *Engine) Update(vars map[string]string) error {
	wasRunning := e.running
	if wasRunning {
		e.log.Debug("engine: running; stopping for re-config")
		e.Stop()
	}

	e.cfg.Update(vars)
	e.cfg.Validate()
	if err := e.setConfig(e.cfg, e.driver); err != nil {
		return err
	}

	if wasRunning {
		return e.Start()
	}
	return nil
}

// collectFrames drains the grabber pool's output, averages each
// decoded image into a per-LED color vector, and registers it with
// the mux at imagePriority as the current representative color
// (the mean, since the mux's priority record carries a single static
// color) while stashing the full per-LED vector for the dispatch tick
// to use whenever the image source is the one currently visible.
func (e *Engine) collectFrames() {
	defer e.wg.Done()
	for {
		select {
		case <-e.stop:
			return
		case item, ok := <-e.pool.Out():
			if !ok {
				return
			}
			frame, ok := item.(*grabber.Frame)
			if !ok {
				continue // a *grabber.FailedFrame; already logged by the pool.
			}
			mapping := e.mappingFor(frame.Image.Width, frame.Image.Height)
			colors := e.average.Process(frame.Image, mapping)
			frame.Image.Release()

			e.latestMu.Lock()
			e.latestFrame = colors
			e.latestMu.Unlock()

			nowMs := time.Now().UnixMilli()
			e.mux.SetInput(imagePriority, 0, meanColor(colors), nowMs)
		}
	}
}

// runPipeline drives mux evaluation and the interpolate→calibrate→
// dispatch chain at tickInterval.
func (e *Engine) runPipeline() {
	defer e.wg.Done()

	evalTicker := time.NewTicker(evaluateInterval)
	defer evalTicker.Stop()
	stepTicker := time.NewTicker(tickInterval)
	defer stepTicker.Stop()

	for {
		select {
		case <-e.stop:
			return
		case <-evalTicker.C:
			now := time.Now()
			nowMs := now.UnixMilli()
			e.mux.Evaluate(nowMs)
			e.mux.TimeRunner(now, nowMs)
		case <-e.mux.VisibleChanged():
			_, priority := e.mux.Visible()
			e.retarget(priority)
		case <-stepTicker.C:
			nowMs := float64(time.Now().UnixMilli())
			e.interpolator.UpdateCurrentColors(nowMs)
			colors := toColorRGB(e.interpolator.GetCurrentColors())
			calibrated := e.calib.Apply(colors)
			e.dispatcher.UpdateLeds(calibrated)
		}
	}
}

// retarget sets the interpolator's target vector for whichever source
// is now visible: the live averaged frame for the image priority, or
// the source's static color replicated across every LED otherwise.
func (e *Engine) retarget(priority uint8) {
	nowMs := float64(time.Now().UnixMilli())

	if priority == imagePriority {
		e.latestMu.Lock()
		frame := e.latestFrame
		e.latestMu.Unlock()
		if frame != nil {
			e.interpolator.SetTargetColors(frame, nowMs)
			return
		}
	}

	color, _ := e.mux.Visible()
	target := make([]ledmap.Float3, len(e.strip))
	f3 := color.ToFloat3()
	for i := range target {
		target[i] = f3
	}
	e.interpolator.SetTargetColors(target, nowMs)
}

// mappingFor returns the cached pixel-index mapping for (w, h),
// rebuilding it only when the capture resolution changes.
func (e *Engine) mappingFor(w, h int) *ledmap.Mapping {
	if e.mapping != nil && e.mappingW == w && e.mappingH == h {
		return e.mapping
	}
	e.mapping = ledmap.Rebuild(w, h, 0, 0, e.strip, e.cfg.SparseProcessing)
	e.mappingW, e.mappingH = w, h
	return e.mapping
}

func meanColor(colors []ledmap.Float3) ledmap.ColorRGB {
	if len(colors) == 0 {
		return ledmap.Black
	}
	var r, g, b float64
	for _, c := range colors {
		r += c.R
		g += c.G
		b += c.B
	}
	n := float64(len(colors))
	return ledmap.Float3{R: r / n, G: g / n, B: b / n}.ToColorRGB()
}

func toColorRGB(colors []ledmap.Float3) []ledmap.ColorRGB {
	out := make([]ledmap.ColorRGB, len(colors))
	for i, c := range colors {
		out[i] = c.ToColorRGB()
	}
	return out
}
