package config

import "time"

// Priority source kinds, used to tag registrations with the mux so
// logging and settings documents can refer to a source by name instead
// of a raw priority integer.
const (
	SourceVideo = iota
	SourceEffect
	SourceColor
	SourceImage
	SourceNone // the reserved priority-255 black sentinel.
)

// Averaging modes for the image-to-LED mapper (ledmap.Averager).
const (
	MeanMulticolor = iota // multicolor_mean: per-LED arithmetic mean.
	MeanUnicolor          // unicolor_mean: whole-image mean replicated to every LED.
)

// Interpolator families selectable by the "effects" settings kind.
const (
	InterpLinear = iota
	InterpSpring
	InterpHybrid
	InterpStepper
	InterpYUVLimited
)

// Calibration pipeline modes.
const (
	CalibrationClassic = iota
	CalibrationNew
)

// Driver kinds selectable by the "device" settings kind.
const (
	DriverWLED = iota
	DriverDTLSPSK
	DriverSerial
	DriverSPI
	DriverREST
	DriverMQTT
)

// Config holds every tunable field of a running engine instance. It is
// assembled from the settings-channel documents (general, color, device,
// leds, grabber, netForward, netServers, effects, videoDetection,
// performance) and may be atomically replaced wholesale, or adjusted
// field-by-field through Update for the flat scalar subset.
type Config struct {
	// Logger must be set before the config is used by any component.
	Logger Logger

	// LogLevel is the verbosity passed to Logger.SetLevel on startup and
	// on any subsequent "general" settings update.
	LogLevel int8

	// InstanceName identifies this engine instance in logs and in the
	// SSDP discovery responder.
	InstanceName string

	// LEDCount is the number of LEDs in the configured strip. It is
	// redundant with len(Strip) once a leds document has arrived, but is
	// kept so drivers can size their buffers before the first frame.
	LEDCount int

	// MappingType selects the averaging mode.
	MappingType int

	// SparseProcessing forces stride-2 sampling even for LED regions
	// below the 1600px auto-sparse threshold.
	SparseProcessing bool

	// Linearize enables the sRGB-to-linear averaging path in ledmap.
	Linearize bool

	// GrabberWorkers caps the grabber pool worker count before the
	// min(max(ideal-1,1),4) clamp is applied.
	GrabberWorkers int

	// HDRMode selects off/full/partial tone-mapping.
	HDRMode int

	// HDRThresholds are the (Y*, U*, V*) breach thresholds for the HDR
	// auto-detector.
	HDRThresholdY, HDRThresholdU, HDRThresholdV uint8

	// HDROnSeconds / HDROffMillis are the hysteresis timer lengths.
	HDROnSeconds int
	HDROffMillis int

	// Interpolator selects the animation family and its duration.
	Interpolator       int
	TransitionDuration time.Duration
	SmoothingFactor    float64
	SpringStiffness    float64
	SpringDamping      float64
	YUVStepLimit       float64

	// RefreshPeriod is the device dispatcher's periodic rewrite interval;
	// zero disables it.
	RefreshPeriod time.Duration

	// MaxRetry bounds the dispatcher's cooldown-then-retry budget before
	// it gives up, logs an error and moves to OFF.
	MaxRetry int

	// Driver selects which device/* adapter the dispatcher targets, and
	// DriverAddress/DriverAuth carry adapter-specific connection details
	// (host:port, PSK identity/hex, serial device path, MQTT broker URL,
	// etc.) opaque to the engine itself.
	Driver        int
	DriverAddress string
	DriverAuth    string

	// Calibration holds the full per-channel calibration document.
	// It is intentionally a value, not a pointer, so a settings update
	// can be applied as an atomic struct copy.
	Calibration CalibrationConfig
}

// CalibrationConfig mirrors the calibration pipeline's data model.
type CalibrationConfig struct {
	Mode int

	GammaR, GammaG, GammaB float64

	BacklightThreshold uint8
	BacklightColored   bool

	Brightness             uint8
	BrightnessCompensation uint8

	SaturationGain, LuminanceGain, LuminanceMinimum float64

	// Primaries holds the eight per-primary {R,G,B} calibration vectors,
	// indexed by PrimaryBlack..PrimaryWhite below.
	Primaries [8][3]uint8

	// Temperature is a scalar-per-channel correction applied last in the
	// classic pipeline.
	Temperature [3]float64
}

// Indices into CalibrationConfig.Primaries.
const (
	PrimaryBlack = iota
	PrimaryRed
	PrimaryGreen
	PrimaryBlue
	PrimaryCyan
	PrimaryMagenta
	PrimaryYellow
	PrimaryWhite
)

// DefaultCalibration returns a calibration with gamma=1, saturation=1,
// luminance=1, backlight disabled, brightness=100, compensation=100 and
// every primary at its canonical corner of the RGB cube — the identity
// calibration, so applying it to a frame is a no-op.
func DefaultCalibration() CalibrationConfig {
	c := CalibrationConfig{
		Mode:                   CalibrationClassic,
		GammaR:                 1, GammaG: 1, GammaB: 1,
		BacklightThreshold:     0,
		Brightness:             100,
		BrightnessCompensation: 100,
		SaturationGain:         1,
		LuminanceGain:          1,
		LuminanceMinimum:       0,
		Temperature:            [3]float64{1, 1, 1},
	}
	c.Primaries[PrimaryBlack] = [3]uint8{0, 0, 0}
	c.Primaries[PrimaryRed] = [3]uint8{255, 0, 0}
	c.Primaries[PrimaryGreen] = [3]uint8{0, 255, 0}
	c.Primaries[PrimaryBlue] = [3]uint8{0, 0, 255}
	c.Primaries[PrimaryCyan] = [3]uint8{0, 255, 255}
	c.Primaries[PrimaryMagenta] = [3]uint8{255, 0, 255}
	c.Primaries[PrimaryYellow] = [3]uint8{255, 255, 0}
	c.Primaries[PrimaryWhite] = [3]uint8{255, 255, 255}
	return c
}

// New returns a Config with engine-wide defaults, ready for settings
// documents to be layered on top via Update.
func New(l Logger) Config {
	if l == nil {
		l = NewDiscardLogger()
	}
	return Config{
		Logger:             l,
		LogLevel:           Info,
		MappingType:        MeanMulticolor,
		Linearize:          true,
		GrabberWorkers:     4,
		HDROnSeconds:       3,
		HDROffMillis:       3000,
		Interpolator:       InterpLinear,
		TransitionDuration: 200 * time.Millisecond,
		SmoothingFactor:    0,
		SpringStiffness:    18,
		SpringDamping:      5,
		YUVStepLimit:       0.02,
		RefreshPeriod:      15 * time.Second,
		MaxRetry:           5,
		Calibration:        DefaultCalibration(),
	}
}

// Validate runs every registered Variable's validator against c,
// defaulting and logging any field found to be out of range. It never
// returns an error itself — like revid/config, a bad field is corrected
// in place and logged, not rejected.
func (c *Config) Validate() {
	for _, v := range Variables {
		if v.Validate != nil {
			v.Validate(c)
		}
	}
}

// Update applies the flat scalar subset of settings (the "general" kind)
// given as a map of variable name to string value, exactly as
// revid/config.Config.Update does for CLI-style variables.
func (c *Config) Update(vars map[string]string) {
	for _, v := range Variables {
		if s, ok := vars[v.Name]; ok && v.Update != nil {
			v.Update(c, s)
		}
	}
}

// LogInvalidField logs that a field was bad or unset and has been
// defaulted, matching revid/config.Config.LogInvalidField.
func (c *Config) LogInvalidField(name string, def interface{}) {
	c.Logger.Info(name+" bad or unset, defaulting", name, def)
}
