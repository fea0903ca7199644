package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type dumbLogger struct{}

func (dumbLogger) SetLevel(int8)                  {}
func (dumbLogger) Debug(string, ...interface{})   {}
func (dumbLogger) Info(string, ...interface{})    {}
func (dumbLogger) Warning(string, ...interface{}) {}
func (dumbLogger) Error(string, ...interface{})   {}
func (dumbLogger) Fatal(string, ...interface{})   {}

func TestValidateDefaultsOutOfRangeFields(t *testing.T) {
	dl := dumbLogger{}
	got := New(dl)
	got.LogLevel = 99
	got.MappingType = 77
	got.Interpolator = -1
	got.TransitionDuration = 0
	got.MaxRetry = -5

	got.Validate()

	want := New(dl)
	if !cmp.Equal(got, want) {
		t.Errorf("config not restored to defaults after Validate\nwant: %+v\ngot: %+v", want, got)
	}
}

func TestUpdateAppliesEveryVariable(t *testing.T) {
	dl := dumbLogger{}
	c := New(dl)

	vars := map[string]string{
		KeyInstanceName:       "porch",
		KeyLogLevel:           "0",
		KeyMappingType:        "1",
		KeySparseProcessing:   "true",
		KeyLinearize:          "false",
		KeyGrabberWorkers:     "2",
		KeyHDRMode:            "1",
		KeyInterpolator:       "2",
		KeyTransitionDuration: "300",
		KeySmoothingFactor:    "0.5",
		KeyRefreshPeriod:      "5000",
		KeyMaxRetry:           "3",
		KeyDriver:             "4",
		KeyDriverAddress:      "10.0.0.5:80",
	}
	c.Update(vars)

	want := Config{
		Logger:             dl,
		InstanceName:       "porch",
		LogLevel:           Debug,
		MappingType:        MeanUnicolor,
		SparseProcessing:   true,
		Linearize:          false,
		GrabberWorkers:     2,
		HDRMode:            1,
		HDROnSeconds:       3,
		HDROffMillis:       3000,
		Interpolator:       InterpHybrid,
		TransitionDuration: 300 * time.Millisecond,
		SmoothingFactor:    0.5,
		SpringStiffness:    18,
		SpringDamping:      5,
		YUVStepLimit:       0.02,
		RefreshPeriod:      5000 * time.Millisecond,
		MaxRetry:           3,
		Driver:             4,
		DriverAddress:      "10.0.0.5:80",
		Calibration:        DefaultCalibration(),
	}
	if !cmp.Equal(c, want) {
		t.Errorf("config after Update\nwant: %+v\ngot: %+v", want, c)
	}
}

func TestUpdateIgnoresUnknownKeys(t *testing.T) {
	dl := dumbLogger{}
	c := New(dl)
	c.Update(map[string]string{"NotARealKey": "whatever"})
	if !cmp.Equal(c, New(dl)) {
		t.Error("unknown key mutated the config")
	}
}

func TestDefaultCalibrationIsIdentity(t *testing.T) {
	c := DefaultCalibration()
	if c.GammaR != 1 || c.GammaG != 1 || c.GammaB != 1 {
		t.Error("default gamma should be 1 on every channel")
	}
	if c.Brightness != 100 || c.BrightnessCompensation != 100 {
		t.Error("default brightness/compensation should be 100")
	}
	if c.Primaries[PrimaryWhite] != [3]uint8{255, 255, 255} {
		t.Error("default white primary should be the canonical RGB corner")
	}
}
