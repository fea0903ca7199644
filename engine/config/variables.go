package config

import (
	"strconv"
	"time"
)

// Config map keys, used by the settings channel's "general" kind document
// (the flat scalar subset of Config that arrives as name/value pairs
// rather than as a nested structure of its own).
const (
	KeyInstanceName       = "InstanceName"
	KeyLogLevel           = "LogLevel"
	KeyMappingType        = "MappingType"
	KeySparseProcessing   = "SparseProcessing"
	KeyLinearize          = "Linearize"
	KeyGrabberWorkers     = "GrabberWorkers"
	KeyHDRMode            = "HDRMode"
	KeyInterpolator       = "Interpolator"
	KeyTransitionDuration = "TransitionDuration"
	KeySmoothingFactor    = "SmoothingFactor"
	KeyRefreshPeriod      = "RefreshPeriod"
	KeyMaxRetry           = "MaxRetry"
	KeyDriver             = "Driver"
	KeyDriverAddress      = "DriverAddress"
)

// Variables describes every flat scalar field of Config that the
// "general" settings document may carry, each with a string-to-field
// Update function and a Validate function that defaults and logs a bad
// value, exactly as revid/config.Variables does for revid's Config.
var Variables = []struct {
	Name     string
	Update   func(*Config, string)
	Validate func(*Config)
}{
	{
		Name: KeyInstanceName,
		Update: func(c *Config, v string) {
			c.InstanceName = v
		},
	},
	{
		Name: KeyLogLevel,
		Update: func(c *Config, v string) {
			n, err := strconv.ParseInt(v, 10, 8)
			if err != nil {
				c.LogInvalidField(KeyLogLevel, c.LogLevel)
				return
			}
			c.LogLevel = int8(n)
		},
		Validate: func(c *Config) {
			if c.LogLevel < Debug || c.LogLevel > Fatal {
				c.LogInvalidField(KeyLogLevel, Info)
				c.LogLevel = Info
			}
		},
	},
	{
		Name: KeyMappingType,
		Update: func(c *Config, v string) {
			n, err := strconv.Atoi(v)
			if err != nil {
				c.LogInvalidField(KeyMappingType, c.MappingType)
				return
			}
			c.MappingType = n
		},
		Validate: func(c *Config) {
			if c.MappingType != MeanMulticolor && c.MappingType != MeanUnicolor {
				c.LogInvalidField(KeyMappingType, MeanMulticolor)
				c.MappingType = MeanMulticolor
			}
		},
	},
	{
		Name: KeySparseProcessing,
		Update: func(c *Config, v string) {
			c.SparseProcessing = v == "true" || v == "1"
		},
	},
	{
		Name: KeyLinearize,
		Update: func(c *Config, v string) {
			c.Linearize = v == "true" || v == "1"
		},
	},
	{
		Name: KeyGrabberWorkers,
		Update: func(c *Config, v string) {
			n, err := strconv.Atoi(v)
			if err != nil {
				c.LogInvalidField(KeyGrabberWorkers, c.GrabberWorkers)
				return
			}
			c.GrabberWorkers = n
		},
		Validate: func(c *Config) {
			if c.GrabberWorkers < 1 {
				c.LogInvalidField(KeyGrabberWorkers, 1)
				c.GrabberWorkers = 1
			}
			if c.GrabberWorkers > 4 {
				c.GrabberWorkers = 4
			}
		},
	},
	{
		Name: KeyHDRMode,
		Update: func(c *Config, v string) {
			n, err := strconv.Atoi(v)
			if err != nil {
				c.LogInvalidField(KeyHDRMode, c.HDRMode)
				return
			}
			c.HDRMode = n
		},
	},
	{
		Name: KeyInterpolator,
		Update: func(c *Config, v string) {
			n, err := strconv.Atoi(v)
			if err != nil {
				c.LogInvalidField(KeyInterpolator, c.Interpolator)
				return
			}
			c.Interpolator = n
		},
		Validate: func(c *Config) {
			if c.Interpolator < InterpLinear || c.Interpolator > InterpYUVLimited {
				c.LogInvalidField(KeyInterpolator, InterpLinear)
				c.Interpolator = InterpLinear
			}
		},
	},
	{
		Name: KeyTransitionDuration,
		Update: func(c *Config, v string) {
			n, err := strconv.Atoi(v)
			if err != nil {
				c.LogInvalidField(KeyTransitionDuration, c.TransitionDuration)
				return
			}
			c.TransitionDuration = time.Duration(n) * time.Millisecond
		},
		Validate: func(c *Config) {
			if c.TransitionDuration <= 0 {
				c.LogInvalidField(KeyTransitionDuration, 200)
				c.TransitionDuration = 200 * time.Millisecond
			}
		},
	},
	{
		Name: KeySmoothingFactor,
		Update: func(c *Config, v string) {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				c.LogInvalidField(KeySmoothingFactor, c.SmoothingFactor)
				return
			}
			c.SmoothingFactor = f
		},
		Validate: func(c *Config) {
			if c.SmoothingFactor < 0 {
				c.SmoothingFactor = 0
			}
			if c.SmoothingFactor > 1 {
				c.SmoothingFactor = 1
			}
		},
	},
	{
		Name: KeyRefreshPeriod,
		Update: func(c *Config, v string) {
			n, err := strconv.Atoi(v)
			if err != nil {
				c.LogInvalidField(KeyRefreshPeriod, c.RefreshPeriod)
				return
			}
			c.RefreshPeriod = time.Duration(n) * time.Millisecond
		},
		Validate: func(c *Config) {
			if c.RefreshPeriod < 0 {
				c.LogInvalidField(KeyRefreshPeriod, 0)
				c.RefreshPeriod = 0
			}
		},
	},
	{
		Name: KeyMaxRetry,
		Update: func(c *Config, v string) {
			n, err := strconv.Atoi(v)
			if err != nil {
				c.LogInvalidField(KeyMaxRetry, c.MaxRetry)
				return
			}
			c.MaxRetry = n
		},
		Validate: func(c *Config) {
			if c.MaxRetry < 0 {
				c.LogInvalidField(KeyMaxRetry, 5)
				c.MaxRetry = 5
			}
		},
	},
	{
		Name: KeyDriver,
		Update: func(c *Config, v string) {
			n, err := strconv.Atoi(v)
			if err != nil {
				c.LogInvalidField(KeyDriver, c.Driver)
				return
			}
			c.Driver = n
		},
	},
	{
		Name: KeyDriverAddress,
		Update: func(c *Config, v string) {
			c.DriverAddress = v
		},
	},
}
