// Package config loads Signova settings from a TOML file with .env and
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// ErrInvalid is returned by Validate for out-of-range settings.
var ErrInvalid = errors.New("invalid config")

// DefaultFile is read when no config path is given.
const DefaultFile = "signova.toml"

type Config struct {
	Camera     CameraConfig     `toml:"Camera"`
	Detector   DetectorConfig   `toml:"Detector"`
	Classifier ClassifierConfig `toml:"Classifier"`
	Stability  StabilityConfig  `toml:"Stability"`
	Speech     SpeechConfig     `toml:"Speech"`
	Sentence   SentenceConfig   `toml:"Sentence"`
	Session    SessionConfig    `toml:"Session"`
	Server     ServerConfig     `toml:"Server"`
	Store      StoreConfig      `toml:"Store"`
	Log        LogConfig        `toml:"Log"`
}

type CameraConfig struct {
	DeviceID     int     `toml:"DeviceID"`
	Width        int     `toml:"Width"`
	Height       int     `toml:"Height"`
	FPS          int     `toml:"FPS"`
	MotionGate   bool    `toml:"MotionGate"`   // skip detection on still frames
	MotionThresh float64 `toml:"MotionThresh"` // percent of changed pixels
}

type DetectorConfig struct {
	ScriptPath             string  `toml:"ScriptPath"`
	PythonPath             string  `toml:"PythonPath"`
	MaxHands               int     `toml:"MaxHands"`
	StaticImageMode        bool    `toml:"StaticImageMode"`
	MinDetectionConfidence float64 `toml:"MinDetectionConfidence"`
	MinTrackingConfidence  float64 `toml:"MinTrackingConfidence"`
}

type ClassifierConfig struct {
	Disabled        bool    `toml:"Disabled"`
	RuntimeLibrary  string  `toml:"RuntimeLibrary"`
	PoseModel       string  `toml:"PoseModel"`
	PoseLabels      string  `toml:"PoseLabels"`
	MotionModel     string  `toml:"MotionModel"`
	MotionLabels    string  `toml:"MotionLabels"`
	InputName       string  `toml:"InputName"`
	OutputName      string  `toml:"OutputName"`
	MotionThreshold float64 `toml:"MotionThreshold"`
	InvalidIndex    int     `toml:"InvalidIndex"`
}

type StabilityConfig struct {
	ConfidenceThreshold float64       `toml:"ConfidenceThreshold"`
	HighConfidence      float64       `toml:"HighConfidence"`
	MinRepeats          int           `toml:"MinRepeats"`
	WordDelay           time.Duration `toml:"WordDelay"`
	PhraseDelay         time.Duration `toml:"PhraseDelay"`
	Separator           string        `toml:"Separator"`
}

type SpeechConfig struct {
	Provider  string        `toml:"Provider"` // google, log
	Language  string        `toml:"Language"`
	Speed     float64       `toml:"Speed"`
	CacheDir  string        `toml:"CacheDir"`
	Cooldown  time.Duration `toml:"Cooldown"`
	QueueSize int           `toml:"QueueSize"`
}

type SentenceConfig struct {
	Dictionary      string `toml:"Dictionary"` // optional YAML override
	DefaultLanguage string `toml:"DefaultLanguage"`
}

type SessionConfig struct {
	HistoryLength    int           `toml:"HistoryLength"`
	FPSWindow        int           `toml:"FPSWindow"`
	RecentWords      int           `toml:"RecentWords"`
	PointerThreshold float64       `toml:"PointerThreshold"`
	PointerLabels    []string      `toml:"PointerLabels"`
	NoGestureLabels  []string      `toml:"NoGestureLabels"`
	JoinTimeout      time.Duration `toml:"JoinTimeout"`
	Overlay          bool          `toml:"Overlay"`
}

type ServerConfig struct {
	Addr      string `toml:"Addr"`
	StaticDir string `toml:"StaticDir"`
}

type StoreConfig struct {
	Path string `toml:"Path"`
}

type LogConfig struct {
	Level  string `toml:"Level"`
	Format string `toml:"Format"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Camera: CameraConfig{
			DeviceID:     0,
			Width:        1280,
			Height:       720,
			FPS:          30,
			MotionThresh: 1.0,
		},
		Detector: DetectorConfig{
			MaxHands:               2,
			MinDetectionConfidence: 0.7,
			MinTrackingConfidence:  0.5,
		},
		Classifier: ClassifierConfig{
			PoseModel:       "model/keypoint_classifier/keypoint_classifier.onnx",
			PoseLabels:      "model/keypoint_classifier/keypoint_classifier_label.csv",
			MotionModel:     "model/point_history_classifier/point_history_classifier.onnx",
			MotionLabels:    "model/point_history_classifier/point_history_classifier_label.csv",
			InputName:       "input_1",
			OutputName:      "output_1",
			MotionThreshold: 0.5,
			InvalidIndex:    0,
		},
		Stability: StabilityConfig{
			ConfidenceThreshold: 0.7,
			HighConfidence:      0.85,
			MinRepeats:          2,
			WordDelay:           1200 * time.Millisecond,
			PhraseDelay:         600 * time.Millisecond,
			Separator:           "_",
		},
		Speech: SpeechConfig{
			Provider:  "google",
			Language:  "en",
			Speed:     1.0,
			Cooldown:  1200 * time.Millisecond,
			QueueSize: 5,
		},
		Sentence: SentenceConfig{
			DefaultLanguage: "english",
		},
		Session: SessionConfig{
			HistoryLength:    16,
			FPSWindow:        10,
			RecentWords:      10,
			PointerThreshold: 0.7,
			PointerLabels:    []string{"Pointer", "Point"},
			NoGestureLabels:  []string{"None"},
			JoinTimeout:      time.Second,
			Overlay:          true,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Store: StoreConfig{
			Path: "signova.db",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the TOML file at path on top of Default, then applies .env and
// environment overrides. A missing file at the default path is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	// .env is optional
	_ = godotenv.Load()
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("SIGNOVA_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("SIGNOVA_DB"); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv("SIGNOVA_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("SIGNOVA_CAMERA"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			c.Camera.DeviceID = id
		}
	}
	if parseBool(os.Getenv("SIGNOVA_DISABLE_ML"), false) || os.Getenv("RENDER_EXTERNAL_HOSTNAME") != "" {
		c.Classifier.Disabled = true
	}
}

// Validate checks that thresholds and sizes are usable.
func (c *Config) Validate() error {
	switch {
	case c.Camera.Width <= 0 || c.Camera.Height <= 0:
		return fmt.Errorf("%w: camera size %dx%d", ErrInvalid, c.Camera.Width, c.Camera.Height)
	case c.Camera.FPS <= 0:
		return fmt.Errorf("%w: camera fps %d", ErrInvalid, c.Camera.FPS)
	case c.Detector.MaxHands < 1:
		return fmt.Errorf("%w: max hands %d", ErrInvalid, c.Detector.MaxHands)
	case !unit(c.Stability.ConfidenceThreshold) || !unit(c.Stability.HighConfidence):
		return fmt.Errorf("%w: stability thresholds must be in [0,1]", ErrInvalid)
	case !unit(c.Classifier.MotionThreshold):
		return fmt.Errorf("%w: motion threshold %v", ErrInvalid, c.Classifier.MotionThreshold)
	case c.Stability.MinRepeats < 1:
		return fmt.Errorf("%w: min repeats %d", ErrInvalid, c.Stability.MinRepeats)
	case c.Stability.WordDelay < 0 || c.Stability.PhraseDelay < 0 || c.Speech.Cooldown < 0:
		return fmt.Errorf("%w: negative delay", ErrInvalid)
	case c.Speech.QueueSize < 1:
		return fmt.Errorf("%w: speech queue size %d", ErrInvalid, c.Speech.QueueSize)
	case c.Session.HistoryLength < 1 || c.Session.FPSWindow < 1:
		return fmt.Errorf("%w: session buffers must be positive", ErrInvalid)
	}
	return nil
}

func unit(v float64) bool {
	return v >= 0 && v <= 1
}

// parseBool accepts "true", "1" and "yes"; empty input returns def.
func parseBool(s string, def bool) bool {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return def
	}
	return s == "true" || s == "1" || s == "yes"
}
