package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"github.com/srivarshini-21/india-vaccination-dashboard/classify"
	"github.com/srivarshini-21/india-vaccination-dashboard/panels"
	"github.com/srivarshini-21/india-vaccination-dashboard/placement"
)

type GlobalConfig struct {
	Dataset   string `toml:"dataset"`
	Map       string `toml:"map"`
	LogFile   string `toml:"logFile"`
	LogLevel  string `toml:"logLevel" validate:"omitempty,oneof=debug info warn warning error"`
	LogFormat string `toml:"logFormat" validate:"omitempty,oneof=text json"`
}

// ClassifierConfig holds the tier cut points (very high, high, medium) and
// the tier colors (very high, high, medium, low).
type ClassifierConfig struct {
	Thresholds []float64 `toml:"thresholds" validate:"len=3,dive,gt=0,lt=1"`
	Colors     []string  `toml:"colors" validate:"len=4,dive,hexcolor"`
}

type SummaryConfig struct {
	TopN int `toml:"topN" validate:"gte=0"`
}

// TooltipConfig distances are in terminal cells.
type TooltipConfig struct {
	Offset          int `toml:"offset" validate:"gte=0"`
	TouchBreakpoint int `toml:"touchBreakpoint" validate:"gte=0"`
}

type InsightsConfig struct {
	Population   int64 `toml:"population" validate:"gt=0"`
	CampaignDays int   `toml:"campaignDays" validate:"gt=0"`
}

type RenderConfig struct {
	PlotPath  string `toml:"plotPath"`
	SvgPath   string `toml:"svgPath"`
	Highlight string `toml:"highlight"`
}

type Config struct {
	Global     GlobalConfig     `toml:"global"`
	Classifier ClassifierConfig `toml:"classifier"`
	Summary    SummaryConfig    `toml:"summary"`
	Tooltip    TooltipConfig    `toml:"tooltip"`
	Insights   InsightsConfig   `toml:"insights"`
	Render     RenderConfig     `toml:"render"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	scale := classify.DefaultScale()
	colors := make([]string, 0, len(classify.Tiers))
	for _, tier := range classify.Tiers {
		colors = append(colors, scale.Colors[tier])
	}
	return &Config{
		Classifier: ClassifierConfig{
			Thresholds: []float64{scale.Thresholds.VeryHigh, scale.Thresholds.High, scale.Thresholds.Medium},
			Colors:     colors,
		},
		Tooltip: TooltipConfig{
			Offset:          placement.DefaultOffset,
			TouchBreakpoint: placement.DefaultBreakpoint,
		},
		Insights: InsightsConfig{
			Population:   panels.DefaultPopulation,
			CampaignDays: panels.DefaultCampaignDays,
		},
	}
}

// sectionKeys lists the keys each section accepts.
var sectionKeys = map[string][]string{
	"global":     {"dataset", "map", "logFile", "logLevel", "logFormat"},
	"classifier": {"thresholds", "colors"},
	"summary":    {"topN"},
	"tooltip":    {"offset", "touchBreakpoint"},
	"insights":   {"population", "campaignDays"},
	"render":     {"plotPath", "svgPath", "highlight"},
}

// LoadConfig reads a TOML file over the defaults and validates the result.
// Keys that are absent keep their default value.
func LoadConfig(configPath string) (*Config, error) {
	configData, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseConfig(string(configData))
}

// ParseConfig is LoadConfig for in-memory TOML.
func ParseConfig(data string) (*Config, error) {
	var rawConfig map[string]any
	if _, err := toml.Decode(data, &rawConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config := Default()
	keys := make([]string, 0, len(rawConfig))
	for key := range rawConfig {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		allowed, known := sectionKeys[key]
		if !known {
			return nil, fmt.Errorf("unknown config section %q", key)
		}
		section, ok := rawConfig[key].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s must be a table", key)
		}
		if err := checkKeys(key, section, allowed); err != nil {
			return nil, err
		}
		var err error
		switch key {
		case "global":
			err = parseGlobalConfig(section, &config.Global)
		case "classifier":
			err = parseClassifierConfig(section, &config.Classifier)
		case "summary":
			err = parseInt(section, "topN", &config.Summary.TopN)
		case "tooltip":
			err = errors.Join(
				parseInt(section, "offset", &config.Tooltip.Offset),
				parseInt(section, "touchBreakpoint", &config.Tooltip.TouchBreakpoint),
			)
		case "insights":
			err = parseInsightsConfig(section, &config.Insights)
		case "render":
			err = errors.Join(
				parseString(section, "plotPath", &config.Render.PlotPath),
				parseString(section, "svgPath", &config.Render.SvgPath),
				parseString(section, "highlight", &config.Render.Highlight),
			)
		}
		if err != nil {
			return nil, fmt.Errorf("parsing [%s]: %w", key, err)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func checkKeys(section string, m map[string]any, allowed []string) error {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if !slices.Contains(allowed, name) {
			return fmt.Errorf("unknown key %q in [%s]", name, section)
		}
	}
	return nil
}

func parseGlobalConfig(m map[string]any, config *GlobalConfig) error {
	return errors.Join(
		parseString(m, "dataset", &config.Dataset),
		parseString(m, "map", &config.Map),
		parseString(m, "logFile", &config.LogFile),
		parseString(m, "logLevel", &config.LogLevel),
		parseString(m, "logFormat", &config.LogFormat),
	)
}

func parseClassifierConfig(m map[string]any, config *ClassifierConfig) error {
	if v, ok := m["thresholds"]; ok {
		arr, ok := v.([]any)
		if !ok {
			return fmt.Errorf("thresholds must be an array of numbers")
		}
		thresholds := make([]float64, 0, len(arr))
		for _, item := range arr {
			f, ok := toFloat(item)
			if !ok {
				return fmt.Errorf("thresholds must be an array of numbers, got %v", item)
			}
			thresholds = append(thresholds, f)
		}
		config.Thresholds = thresholds
	}
	if v, ok := m["colors"]; ok {
		arr, ok := v.([]any)
		if !ok {
			return fmt.Errorf("colors must be an array of strings")
		}
		colors := make([]string, 0, len(arr))
		for _, item := range arr {
			s, ok := item.(string)
			if !ok {
				return fmt.Errorf("colors must be an array of strings, got %v", item)
			}
			colors = append(colors, s)
		}
		config.Colors = colors
	}
	return nil
}

func parseInsightsConfig(m map[string]any, config *InsightsConfig) error {
	if v, ok := m["population"]; ok {
		n, ok := v.(int64)
		if !ok {
			return fmt.Errorf("population must be an integer")
		}
		config.Population = n
	}
	return parseInt(m, "campaignDays", &config.CampaignDays)
}

func parseString(m map[string]any, key string, dst *string) error {
	v, ok := m[key]
	if !ok {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return fmt.Errorf("%s must be a string", key)
	}
	*dst = s
	return nil
}

func parseInt(m map[string]any, key string, dst *int) error {
	v, ok := m[key]
	if !ok {
		return nil
	}
	switch n := v.(type) {
	case int64:
		*dst = int(n)
		return nil
	case float64:
		if n == math.Trunc(n) && math.Abs(n) < math.MaxInt32 {
			*dst = int(n)
			return nil
		}
	}
	return fmt.Errorf("%s must be an integer", key)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	}
	return 0, false
}

var validate = validator.New()

// Validate checks field constraints and the ordering of the thresholds.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := c.Thresholds().Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Thresholds returns the classifier cut points. Call after Validate.
func (c *Config) Thresholds() classify.Thresholds {
	th := c.Classifier.Thresholds
	if len(th) != 3 {
		return classify.DefaultThresholds
	}
	return classify.Thresholds{VeryHigh: th[0], High: th[1], Medium: th[2]}
}

// Scale returns the configured color scale.
func (c *Config) Scale() classify.Scale {
	scale := classify.Scale{Thresholds: c.Thresholds(), Colors: make(map[classify.Tier]string)}
	for i, tier := range classify.Tiers {
		if i < len(c.Classifier.Colors) {
			scale.Colors[tier] = c.Classifier.Colors[i]
		}
	}
	return scale
}
