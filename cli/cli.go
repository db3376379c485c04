package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/srivarshini-21/india-vaccination-dashboard/config"
	"github.com/srivarshini-21/india-vaccination-dashboard/version"
	cli "github.com/urfave/cli/v2"
)

// parseDate attempts to parse the build date
func parseDate(d string) time.Time {
	t, err := time.Parse(time.RFC3339, d)
	if err != nil {
		return time.Now()
	}
	return t
}

// Shared flag definitions
var (
	// Configuration flags
	configFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "Path to configuration file (mutually exclusive with input flags)",
	}

	// Input flags
	datasetFlag = &cli.StringFlag{
		Name:  "dataset",
		Usage: "Path or http(s) URL of the coverage dataset JSON. The embedded dataset is used if not provided.",
	}
	mapFlag = &cli.StringFlag{
		Name:  "map",
		Usage: "Path or http(s) URL of the SVG map. A schematic tile map is generated if not provided.",
	}
	topNFlag = &cli.IntFlag{
		Name:  "topN",
		Usage: "Number of regions in the ranking (0 shows all)",
		Value: 0,
	}
	highlightFlag = &cli.StringFlag{
		Name:  "highlight",
		Usage: "Region id to pin in the rendered dashboard (e.g., 'IN-KL')",
	}
	logFileFlag = &cli.StringFlag{
		Name:  "logFile",
		Usage: "Path to write logs to. The TUI discards logs if not provided.",
	}

	// Output flags
	plotPathFlag = &cli.StringFlag{
		Name:  "plotPath",
		Usage: "Path where to save the HTML dashboard (e.g., '/path/to/dashboard.html'). If not provided, no dashboard will be generated.",
	}
	svgPathFlag = &cli.StringFlag{
		Name:  "svgPath",
		Usage: "Path where to save the styled SVG map. If not provided, no map will be written.",
	}
	compactFlag = &cli.BoolFlag{
		Name:  "compact",
		Usage: "Output compact JSON (no pretty printing)",
		Value: false,
	}
	plainFlag = &cli.BoolFlag{
		Name:  "plain",
		Usage: "Output plain text format for easy readability",
		Value: false,
	}
)

var regionIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// Shared validation functions
func validateConfigModeFlags(c *cli.Context, allowedFlags []string) error {
	allowed := make(map[string]bool)
	for _, flag := range allowedFlags {
		allowed[flag] = true
	}

	flagsToCheck := []string{
		"dataset", "map", "topN", "highlight", "logFile",
		"plotPath", "svgPath", "compact", "plain",
	}

	for _, flag := range flagsToCheck {
		if c.IsSet(flag) && !allowed[flag] {
			return fmt.Errorf("when using --config, only %v flags are allowed", allowedFlags)
		}
	}
	return nil
}

func isURL(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// validateLocation checks that a local asset exists. URLs are checked when
// fetched.
func validateLocation(name, location string) error {
	if location == "" || isURL(location) {
		return nil
	}
	if _, err := os.Stat(location); os.IsNotExist(err) {
		return fmt.Errorf("%s does not exist: %s", name, location)
	}
	return nil
}

func validateOutputPath(name, path string) error {
	if path != "" {
		dir := filepath.Dir(path)
		if dir == "." {
			dir, _ = os.Getwd()
		}
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return fmt.Errorf("%s directory does not exist: %s", name, dir)
		}
	}
	return nil
}

func validateHighlight(id string) error {
	if id != "" && !regionIDPattern.MatchString(id) {
		return fmt.Errorf("invalid highlight region id: %q", id)
	}
	return nil
}

// validateRun checks everything a command reads or writes before it starts
func validateRun(cfg *config.Config) error {
	if err := validateLocation("dataset", cfg.Global.Dataset); err != nil {
		return err
	}
	if err := validateLocation("map", cfg.Global.Map); err != nil {
		return err
	}
	if err := validateOutputPath("plot", cfg.Render.PlotPath); err != nil {
		return err
	}
	if err := validateOutputPath("svg", cfg.Render.SvgPath); err != nil {
		return err
	}
	return validateHighlight(cfg.Render.Highlight)
}

// resolveConfig loads the config file, or builds a config from flags when
// --config is absent. Output flags override the file in config mode.
func resolveConfig(c *cli.Context, allowedFlags []string) (*config.Config, error) {
	var cfg *config.Config

	if configPath := c.String("config"); configPath != "" {
		if err := validateConfigModeFlags(c, allowedFlags); err != nil {
			return nil, err
		}
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	} else {
		cfg = config.Default()
		cfg.Global.Dataset = c.String("dataset")
		cfg.Global.Map = c.String("map")
		cfg.Global.LogFile = c.String("logFile")
		cfg.Summary.TopN = c.Int("topN")
		cfg.Render.Highlight = c.String("highlight")
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid flags: %w", err)
		}
	}

	if c.IsSet("plotPath") {
		cfg.Render.PlotPath = c.String("plotPath")
	}
	if c.IsSet("svgPath") {
		cfg.Render.SvgPath = c.String("svgPath")
	}

	if err := validateRun(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Command handler functions

// handleTUICommand launches the interactive dashboard
func handleTUICommand(c *cli.Context) error {
	cfg, err := resolveConfig(c, nil)
	if err != nil {
		return err
	}
	return executeTUI(c.Context, cfg)
}

// handleReportCommand prints the classification report
func handleReportCommand(c *cli.Context) error {
	cfg, err := resolveConfig(c, []string{"compact", "plain", "plotPath", "svgPath"})
	if err != nil {
		return err
	}
	return executeReport(c.Context, cfg, OutputConfig{
		Compact: c.Bool("compact"),
		Plain:   c.Bool("plain"),
	}, c.App.Writer)
}

// handleRenderCommand writes the dashboard and map files
func handleRenderCommand(c *cli.Context) error {
	cfg, err := resolveConfig(c, []string{"plotPath", "svgPath"})
	if err != nil {
		return err
	}
	if cfg.Render.PlotPath == "" && cfg.Render.SvgPath == "" {
		return fmt.Errorf("render needs plotPath or svgPath")
	}
	return executeRender(c.Context, cfg, c.App.Writer)
}

var App = &cli.App{
	Name:     "vaxmap",
	Usage:    "Explore COVID-19 vaccination coverage across Indian states and union territories",
	Version:  version.Version,
	Compiled: parseDate(version.Date),
	Commands: []*cli.Command{
		{
			Name:  "tui",
			Usage: "Run the interactive terminal dashboard",
			Flags: []cli.Flag{
				configFlag,
				datasetFlag,
				mapFlag,
				topNFlag,
				logFileFlag,
			},
			Action: handleTUICommand,
		},
		{
			Name:  "report",
			Usage: "Print the coverage classification as JSON or plain text",
			Flags: []cli.Flag{
				configFlag,
				datasetFlag,
				mapFlag,
				topNFlag,
				highlightFlag,
				logFileFlag,
				plotPathFlag,
				svgPathFlag,
				compactFlag,
				plainFlag,
			},
			Action: handleReportCommand,
		},
		{
			Name:  "render",
			Usage: "Write the HTML dashboard and the styled SVG map",
			Flags: []cli.Flag{
				configFlag,
				datasetFlag,
				mapFlag,
				topNFlag,
				highlightFlag,
				logFileFlag,
				plotPathFlag,
				svgPathFlag,
			},
			Action: handleRenderCommand,
		},
	},
}
