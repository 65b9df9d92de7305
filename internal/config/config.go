package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// TitleRank maps title keywords to a seniority rank (lower = more senior).
type TitleRank struct {
	Rank int      `yaml:"rank"`
	Any  []string `yaml:"any"`
}

type Config struct {
	App struct {
		Port    int    `yaml:"port"`
		DataDir string `yaml:"data_dir"`
	} `yaml:"app"`

	Logging struct {
		Level       string `yaml:"level"`
		Development bool   `yaml:"development"`
	} `yaml:"logging"`

	Matching struct {
		Threshold       float64 `yaml:"threshold"`
		CoverageWeight  float64 `yaml:"coverage_weight"`
		LocationBonus   float64 `yaml:"location_bonus"`
		SkillsBonus     float64 `yaml:"skills_bonus"`
		TitleTermWeight float64 `yaml:"title_term_weight"`
		DescTermWeight  float64 `yaml:"description_term_weight"`
	} `yaml:"matching"`

	Resolver struct {
		OverlapBand   float64 `yaml:"overlap_band"`
		AmbiguityBand float64 `yaml:"ambiguity_band"`
	} `yaml:"resolver"`

	Org struct {
		TitleRanks  []TitleRank `yaml:"title_ranks"`
		DefaultRank int         `yaml:"default_rank"`
	} `yaml:"org"`

	Analysis struct {
		BatchWorkers  int `yaml:"batch_workers"`
		ProgressEvery int `yaml:"progress_every"`
	} `yaml:"analysis"`

	Serve struct {
		InboxDir         string  `yaml:"inbox_dir"`
		RescanSeconds    int     `yaml:"rescan_seconds"`
		AnalyzePerMinute float64 `yaml:"analyze_per_minute"`
		AnalyzeBurst     int     `yaml:"analyze_burst"`
	} `yaml:"serve"`
}

// Default returns the built-in configuration. Every weight and band has a
// documented default so a missing config file still produces a working
// engine.
func Default() Config {
	var cfg Config
	cfg.App.Port = 38472
	cfg.Logging.Level = "info"

	cfg.Matching.Threshold = 0.3
	cfg.Matching.CoverageWeight = 0.6
	cfg.Matching.LocationBonus = 0.2
	cfg.Matching.SkillsBonus = 0.2
	cfg.Matching.TitleTermWeight = 1.0
	cfg.Matching.DescTermWeight = 0.5

	cfg.Resolver.OverlapBand = 0.1
	cfg.Resolver.AmbiguityBand = 0.03

	cfg.Org.TitleRanks = []TitleRank{
		{Rank: 1, Any: []string{"director", "vp", "vice president", "chief", "head"}},
		{Rank: 2, Any: []string{"lead", "principal", "staff", "manager"}},
		{Rank: 3, Any: []string{"senior", "sr"}},
	}
	cfg.Org.DefaultRank = 4

	cfg.Analysis.BatchWorkers = 4
	cfg.Analysis.ProgressEvery = 10

	cfg.Serve.RescanSeconds = 300
	cfg.Serve.AnalyzePerMinute = 6
	cfg.Serve.AnalyzeBurst = 2

	return cfg
}

// Load reads a YAML config over the defaults, so partial files work.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}
