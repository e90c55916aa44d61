package ops

import (
	"encoding/json"
	"fmt"
	"os"

	"slabtrader/internal/schema"
)

// FileConfig mirrors the JSON config layout.
type FileConfig struct {
	Endpoint      string             `json:"endpoint"`
	RouterProgram string             `json:"routerProgram"`
	SlabProgram   string             `json:"slabProgram"`
	Registry      string             `json:"registry"`
	Instruments   []InstrumentConfig `json:"instruments"`
	MaxStaleness  int64              `json:"maxStalenessSeconds"`
	JournalDSN    string             `json:"journalDsn"`
	Profiling     ProfilingConfig    `json:"profiling"`
}

// InstrumentConfig names an instrument public key.
type InstrumentConfig struct {
	Name   string `json:"name"`
	Pubkey string `json:"pubkey"`
}

// ProfilingConfig captures the optional profiler settings.
type ProfilingConfig struct {
	Enabled   bool   `json:"enabled"`
	ServerURL string `json:"serverUrl"`
}

// Loaded is the resolved configuration ready for use.
type Loaded struct {
	Endpoint      string
	RouterProgram schema.Pubkey
	SlabProgram   schema.Pubkey
	Registry      schema.Pubkey
	Instruments   map[string]schema.Pubkey
	MaxStaleness  int64
	JournalDSN    string
	Profiling     ProfilingConfig
}

const _defaultMaxStaleness = 60

// Load reads a JSON config file and resolves every address.
func Load(path string) (Loaded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Loaded{}, err
	}
	var cfg FileConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Loaded{}, err
	}
	return resolve(cfg)
}

func resolve(cfg FileConfig) (Loaded, error) {
	if cfg.Endpoint == "" {
		return Loaded{}, fmt.Errorf("endpoint is empty")
	}

	router, err := parseKey("routerProgram", cfg.RouterProgram)
	if err != nil {
		return Loaded{}, err
	}
	slab, err := parseKey("slabProgram", cfg.SlabProgram)
	if err != nil {
		return Loaded{}, err
	}
	registry, err := parseKey("registry", cfg.Registry)
	if err != nil {
		return Loaded{}, err
	}

	instruments := make(map[string]schema.Pubkey, len(cfg.Instruments))
	for _, in := range cfg.Instruments {
		if in.Name == "" {
			return Loaded{}, fmt.Errorf("instrument with empty name")
		}
		pk, err := parseKey("instrument "+in.Name, in.Pubkey)
		if err != nil {
			return Loaded{}, err
		}
		if _, dup := instruments[in.Name]; dup {
			return Loaded{}, fmt.Errorf("duplicate instrument: %s", in.Name)
		}
		instruments[in.Name] = pk
	}

	maxStaleness := cfg.MaxStaleness
	if maxStaleness <= 0 {
		maxStaleness = _defaultMaxStaleness
	}

	return Loaded{
		Endpoint:      cfg.Endpoint,
		RouterProgram: router,
		SlabProgram:   slab,
		Registry:      registry,
		Instruments:   instruments,
		MaxStaleness:  maxStaleness,
		JournalDSN:    cfg.JournalDSN,
		Profiling:     cfg.Profiling,
	}, nil
}

func parseKey(field, value string) (schema.Pubkey, error) {
	if value == "" {
		return schema.Pubkey{}, fmt.Errorf("%s is empty", field)
	}
	pk, err := schema.PubkeyFromHex(value)
	if err != nil {
		return schema.Pubkey{}, fmt.Errorf("%s: %w", field, err)
	}
	return pk, nil
}
