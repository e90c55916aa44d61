package ops

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const hexKeyA = "0101010101010101010101010101010101010101010101010101010101010101"
const hexKeyB = "0202020202020202020202020202020202020202020202020202020202020202"

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `{
		"endpoint": "http://localhost:8899",
		"routerProgram": "`+hexKeyA+`",
		"slabProgram": "`+hexKeyB+`",
		"registry": "`+hexKeyA+`",
		"instruments": [{"name": "BTC-PERP", "pubkey": "`+hexKeyB+`"}],
		"maxStalenessSeconds": 30
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Endpoint != "http://localhost:8899" {
		t.Fatalf("endpoint = %q", cfg.Endpoint)
	}
	if cfg.MaxStaleness != 30 {
		t.Fatalf("maxStaleness = %d", cfg.MaxStaleness)
	}
	if _, ok := cfg.Instruments["BTC-PERP"]; !ok {
		t.Fatalf("instrument missing: %+v", cfg.Instruments)
	}
}

func TestLoadDefaultsStaleness(t *testing.T) {
	path := writeConfig(t, `{
		"endpoint": "http://localhost:8899",
		"routerProgram": "`+hexKeyA+`",
		"slabProgram": "`+hexKeyB+`",
		"registry": "`+hexKeyA+`"
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.MaxStaleness != _defaultMaxStaleness {
		t.Fatalf("maxStaleness = %d", cfg.MaxStaleness)
	}
}

func TestLoadRejectsBadKey(t *testing.T) {
	path := writeConfig(t, `{
		"endpoint": "http://localhost:8899",
		"routerProgram": "not-hex",
		"slabProgram": "`+hexKeyB+`",
		"registry": "`+hexKeyA+`"
	}`)

	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "routerProgram") {
		t.Fatalf("got %v", err)
	}
}

func TestLoadRejectsDuplicateInstrument(t *testing.T) {
	path := writeConfig(t, `{
		"endpoint": "http://localhost:8899",
		"routerProgram": "`+hexKeyA+`",
		"slabProgram": "`+hexKeyB+`",
		"registry": "`+hexKeyA+`",
		"instruments": [
			{"name": "BTC-PERP", "pubkey": "`+hexKeyA+`"},
			{"name": "BTC-PERP", "pubkey": "`+hexKeyB+`"}
		]
	}`)

	if _, err := Load(path); err == nil {
		t.Fatal("expected duplicate instrument error")
	}
}
