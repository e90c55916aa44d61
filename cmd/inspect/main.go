package main

import (
	"encoding/base64"
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"slabtrader/internal/codec"
)

// inspect decodes a raw account dump (hex or base64) by sniffing its
// magic and pretty-prints the result.
func main() {
	path := flag.String("file", "", "Path to the dump file (hex or base64)")
	maxAge := flag.Int64("max-age", 60, "Oracle staleness threshold in seconds")
	flag.Parse()

	if *path == "" {
		log.Fatal("file is required")
	}
	raw, err := os.ReadFile(*path)
	if err != nil {
		log.Fatalf("read dump: %v", err)
	}
	buf, err := parseDump(raw)
	if err != nil {
		log.Fatalf("parse dump: %v", err)
	}

	kind, err := codec.Sniff(buf)
	if err != nil {
		log.Fatalf("sniff: %v", err)
	}

	record, err := decode(kind, buf, *maxAge)
	if err != nil {
		log.Fatalf("decode %s: %v", kind, err)
	}
	out, err := sonic.MarshalIndent(record, "", "  ")
	if err != nil {
		log.Fatalf("render: %v", err)
	}
	fmt.Printf("%s (%d bytes)\n%s\n", kind, len(buf), out)
}

func decode(kind codec.RecordKind, buf []byte, maxAge int64) (any, error) {
	switch kind {
	case codec.KindPortfolio:
		return codec.DecodePortfolio(buf)
	case codec.KindRegistry:
		return codec.DecodeRegistry(buf)
	case codec.KindVault:
		return codec.DecodeVault(buf)
	case codec.KindSlab:
		return codec.DecodeSlab(buf)
	case codec.KindOracle:
		return codec.DecodeOracle(buf, time.Now().Unix(), maxAge)
	case codec.KindPositionDetails:
		return codec.DecodePositionDetails(buf)
	default:
		return nil, fmt.Errorf("unhandled kind: %s", kind)
	}
}

func parseDump(raw []byte) ([]byte, error) {
	text := strings.TrimSpace(string(raw))
	if buf, err := hex.DecodeString(text); err == nil {
		return buf, nil
	}
	return base64.StdEncoding.DecodeString(text)
}
