// Package config loads process configuration with ENV > CLI > defaults precedence.
package config

import (
	"flag"
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/vshulcz/Countra/internal/domain"
	"github.com/vshulcz/Countra/internal/misc"
)

const (
	defaultListenAddr = ":8080"
	defaultMinLevel   = "verbose"
)

// BridgeConfig configures the bridge binary.
type BridgeConfig struct {
	// Address is the HTTP listen address for the scrape endpoint.
	Address string
	// Sources restricts listening to the named sources; empty accepts all.
	Sources []string
	// MinLevel is the verbosity requested from every enabled source.
	MinLevel domain.Level
	// Keywords narrows emission to matching keywords; empty means no filter.
	Keywords []string
	// AuditFile, when set, appends lifecycle events to this NDJSON file.
	AuditFile string
	// AuditURL, when set, POSTs lifecycle events to this endpoint.
	AuditURL string
	// DSN, when set, journals lifecycle events into Postgres.
	DSN string
}

// Accept reports whether a discovered source passes the configured filter.
func (c BridgeConfig) Accept(source string) bool {
	if len(c.Sources) == 0 {
		return true
	}
	for _, s := range c.Sources {
		if s == source {
			return true
		}
	}
	return false
}

// Settings builds the per-source settings handed to the instrumentation system.
func (c BridgeConfig) Settings(string) domain.SourceSettings {
	return domain.SourceSettings{MinLevel: c.MinLevel, Keywords: c.Keywords}
}

// ENV > CLI > defaults
func LoadBridgeConfig(args []string, out io.Writer) (BridgeConfig, error) {
	if out == nil {
		out = io.Discard
	}

	fs := flag.NewFlagSet("bridge", flag.ContinueOnError)
	fs.SetOutput(out)

	var addrOpt string
	var sourcesOpt string
	var levelOpt string
	var keywordsOpt string
	var auditFileOpt string
	var auditURLOpt string
	var dsnOpt string

	fs.StringVar(&addrOpt, "a", "", fmt.Sprintf("HTTP listen address, default: %s", defaultListenAddr))
	fs.StringVar(&sourcesOpt, "s", "", "comma-separated source names to listen to, default: all")
	fs.StringVar(&levelOpt, "l", "", fmt.Sprintf("minimum source level (verbose|info|warning|error|critical), default: %s", defaultMinLevel))
	fs.StringVar(&keywordsOpt, "k", "", "comma-separated source keywords, default: none")
	fs.StringVar(&auditFileOpt, "f", "", "AUDIT_FILE path for the lifecycle journal, default: disabled")
	fs.StringVar(&auditURLOpt, "u", "", "AUDIT_URL endpoint for the lifecycle journal, default: disabled")
	fs.StringVar(&dsnOpt, "d", "", "DATABASE_DSN for the Postgres lifecycle journal, default: disabled")

	if err := fs.Parse(args); err != nil {
		return BridgeConfig{}, err
	}

	addr := FromEnvOrFlag("ADDRESS", addrOpt, defaultListenAddr)
	addr = normalizeListenAddr(addr)
	if _, port, err := net.SplitHostPort(addr); err != nil || port == "" {
		return BridgeConfig{}, fmt.Errorf("invalid listen address: %q", addr)
	}

	level, err := parseLevel(FromEnvOrFlag("MIN_LEVEL", levelOpt, defaultMinLevel))
	if err != nil {
		return BridgeConfig{}, err
	}

	return BridgeConfig{
		Address:   addr,
		Sources:   splitCSV(FromEnvOrFlag("SOURCES", sourcesOpt, "")),
		MinLevel:  level,
		Keywords:  splitCSV(FromEnvOrFlag("KEYWORDS", keywordsOpt, "")),
		AuditFile: FromEnvOrFlag("AUDIT_FILE", auditFileOpt, ""),
		AuditURL:  FromEnvOrFlag("AUDIT_URL", auditURLOpt, ""),
		DSN:       misc.Getenv("DATABASE_DSN", strings.TrimSpace(dsnOpt)),
	}, nil
}

func normalizeListenAddr(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultListenAddr
	}
	if strings.HasPrefix(s, ":") {
		return s
	}
	if !strings.Contains(s, ":") {
		return s + ":8080"
	}
	return s
}

func parseLevel(s string) (domain.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "verbose":
		return domain.LevelVerbose, nil
	case "info", "informational":
		return domain.LevelInfo, nil
	case "warning":
		return domain.LevelWarning, nil
	case "error":
		return domain.LevelError, nil
	case "critical":
		return domain.LevelCritical, nil
	default:
		return 0, fmt.Errorf("unknown minimum level: %q", s)
	}
}

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
