package backend

import (
	"fmt"
	"strings"

	"teambudget/internal/config"
)

// FromAppConfig picks the storage settings out of the loaded application
// config and checks them.
func FromAppConfig(cfg *config.Config) (Config, error) {
	if cfg == nil {
		return Config{}, fmt.Errorf("no application config")
	}
	c := Config{
		Type:          BackendType(cfg.DataBackend),
		SQLiteDBPath:  cfg.SQLiteDBPath,
		DataDirectory: cfg.DataDir,
		Retention:     cfg.SnapshotRetention,
		AMQPURL:       cfg.AMQPURL,
		AMQPExchange:  cfg.AMQPExchange,
		AMQPQueue:     cfg.AMQPQueue,
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type %q, want one of %s", c.Type, strings.Join(GetBackendTypeStrings(), ", "))
	}
	if c.Type == SQLiteBackend && c.SQLiteDBPath == "" {
		return fmt.Errorf("sqlite backend needs a database path")
	}
	if c.Retention < 0 {
		return fmt.Errorf("retention must not be negative, got %d", c.Retention)
	}
	return nil
}

func GetBackendTypeStrings() []string {
	out := make([]string, len(backendTypes))
	for i, bt := range backendTypes {
		out[i] = bt.String()
	}
	return out
}
