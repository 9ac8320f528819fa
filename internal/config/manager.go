package config

import (
	"log/slog"
	"sync"
)

// Manager owns the live config for a running process. Handlers read through
// Current; the self-issued reload command swaps the snapshot atomically.
type Manager struct {
	path   string
	logger *slog.Logger

	mu  sync.RWMutex
	cfg *Config
}

func NewManager(path string, logger *slog.Logger) (*Manager, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &Manager{path: path, logger: logger, cfg: cfg}, nil
}

// Current returns the active config snapshot. Callers must not mutate it.
func (m *Manager) Current() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

// Reload re-reads the config file. On failure the previous snapshot stays
// active.
func (m *Manager) Reload() error {
	cfg, err := Load(m.path)
	if err != nil {
		m.logger.Error("config reload failed, keeping previous", "path", m.path, "err", err)
		return err
	}
	m.mu.Lock()
	m.cfg = cfg
	m.mu.Unlock()
	m.logger.Info("config reloaded", "path", m.path)
	return nil
}

// Path returns the config file location.
func (m *Manager) Path() string { return m.path }
