package sources

import (
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/estia-cy/estia/internal/config"
	"github.com/estia-cy/estia/internal/storage"
	"github.com/estia-cy/estia/internal/storage/postgres"
	"github.com/estia-cy/estia/internal/storage/sqlite"
)

// ChainFile is the on-disk format of an explicit source chain
// (ESTIA_SOURCES_FILE). Entries are tried in the order they appear.
type ChainFile struct {
	Sources []ChainEntry `yaml:"sources"`
}

// ChainEntry describes one source in a chain file.
type ChainEntry struct {
	Type           string `yaml:"type"` // backend, static, postgres, sqlite
	URL            string `yaml:"url,omitempty"`
	Key            string `yaml:"key,omitempty"`
	DSN            string `yaml:"dsn,omitempty"`
	Path           string `yaml:"path,omitempty"`
	TimeoutSeconds int    `yaml:"timeout_seconds,omitempty"`
}

// Manager owns the ordered source chain the directory loads from. It
// tracks which sources wrap database connections so Close can release
// them.
type Manager struct {
	chain  []Source
	stores []storage.AgentStore
}

// NewManager builds the source chain. When the config names a chain
// file, the file defines the whole chain; otherwise the default chain
// is primary backend (per its transport) followed by the static JSON
// fallback. A source that fails to initialize is logged and skipped so
// one dead dependency does not take the directory down.
func NewManager(cfg *config.Config) (*Manager, error) {
	m := &Manager{}

	if cfg.Sources.File != "" {
		file, err := loadChainFile(cfg.Sources.File)
		if err != nil {
			return nil, err
		}
		for _, entry := range file.Sources {
			if err := m.addEntry(entry); err != nil {
				m.Close()
				return nil, err
			}
		}
		return m, nil
	}

	if cfg.Backend.Active {
		m.addPrimary(cfg)
	}
	if cfg.Fallback.StaticURL != "" {
		m.chain = append(m.chain, NewStaticJSONSource(cfg.Fallback.StaticURL,
			time.Duration(cfg.Fallback.TimeoutSeconds)*time.Second))
	}
	return m, nil
}

// Chain returns the sources in fallback order.
func (m *Manager) Chain() []Source {
	return m.chain
}

// Close releases every database connection the manager opened.
func (m *Manager) Close() error {
	var firstErr error
	for _, s := range m.stores {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	m.stores = nil
	return firstErr
}

func (m *Manager) addPrimary(cfg *config.Config) {
	timeout := time.Duration(cfg.Backend.TimeoutSeconds) * time.Second

	switch cfg.Backend.Transport {
	case "postgres":
		if cfg.Backend.PostgresDSN == "" {
			log.Printf("sources: postgres transport selected but ESTIA_POSTGRES_DSN is empty, skipping primary")
			return
		}
		store, err := postgres.NewAgentStore(cfg.Backend.PostgresDSN)
		if err != nil {
			log.Printf("sources: postgres primary unavailable: %v", err)
			return
		}
		m.stores = append(m.stores, store)
		m.chain = append(m.chain, NewStoreSource("postgres", store))

	case "sqlite":
		store, err := sqlite.NewAgentStore(cfg.Backend.SQLitePath)
		if err != nil {
			log.Printf("sources: sqlite primary unavailable: %v", err)
			return
		}
		m.stores = append(m.stores, store)
		m.chain = append(m.chain, NewStoreSource("sqlite", store))

	default: // rest
		if cfg.Backend.URL == "" || cfg.Backend.Key == "" {
			log.Printf("sources: backend URL or key missing, skipping primary")
			return
		}
		m.chain = append(m.chain, NewBackendClient(cfg.Backend.URL, cfg.Backend.Key, timeout))
	}
}

func (m *Manager) addEntry(entry ChainEntry) error {
	timeout := time.Duration(entry.TimeoutSeconds) * time.Second

	switch entry.Type {
	case "backend":
		if entry.URL == "" || entry.Key == "" {
			return fmt.Errorf("sources: backend entry requires url and key")
		}
		m.chain = append(m.chain, NewBackendClient(entry.URL, entry.Key, timeout))

	case "static":
		if entry.URL == "" {
			return fmt.Errorf("sources: static entry requires url")
		}
		m.chain = append(m.chain, NewStaticJSONSource(entry.URL, timeout))

	case "postgres":
		store, err := postgres.NewAgentStore(entry.DSN)
		if err != nil {
			log.Printf("sources: postgres entry unavailable: %v", err)
			return nil
		}
		m.stores = append(m.stores, store)
		m.chain = append(m.chain, NewStoreSource("postgres", store))

	case "sqlite":
		store, err := sqlite.NewAgentStore(entry.Path)
		if err != nil {
			log.Printf("sources: sqlite entry unavailable: %v", err)
			return nil
		}
		m.stores = append(m.stores, store)
		m.chain = append(m.chain, NewStoreSource("sqlite", store))

	default:
		return fmt.Errorf("sources: unknown source type %q", entry.Type)
	}
	return nil
}

func loadChainFile(path string) (*ChainFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("sources: failed to read chain file: %w", err)
	}
	var file ChainFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("sources: failed to parse chain file: %w", err)
	}
	if len(file.Sources) == 0 {
		return nil, fmt.Errorf("sources: chain file %s lists no sources", path)
	}
	return &file, nil
}
