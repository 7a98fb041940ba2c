package connectors

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"

	"github.com/fr0stylo/lacquer/internal/app/domain"
	"github.com/fr0stylo/lacquer/internal/app/ports"
	"github.com/fr0stylo/lacquer/internal/config"
)

// ErrNotConfigured is returned for an allow-listed source with no connector.
var ErrNotConfigured = errors.New("connector not configured")

// Registry maps ingestion sources to connectors.
type Registry struct {
	mu         sync.RWMutex
	connectors map[domain.IngestionSource]ports.Connector
}

func NewRegistry() *Registry {
	return &Registry{connectors: make(map[domain.IngestionSource]ports.Connector)}
}

// FromConfig registers a feed connector per configured URL and, when set,
// a static connector for the manual feed file.
func FromConfig(cfg config.ConnectorsConfig, client *http.Client) (*Registry, error) {
	registry := NewRegistry()
	for name, endpoint := range cfg.FeedURLs {
		source, ok := domain.ParseIngestionSource(name)
		if !ok {
			return nil, fmt.Errorf("connector url for unknown source %q", name)
		}
		registry.Register(source, NewFeedConnector(endpoint, client))
	}
	if cfg.ManualFeedFile != "" {
		static, err := LoadStaticFile(cfg.ManualFeedFile)
		if err != nil {
			return nil, err
		}
		registry.Register(domain.SourceManualFeed, static)
	}
	return registry, nil
}

// Register sets the connector for source, replacing any previous one.
func (r *Registry) Register(source domain.IngestionSource, connector ports.Connector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.connectors[source] = connector
}

func (r *Registry) Connector(source domain.IngestionSource) (ports.Connector, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	connector, ok := r.connectors[source]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotConfigured, source)
	}
	return connector, nil
}

// Sources lists configured sources in name order.
func (r *Registry) Sources() []domain.IngestionSource {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.IngestionSource, 0, len(r.connectors))
	for source := range r.connectors {
		out = append(out, source)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

var _ ports.ConnectorRegistry = (*Registry)(nil)
