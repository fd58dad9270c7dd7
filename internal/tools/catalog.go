// ABOUTME: Assembles the default tool catalog exposed over MCP
// ABOUTME: Registration order here is the order clients see in tools/list

package tools

import (
	"fmt"
	"log/slog"

	"github.com/parasol-research/persona-gateway/internal/backend"
	"github.com/parasol-research/persona-gateway/internal/metrics"
)

// DefaultRegistry builds the full catalog backed by the given client. Tools
// are grouped by resource and registered in a fixed order so tools/list is
// stable across restarts.
func DefaultRegistry(client *backend.Client, logger *slog.Logger, m *metrics.Metrics) (*Registry, error) {
	reg := NewRegistry(logger, m)
	groups := [][]*Tool{
		accountTools(client),
		personaTools(client),
		audienceTools(client),
		surveyTools(client),
		insightTools(client),
		reportTools(client),
	}
	for _, group := range groups {
		for _, tool := range group {
			if err := reg.Register(tool); err != nil {
				return nil, fmt.Errorf("registering %s: %w", tool.Name, err)
			}
		}
	}
	return reg, nil
}
