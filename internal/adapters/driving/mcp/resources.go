package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/wikirec/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for wikirec resources.
	uriScheme = "wikirec://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "catalog",
		Name:        "catalog",
		Description: "Size, dimension and index parameters of the loaded catalog",
		MIMEType:    "application/json",
	}, s.handleCatalogResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "history/{sessionId}",
		Name:        "session-history",
		Description: "Articles visited in a session, oldest first",
		MIMEType:    "application/json",
	}, s.handleHistoryResource)
}

// handleCatalogResource describes the current catalog snapshot.
func (s *Server) handleCatalogResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Catalog == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	info, err := s.ports.Catalog.Info()
	if err != nil {
		return nil, fmt.Errorf("reading catalog info: %w", err)
	}

	type catalogInfo struct {
		Records   int    `json:"records"`
		Dimension int    `json:"dimension"`
		Backend   string `json:"backend"`
		Distance  string `json:"distance"`
		Tables    int    `json:"tables"`
		Probes    int    `json:"probes"`
		HashBits  int    `json:"hash_bits"`
		Version   uint64 `json:"version"`
		Buckets   []int  `json:"buckets,omitempty"`

		// SuggestedHashBits is set when most records sit alone in their
		// bucket.
		SuggestedHashBits int `json:"suggested_hash_bits,omitempty"`
	}

	out := catalogInfo{
		Records:   info.Records,
		Dimension: info.Dimension,
		Backend:   string(info.Backend),
		Distance:  info.Config.Distance.String(),
		Tables:    info.Config.NumTables,
		Probes:    info.Config.NumProbes,
		HashBits:  info.Config.HashBits,
		Version:   info.Version,
		Buckets:   info.Buckets,
	}
	if sparse, bits := domain.SparseBuckets(info.Records, info.Buckets); sparse {
		out.SuggestedHashBits = bits
	}
	return jsonResource(req.Params.URI, out)
}

// handleHistoryResource returns the visit history of one session.
func (s *Server) handleHistoryResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.History == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	sessionID := extractSessionID(req.Params.URI)
	if sessionID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	entries, err := s.ports.History.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	return jsonResource(req.Params.URI, entries)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractSessionID extracts the session ID from a URI like wikirec://history/{sessionId}.
func extractSessionID(uri string) string {
	const prefix = uriScheme + "history/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	return strings.TrimPrefix(uri, prefix)
}
