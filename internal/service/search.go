package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/organizai/organizai/internal/metrics"
	"github.com/organizai/organizai/internal/model"
	"github.com/organizai/organizai/internal/sanitize"
	"github.com/organizai/organizai/internal/search"
)

const maxQueryLength = 400

// Searcher runs web searches.
type Searcher interface {
	Search(ctx context.Context, key, query string, maxResults int) (*search.Response, error)
}

// SearchService runs web searches on behalf of users.
type SearchService struct {
	client  Searcher
	keys    KeyResolver
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewSearchService creates a new SearchService.
func NewSearchService(client Searcher, keys KeyResolver, recorder metrics.Recorder, logger *slog.Logger) *SearchService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &SearchService{client: client, keys: keys, metrics: recorder, logger: logger}
}

// Search queries the web. maxResults of zero uses the default.
func (s *SearchService) Search(ctx context.Context, userID, query string, maxResults int) (*search.Response, error) {
	query = sanitize.Line(query, maxQueryLength)
	if query == "" {
		return nil, invalid("query", "is required")
	}
	if maxResults != 0 && (maxResults < search.MinResults || maxResults > search.MaxResults) {
		return nil, invalid("max_results", "must be between 1 and 10")
	}

	key, _, err := s.keys.ResolveKey(ctx, userID, model.ProviderTavily)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Search(ctx, key, query, maxResults)
	if err != nil {
		s.metrics.IncProviderCall(model.ProviderTavily, "error")
		if errors.Is(err, search.ErrNoAPIKey) {
			return nil, ErrNotConfigured
		}
		s.logger.Error("web search failed", "user_id", userID, "error", err)
		return nil, &ProviderError{
			Provider: model.ProviderTavily,
			Message:  "Web search is unavailable right now, please try again later.",
			Err:      err,
		}
	}
	s.metrics.IncProviderCall(model.ProviderTavily, "ok")
	return resp, nil
}
