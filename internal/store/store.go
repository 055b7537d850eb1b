package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"eventcal/internal/config"
	appLog "eventcal/internal/log"
	"eventcal/internal/model"
)

// Source is one strategy for obtaining the event document. The store tries
// its sources in order and stops at the first one that loads.
type Source interface {
	// Name identifies the source in logs.
	Name() string
	// Load fetches and decodes the event document.
	Load(ctx context.Context) ([]model.Event, error)
}

// HTTPSource loads the event document from a URL.
type HTTPSource struct {
	name   string
	url    string
	client *http.Client
}

// NewHTTPSource creates an HTTPSource with a short request timeout, so a
// dead endpoint stalls the chain only briefly before the next source is
// tried.
func NewHTTPSource(name, url string) *HTTPSource {
	return &HTTPSource{
		name: name,
		url:  url,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (s *HTTPSource) Name() string { return s.name }

func (s *HTTPSource) Load(ctx context.Context) ([]model.Event, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return DecodeDocument(body)
}

// FileSource loads the event document from the local filesystem.
type FileSource struct {
	name string
	path string
}

func NewFileSource(name, path string) *FileSource {
	return &FileSource{name: name, path: path}
}

func (s *FileSource) Name() string { return s.name }

func (s *FileSource) Load(_ context.Context) ([]model.Event, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	return DecodeDocument(data)
}

// DecodeDocument accepts either a bare event array or an object with an
// "events" field and normalizes both shapes to a list.
func DecodeDocument(data []byte) ([]model.Event, error) {
	var list []model.Event
	if err := json.Unmarshal(data, &list); err == nil && list != nil {
		return list, nil
	}

	var doc struct {
		Events []model.Event `json:"events"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Events == nil {
		return nil, errors.New("document has no events array")
	}
	return doc.Events, nil
}

// Store resolves the event list through an ordered source chain. The chain
// order is data, not control flow: callers decide it when constructing the
// store.
type Store struct {
	sources []Source
}

func New(sources ...Source) *Store {
	return &Store{sources: sources}
}

// SourcesFromConfig maps the configured chain onto concrete sources.
// Entries config.Normalize would reject are skipped defensively here too.
func SourcesFromConfig(cfgs []config.SourceConfig) []Source {
	out := make([]Source, 0, len(cfgs))
	for _, c := range cfgs {
		switch c.Type {
		case config.SourceTypeHTTP:
			if c.URL != "" {
				out = append(out, NewHTTPSource(c.Name, c.URL))
			}
		case config.SourceTypeFile:
			if c.Path != "" {
				out = append(out, NewFileSource(c.Name, c.Path))
			}
		}
	}
	return out
}

// FetchEvents tries each source in order and returns the first list that
// loads. Every event is normalized before it is returned. Failures are
// logged and never surfaced: the worst case is an empty list.
func (s *Store) FetchEvents(ctx context.Context) []model.Event {
	for _, src := range s.sources {
		events, err := src.Load(ctx)
		if err != nil {
			appLog.Info("event source failed, trying next", "source", src.Name(), "err", err)
			continue
		}

		for i := range events {
			events[i].Normalize()
		}
		appLog.Debug("events loaded", "source", src.Name(), "count", len(events))
		return events
	}

	appLog.Info("no event source available, returning empty list", "sources", len(s.sources))
	return []model.Event{}
}
