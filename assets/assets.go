// Package assets loads the dashboard's two static assets, the coverage dataset
// and the vector map, from local files or http(s) URLs.
package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"

	"github.com/srivarshini-21/india-vaccination-dashboard/dataset"
	"github.com/srivarshini-21/india-vaccination-dashboard/svgmap"
)

// Asset names used in load errors.
const (
	AssetDataset = "dataset"
	AssetMap     = "map"
)

// SchematicSource is reported as the map source when no map is configured.
const SchematicSource = "schematic"

// maxAssetSize bounds a single fetched asset.
const maxAssetSize = 32 << 20

// LoadError reports which asset failed. It is the only error LoadBundle returns.
type LoadError struct {
	Asset    string
	Location string
	Err      error
}

func (e *LoadError) Error() string {
	loc := e.Location
	if loc == "" {
		loc = "embedded"
	}
	return fmt.Sprintf("failed to load %s from %s: %v", e.Asset, loc, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Loader fetches assets and caches their bytes for the rest of the session.
// Failed fetches are not cached and are not retried.
type Loader struct {
	client *http.Client
	cache  *cache.Cache
}

// NewLoader creates a loader. A nil client uses a client with a 30s timeout.
func NewLoader(client *http.Client) *Loader {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Loader{
		client: client,
		cache:  cache.New(cache.NoExpiration, 0),
	}
}

func isURL(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// Fetch returns the bytes at location, a file path or an http(s) URL.
func (l *Loader) Fetch(ctx context.Context, location string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if v, ok := l.cache.Get(location); ok {
		return v.([]byte), nil
	}

	var data []byte
	var err error
	if isURL(location) {
		data, err = l.fetchURL(ctx, location)
	} else {
		data, err = os.ReadFile(location)
	}
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.cache.Set(location, data, cache.NoExpiration)
	return data, nil
}

func (l *Loader) fetchURL(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	if len(data) > maxAssetSize {
		return nil, fmt.Errorf("asset exceeds %d bytes", maxAssetSize)
	}
	return data, nil
}

// Cached reports whether location has been fetched successfully.
func (l *Loader) Cached(location string) bool {
	_, ok := l.cache.Get(location)
	return ok
}

// Bundle is a fully loaded pair of assets.
type Bundle struct {
	Dataset       *dataset.Dataset
	Issues        []dataset.Issue
	Map           *svgmap.Document
	MapSource     string
	Mismatch      svgmap.MismatchReport
	DatasetSource string
}

// LoadBundle loads the dataset and the map concurrently. An empty dataset
// location selects the embedded dataset; an empty map location selects the
// schematic generated from the tile layout.
func (l *Loader) LoadBundle(ctx context.Context, datasetLoc, mapLoc string) (*Bundle, error) {
	var rawDataset, rawMap []byte

	g, gCtx := errgroup.WithContext(ctx)
	if datasetLoc != "" {
		g.Go(func() error {
			data, err := l.Fetch(gCtx, datasetLoc)
			if err != nil {
				return &LoadError{Asset: AssetDataset, Location: datasetLoc, Err: err}
			}
			rawDataset = data
			return nil
		})
	}
	if mapLoc != "" {
		g.Go(func() error {
			data, err := l.Fetch(gCtx, mapLoc)
			if err != nil {
				return &LoadError{Asset: AssetMap, Location: mapLoc, Err: err}
			}
			rawMap = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, &LoadError{Asset: AssetDataset, Location: datasetLoc, Err: err}
	}

	b := &Bundle{DatasetSource: datasetLoc, MapSource: mapLoc}

	var err error
	if rawDataset == nil {
		b.Dataset, b.Issues, err = dataset.Default()
	} else {
		b.Dataset, b.Issues, err = dataset.Parse(rawDataset)
	}
	if err != nil {
		return nil, &LoadError{Asset: AssetDataset, Location: datasetLoc, Err: err}
	}

	if rawMap == nil {
		rawMap = svgmap.Schematic(svgmap.IndiaLayout(), b.Dataset)
		b.MapSource = SchematicSource
	}
	b.Map, err = svgmap.ParseDocument(rawMap)
	if err != nil {
		return nil, &LoadError{Asset: AssetMap, Location: mapLoc, Err: err}
	}
	b.Mismatch = svgmap.Mismatch(b.Map, b.Dataset)
	return b, nil
}

// AsLoadError extracts the failing asset from err.
func AsLoadError(err error) (*LoadError, bool) {
	var le *LoadError
	if errors.As(err, &le) {
		return le, true
	}
	return nil, false
}
