package assets

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/srivarshini-21/india-vaccination-dashboard/svgmap"
	"github.com/srivarshini-21/india-vaccination-dashboard/testutil"
)

func TestFetchFileIsCached(t *testing.T) {
	path := testutil.WriteTempFile(t, "asset_*.txt", "first")
	l := NewLoader(nil)

	got, err := l.Fetch(context.Background(), path)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if string(got) != "first" {
		t.Errorf("Fetch() = %q", got)
	}
	if !l.Cached(path) {
		t.Error("successful fetch was not cached")
	}

	if err := os.WriteFile(path, []byte("second"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err = l.Fetch(context.Background(), path)
	if err != nil {
		t.Fatalf("second Fetch() error = %v", err)
	}
	if string(got) != "first" {
		t.Errorf("second Fetch() = %q, want cached %q", got, "first")
	}
}

func TestFetchURL(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(testutil.SampleMap("A")))
	}))
	defer srv.Close()

	l := NewLoader(srv.Client())
	for i := 0; i < 3; i++ {
		if _, err := l.Fetch(context.Background(), srv.URL+"/map.svg"); err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
	}
	if hits.Load() != 1 {
		t.Errorf("server hit %d times, want 1", hits.Load())
	}

	if _, err := l.Fetch(context.Background(), srv.URL+"/missing"); err == nil {
		t.Error("expected error for 404")
	}
	if l.Cached(srv.URL + "/missing") {
		t.Error("failed fetch was cached")
	}
}

func TestFetchCancelled(t *testing.T) {
	path := testutil.WriteTempFile(t, "asset_*.txt", "data")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	l := NewLoader(nil)
	if _, err := l.Fetch(ctx, path); !errors.Is(err, context.Canceled) {
		t.Errorf("Fetch() error = %v, want context.Canceled", err)
	}
	if l.Cached(path) {
		t.Error("cancelled fetch was cached")
	}
}

func TestLoadBundleDefaults(t *testing.T) {
	b, err := NewLoader(nil).LoadBundle(context.Background(), "", "")
	if err != nil {
		t.Fatalf("LoadBundle() error = %v", err)
	}
	if b.Dataset.Len() != 36 {
		t.Errorf("default dataset has %d regions", b.Dataset.Len())
	}
	if b.MapSource != SchematicSource {
		t.Errorf("MapSource = %q", b.MapSource)
	}
	if !b.Mismatch.Empty() {
		t.Errorf("default assets mismatch: %+v", b.Mismatch)
	}
}

func TestLoadBundleFromFiles(t *testing.T) {
	dsPath, cleanup := testutil.GenerateTestDataset(t, 3)
	defer cleanup()
	mapPath := testutil.WriteTempFile(t, "map_*.svg", testutil.SampleMap("R01", "R02", "OCEAN"))

	b, err := NewLoader(nil).LoadBundle(context.Background(), dsPath, mapPath)
	if err != nil {
		t.Fatalf("LoadBundle() error = %v", err)
	}
	if b.Dataset.Len() != 3 || len(b.Issues) != 0 {
		t.Errorf("dataset len=%d issues=%v", b.Dataset.Len(), b.Issues)
	}
	want := svgmap.MismatchReport{MissingShapes: []string{"R03"}, UnknownShapes: []string{"OCEAN"}}
	if len(b.Mismatch.MissingShapes) != 1 || b.Mismatch.MissingShapes[0] != want.MissingShapes[0] ||
		len(b.Mismatch.UnknownShapes) != 1 || b.Mismatch.UnknownShapes[0] != want.UnknownShapes[0] {
		t.Errorf("Mismatch = %+v, want %+v", b.Mismatch, want)
	}
	if b.MapSource != mapPath {
		t.Errorf("MapSource = %q", b.MapSource)
	}
}

func TestLoadBundleErrors(t *testing.T) {
	dsPath, cleanup := testutil.GenerateTestDataset(t, 2)
	defer cleanup()
	missing := filepath.Join(t.TempDir(), "nope.json")
	notObject := testutil.WriteTempFile(t, "bad_*.json", `[1, 2, 3]`)
	noSVG := testutil.WriteTempFile(t, "bad_*.svg", `<p>not a map</p>`)

	tests := []struct {
		name      string
		ds, mp    string
		wantAsset string
	}{
		{"missing dataset", missing, "", AssetDataset},
		{"dataset not an object", notObject, "", AssetDataset},
		{"missing map", dsPath, missing, AssetMap},
		{"map without svg", dsPath, noSVG, AssetMap},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoader(nil).LoadBundle(context.Background(), tt.ds, tt.mp)
			le, ok := AsLoadError(err)
			if !ok {
				t.Fatalf("error = %v, want *LoadError", err)
			}
			if le.Asset != tt.wantAsset {
				t.Errorf("Asset = %q, want %q", le.Asset, tt.wantAsset)
			}
			if le.Error() == "" {
				t.Error("empty error message")
			}
		})
	}
}

func TestLoadBundleCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewLoader(nil).LoadBundle(ctx, "", "")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("LoadBundle() error = %v, want context.Canceled", err)
	}
}
