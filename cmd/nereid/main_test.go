package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bnomei/nereid-sub000/internal/config"
	"github.com/bnomei/nereid-sub000/internal/datasource"
	"github.com/bnomei/nereid-sub000/internal/model"
)

const helloJSON = `{
  "diagram_id": "hi",
  "participants": [{"id": "A"}, {"id": "B"}],
  "messages": [{"id": "m1", "from": "A", "to": "B", "text": "Hi", "order": 1}]
}`

// writeDiagram writes a diagram into a temp dir and returns its path.
func writeDiagram(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "diagram.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseFlagsRecordsExplicit(t *testing.T) {
	fl, err := parseFlags([]string{"--view", "objects", "--refresh", "5s", "--prefix-labels", "--text"})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if !fl.textMode {
		t.Error("--text should be set")
	}
	for _, name := range []string{"view", "refresh", "prefix-labels", "text"} {
		if !fl.set[name] {
			t.Errorf("flag %q should be recorded as set", name)
		}
	}
	if fl.set["diagram"] {
		t.Error("diagram was not given")
	}
}

func TestParseFlagsRejectsUnknown(t *testing.T) {
	if _, err := parseFlags([]string{"--nope"}); err == nil {
		t.Error("unknown flag should fail")
	}
}

func TestApplyOverridesOnlyExplicitFlags(t *testing.T) {
	cfg := config.Default()
	cfg.View = "text"
	cfg.Render.ReserveNotes = true

	fl, err := parseFlags([]string{"--refresh", "500ms", "--diagram", "x.json"})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if err := fl.apply(&cfg); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if cfg.View != "text" {
		t.Errorf("view should keep config value, got %q", cfg.View)
	}
	if !cfg.Render.ReserveNotes {
		t.Error("reserve_notes should keep config value")
	}
	if cfg.Refresh != 500*time.Millisecond {
		t.Errorf("refresh = %s", cfg.Refresh)
	}
	if cfg.Diagram != "x.json" {
		t.Errorf("diagram = %q", cfg.Diagram)
	}
}

func TestApplyValidates(t *testing.T) {
	cfg := config.Default()
	fl, err := parseFlags([]string{"--view", "gallery"})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if err := fl.apply(&cfg); err == nil {
		t.Error("unknown view should fail validation")
	}
}

func TestOneShotText(t *testing.T) {
	path := writeDiagram(t, helloJSON)
	var out bytes.Buffer

	fl := cliFlags{textMode: true}
	if err := oneShot(&out, quietLogger(), path, model.RenderOptions{}, fl); err != nil {
		t.Fatalf("oneShot: %v", err)
	}
	want := "┌─────┐  ┌─────┐\n" +
		"│  A  │  │  B  │\n" +
		"└──┬──┘  └──┬──┘\n" +
		"   │        │\n" +
		"   │   Hi   │\n" +
		"   │───────▶│\n" +
		"   │        │\n"
	if out.String() != want {
		t.Errorf("text output:\n%s\nwant:\n%s", out.String(), want)
	}
}

func TestOneShotJSON(t *testing.T) {
	path := writeDiagram(t, helloJSON)
	var out bytes.Buffer

	fl := cliFlags{jsonMode: true}
	if err := oneShot(&out, quietLogger(), path, model.RenderOptions{}, fl); err != nil {
		t.Fatalf("oneShot: %v", err)
	}

	var doc struct {
		Text   string `json:"text"`
		Width  int    `json:"width"`
		Height int    `json:"height"`
		Index  []struct {
			Ref   string  `json:"ref"`
			Spans [][]int `json:"spans"`
		} `json:"index"`
	}
	if err := json.Unmarshal(out.Bytes(), &doc); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out.String())
	}
	if doc.Width != 16 || doc.Height != 7 {
		t.Errorf("size = %dx%d, want 16x7", doc.Width, doc.Height)
	}
	if len(doc.Index) != 3 || doc.Index[2].Ref != "d:hi/seq/message/m1" {
		t.Errorf("unexpected index: %+v", doc.Index)
	}
}

func TestOneShotPNG(t *testing.T) {
	path := writeDiagram(t, helloJSON)
	png := filepath.Join(t.TempDir(), "out.png")

	fl := cliFlags{pngPath: png, selectRef: "d:hi/seq/message/m1"}
	if err := oneShot(io.Discard, quietLogger(), path, model.RenderOptions{}, fl); err != nil {
		t.Fatalf("oneShot: %v", err)
	}
	fi, err := os.Stat(png)
	if err != nil {
		t.Fatalf("png not written: %v", err)
	}
	if fi.Size() == 0 {
		t.Error("png is empty")
	}
}

func TestOneShotPNGUnknownSelection(t *testing.T) {
	path := writeDiagram(t, helloJSON)
	png := filepath.Join(t.TempDir(), "out.png")

	for _, ref := range []string{"d:hi/seq/message/ghost", "not-a-ref"} {
		fl := cliFlags{pngPath: png, selectRef: ref}
		if err := oneShot(io.Discard, quietLogger(), path, model.RenderOptions{}, fl); err == nil {
			t.Errorf("select %q should fail", ref)
		}
	}
	if _, err := os.Stat(png); !os.IsNotExist(err) {
		t.Error("no png should be written for a bad selection")
	}
}

func TestOneShotRenderError(t *testing.T) {
	path := writeDiagram(t, `{
  "participants": [{"id": "a"}],
  "messages": [],
  "blocks": [{"id": "b1", "kind": "opt", "sections": [{"id": "s1", "messages": ["ghost"]}]}]
}`)
	err := oneShot(io.Discard, quietLogger(), path, model.RenderOptions{}, cliFlags{textMode: true})
	if err == nil || !strings.Contains(err.Error(), "render") {
		t.Errorf("expected render error, got %v", err)
	}
}

func TestSmokeDiscoverAndWatch(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, ".nereid"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".nereid", "diagram.json"), []byte(helloJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("NEREID_DIAGRAM", "")
	t.Chdir(dir)

	path, err := datasource.Discover()
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	w, err := datasource.NewWatcher(path)
	if err != nil {
		t.Fatalf("watcher creation failed: %v", err)
	}
	defer w.Close()

	m := newModel(w, nil, path, model.RenderOptions{})
	ready := m.refreshSnapshot()().(snapshotReadyMsg)
	if ready.err != nil {
		t.Fatalf("refresh: %v", ready.err)
	}
	t.Logf("watching %s (%dx%d)", path, ready.snap.Result.Width, ready.snap.Result.Height)
}
