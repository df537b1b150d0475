package generate

import (
	"context"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"

	"artforge/pkg/config"
	"artforge/pkg/errors"
	"artforge/pkg/metadata"
	"artforge/pkg/traits"
)

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

// testConfig builds a config over a temp asset tree with two layers
// (2 x 3 = 6 distinct combinations).
func testConfig(t *testing.T, amount int) *config.Config {
	t.Helper()
	root := t.TempDir()
	assets := filepath.Join(root, "assets")

	colors := []color.NRGBA{
		{R: 255, A: 255}, {G: 255, A: 255}, {B: 255, A: 255},
	}
	for i, name := range []string{"slim", "wide"} {
		writePNG(t, filepath.Join(assets, "body", name+".png"), colors[i])
	}
	for i, name := range []string{"happy", "sad", "sly"} {
		writePNG(t, filepath.Join(assets, "face", name+".png"), colors[i])
	}

	return &config.Config{
		Amount:      amount,
		TokenPrefix: "Critter",
		Description: "test collection",
		URIPrefix:   "ipfs://",
		AssetsDir:   assets,
		BuildDir:    filepath.Join(root, "build"),
		Layers: []config.Layer{
			{Name: "body", Rarities: []int{50, 50}},
			{Name: "face", Rarities: []int{40, 30, 30}},
		},
	}
}

func writePNG(t *testing.T, path string, c color.NRGBA) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := imaging.Save(imaging.New(2, 2, c), path); err != nil {
		t.Fatal(err)
	}
}

// signature renders a token's traits as a comparable string.
func signature(token metadata.Token) string {
	parts := make([]string, 0, len(token.Attributes))
	for _, a := range token.Attributes {
		parts = append(parts, a.TraitType+"="+a.Value+"/"+a.SubValue)
	}
	return strings.Join(parts, ",")
}

func TestExecuteProducesCollection(t *testing.T) {
	cfg := testConfig(t, 5)
	runner := NewRunner(testLogger(), 42)

	result, err := runner.Execute(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if result.Produced != 5 {
		t.Errorf("Produced = %d, want 5", result.Produced)
	}
	if result.StartEdition != 0 {
		t.Errorf("StartEdition = %d, want 0", result.StartEdition)
	}
	if result.Capacity != 6 {
		t.Errorf("Capacity = %d, want 6", result.Capacity)
	}
	if result.RunID == "" {
		t.Error("RunID should be set")
	}

	// Contiguous editions 0..4 with matching image and JSON artifacts, and
	// no two tokens sharing a combination.
	seen := make(map[string]int)
	for edition := 0; edition < 5; edition++ {
		imgPath := filepath.Join(cfg.ImagesDir(), fmt.Sprintf("%d.png", edition))
		if _, err := os.Stat(imgPath); err != nil {
			t.Errorf("missing image %s: %v", imgPath, err)
		}
		token, err := metadata.Read(cfg.JSONDir(), edition)
		if err != nil {
			t.Fatalf("missing metadata for edition %d: %v", edition, err)
		}
		if token.Edition != edition {
			t.Errorf("edition field = %d, want %d", token.Edition, edition)
		}
		if token.Name != fmt.Sprintf("Critter #%d", edition) {
			t.Errorf("name = %q", token.Name)
		}
		sig := signature(token)
		if prev, dup := seen[sig]; dup {
			t.Errorf("editions %d and %d share combination %q", prev, edition, sig)
		}
		seen[sig] = edition
	}

	// No extra edition beyond the requested range.
	if _, err := os.Stat(filepath.Join(cfg.ImagesDir(), "5.png")); err == nil {
		t.Error("unexpected edition 5 artifact")
	}

	// The manifest records the run.
	m, err := ReadManifest(cfg.BuildDir)
	if err != nil {
		t.Fatalf("ReadManifest error: %v", err)
	}
	if m.Amount != 5 || m.StartEdition != 0 || m.Seed != 42 || m.RunID != result.RunID {
		t.Errorf("unexpected manifest: %+v", m)
	}
}

func TestExecuteIDFromOne(t *testing.T) {
	cfg := testConfig(t, 2)
	cfg.IDFromOne = true

	result, err := NewRunner(testLogger(), 7).Execute(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if result.StartEdition != 1 {
		t.Errorf("StartEdition = %d, want 1", result.StartEdition)
	}
	for _, edition := range []int{1, 2} {
		if _, err := metadata.Read(cfg.JSONDir(), edition); err != nil {
			t.Errorf("missing edition %d: %v", edition, err)
		}
	}
	if _, err := metadata.Read(cfg.JSONDir(), 0); err == nil {
		t.Error("edition 0 should not exist when id_from_one is set")
	}
}

func TestExecuteSpaceExhausted(t *testing.T) {
	cfg := testConfig(t, 10) // only 6 distinct combinations exist

	_, err := NewRunner(testLogger(), 1).Execute(context.Background(), cfg)
	if err == nil {
		t.Fatal("expected capacity error")
	}
	if !errors.Is(err, errors.ErrCodeSpaceExhausted) {
		t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeSpaceExhausted)
	}

	// Fail-fast: nothing was produced.
	entries, _ := os.ReadDir(cfg.ImagesDir())
	if len(entries) != 0 {
		t.Errorf("expected no images, found %d", len(entries))
	}
}

func TestExecuteFullSpace(t *testing.T) {
	// Requesting exactly the capacity must terminate and enumerate every
	// combination.
	cfg := testConfig(t, 6)

	result, err := NewRunner(testLogger(), 3).Execute(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if result.Produced != 6 {
		t.Errorf("Produced = %d, want 6", result.Produced)
	}
}

func TestExecuteRichAndRank(t *testing.T) {
	cfg := testConfig(t, 4)
	cfg.RichMetadata = true
	cfg.PaintswapMetadata = true

	if _, err := NewRunner(testLogger(), 9).Execute(context.Background(), cfg); err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	ranks := make(map[int]bool)
	for edition := 0; edition < 4; edition++ {
		token, err := metadata.Read(cfg.JSONDir(), edition)
		if err != nil {
			t.Fatal(err)
		}
		for _, attr := range token.Attributes {
			if attr.Percentage <= 0 {
				t.Errorf("edition %d attribute %s has no percentage", edition, attr.TraitType)
			}
		}
		if token.RarityRank < 1 || token.RarityRank > 4 || ranks[token.RarityRank] {
			t.Errorf("edition %d has invalid rank %d", edition, token.RarityRank)
		}
		ranks[token.RarityRank] = true
	}
}

func TestExecuteRankWithoutRichWarnsOnly(t *testing.T) {
	cfg := testConfig(t, 3)
	cfg.PaintswapMetadata = true // rich_metadata deliberately off

	if _, err := NewRunner(testLogger(), 5).Execute(context.Background(), cfg); err != nil {
		t.Fatalf("Execute should not fail on the missing precondition, got: %v", err)
	}

	token, err := metadata.Read(cfg.JSONDir(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if token.RarityRank != 0 {
		t.Error("no rank should be assigned without rich metadata")
	}
}

func TestExecuteDeterministicSeed(t *testing.T) {
	first := testConfig(t, 5)
	second := testConfig(t, 5)

	if _, err := NewRunner(testLogger(), 42).Execute(context.Background(), first); err != nil {
		t.Fatal(err)
	}
	if _, err := NewRunner(testLogger(), 42).Execute(context.Background(), second); err != nil {
		t.Fatal(err)
	}

	for edition := 0; edition < 5; edition++ {
		a, err := metadata.Read(first.JSONDir(), edition)
		if err != nil {
			t.Fatal(err)
		}
		b, err := metadata.Read(second.JSONDir(), edition)
		if err != nil {
			t.Fatal(err)
		}
		if signature(a) != signature(b) {
			t.Errorf("edition %d differs across seeded runs: %q vs %q", edition, signature(a), signature(b))
		}
	}
}

func TestExecuteCancelled(t *testing.T) {
	cfg := testConfig(t, 5)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewRunner(testLogger(), 1).Execute(ctx, cfg); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestCombinationSet(t *testing.T) {
	set := newCombinationSet()
	a := traits.Combination{{Layer: "body", Candidate: traits.Candidate{Path: "a.png"}}}
	b := traits.Combination{{Layer: "body", Candidate: traits.Candidate{Path: "b.png"}}}

	if set.Has(a) {
		t.Error("empty set should not contain a")
	}
	set.Add(a)
	if !set.Has(a) {
		t.Error("set should contain a after Add")
	}
	if set.Has(b) {
		t.Error("set should not contain b")
	}
	set.Add(a)
	if set.Len() != 1 {
		t.Errorf("Len = %d, want 1 (Add is idempotent)", set.Len())
	}
}
