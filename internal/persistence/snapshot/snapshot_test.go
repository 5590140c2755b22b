package snapshot

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
)

func sample() SnapshotV1 {
	return SnapshotV1{
		Header:            Header{Version: Version, WorldID: "w1", SavedAt: "2026-10-17T00:00:00Z"},
		Seed:              1337,
		SeedDiscriminator: "initialValue",
		MaxTokens:         3,
		SpawnPermille:     100,
		TileDegrees:       1e-4,
		NeighborhoodSize:  8,
		Player:            [2]float64{36.9995, -122.0533},
		Board: []string{
			`{"v":1,"key":"3,-2","tokens":[{"origin_i":3,"origin_j":-2,"serial":0}]}`,
		},
		Carried: []string{"3:-2#1"},
	}
}

func TestWriteReadSnapshot_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots", "1.snap.zst")
	want := sample()
	if err := WriteSnapshot(path, want); err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}

	got, err := ReadSnapshot(path)
	if err != nil {
		t.Fatalf("ReadSnapshot: %v", err)
	}
	if got.Header != want.Header || got.Seed != want.Seed || got.TileDegrees != want.TileDegrees || got.Player != want.Player {
		t.Fatalf("scalar mismatch: got=%+v", got)
	}
	if len(got.Board) != 1 || got.Board[0] != want.Board[0] {
		t.Fatalf("board mismatch: %v", got.Board)
	}
	if len(got.Carried) != 1 || got.Carried[0] != "3:-2#1" {
		t.Fatalf("carried mismatch: %v", got.Carried)
	}
}

func TestReadSnapshot_RejectsUnknownVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "v9.snap.zst")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	enc, err := zstd.NewWriter(f)
	if err != nil {
		t.Fatalf("zstd: %v", err)
	}
	_, _ = enc.Write([]byte(`{"version":9,"world_id":"w1"}` + "\n{}\n"))
	_ = enc.Close()
	_ = f.Close()

	_, err = ReadSnapshot(path)
	if err == nil || !strings.Contains(err.Error(), "unsupported snapshot version") {
		t.Fatalf("expected version error, got %v", err)
	}
}

func TestReadSnapshot_MissingFile(t *testing.T) {
	if _, err := ReadSnapshot(filepath.Join(t.TempDir(), "nope.snap.zst")); !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}
