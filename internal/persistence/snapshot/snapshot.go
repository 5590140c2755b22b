package snapshot

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

const Version = 1

type Header struct {
	Version int    `json:"version"`
	WorldID string `json:"world_id"`
	SavedAt string `json:"saved_at"`
}

// SnapshotV1 is one persisted session. Board is the board snapshot: one
// self-describing serialized record per materialized cell, in store order.
type SnapshotV1 struct {
	Header Header `json:"header"`

	Seed              int64      `json:"seed"`
	SeedDiscriminator string     `json:"seed_discriminator"`
	MaxTokens         int        `json:"max_tokens"`
	SpawnPermille     int        `json:"spawn_permille"`
	TileDegrees       float64    `json:"tile_degrees"`
	NeighborhoodSize  int        `json:"neighborhood_size"`
	Origin            [2]float64 `json:"origin"`

	Player  [2]float64 `json:"player"`
	Board   []string   `json:"board"`
	Carried []string   `json:"carried"`
}

// CellV1 is the decoded shape of one board record.
type CellV1 struct {
	Key    string    `json:"key"`
	Tokens []TokenV1 `json:"tokens"`
}

type TokenV1 struct {
	OriginI int `json:"origin_i"`
	OriginJ int `json:"origin_j"`
	Serial  int `json:"serial"`
}

func WriteSnapshot(path string, snap SnapshotV1) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := writeFile(tmp, snap); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

func writeFile(path string, snap SnapshotV1) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 256*1024)

	hb, err := json.Marshal(snap.Header)
	if err != nil {
		_ = enc.Close()
		return err
	}
	if _, err := bw.Write(hb); err != nil {
		_ = enc.Close()
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		_ = enc.Close()
		return err
	}
	if err := json.NewEncoder(bw).Encode(&snap); err != nil {
		_ = enc.Close()
		return fmt.Errorf("json encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}

func ReadSnapshot(path string) (SnapshotV1, error) {
	var snap SnapshotV1
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)

	line, err := br.ReadBytes('\n')
	if err != nil {
		return snap, fmt.Errorf("read header: %w", err)
	}
	var hdr Header
	if err := json.Unmarshal(line, &hdr); err != nil {
		return snap, fmt.Errorf("decode header: %w", err)
	}
	if hdr.Version != Version {
		return snap, fmt.Errorf("unsupported snapshot version %d (want %d)", hdr.Version, Version)
	}

	if err := json.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("json decode: %w", err)
	}
	if snap.Header != hdr {
		return snap, fmt.Errorf("snapshot header mismatch: line=%+v body=%+v", hdr, snap.Header)
	}
	return snap, nil
}
