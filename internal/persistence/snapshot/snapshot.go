// Package snapshot persists the current state of a diffusion run: the grid,
// the priority order and the round counter. Move history is never stored.
package snapshot

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// Version is the format written by WriteSnapshot.
const Version = 1

// Header is the JSON line preceding the encoded body; it can be read
// without decoding the grid.
type Header struct {
	Version int    `json:"version"`
	Name    string `json:"name"`
	Round   int    `json:"round"`
}

// SnapshotV1 is a paused diffusion run.
type SnapshotV1 struct {
	Header Header `json:"header"`

	WordBits int    `json:"word_bits"`
	Rows     int    `json:"rows"`
	Chunks   int    `json:"chunks"`
	Order    string `json:"order"`
	Strict   bool   `json:"strict"`

	// StableRound is the first round found to be a fixpoint, 0 if none yet.
	StableRound int `json:"stable_round,omitempty"`

	// Words holds the grid row-major, each word widened to 64 bits.
	Words []uint64 `json:"words"`
}

// Validate checks the snapshot's shape before it is turned back into a grid.
func (s SnapshotV1) Validate() error {
	if s.Header.Version != Version {
		return fmt.Errorf("snapshot: unsupported version %d", s.Header.Version)
	}
	switch s.WordBits {
	case 8, 16, 32, 64:
	default:
		return fmt.Errorf("snapshot: unsupported word bits %d", s.WordBits)
	}
	if s.Rows <= 0 || s.Chunks <= 0 || len(s.Words) != s.Rows*s.Chunks {
		return fmt.Errorf("snapshot: %d words do not fill %dx%d", len(s.Words), s.Rows, s.Chunks)
	}
	if s.WordBits < 64 {
		limit := uint64(1) << uint(s.WordBits)
		for i, w := range s.Words {
			if w >= limit {
				return fmt.Errorf("snapshot: word %d overflows %d bits", i, s.WordBits)
			}
		}
	}
	return nil
}

// WriteSnapshot stores snap at path as a zstd stream, creating its directory.
func WriteSnapshot(path string, snap SnapshotV1) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}

	bw := bufio.NewWriterSize(enc, 64*1024)
	hb, err := json.Marshal(snap.Header)
	if err != nil {
		return err
	}
	if _, err := bw.Write(hb); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}
	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return f.Sync()
}

// ReadSnapshot loads and validates a snapshot written by WriteSnapshot.
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

	br := bufio.NewReaderSize(dec, 64*1024)

	// The header line is for humans and tooling; gob carries it too.
	if _, err := br.ReadBytes('\n'); err != nil {
		return snap, fmt.Errorf("read header: %w", err)
	}
	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("gob decode: %w", err)
	}
	return snap, snap.Validate()
}

// ReadHeader returns only the JSON header line of a snapshot file.
func ReadHeader(path string) (Header, error) {
	var h Header
	f, err := os.Open(path)
	if err != nil {
		return h, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return h, err
	}
	defer dec.Close()

	line, err := bufio.NewReader(dec).ReadBytes('\n')
	if err != nil {
		return h, fmt.Errorf("read header: %w", err)
	}
	if err := json.Unmarshal(line, &h); err != nil {
		return h, fmt.Errorf("decode header: %w", err)
	}
	return h, nil
}
