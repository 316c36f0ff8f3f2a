package devicestate

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"poker-pool/internal/game"
)

// Snapshot is what a device remembers between runs.
type Snapshot struct {
	Player *game.Player `json:"player,omitempty"`
	Room   *game.Room   `json:"room,omitempty"`
}

// File keeps a Snapshot as JSON at Path. Writes replace the file atomically.
type File struct {
	Path string
	mu   sync.Mutex
}

func New(path string) *File {
	return &File{Path: path}
}

// Load returns the stored snapshot, or the zero snapshot when nothing was saved yet.
func (f *File) Load() (Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.load()
}

func (f *File) SavePlayer(p game.Player) error {
	return f.update(func(s *Snapshot) {
		p.Hand = []game.Card{}
		p.ClaimedHand = nil
		p.IsWinner = false
		s.Player = &p
	})
}

func (f *File) SaveRoom(r game.Room) error {
	return f.update(func(s *Snapshot) {
		cp := r.Clone()
		s.Room = cp
	})
}

func (f *File) update(fn func(*Snapshot)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, err := f.load()
	if err != nil {
		return err
	}
	fn(&s)
	return f.write(s)
}

func (f *File) load() (Snapshot, error) {
	var s Snapshot
	b, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, err
	}
	if err := json.Unmarshal(b, &s); err != nil {
		return Snapshot{}, fmt.Errorf("decode %s: %w", f.Path, err)
	}
	return s, nil
}

func (f *File) write(s Snapshot) error {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(f.Path)
	tmp, err := os.CreateTemp(dir, ".devicestate-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), f.Path); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return nil
}
