package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// SlotName is the fixed name of the single persisted session record.
const SlotName = "user"

// Slot is the durable storage for the current session record. There is one
// logical slot per running application; Read returns (nil, nil) when the
// slot is empty.
type Slot interface {
	Read(ctx context.Context) (*User, error)
	Write(ctx context.Context, u *User) error
	Clear(ctx context.Context) error
}

// FileSlot persists the session record as a JSON file under a config
// directory, the durable client-side storage for the app process.
type FileSlot struct {
	path string
}

func NewFileSlot(dir string) *FileSlot {
	return &FileSlot{path: filepath.Join(dir, SlotName+".json")}
}

// DefaultSlotDir returns the per-user config directory for the app.
func DefaultSlotDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve config dir: %w", err)
	}
	return filepath.Join(base, "contractpay"), nil
}

func (s *FileSlot) Read(ctx context.Context) (*User, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session slot: %w", err)
	}
	var u User
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, fmt.Errorf("malformed session slot: %w", err)
	}
	return &u, nil
}

func (s *FileSlot) Write(ctx context.Context, u *User) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session dir: %w", err)
	}
	data, err := json.Marshal(u)
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session slot: %w", err)
	}
	return nil
}

func (s *FileSlot) Clear(ctx context.Context) error {
	err := os.Remove(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
