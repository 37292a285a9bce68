package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

type scopeData struct {
	Theme   Theme             `json:"theme,omitempty"`
	Presets map[string]Preset `json:"presets,omitempty"`
}

// FileStore keeps preferences in a single JSON file.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore returns a store backed by path. The file is created on the
// first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) load() (map[string]scopeData, error) {
	data := map[string]scopeData{}
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return data, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read prefs: %w", err)
	}
	if len(b) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, fmt.Errorf("parse prefs %s: %w", s.path, err)
	}
	return data, nil
}

func (s *FileStore) save(data map[string]scopeData) error {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create prefs dir: %w", err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	return os.Rename(tmp, s.path)
}

// update runs fn on the loaded data and saves the result.
func (s *FileStore) update(fn func(map[string]scopeData) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load()
	if err != nil {
		return err
	}
	if err := fn(data); err != nil {
		return err
	}
	return s.save(data)
}

func (s *FileStore) scope(scope string) (scopeData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load()
	if err != nil {
		return scopeData{}, err
	}
	return data[scope], nil
}

func (s *FileStore) Theme(_ context.Context, scope string) (Theme, error) {
	d, err := s.scope(scope)
	if err != nil {
		return ThemeLight, err
	}
	if d.Theme == "" {
		return ThemeLight, nil
	}
	return d.Theme, nil
}

func (s *FileStore) SetTheme(_ context.Context, scope string, t Theme) error {
	if _, err := ParseTheme(string(t)); err != nil {
		return err
	}
	return s.update(func(data map[string]scopeData) error {
		d := data[scope]
		d.Theme = t
		data[scope] = d
		return nil
	})
}

func (s *FileStore) Presets(_ context.Context, scope string) (map[string]Preset, error) {
	d, err := s.scope(scope)
	if err != nil {
		return nil, err
	}
	out := make(map[string]Preset, len(d.Presets))
	for k, v := range d.Presets {
		out[k] = v
	}
	return out, nil
}

func (s *FileStore) Preset(_ context.Context, scope, name string) (Preset, error) {
	d, err := s.scope(scope)
	if err != nil {
		return Preset{}, err
	}
	p, ok := d.Presets[name]
	if !ok {
		return Preset{}, fmt.Errorf("%w: %q", ErrPresetNotFound, name)
	}
	return p, nil
}

func (s *FileStore) SavePreset(_ context.Context, scope, name string, p Preset) error {
	name, err := CheckName(name)
	if err != nil {
		return err
	}
	return s.update(func(data map[string]scopeData) error {
		d := data[scope]
		if d.Presets == nil {
			d.Presets = map[string]Preset{}
		}
		d.Presets[name] = p
		data[scope] = d
		return nil
	})
}

func (s *FileStore) DeletePreset(_ context.Context, scope, name string) error {
	return s.update(func(data map[string]scopeData) error {
		d := data[scope]
		if _, ok := d.Presets[name]; !ok {
			return fmt.Errorf("%w: %q", ErrPresetNotFound, name)
		}
		delete(d.Presets, name)
		data[scope] = d
		return nil
	})
}

func (s *FileStore) Close() error { return nil }
