package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aretw0/impulse/pkg/domain"
)

const (
	funnelsDir  = "funnels"
	personasDir = "personas"
)

// Store implements ports.DefinitionStore using one JSON file per definition.
//
// Layout:
//
//	<BasePath>/funnels/<id>.json
//	<BasePath>/personas/<id>.json
type Store struct {
	BasePath string
}

// New creates a new file store. An empty basePath defaults to ".impulse".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = ".impulse"
	}
	return &Store{BasePath: basePath}
}

// SaveFunnel validates and writes f to disk atomically.
func (s *Store) SaveFunnel(ctx context.Context, f domain.Funnel) error {
	if err := f.Validate(); err != nil {
		return err
	}
	if err := checkID("funnel", f.ID); err != nil {
		return err
	}
	return s.write(funnelsDir, f.ID, f)
}

// GetFunnel reads a funnel by id.
func (s *Store) GetFunnel(ctx context.Context, id string) (domain.Funnel, error) {
	var f domain.Funnel
	if err := s.read(funnelsDir, "funnel", id, &f); err != nil {
		return domain.Funnel{}, err
	}
	return f, nil
}

// ListFunnels reads every funnel ordered by id.
func (s *Store) ListFunnels(ctx context.Context) ([]domain.Funnel, error) {
	ids, err := s.ids(funnelsDir)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Funnel, 0, len(ids))
	for _, id := range ids {
		f, err := s.GetFunnel(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// DeleteFunnel removes a funnel file.
func (s *Store) DeleteFunnel(ctx context.Context, id string) error {
	return s.remove(funnelsDir, "funnel", id)
}

// SavePersona validates and writes p to disk atomically.
func (s *Store) SavePersona(ctx context.Context, p domain.Persona) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := checkID("persona", p.ID); err != nil {
		return err
	}
	return s.write(personasDir, p.ID, p)
}

// GetPersona reads a persona by id.
func (s *Store) GetPersona(ctx context.Context, id string) (domain.Persona, error) {
	var p domain.Persona
	if err := s.read(personasDir, "persona", id, &p); err != nil {
		return domain.Persona{}, err
	}
	return p, nil
}

// ListPersonas reads every persona ordered by id.
func (s *Store) ListPersonas(ctx context.Context) ([]domain.Persona, error) {
	ids, err := s.ids(personasDir)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Persona, 0, len(ids))
	for _, id := range ids {
		p, err := s.GetPersona(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// DeletePersona removes a persona file.
func (s *Store) DeletePersona(ctx context.Context, id string) error {
	return s.remove(personasDir, "persona", id)
}

// checkID rejects ids that cannot be used as a plain file name.
func checkID(kind, id string) error {
	if id == "" {
		return &domain.ConfigError{Field: kind + ".id", Reason: kind + " has no id"}
	}
	if strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return &domain.ConfigError{Field: kind + ".id", Reason: fmt.Sprintf("id %q is not a valid file name", id)}
	}
	return nil
}

func (s *Store) path(dir, id string) string {
	return filepath.Join(s.BasePath, dir, id+".json")
}

// write persists v using a temp file, fsync and rename so a crash never
// leaves a partial definition behind.
func (s *Store) write(dir, id string, v any) error {
	target := filepath.Join(s.BasePath, dir)
	if err := os.MkdirAll(target, 0755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", id, err)
	}

	// Same directory keeps the rename on one filesystem.
	tmpFile, err := os.CreateTemp(target, "tmp-"+id+"-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Windows cannot rename an open file.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	destPath := s.path(dir, id)
	// Windows refuses to rename over an existing file.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing file for overwrite: %w", err)
		}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

func (s *Store) read(dir, kind, id string, v any) error {
	if checkID(kind, id) != nil {
		return fmt.Errorf("%s %q: %w", kind, id, domain.ErrNotFound)
	}
	data, err := os.ReadFile(s.path(dir, id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s %q: %w", kind, id, domain.ErrNotFound)
		}
		return fmt.Errorf("failed to read %s file: %w", kind, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s %q: %w", kind, id, err)
	}
	return nil
}

func (s *Store) remove(dir, kind, id string) error {
	if checkID(kind, id) != nil {
		return fmt.Errorf("%s %q: %w", kind, id, domain.ErrNotFound)
	}
	err := os.Remove(s.path(dir, id))
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%s %q: %w", kind, id, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to delete %s file: %w", kind, err)
	}
	return nil
}

// ids lists definition ids in a directory, skipping temp files.
func (s *Store) ids(dir string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.BasePath, dir))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") || strings.HasPrefix(name, "tmp-") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	slices.Sort(ids)
	return ids, nil
}
