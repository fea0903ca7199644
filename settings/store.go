package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ledstream/core/engine/config"
)

// schemaVersion is the current on-disk document schema. A document
// file's stored version below this triggers every registered
// Migration in order.
const schemaVersion = 1

// Migration upgrades a kind's raw document from one schema version to
// the next.
type Migration struct {
	Kind        string
	FromVersion int
	Apply       func(json.RawMessage) (json.RawMessage, error)
}

// Validator inspects a decoded document and corrects it in place,
// reporting whether a correction was made.
type Validator func(doc json.RawMessage) (corrected json.RawMessage, changed bool, err error)

// envelope is the on-disk wrapper around a kind's document, carrying
// the schema version it was written with.
type envelope struct {
	Version int             `json:"version"`
	Data    json.RawMessage `json:"data"`
}

// Store is the versioned local settings database: one JSON file per
// kind under dir, migrated forward on load, backed up to a
// timestamped copy before every rewrite.
type Store struct {
	log config.Logger

	dir        string
	migrations []Migration
	validators map[string]Validator
}

// NewStore returns a Store rooted at dir, creating it if it doesn't
// exist.
func NewStore(dir string, log config.Logger) (*Store, error) {
	if log == nil {
		log = config.NewDiscardLogger()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("settings: cannot create store dir: %w", err)
	}
	return &Store{dir: dir, log: log, validators: make(map[string]Validator)}, nil
}

// RegisterMigration adds m to the set applied on Load.
func (s *Store) RegisterMigration(m Migration) {
	s.migrations = append(s.migrations, m)
}

// RegisterValidator installs v as the auto-correct hook for kind.
func (s *Store) RegisterValidator(kind string, v Validator) {
	s.validators[kind] = v
}

func (s *Store) path(kind string) string {
	return filepath.Join(s.dir, kind+".json")
}

// Load reads kind's document, migrating it forward to schemaVersion
// and applying its registered validator if any. A missing file is not
// an error; it returns (nil, false, nil).
func (s *Store) Load(kind string) (json.RawMessage, bool, error) {
	raw, err := os.ReadFile(s.path(kind))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, false, fmt.Errorf("settings: %s: corrupt document: %w", kind, err)
	}

	data, migrated, err := s.migrate(kind, env.Version, env.Data)
	if err != nil {
		return nil, false, err
	}

	if v, ok := s.validators[kind]; ok {
		corrected, changed, err := v(data)
		if err != nil {
			return nil, false, fmt.Errorf("settings: %s: validation failed: %w", kind, err)
		}
		if changed {
			s.log.Info("settings: document auto-corrected", "kind", kind)
			data = corrected
			migrated = true
		}
	}

	if migrated {
		if err := s.Save(kind, data); err != nil {
			s.log.Warning("settings: failed to persist migrated/corrected document", "kind", kind, "err", err)
		}
	}
	return data, true, nil
}

// migrate applies every registered migration for kind in ascending
// FromVersion order until the document reaches schemaVersion.
func (s *Store) migrate(kind string, fromVersion int, data json.RawMessage) (json.RawMessage, bool, error) {
	changed := false
	version := fromVersion
	for version < schemaVersion {
		applied := false
		for _, m := range s.migrations {
			if m.Kind == kind && m.FromVersion == version {
				next, err := m.Apply(data)
				if err != nil {
					return nil, false, fmt.Errorf("settings: %s: migration from v%d failed: %w", kind, version, err)
				}
				data = next
				version++
				changed = true
				applied = true
				break
			}
		}
		if !applied {
			break
		}
	}
	return data, changed, nil
}

// Save writes kind's document, first renaming any existing file aside
// to a timestamped backup.
func (s *Store) Save(kind string, data json.RawMessage) error {
	target := s.path(kind)
	if _, err := os.Stat(target); err == nil {
		backup := target + "." + time.Now().UTC().Format("20060102T150405.000000000Z") + ".bak"
		if err := os.Rename(target, backup); err != nil {
			return fmt.Errorf("settings: %s: backup-before-rewrite failed: %w", kind, err)
		}
	}

	env := envelope{Version: schemaVersion, Data: data}
	body, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return os.WriteFile(target, body, 0o644)
}
