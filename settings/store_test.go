package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir, nil)
	if err != nil {
		t.Fatal(err)
	}
	doc := json.RawMessage(`{"brightness":80}`)
	if err := store.Save(KindColor, doc); err != nil {
		t.Fatal(err)
	}
	got, ok, err := store.Load(KindColor)
	if err != nil || !ok {
		t.Fatalf("load failed: ok=%v err=%v", ok, err)
	}
	if string(got) != string(doc) {
		t.Fatalf("got %s, want %s", got, doc)
	}
}

func TestStoreLoadMissingIsNotError(t *testing.T) {
	dir := t.TempDir()
	store, _ := NewStore(dir, nil)
	_, ok, err := store.Load(KindGeneral)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("expected ok=false for a missing document")
	}
}

func TestStoreBackupBeforeRewrite(t *testing.T) {
	dir := t.TempDir()
	store, _ := NewStore(dir, nil)
	store.Save(KindLeds, json.RawMessage(`{"count":100}`))
	store.Save(KindLeds, json.RawMessage(`{"count":200}`))

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	backups := 0
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".bak" {
			backups++
		}
	}
	if backups != 1 {
		t.Fatalf("got %d .bak files after two saves, want 1", backups)
	}
}

func TestStoreMigration(t *testing.T) {
	dir := t.TempDir()
	store, _ := NewStore(dir, nil)
	store.RegisterMigration(Migration{
		Kind:        KindEffects,
		FromVersion: 0,
		Apply: func(data json.RawMessage) (json.RawMessage, error) {
			var m map[string]interface{}
			json.Unmarshal(data, &m)
			m["migrated"] = true
			return json.Marshal(m)
		},
	})

	target := filepath.Join(dir, KindEffects+".json")
	os.WriteFile(target, []byte(`{"version":0,"data":{"family":"linear"}}`), 0o644)

	got, ok, err := store.Load(KindEffects)
	if err != nil || !ok {
		t.Fatalf("load failed: ok=%v err=%v", ok, err)
	}
	var m map[string]interface{}
	json.Unmarshal(got, &m)
	if m["migrated"] != true {
		t.Fatalf("expected migrated document, got %s", got)
	}
}

func TestStoreAutoCorrectOnValidationFailure(t *testing.T) {
	dir := t.TempDir()
	store, _ := NewStore(dir, nil)
	store.RegisterValidator(KindGrabber, func(data json.RawMessage) (json.RawMessage, bool, error) {
		var m map[string]interface{}
		json.Unmarshal(data, &m)
		if w, _ := m["workers"].(float64); w < 0 {
			m["workers"] = 1.0
			corrected, _ := json.Marshal(m)
			return corrected, true, nil
		}
		return data, false, nil
	})
	store.Save(KindGrabber, json.RawMessage(`{"workers":-5}`))

	got, ok, err := store.Load(KindGrabber)
	if err != nil || !ok {
		t.Fatalf("load failed: ok=%v err=%v", ok, err)
	}
	var m map[string]interface{}
	json.Unmarshal(got, &m)
	if m["workers"] != 1.0 {
		t.Fatalf("expected auto-corrected workers=1, got %v", m["workers"])
	}
}
