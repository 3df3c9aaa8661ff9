package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"go.uber.org/zap"

	"dossier-llm/internal/domain"
)

type memKV struct {
	values map[string]string
}

func newMemKV() *memKV {
	return &memKV{values: make(map[string]string)}
}

func (m *memKV) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memKV) Set(_ context.Context, key, value string) error {
	m.values[key] = value
	return nil
}

func (m *memKV) Delete(_ context.Context, key string) error {
	delete(m.values, key)
	return nil
}

func TestLoadEmptyCreatesFreshProfile(t *testing.T) {
	kvStore := newMemKV()
	repo := NewKVStoreRepository(kvStore, zap.NewNop())

	store, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(store.Profiles) != 1 {
		t.Fatalf("expected exactly one fresh profile, got %d", len(store.Profiles))
	}
	if _, ok := store.Profiles[store.ActiveID]; !ok {
		t.Fatalf("expected active id to reference the fresh profile")
	}
	if _, ok := kvStore.values[profilesKey]; !ok {
		t.Fatalf("expected fresh store persisted")
	}
}

func TestLoadCorruptProfileMapResetsWithoutError(t *testing.T) {
	kvStore := newMemKV()
	kvStore.values[profilesKey] = `{"not json`
	repo := NewKVStoreRepository(kvStore, zap.NewNop())

	store, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("expected corruption swallowed, got %v", err)
	}
	if len(store.Profiles) != 1 {
		t.Fatalf("expected one fresh profile after corruption, got %d", len(store.Profiles))
	}
}

func TestLoadLegacyMigration(t *testing.T) {
	kvStore := newMemKV()
	kvStore.values[legacyKey] = `{"name": "Jane Doe", "summary": "prior summary", "mbti": "INFJ"}`
	repo := NewKVStoreRepository(kvStore, zap.NewNop())

	store, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(store.Profiles) != 1 {
		t.Fatalf("expected one migrated profile, got %d", len(store.Profiles))
	}
	profile := store.Profiles[store.ActiveID]
	if profile.FirstName != "Jane" || profile.LastName != "Doe" {
		t.Fatalf("expected combined name split, got %q %q", profile.FirstName, profile.LastName)
	}
	if profile.ID == "" {
		t.Fatalf("expected freshly generated id")
	}
	if profile.Summary != "prior summary" || profile.MBTI != "INFJ" {
		t.Fatalf("expected legacy fields carried, got %+v", profile)
	}
	if _, ok := kvStore.values[legacyKey]; ok {
		t.Fatalf("expected legacy key deleted after migration")
	}
	if _, ok := kvStore.values[profilesKey]; !ok {
		t.Fatalf("expected migrated store persisted")
	}
}

func TestLoadLegacyStructuredFieldsWin(t *testing.T) {
	kvStore := newMemKV()
	kvStore.values[legacyKey] = `{"name": "Jane Doe", "first_name": "Janet", "last_name": "Doeh"}`
	repo := NewKVStoreRepository(kvStore, zap.NewNop())

	store, _ := repo.Load(context.Background())
	profile := store.Profiles[store.ActiveID]
	if profile.FirstName != "Janet" || profile.LastName != "Doeh" {
		t.Fatalf("expected structured fields preferred, got %q %q", profile.FirstName, profile.LastName)
	}
}

func TestLoadLegacySingleWordName(t *testing.T) {
	kvStore := newMemKV()
	kvStore.values[legacyKey] = `{"name": "Cher"}`
	repo := NewKVStoreRepository(kvStore, zap.NewNop())

	store, _ := repo.Load(context.Background())
	profile := store.Profiles[store.ActiveID]
	if profile.FirstName != "Cher" || profile.LastName != domain.DefaultLastName {
		t.Fatalf("expected default last name for single-word legacy name, got %q %q", profile.FirstName, profile.LastName)
	}
}

func TestSaveLoadRoundTripPreservesOrder(t *testing.T) {
	kvStore := newMemKV()
	repo := NewKVStoreRepository(kvStore, zap.NewNop())

	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	store := domain.NewStore()
	var ids []string
	for i := 0; i < 3; i++ {
		p := domain.NewDefaultProfile(base.Add(time.Duration(i) * time.Hour))
		store = store.WithProfile(p)
		ids = append(ids, p.ID)
	}
	store = store.WithActive(ids[1])

	if err := repo.Save(context.Background(), store); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.ActiveID != ids[1] {
		t.Fatalf("expected active id %s, got %s", ids[1], loaded.ActiveID)
	}
	for i, id := range ids {
		if loaded.Order[i] != id {
			t.Fatalf("expected creation order reconstructed, got %v", loaded.Order)
		}
	}
}

func TestLoadInvalidActiveIDFallsBackToFirst(t *testing.T) {
	kvStore := newMemKV()
	repo := NewKVStoreRepository(kvStore, zap.NewNop())

	p := domain.NewDefaultProfile(time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC))
	store := domain.NewStore().WithProfile(p).WithActive(p.ID)
	if err := repo.Save(context.Background(), store); err != nil {
		t.Fatalf("save: %v", err)
	}
	active, _ := json.Marshal("ghost-id")
	kvStore.values[activeKey] = string(active)

	loaded, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.ActiveID != p.ID {
		t.Fatalf("expected fallback to first profile, got %s", loaded.ActiveID)
	}
}
