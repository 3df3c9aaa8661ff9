package repository

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"dossier-llm/internal/domain"
	"dossier-llm/internal/kv"
)

// Claves de persistencia. profilesKey y activeKey se escriben de forma
// independiente en cada mutacion; legacyKey pertenece al formato viejo de un
// solo perfil y se consume una unica vez durante la migracion.
const (
	profilesKey = "dossier:profiles"
	activeKey   = "dossier:active"
	legacyKey   = "dossier:profile"
)

type StoreRepository interface {
	Load(ctx context.Context) (domain.Store, error)
	Save(ctx context.Context, store domain.Store) error
}

// KVStoreRepository persiste el Store sobre un almacen clave-valor.
// Cualquier fallo de lectura o parseo se trata como corrupcion y se resuelve
// reseteando a un perfil fresco; antes de descartar, el payload crudo queda
// en el log para no perderlo del todo.
type KVStoreRepository struct {
	kv     kv.KV
	logger *zap.Logger
	now    func() time.Time
}

func NewKVStoreRepository(store kv.KV, logger *zap.Logger) *KVStoreRepository {
	return &KVStoreRepository{kv: store, logger: logger, now: time.Now}
}

// legacyProfile es el esquema historico de un solo perfil. El campo Name
// combinado solo se usa cuando los campos estructurados vienen vacios.
type legacyProfile struct {
	Name              string                `json:"name"`
	FirstName         string                `json:"first_name"`
	LastName          string                `json:"last_name"`
	DateOfBirth       string                `json:"date_of_birth"`
	BigFive           domain.BigFive        `json:"big_five"`
	MBTI              string                `json:"mbti"`
	Enneagram         string                `json:"enneagram"`
	AttachmentStyle   string                `json:"attachment_style"`
	Summary           string                `json:"summary"`
	KeyTraits         []string              `json:"key_traits"`
	BodyLanguageNotes []string              `json:"body_language_notes"`
	ToneVoiceNotes    []string              `json:"tone_voice_notes"`
	History           []domain.HistoryEntry `json:"history"`
}

// Load reconstruye el Store desde las claves persistidas. Nunca devuelve un
// store vacio: corrupcion, ausencia o migracion fallida terminan en un unico
// perfil fresco ya persistido.
func (r *KVStoreRepository) Load(ctx context.Context) (domain.Store, error) {
	raw, ok, err := r.kv.Get(ctx, profilesKey)
	if err != nil {
		// Fallo de lectura y clave ausente se tratan igual.
		r.logger.Warn("profile map read failed, starting fresh", zap.Error(err))
		return r.fresh(ctx), nil
	}

	if ok {
		var profiles map[string]domain.Profile
		if err := json.Unmarshal([]byte(raw), &profiles); err != nil || profiles == nil {
			r.logger.Warn("discarding corrupt profile map",
				zap.Error(err),
				zap.String("raw_payload", raw),
			)
			return r.fresh(ctx), nil
		}
		if len(profiles) == 0 {
			return r.fresh(ctx), nil
		}
		store := domain.Store{
			Profiles: profiles,
			Order:    insertionOrder(profiles),
			ActiveID: r.loadActiveID(ctx),
		}
		if _, exists := store.Profiles[store.ActiveID]; !exists {
			store.ActiveID = store.Order[0]
		}
		return store, nil
	}

	if migrated, ok := r.migrateLegacy(ctx); ok {
		return migrated, nil
	}
	return r.fresh(ctx), nil
}

// Save persiste el mapa de perfiles y el id activo como escrituras
// independientes, sin batching. No es transaccional entre ambas claves; el
// fallback de Load cubre una caida entre las dos.
func (r *KVStoreRepository) Save(ctx context.Context, store domain.Store) error {
	profiles, err := json.Marshal(store.Profiles)
	if err != nil {
		return err
	}
	if err := r.kv.Set(ctx, profilesKey, string(profiles)); err != nil {
		return err
	}
	active, err := json.Marshal(store.ActiveID)
	if err != nil {
		return err
	}
	return r.kv.Set(ctx, activeKey, string(active))
}

func (r *KVStoreRepository) loadActiveID(ctx context.Context) string {
	raw, ok, err := r.kv.Get(ctx, activeKey)
	if err != nil || !ok {
		return ""
	}
	var id string
	if err := json.Unmarshal([]byte(raw), &id); err != nil {
		// Instalaciones viejas guardaban el id sin comillas.
		return strings.TrimSpace(raw)
	}
	return id
}

// migrateLegacy consume el registro historico de un solo perfil: id nuevo,
// nombre derivado del campo combinado si hace falta, y borrado de la clave
// vieja al terminar.
func (r *KVStoreRepository) migrateLegacy(ctx context.Context) (domain.Store, bool) {
	raw, ok, err := r.kv.Get(ctx, legacyKey)
	if err != nil || !ok {
		return domain.Store{}, false
	}

	var legacy legacyProfile
	if err := json.Unmarshal([]byte(raw), &legacy); err != nil {
		r.logger.Warn("discarding corrupt legacy profile",
			zap.Error(err),
			zap.String("raw_payload", raw),
		)
		_ = r.kv.Delete(ctx, legacyKey)
		return domain.Store{}, false
	}

	now := r.now().UTC()
	profile := domain.NewDefaultProfile(now)
	profile.FirstName, profile.LastName = legacyName(legacy)
	profile.DateOfBirth = legacy.DateOfBirth
	profile.BigFive = legacy.BigFive
	profile.MBTI = legacy.MBTI
	profile.Enneagram = legacy.Enneagram
	profile.AttachmentStyle = legacy.AttachmentStyle
	profile.Summary = legacy.Summary
	profile.KeyTraits = legacy.KeyTraits
	profile.BodyLanguageNotes = legacy.BodyLanguageNotes
	profile.ToneVoiceNotes = legacy.ToneVoiceNotes
	profile.History = legacy.History

	store := domain.NewStore().WithProfile(profile).WithActive(profile.ID)
	if err := r.Save(ctx, store); err != nil {
		r.logger.Warn("persisting migrated store failed", zap.Error(err))
	}
	if err := r.kv.Delete(ctx, legacyKey); err != nil {
		r.logger.Warn("deleting legacy key failed", zap.Error(err))
	}
	r.logger.Info("migrated legacy single-profile record", zap.String("profile_id", profile.ID))
	return store, true
}

func (r *KVStoreRepository) fresh(ctx context.Context) domain.Store {
	profile := domain.NewDefaultProfile(r.now().UTC())
	store := domain.NewStore().WithProfile(profile).WithActive(profile.ID)
	if err := r.Save(ctx, store); err != nil {
		r.logger.Warn("persisting fresh store failed", zap.Error(err))
	}
	return store
}

// legacyName prefiere los campos estructurados; si faltan, parte el nombre
// combinado en el primer espacio.
func legacyName(legacy legacyProfile) (string, string) {
	if legacy.FirstName != "" || legacy.LastName != "" {
		first, last := legacy.FirstName, legacy.LastName
		if first == "" {
			first = domain.DefaultFirstName
		}
		if last == "" {
			last = domain.DefaultLastName
		}
		return first, last
	}

	name := strings.TrimSpace(legacy.Name)
	if name == "" {
		return domain.DefaultFirstName, domain.DefaultLastName
	}
	if i := strings.IndexByte(name, ' '); i >= 0 {
		return name[:i], strings.TrimSpace(name[i+1:])
	}
	return name, domain.DefaultLastName
}

// insertionOrder reconstruye el orden de insercion a partir de CreatedAt;
// el id desempata para que el orden sea estable.
func insertionOrder(profiles map[string]domain.Profile) []string {
	ids := make([]string, 0, len(profiles))
	for id := range profiles {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := profiles[ids[i]], profiles[ids[j]]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return ids[i] < ids[j]
	})
	return ids
}
