package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"dossier-llm/internal/domain"
	"dossier-llm/internal/repository"
)

// SessionService mantiene el snapshot vivo del store y media todas las
// transiciones: crear, cambiar, borrar, editar identidad y aplicar deltas.
// Cada transicion produce un snapshot nuevo y lo persiste write-through; el
// mutex serializa transiciones concurrentes, asi dos analisis solapados no
// pueden pisarse una actualizacion.
type SessionService struct {
	mu     sync.Mutex
	repo   repository.StoreRepository
	logger *zap.Logger
	store  domain.Store
	now    func() time.Time
}

func NewSessionService(repo repository.StoreRepository, logger *zap.Logger) *SessionService {
	return &SessionService{repo: repo, logger: logger, now: time.Now}
}

// Init carga el estado persistido. Load nunca falla hacia arriba: corrupcion
// o ausencia terminan en un store fresco.
func (s *SessionService) Init(ctx context.Context) error {
	store, err := s.repo.Load(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.store = store
	s.mu.Unlock()
	return nil
}

// Snapshot devuelve una copia del store actual; el caller puede leerla sin
// sincronizacion.
func (s *SessionService) Snapshot() domain.Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Clone()
}

// Profile devuelve el perfil pedido, o el activo si id viene vacio.
func (s *SessionService) Profile(id string) (domain.Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == "" {
		id = s.store.ActiveID
	}
	p, ok := s.store.Profiles[id]
	if !ok {
		return domain.Profile{}, false
	}
	return p.Clone(), true
}

// RenderableProfile es Profile con el fallback de render: un id invalido
// produce un perfil por defecto efimero, nunca un error duro. Ese perfil no
// se persiste salvo que el usuario lo mute despues.
func (s *SessionService) RenderableProfile(id string) domain.Profile {
	if p, ok := s.Profile(id); ok {
		return p
	}
	return domain.NewDefaultProfile(s.now().UTC())
}

// Create inserta un perfil por defecto, lo activa y devuelve su id.
func (s *SessionService) Create(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile := domain.NewDefaultProfile(s.now().UTC())
	next := s.store.WithProfile(profile).WithActive(profile.ID)
	if err := s.commit(ctx, next); err != nil {
		return "", err
	}
	s.logger.Info("subject created", zap.String("profile_id", profile.ID))
	return profile.ID, nil
}

// Switch apunta la sesion a otro sujeto. No valida existencia: un id invalido
// se resuelve a la hora de renderizar, no aca.
func (s *SessionService) Switch(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(ctx, s.store.WithActive(id))
}

// Delete borra un perfil con intencion ya confirmada por el caller. El store
// nunca queda vacio: si cae el ultimo perfil se crea uno fresco y activo; si
// quedan otros, el activo pasa al primero restante en orden de insercion.
func (s *SessionService) Delete(ctx context.Context, id string, confirmed bool) error {
	if !confirmed {
		return domain.ErrNotConfirmed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.store.Profiles[id]; !ok {
		return domain.ErrProfileNotFound
	}

	next := s.store.WithoutProfile(id)
	if len(next.Profiles) == 0 {
		replacement := domain.NewDefaultProfile(s.now().UTC())
		next = next.WithProfile(replacement).WithActive(replacement.ID)
	}
	if err := s.commit(ctx, next); err != nil {
		return err
	}
	s.logger.Info("subject deleted",
		zap.String("profile_id", id),
		zap.String("active_id", next.ActiveID),
	)
	return nil
}

// EditIdentity aplica ediciones directas de nombre y fecha de nacimiento.
// Un puntero nil deja el campo como esta.
func (s *SessionService) EditIdentity(ctx context.Context, id string, firstName, lastName, dateOfBirth *string) (domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.store.Profiles[id]
	if !ok {
		return domain.Profile{}, domain.ErrProfileNotFound
	}

	updated := current.Clone()
	if firstName != nil {
		updated.FirstName = *firstName
	}
	if lastName != nil {
		updated.LastName = *lastName
	}
	if dateOfBirth != nil {
		updated.DateOfBirth = *dateOfBirth
	}
	updated.LastUpdated = s.now().UTC()

	if err := s.commit(ctx, s.store.WithProfile(updated)); err != nil {
		return domain.Profile{}, err
	}
	return updated, nil
}

// ApplyDelta funde un delta en el perfil indicado y persiste el resultado.
// Si el perfil no existe (id activo viejo), la operacion es un no-op con
// error: jamas crea un perfil ni redirige el merge a otro sujeto.
func (s *SessionService) ApplyDelta(ctx context.Context, id string, delta domain.AnalysisDelta, tag domain.EvidenceTag) (domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.store.Profiles[id]
	if !ok {
		return domain.Profile{}, domain.ErrProfileNotFound
	}

	merged := Merge(current, delta, tag, s.now().UTC())
	if err := s.commit(ctx, s.store.WithProfile(merged)); err != nil {
		return domain.Profile{}, err
	}
	s.logger.Info("analysis merged",
		zap.String("profile_id", id),
		zap.String("media_type", tag.MediaType),
		zap.Int("history_len", len(merged.History)),
	)
	return merged, nil
}

// commit persiste y recien entonces reemplaza el snapshot vivo. Caller tiene
// el mutex tomado.
func (s *SessionService) commit(ctx context.Context, next domain.Store) error {
	if err := s.repo.Save(ctx, next); err != nil {
		return err
	}
	s.store = next
	return nil
}
