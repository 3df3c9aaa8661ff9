package domain

import "errors"

var (
	// ErrProfileNotFound indica que el id activo no referencia un perfil
	// existente; las mutaciones sobre el se descartan sin efecto.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrNotConfirmed indica un borrado sin intencion confirmada.
	ErrNotConfirmed = errors.New("deletion not confirmed")
)

// Store es un snapshot inmutable del conjunto de sujetos. Order mantiene el
// orden de insercion de forma explicita; "primer perfil restante" tras un
// borrado se define sobre esa lista, nunca sobre el orden ambiente del map.
type Store struct {
	Profiles map[string]Profile
	Order    []string
	ActiveID string
}

// NewStore crea un store vacio.
func NewStore() Store {
	return Store{Profiles: make(map[string]Profile)}
}

// Clone copia el snapshot; el map y la lista de orden no se comparten.
func (s Store) Clone() Store {
	out := Store{
		Profiles: make(map[string]Profile, len(s.Profiles)),
		Order:    append([]string(nil), s.Order...),
		ActiveID: s.ActiveID,
	}
	for id, p := range s.Profiles {
		out.Profiles[id] = p.Clone()
	}
	return out
}

// Active devuelve el perfil activo, si el puntero es valido.
func (s Store) Active() (Profile, bool) {
	p, ok := s.Profiles[s.ActiveID]
	return p, ok
}

// WithProfile devuelve un snapshot con el perfil insertado o reemplazado.
// Un id nuevo se agrega al final del orden de insercion.
func (s Store) WithProfile(p Profile) Store {
	out := s.Clone()
	if _, exists := out.Profiles[p.ID]; !exists {
		out.Order = append(out.Order, p.ID)
	}
	out.Profiles[p.ID] = p
	return out
}

// WithActive devuelve un snapshot con el puntero activo cambiado.
func (s Store) WithActive(id string) Store {
	out := s.Clone()
	out.ActiveID = id
	return out
}

// WithoutProfile devuelve un snapshot sin el perfil dado. Si era el activo,
// el puntero pasa al primer perfil restante en orden de insercion; el caller
// decide que hacer cuando el store queda vacio.
func (s Store) WithoutProfile(id string) Store {
	out := s.Clone()
	delete(out.Profiles, id)
	order := out.Order[:0]
	for _, existing := range out.Order {
		if existing != id {
			order = append(order, existing)
		}
	}
	out.Order = order
	if out.ActiveID == id {
		out.ActiveID = ""
		if len(out.Order) > 0 {
			out.ActiveID = out.Order[0]
		}
	}
	return out
}
