// Package memory implementa los puertos de persistencia sobre mapas en memoria.
// Respalda los tests de casos de uso; el despliegue real usa el adaptador postgres.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fieldops/stock-ledger-api/internal/domain"
	"github.com/fieldops/stock-ledger-api/internal/domain/entity"
	"github.com/fieldops/stock-ledger-api/internal/domain/repository"
)

// Store contenedor de todas las colecciones en memoria. Las transacciones se
// serializan con txMu y se revierten por snapshot: misma semántica todo-o-nada
// que el TxRunner de postgres.
type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex

	locations map[string]*entity.Location
	balances  map[string]*entity.Balance // clave item|location
	movements []*entity.MovementRecord
	movByKey  map[string]*entity.MovementRecord
	parts     map[string]*entity.Part
	items     map[string]*entity.CatalogItem
	users     map[string]*entity.User
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		locations: make(map[string]*entity.Location),
		balances:  make(map[string]*entity.Balance),
		movByKey:  make(map[string]*entity.MovementRecord),
		parts:     make(map[string]*entity.Part),
		items:     make(map[string]*entity.CatalogItem),
		users:     make(map[string]*entity.User),
	}
}

func balanceKey(itemID, locationID string) string { return itemID + "|" + locationID }

// ── Fixtures ─────────────────────────────────────────────────────────────────

// AddCatalogItem registra un artículo del catálogo externo (solo lectura en runtime).
func (s *Store) AddCatalogItem(it *entity.CatalogItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *it
	s.items[it.ID] = &cp
}

// AddLocation inserta una ubicación sin validar identidad: reproduce registros
// heredados anteriores al índice único, el insumo de la deduplicación.
func (s *Store) AddLocation(loc *entity.Location) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *loc
	s.locations[loc.ID] = &cp
}

// AddPart registra una pieza asignada (solo lectura en runtime).
func (s *Store) AddPart(p *entity.Part) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.parts[p.ID] = &cp
}

// ── Transacciones ────────────────────────────────────────────────────────────

// Run ejecuta fn con semántica transaccional: serializada contra otras
// transacciones y revertida por snapshot si fn falla.
func (s *Store) Run(_ context.Context, fn func(
	movRepo repository.MovementRepository,
	balanceRepo repository.BalanceRepository,
	locationRepo repository.LocationRepository,
) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snapBalances, snapMovs, snapByKey := s.snapshot()
	if err := fn(s.Movements(), s.Balances(), s.Locations()); err != nil {
		s.restore(snapBalances, snapMovs, snapByKey)
		return err
	}
	return nil
}

func (s *Store) snapshot() (map[string]*entity.Balance, []*entity.MovementRecord, map[string]*entity.MovementRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	balances := make(map[string]*entity.Balance, len(s.balances))
	for k, v := range s.balances {
		cp := *v
		balances[k] = &cp
	}
	movs := make([]*entity.MovementRecord, len(s.movements))
	copy(movs, s.movements)
	byKey := make(map[string]*entity.MovementRecord, len(s.movByKey))
	for k, v := range s.movByKey {
		byKey[k] = v
	}
	return balances, movs, byKey
}

func (s *Store) restore(balances map[string]*entity.Balance, movs []*entity.MovementRecord, byKey map[string]*entity.MovementRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances = balances
	s.movements = movs
	s.movByKey = byKey
}

// ── Repositorios ─────────────────────────────────────────────────────────────

// Locations devuelve el adaptador LocationRepository.
func (s *Store) Locations() repository.LocationRepository { return &locationRepo{s} }

// Balances devuelve el adaptador BalanceRepository.
func (s *Store) Balances() repository.BalanceRepository { return &balanceRepo{s} }

// Movements devuelve el adaptador MovementRepository.
func (s *Store) Movements() repository.MovementRepository { return &movementRepo{s} }

// Parts devuelve el adaptador PartRepository.
func (s *Store) Parts() repository.PartRepository { return &partRepo{s} }

// Catalog devuelve el adaptador CatalogRepository.
func (s *Store) Catalog() repository.CatalogRepository { return &catalogRepo{s} }

// Users devuelve el adaptador UserRepository.
func (s *Store) Users() repository.UserRepository { return &userRepo{s} }

var _ repository.LocationRepository = (*locationRepo)(nil)

type locationRepo struct{ s *Store }

func (r *locationRepo) Create(loc *entity.Location) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.locations[loc.ID]; ok {
		return domain.ErrDuplicate
	}
	for _, l := range r.s.locations {
		if l.IsActive && loc.IsActive && l.Type == loc.Type && l.IdentityKey() == loc.IdentityKey() {
			return domain.ErrDuplicate
		}
	}
	cp := *loc
	r.s.locations[loc.ID] = &cp
	return nil
}

func (r *locationRepo) GetByID(id string) (*entity.Location, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.locations[id]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (r *locationRepo) GetByCode(code string) (*entity.Location, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var found *entity.Location
	for _, l := range r.s.locations {
		if l.Code != code {
			continue
		}
		// Preferir la activa si hay desactivadas con el mismo código.
		if found == nil || (l.IsActive && !found.IsActive) {
			found = l
		}
	}
	if found == nil {
		return nil, nil
	}
	cp := *found
	return &cp, nil
}

func (r *locationRepo) GetActiveByIdentity(locType, identityKey string) (*entity.Location, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, l := range r.s.locations {
		if l.IsActive && l.Type == locType && l.IdentityKey() == identityKey {
			cp := *l
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *locationRepo) ListActive(locType string) ([]*entity.Location, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Location
	for _, l := range r.s.locations {
		if !l.IsActive || (locType != "" && l.Type != locType) {
			continue
		}
		cp := *l
		out = append(out, &cp)
	}
	sortLocations(out)
	return out, nil
}

func (r *locationRepo) ListAll() ([]*entity.Location, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Location, 0, len(r.s.locations))
	for _, l := range r.s.locations {
		cp := *l
		out = append(out, &cp)
	}
	sortLocations(out)
	return out, nil
}

func (r *locationRepo) Deactivate(id, reasonNote string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.locations[id]
	if !ok {
		return domain.ErrNotFound
	}
	l.IsActive = false
	l.DeactivationNote = reasonNote
	l.UpdatedAt = time.Now()
	return nil
}

func sortLocations(locs []*entity.Location) {
	sort.Slice(locs, func(i, j int) bool {
		if locs[i].Code != locs[j].Code {
			return locs[i].Code < locs[j].Code
		}
		return locs[i].ID < locs[j].ID
	})
}

var _ repository.BalanceRepository = (*balanceRepo)(nil)

type balanceRepo struct{ s *Store }

func (r *balanceRepo) Get(itemID, locationID string) (*entity.Balance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.balances[balanceKey(itemID, locationID)]
	if !ok {
		return &entity.Balance{ItemID: itemID, LocationID: locationID}, nil
	}
	cp := *b
	return &cp, nil
}

// GetForUpdate equivale a Get: las transacciones en memoria ya están serializadas
// por el txMu del Store.
func (r *balanceRepo) GetForUpdate(itemID, locationID string) (*entity.Balance, error) {
	return r.Get(itemID, locationID)
}

func (r *balanceRepo) Upsert(balance *entity.Balance) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *balance
	cp.Version = balance.Version + 1
	if cp.UpdatedAt.IsZero() {
		cp.UpdatedAt = time.Now()
	}
	r.s.balances[balanceKey(balance.ItemID, balance.LocationID)] = &cp
	return nil
}

func (r *balanceRepo) Exists(itemID, locationID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.balances[balanceKey(itemID, locationID)]
	return ok, nil
}

func (r *balanceRepo) ListByItem(itemID string) ([]*entity.Balance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Balance
	for _, b := range r.s.balances {
		if b.ItemID == itemID {
			cp := *b
			out = append(out, &cp)
		}
	}
	sortBalances(out)
	return out, nil
}

func (r *balanceRepo) ListAll() ([]*entity.Balance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Balance, 0, len(r.s.balances))
	for _, b := range r.s.balances {
		cp := *b
		out = append(out, &cp)
	}
	sortBalances(out)
	return out, nil
}

func sortBalances(bs []*entity.Balance) {
	sort.Slice(bs, func(i, j int) bool {
		if bs[i].ItemID != bs[j].ItemID {
			return bs[i].ItemID < bs[j].ItemID
		}
		return bs[i].LocationID < bs[j].LocationID
	})
}

var _ repository.MovementRepository = (*movementRepo)(nil)

type movementRepo struct{ s *Store }

func (r *movementRepo) Create(movement *entity.MovementRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.movByKey[movement.IdempotencyKey]; ok {
		return domain.ErrDuplicate
	}
	cp := *movement
	r.s.movements = append(r.s.movements, &cp)
	r.s.movByKey[movement.IdempotencyKey] = &cp
	return nil
}

func (r *movementRepo) GetByID(id string) (*entity.MovementRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.movements {
		if m.ID == id {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *movementRepo) GetByIdempotencyKey(key string) (*entity.MovementRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.movByKey[key]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (r *movementRepo) FirstSeed(itemID, locationID string) (*entity.MovementRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.movements {
		if m.Source == entity.SourceInitialSeed && m.ItemID == itemID &&
			m.ToLocationID != nil && *m.ToLocationID == locationID {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *movementRepo) ListByLocation(locationID string, from, to *time.Time, limit, offset int) ([]*entity.MovementRecord, error) {
	return r.list(func(m *entity.MovementRecord) bool {
		return (m.FromLocationID != nil && *m.FromLocationID == locationID) ||
			(m.ToLocationID != nil && *m.ToLocationID == locationID)
	}, from, to, limit, offset)
}

func (r *movementRepo) ListByItem(itemID string, from, to *time.Time, limit, offset int) ([]*entity.MovementRecord, error) {
	return r.list(func(m *entity.MovementRecord) bool { return m.ItemID == itemID }, from, to, limit, offset)
}

func (r *movementRepo) ListAll(limit, offset int) ([]*entity.MovementRecord, error) {
	return r.list(func(*entity.MovementRecord) bool { return true }, nil, nil, limit, offset)
}

func (r *movementRepo) list(match func(*entity.MovementRecord) bool, from, to *time.Time, limit, offset int) ([]*entity.MovementRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var filtered []*entity.MovementRecord
	for _, m := range r.s.movements {
		if !match(m) {
			continue
		}
		if from != nil && m.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && m.CreatedAt.After(*to) {
			continue
		}
		cp := *m
		filtered = append(filtered, &cp)
	}
	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})
	if offset >= len(filtered) {
		return nil, nil
	}
	filtered = filtered[offset:]
	if limit > 0 && limit < len(filtered) {
		filtered = filtered[:limit]
	}
	return filtered, nil
}

var _ repository.PartRepository = (*partRepo)(nil)

type partRepo struct{ s *Store }

func (r *partRepo) GetByID(id string) (*entity.Part, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.parts[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *partRepo) ListAll() ([]*entity.Part, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Part, 0, len(r.s.parts))
	for _, p := range r.s.parts {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

var _ repository.CatalogRepository = (*catalogRepo)(nil)

type catalogRepo struct{ s *Store }

func (r *catalogRepo) GetItem(id string) (*entity.CatalogItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	it, ok := r.s.items[id]
	if !ok {
		return nil, nil
	}
	cp := *it
	return &cp, nil
}

func (r *catalogRepo) ListTrackable() ([]*entity.CatalogItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.CatalogItem
	for _, it := range r.s.items {
		if it.Trackable {
			cp := *it
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

var _ repository.UserRepository = (*userRepo)(nil)

type userRepo struct{ s *Store }

func (r *userRepo) Create(user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[user.ID]; ok {
		return domain.ErrDuplicate
	}
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r *userRepo) GetByID(id string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *userRepo) FindByEmail(email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}
