package model

// Registry is the global service registry: a dense, 1-based array of
// Services built once at load time and never mutated in shape afterward
// (spec.md §3 Invariants, Design Notes "index-based access with central
// registry lookup on fire"). Reads need no locking once boot completes
// (spec.md §5 "effectively immutable after boot"); characteristic value
// writes are serialized by the cooperative schedule, not by this type.
type Registry struct {
	services   []*Service // services[0] unused; 1-based indexing
	byChar     map[*Characteristic]int
	Accessories []*Accessory
}

// NewRegistry returns an empty registry ready to receive services via Add.
func NewRegistry() *Registry {
	return &Registry{
		services: make([]*Service, 1), // index 0 reserved/unused
		byChar:   map[*Characteristic]int{},
	}
}

// Add appends svc, assigning it the next dense 1-based index, and
// indexes its characteristics for find_service_by_ch. It returns the
// assigned index.
func (r *Registry) Add(svc *Service) int {
	svc.reg = r
	svc.Index = len(r.services)
	r.services = append(r.services, svc)
	for _, c := range svc.Chars {
		r.byChar[c] = svc.Index
	}
	return svc.Index
}

// BorrowChar records that characteristic c, owned by owner's last slot,
// is borrowed by a different logical lookup target (data-history
// services borrow the target characteristic as their last slot; spec.md
// §3 Invariants).
func (r *Registry) BorrowChar(c *Characteristic, byService int) {
	r.byChar[c] = byService
}

// Service returns the service at absolute index idx, or nil if out of range.
func (r *Registry) Service(idx int) *Service {
	if idx <= 0 || idx >= len(r.services) {
		return nil
	}
	return r.services[idx]
}

// Len returns the number of registered services (not counting the unused
// index 0 slot).
func (r *Registry) Len() int { return len(r.services) - 1 }

// All iterates every registered service in index order.
func (r *Registry) All() []*Service { return r.services[1:] }

// FindServiceByChar returns the unique owning service index for a
// characteristic pointer, or 0 if unknown.
func (r *Registry) FindServiceByChar(c *Characteristic) int {
	return r.byChar[c]
}

// Char resolves (serviceIdx, chIdx) to a Characteristic pointer, or nil.
func (r *Registry) Char(serviceIdx, chIdx int) *Characteristic {
	s := r.Service(serviceIdx)
	if s == nil || chIdx < 0 || chIdx >= len(s.Chars) {
		return nil
	}
	return s.Chars[chIdx]
}
