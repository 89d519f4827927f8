package service

import (
	"github.com/pierregarcia1/construction-aggregator/internal/core/domain"
	"github.com/pierregarcia1/construction-aggregator/internal/core/port"
)

type Registration struct {
	ID     string
	Vendor port.Vendor
}

// A Registry maps vendor ids to vendors.
//
// Register is meant for process startup only. Once requests are served
// the registry is read concurrently without locking.
type Registry struct {
	vendors map[string]port.Vendor
	order   []string
}

func NewRegistry() *Registry {
	return &Registry{vendors: make(map[string]port.Vendor)}
}

// Register adds v under id, replacing any vendor already registered there.
func (r *Registry) Register(id string, v port.Vendor) {
	if v == nil {
		panic("service.Registry.Register: nil vendor " + id) // develop mistake
	}
	if _, ok := r.vendors[id]; !ok {
		r.order = append(r.order, id)
	}
	r.vendors[id] = v
}

func (r *Registry) Get(id string) (port.Vendor, bool) {
	v, ok := r.vendors[id]
	return v, ok
}

// ListAvailable returns the vendors reporting available right now,
// in registration order.
func (r *Registry) ListAvailable() []Registration {
	var regs []Registration
	for _, id := range r.order {
		v := r.vendors[id]
		if v.IsAvailable() {
			regs = append(regs, Registration{id, v})
		}
	}
	return regs
}

func (r *Registry) IDs() []string {
	ids := make([]string, len(r.order))
	copy(ids, r.order)
	return ids
}

func (r *Registry) Info() []domain.VendorInfo {
	infos := make([]domain.VendorInfo, 0, len(r.order))
	for _, id := range r.order {
		v := r.vendors[id]
		infos = append(infos, domain.VendorInfo{
			ID:        id,
			Name:      v.Name(),
			Logo:      v.Logo(),
			Available: v.IsAvailable(),
		})
	}
	return infos
}
