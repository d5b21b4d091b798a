package checkout

import "sync"

// Registry tracks live confirmations by bill id so HTTP handlers and the
// gateway return flow can find the session a decision belongs to. Entries
// drop out on any terminal transition.
type Registry struct {
	mu    sync.RWMutex
	items map[string]*Confirmation
}

func NewRegistry() *Registry {
	return &Registry{items: make(map[string]*Confirmation)}
}

func (r *Registry) Add(c *Confirmation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[c.order.BillID] = c
}

func (r *Registry) Get(billID string) (*Confirmation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.items[billID]
	if !ok {
		return nil, ErrPendingOrderNotFound
	}
	return c, nil
}

func (r *Registry) Remove(billID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, billID)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}
