package engine

// registry holds the three indexed relations spec §3/§9 call for: the
// working-orders set, the atomic parent→children map, and the symmetric
// OCO pair map. Membership in these maps is the single source of truth;
// there are no back-pointers on Order itself.
type registry struct {
	working        *orderedMap[*Order]
	atomicChildren map[string][]*Order
	ocoPairs       map[string]string
}

func newRegistry() *registry {
	return &registry{
		working:        newOrderedMap[*Order](),
		atomicChildren: make(map[string][]*Order),
		ocoPairs:       make(map[string]string),
	}
}

func (r *registry) addWorking(o *Order) {
	r.working.Set(o.ID, o)
}

func (r *registry) removeWorking(id string) {
	r.working.Delete(id)
}

func (r *registry) getWorking(id string) (*Order, bool) {
	return r.working.Get(id)
}

// snapshotWorking returns the ids currently in the working set, in
// insertion order, as of this call. The matching loop iterates this fixed
// snapshot even if it mutates the working set mid-iteration (spec §4.1).
func (r *registry) snapshotWorking() []string {
	return r.working.Snapshot()
}

func (r *registry) setAtomicChildren(parentID string, children []*Order) {
	r.atomicChildren[parentID] = children
}

func (r *registry) atomicChildrenOf(parentID string) ([]*Order, bool) {
	c, ok := r.atomicChildren[parentID]
	return c, ok
}

// cleanUpChildren erases a parent's child list once its children have been
// released (submitted), per spec §4.4. Any OCO link between them is left
// alone here — they are about to be submitted as working orders and must
// stay paired.
func (r *registry) cleanUpChildren(parentID string) {
	delete(r.atomicChildren, parentID)
}

// discardChildren erases a parent's still-pending child list for a parent
// that will never release them (rejected or expired before ever filling),
// removing any OCO linkage between the two children first so no orphaned
// pairing survives the two orders that formed it (spec §4.4's
// rejection/expiry cascade).
func (r *registry) discardChildren(parentID string) {
	if children, ok := r.atomicChildren[parentID]; ok && len(children) > 0 {
		r.unlinkOCO(children[0].ID)
	}
	delete(r.atomicChildren, parentID)
}

// findPendingChild searches every atomic parent's still-registered child
// list for an order with the given id — a bracket child that has not been
// submitted yet, because releaseChildren has not reached it.
func (r *registry) findPendingChild(id string) (*Order, bool) {
	for _, children := range r.atomicChildren {
		for _, c := range children {
			if c.ID == id {
				return c, true
			}
		}
	}
	return nil, false
}

// linkOCO records a symmetric pairing: both a→b and b→a.
func (r *registry) linkOCO(a, b string) {
	r.ocoPairs[a] = b
	r.ocoPairs[b] = a
}

// unlinkOCO erases both directions of a's pairing (if any) and returns the
// partner id.
func (r *registry) unlinkOCO(id string) (partner string, had bool) {
	partner, had = r.ocoPairs[id]
	if !had {
		return "", false
	}
	delete(r.ocoPairs, id)
	delete(r.ocoPairs, partner)
	return partner, true
}

func (r *registry) ocoPartner(id string) (string, bool) {
	p, ok := r.ocoPairs[id]
	return p, ok
}
