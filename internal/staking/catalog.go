package staking

import (
	"github.com/chukwumela909/project-bolt/pkg/types"
)

// Catalog maps plan identifiers to their terms. A Catalog is read-only after construction.
type Catalog struct {
	plans []types.Plan
	byID  map[string]int
}

// NewCatalog builds a catalog preserving the given order. Later duplicates
// of an id are ignored.
func NewCatalog(plans []types.Plan) *Catalog {
	c := &Catalog{
		plans: make([]types.Plan, 0, len(plans)),
		byID:  make(map[string]int, len(plans)),
	}
	for _, p := range plans {
		if _, dup := c.byID[p.ID]; dup {
			continue
		}
		c.byID[p.ID] = len(c.plans)
		c.plans = append(c.plans, p)
	}
	return c
}

// DefaultCatalog returns the catalog of published plans.
func DefaultCatalog() *Catalog {
	return NewCatalog(types.DefaultPlans())
}

// Plans returns a copy of the plans in catalog order.
func (c *Catalog) Plans() []types.Plan {
	out := make([]types.Plan, len(c.plans))
	copy(out, c.plans)
	return out
}

// Len returns the number of plans.
func (c *Catalog) Len() int {
	return len(c.plans)
}

// Lookup returns the plan with the given id.
func (c *Catalog) Lookup(id string) (types.Plan, bool) {
	i, ok := c.byID[id]
	if !ok {
		return types.Plan{}, false
	}
	return c.plans[i], true
}

// PlanName returns the display name for id, or id itself when unknown.
func (c *Catalog) PlanName(id string) string {
	if p, ok := c.Lookup(id); ok {
		return p.Name
	}
	return id
}

// Merge returns a catalog with c's plans followed by any plans of fallback
// that c does not already know. Used so stakes under retired plans keep a name.
func (c *Catalog) Merge(fallback *Catalog) *Catalog {
	if fallback == nil {
		return c
	}
	all := append(c.Plans(), fallback.plans...)
	return NewCatalog(all)
}
