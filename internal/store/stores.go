package store

import (
	"github.com/chukwumela909/project-bolt/pkg/types"
)

// Stores groups the three independent containers the dashboard reads.
type Stores struct {
	User   *Container[*types.User]
	Stakes *Container[[]types.StakeRecord]
	Plans  *Container[[]types.Plan]
}

// New creates empty stores.
func New() *Stores {
	return &Stores{
		User:   NewContainer[*types.User]("user"),
		Stakes: NewContainer[[]types.StakeRecord]("stakes"),
		Plans:  NewContainer[[]types.Plan]("plans"),
	}
}

// Reset clears the per-account containers. The plan catalog is not
// account specific and survives.
func (s *Stores) Reset() {
	s.User.Reset()
	s.Stakes.Reset()
}
