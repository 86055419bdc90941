package l3clusters

import (
	"fmt"

	"github.com/banshee-data/particleflow/internal/pflow/l1geometry"
	"github.com/banshee-data/particleflow/internal/pflow/l2hits"
)

// ClusterID is a handle into an Arena. Slots are never reused, so a handle
// to a removed cluster never resolves again.
type ClusterID struct {
	index uint32
}

// String implements fmt.Stringer.
func (id ClusterID) String() string {
	return fmt.Sprintf("c%d", id.index)
}

type slotState uint8

const (
	slotFree slotState = iota
	slotLive
)

type slot struct {
	cluster *Cluster
	state   slotState
}

// Arena owns the clusters of one event. Slots are append-only, so iteration
// visits live clusters in creation order.
type Arena struct {
	slots []slot
	live  int
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{}
}

// Insert adds a cluster and returns its handle.
func (a *Arena) Insert(c *Cluster) ClusterID {
	a.live++
	a.slots = append(a.slots, slot{cluster: c, state: slotLive})
	return ClusterID{index: uint32(len(a.slots) - 1)}
}

// Get resolves a handle.
func (a *Arena) Get(id ClusterID) (*Cluster, bool) {
	if int(id.index) >= len(a.slots) {
		return nil, false
	}
	s := &a.slots[id.index]
	if s.state != slotLive {
		return nil, false
	}
	return s.cluster, true
}

// Remove deletes a cluster, releasing its hits, and returns the released hits.
func (a *Arena) Remove(id ClusterID) ([]*l2hits.CaloHit, error) {
	c, ok := a.Get(id)
	if !ok {
		return nil, fmt.Errorf("cluster %v: %w", id, l1geometry.ErrNotFound)
	}
	released, err := c.Dissolve()
	if err != nil {
		return nil, fmt.Errorf("cluster %v: %w", id, err)
	}

	s := &a.slots[id.index]
	s.cluster = nil
	s.state = slotFree
	a.live--
	return released, nil
}

// Len returns the number of live clusters.
func (a *Arena) Len() int {
	return a.live
}

// Live returns the handles of all live clusters in creation order.
func (a *Arena) Live() []ClusterID {
	ids := make([]ClusterID, 0, a.live)
	for i := range a.slots {
		if a.slots[i].state == slotLive {
			ids = append(ids, ClusterID{index: uint32(i)})
		}
	}
	return ids
}

// Each calls fn for every live cluster in creation order until fn returns false.
// fn may remove the cluster it is given but must not insert.
func (a *Arena) Each(fn func(id ClusterID, c *Cluster) bool) {
	for i := range a.slots {
		s := &a.slots[i]
		if s.state != slotLive {
			continue
		}
		if !fn(ClusterID{index: uint32(i)}, s.cluster) {
			return
		}
	}
}

// Clusters returns the live clusters in creation order.
func (a *Arena) Clusters() []*Cluster {
	out := make([]*Cluster, 0, a.live)
	a.Each(func(_ ClusterID, c *Cluster) bool {
		out = append(out, c)
		return true
	})
	return out
}
