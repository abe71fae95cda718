package spatial

import (
	"sync"

	"github.com/dhconnelly/rtreego"
)

// EntityKind tags what a point in the index refers to
type EntityKind string

const (
	KindPlayer EntityKind = "player"
	KindEvent  EntityKind = "event"
	KindFriend EntityKind = "friend"
	KindPolice EntityKind = "police"
)

// EntityRef is one geolocated map entity registered in the viewport index
type EntityRef struct {
	Kind      EntityKind `json:"kind"`
	ID        string     `json:"id"`
	Latitude  float64    `json:"latitude"`
	Longitude float64    `json:"longitude"`
}

// pointExtent gives point entities a tiny footprint so the R-tree can
// index them as rectangles
const pointExtent = 0.0001

// Bounds implements the rtreego.Spatial interface
func (e *EntityRef) Bounds() rtreego.Rect {
	rect, _ := rtreego.NewRect(
		rtreego.Point{e.Longitude, e.Latitude},
		[]float64{pointExtent, pointExtent},
	)
	return rect
}

// Index is an R-tree over the current map entities, rebuilt after every
// applied sync cycle. Read side serves viewport (bounding box) queries for
// rendering.
type Index struct {
	mu   sync.RWMutex
	tree *rtreego.Rtree
}

// NewIndex creates an empty viewport index
func NewIndex() *Index {
	return &Index{
		tree: rtreego.NewTree(2, 25, 50), // 2D index with min 25, max 50 entries per node
	}
}

// Rebuild replaces the index contents with the given entities
func (i *Index) Rebuild(entities []EntityRef) {
	tree := rtreego.NewTree(2, 25, 50)
	for idx := range entities {
		tree.Insert(&entities[idx])
	}

	i.mu.Lock()
	i.tree = tree
	i.mu.Unlock()
}

// Search returns every entity intersecting the given viewport
func (i *Index) Search(minLat, minLng, maxLat, maxLng float64) []EntityRef {
	i.mu.RLock()
	defer i.mu.RUnlock()

	searchRect, err := rtreego.NewRect(
		rtreego.Point{minLng, minLat},
		[]float64{maxLng - minLng, maxLat - minLat},
	)
	if err != nil {
		return nil
	}

	results := i.tree.SearchIntersect(searchRect)
	out := make([]EntityRef, 0, len(results))
	for _, item := range results {
		out = append(out, *item.(*EntityRef))
	}
	return out
}

// Size returns the number of indexed entities
func (i *Index) Size() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.tree.Size()
}
