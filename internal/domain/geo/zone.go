package geo

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// DefaultZoneID is the zone whose box is used for unknown zone IDs.
const DefaultZoneID = "ZN003"

var ErrUnknownDefaultZone = errors.New("default zone is not in the zone table")

// builtinZones are the collection zones of the Pune deployment.
var builtinZones = map[string]BoundingBox{
	"ZN001": MustBoundingBox(18.56, 18.60, 73.78, 73.83), // North
	"ZN002": MustBoundingBox(18.48, 18.52, 73.92, 73.96), // South
	"ZN003": MustBoundingBox(18.55, 18.58, 73.91, 73.95), // East
	"ZN004": MustBoundingBox(18.48, 18.52, 73.82, 73.88), // West
	"ZN005": MustBoundingBox(18.51, 18.54, 73.84, 73.87), // Central
}

// ZoneTable maps zone IDs to bounding boxes. It is immutable after construction
// and safe for concurrent use.
type ZoneTable struct {
	zones     map[string]BoundingBox
	defaultID string
}

// DefaultZones returns the built-in table with ZN003 as the fallback.
func DefaultZones() *ZoneTable {
	t, _ := NewZoneTable(builtinZones, DefaultZoneID)
	return t
}

// NewZoneTable copies zones and checks that defaultID is one of them.
func NewZoneTable(zones map[string]BoundingBox, defaultID string) (*ZoneTable, error) {
	defaultID = strings.TrimSpace(defaultID)
	cp := make(map[string]BoundingBox, len(zones))
	for id, box := range zones {
		cp[strings.TrimSpace(id)] = box
	}
	if _, ok := cp[defaultID]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDefaultZone, defaultID)
	}
	return &ZoneTable{zones: cp, defaultID: defaultID}, nil
}

// Merge returns a new table with overrides applied on top of t.
func (t *ZoneTable) Merge(overrides map[string]BoundingBox, defaultID string) (*ZoneTable, error) {
	merged := make(map[string]BoundingBox, len(t.zones)+len(overrides))
	for id, box := range t.zones {
		merged[id] = box
	}
	for id, box := range overrides {
		merged[id] = box
	}
	if strings.TrimSpace(defaultID) == "" {
		defaultID = t.defaultID
	}
	return NewZoneTable(merged, defaultID)
}

// Lookup returns the box registered for zoneID.
func (t *ZoneTable) Lookup(zoneID string) (BoundingBox, bool) {
	box, ok := t.zones[strings.TrimSpace(zoneID)]
	return box, ok
}

// Bounds returns the box for zoneID, or the default box for unknown zones.
func (t *ZoneTable) Bounds(zoneID string) BoundingBox {
	if box, ok := t.Lookup(zoneID); ok {
		return box
	}
	return t.zones[t.defaultID]
}

func (t *ZoneTable) DefaultID() string { return t.defaultID }

// IDs returns the registered zone IDs in sorted order.
func (t *ZoneTable) IDs() []string {
	ids := make([]string, 0, len(t.zones))
	for id := range t.zones {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
