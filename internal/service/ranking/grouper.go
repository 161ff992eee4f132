package ranking

import (
	"time"

	"livejourney/internal/domain/hotplace"
	"livejourney/internal/service/geo"
)

// PlaceGroup is the set of observations sharing one place key within a single pass
type PlaceGroup struct {
	Key     string
	Members []hotplace.Observation
	Center  hotplace.Coordinates
}

// GroupObservations partitions observations with valid coordinates by exact place key.
// Groups are returned in order of first appearance of their key.
func GroupObservations(now time.Time, observations []hotplace.Observation, activityWindow time.Duration) []PlaceGroup {
	index := make(map[string]int)
	var groups []PlaceGroup

	for _, o := range observations {
		if !o.HasCoordinates() {
			continue
		}

		key := o.PlaceKey()
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, PlaceGroup{Key: key})
		}
		groups[i].Members = append(groups[i].Members, o)
	}

	for i := range groups {
		groups[i].Center = groupCenter(now, groups[i].Members, activityWindow)
	}

	return groups
}

// groupCenter averages members inside the activity window, falling back to all members
func groupCenter(now time.Time, members []hotplace.Observation, activityWindow time.Duration) hotplace.Coordinates {
	all := make([]hotplace.Coordinates, 0, len(members))
	var recent []hotplace.Coordinates

	for _, m := range members {
		all = append(all, *m.Coordinates)
		if withinWindow(now, m.Timestamp, activityWindow) {
			recent = append(recent, *m.Coordinates)
		}
	}

	if c, ok := geo.Centroid(recent); ok {
		return c
	}
	c, _ := geo.Centroid(all)
	return c
}
