// Copyright (c) 2019-2021 The mirrorselect authors
// Licensed under the MIT license

package selection

import (
	"sort"

	"github.com/openmirrors/mirrorselect/mirrors"
	"github.com/openmirrors/mirrorselect/network"
	"github.com/openmirrors/mirrorselect/utils"
)

// Rank orders the given mirrors by their great-circle distance to the
// client. Mirrors without coordinates sort after every geolocated
// mirror, keeping their relative catalog order. If the client location
// carries no coordinates the list is returned unchanged, the catalog
// order is the only meaningful ranking left.
//
// Mirrors at equal distance (within mirrors.DistanceEpsilonKm) are
// ordered by hostname so that identical inputs always yield identical
// output ordering.
func Rank(mlist mirrors.Mirrors, clientInfo network.GeoIPRecord) mirrors.Mirrors {
	if !clientInfo.HasCoordinates() {
		return mlist
	}

	for i := range mlist {
		if mlist[i].HasCoordinates() {
			mlist[i].Distance = utils.GetDistanceKm(clientInfo.Latitude,
				clientInfo.Longitude,
				mlist[i].Latitude,
				mlist[i].Longitude)
		} else {
			mlist[i].Distance = 0
		}
	}

	sort.Stable(mirrors.ByDistance{Mirrors: mlist})

	return mlist
}
