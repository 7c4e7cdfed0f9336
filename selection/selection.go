// Copyright (c) 2019-2021 The mirrorselect authors
// Licensed under the MIT license

package selection

import (
	"github.com/op/go-logging"

	. "github.com/openmirrors/mirrorselect/config"
	"github.com/openmirrors/mirrorselect/mirrors"
	"github.com/openmirrors/mirrorselect/network"
	"github.com/openmirrors/mirrorselect/utils"
)

var (
	log = logging.MustGetLogger("main")
)

// MirrorSelection is the interface of a selection engine.
// Selection must return an ordered list of selected mirrors
// for a client located at clientInfo. The input list contains
// only operational mirrors and is owned by the engine.
type MirrorSelection interface {
	Selection(mlist mirrors.Mirrors, clientInfo network.GeoIPRecord) mirrors.Mirrors
}

// Filter removes the mirrors that cannot be part of a selection.
// It returns the accepted mirrors in catalog order and the rejected
// ones with their exclude reason. Filtering happens once, ahead of
// tier partitioning, so the tier caps only count eligible mirrors.
func Filter(mlist mirrors.Mirrors) (accepted mirrors.Mirrors, excluded mirrors.Mirrors) {
	accepted = make(mirrors.Mirrors, 0, len(mlist))
	for _, m := range mlist {
		// Does it have an address?
		if !m.HasAddress() {
			m.ExcludeReason = "No address"
			excluded = append(excluded, m)
			continue
		}
		// Is it operational?
		if !m.IsOperational() {
			if m.Status == mirrors.StatusExpired {
				m.ExcludeReason = "Expired"
			} else {
				m.ExcludeReason = "Not operational"
			}
			excluded = append(excluded, m)
			continue
		}
		accepted = append(accepted, m)
	}
	return
}

// DefaultEngine is the default algorithm used for mirror selection.
// The eligible mirrors are partitioned into three disjoint tiers
// relative to the client location:
//   - country: same country code
//   - region: same continent, different country
//   - world: everything else
// Each tier is ranked by distance and capped, then the tiers are
// concatenated in that order and the result is capped again. A tier
// is never refilled from a later tier to compensate for shortfall.
type DefaultEngine struct{}

// Selection implements the MirrorSelection interface
func (h DefaultEngine) Selection(mlist mirrors.Mirrors, clientInfo network.GeoIPRecord) mirrors.Mirrors {
	max := GetConfig().MaxResults

	country := make(mirrors.Mirrors, 0, len(mlist))
	region := make(mirrors.Mirrors, 0, len(mlist))
	world := make(mirrors.Mirrors, 0, len(mlist))

	for _, m := range mlist {
		switch {
		case clientInfo.CountryCode != "" && m.CountryCode == clientInfo.CountryCode:
			m.Tier = mirrors.TierCountry
			country = append(country, m)
		case clientInfo.ContinentCode != "" && m.ContinentCode == clientInfo.ContinentCode:
			m.Tier = mirrors.TierRegion
			region = append(region, m)
		default:
			m.Tier = mirrors.TierWorld
			world = append(world, m)
		}
	}

	country = truncate(Rank(country, clientInfo), max)
	region = truncate(Rank(region, clientInfo), max)
	world = truncate(Rank(world, clientInfo), max)

	selected := make(mirrors.Mirrors, 0, len(country)+len(region)+len(world))
	selected = append(selected, country...)
	selected = append(selected, region...)
	selected = append(selected, world...)

	return truncate(selected, max)
}

func truncate(mlist mirrors.Mirrors, max int) mirrors.Mirrors {
	return mlist[:utils.Min(max, len(mlist))]
}
