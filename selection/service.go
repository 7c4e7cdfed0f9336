// Copyright (c) 2019-2021 The mirrorselect authors
// Licensed under the MIT license

package selection

import (
	"time"

	. "github.com/openmirrors/mirrorselect/config"
	"github.com/openmirrors/mirrorselect/mirrors"
	"github.com/openmirrors/mirrorselect/network"
)

// GeoResolver is the capability used to geolocate a client address.
// Implementations must return a zero record when the address cannot
// be classified.
type GeoResolver interface {
	GetRecord(ip string) network.GeoIPRecord
}

// Results is the resulting struct of a selection request and is used
// by the callers to generate the final response.
type Results struct {
	IP           string
	ClientInfo   network.GeoIPRecord
	MirrorList   mirrors.Mirrors
	ExcludedList mirrors.Mirrors `json:",omitempty"`
	Fallback     bool            `json:",omitempty"`
}

// Service orchestrates a single selection request: geolocation of the
// client, tiered selection against the current catalog snapshot and
// the optional selection cache.
type Service struct {
	catalog *mirrors.Catalog
	geo     GeoResolver
	cache   *Cache
	engine  MirrorSelection
}

// NewService constructs a selection service. The cache may be nil to
// disable caching. A nil engine selects the DefaultEngine.
func NewService(catalog *mirrors.Catalog, geo GeoResolver, cache *Cache, engine MirrorSelection) *Service {
	if engine == nil {
		engine = DefaultEngine{}
	}
	return &Service{
		catalog: catalog,
		geo:     geo,
		cache:   cache,
		engine:  engine,
	}
}

// Select returns the ordered list of mirrors for the given client IP.
// The catalog is never mutated and a single snapshot reference is used
// for the whole request. A geolocation failure degrades to the full
// mirror list, it never fails the request.
func (s *Service) Select(ip string) *Results {
	ttl := GetConfig().CacheTTL

	if s.cache != nil && ttl > 0 {
		if mlist, err := s.cache.GetSelection(ip); err == nil {
			return &Results{
				IP:         ip,
				MirrorList: mlist,
			}
		}
	}

	clientInfo := s.resolve(ip)

	accepted, excluded := Filter(s.catalog.Snapshot())

	results := &Results{
		IP:         ip,
		ClientInfo: clientInfo,
	}

	if !clientInfo.IsValid() {
		// We can't tell where the client is, return the full list
		// of operational mirrors in catalog order, uncapped.
		results.MirrorList = accepted
		results.Fallback = true
	} else {
		results.MirrorList = s.engine.Selection(accepted, clientInfo)
	}
	results.ExcludedList = excluded

	if s.cache != nil && ttl > 0 {
		if err := s.cache.SetSelection(ip, results.MirrorList, ttl); err != nil {
			log.Warning("Cannot cache the selection for %s: %s", ip, err.Error())
		}
	}

	return results
}

// resolve geolocates the client with a bounded timeout. On timeout the
// client is treated as unresolved and the lookup result is discarded.
func (s *Service) resolve(ip string) network.GeoIPRecord {
	timeout := time.Duration(GetConfig().LocatorTimeout) * time.Millisecond
	if timeout <= 0 {
		return s.geo.GetRecord(ip)
	}

	result := make(chan network.GeoIPRecord, 1)
	go func() {
		result <- s.geo.GetRecord(ip)
	}()

	select {
	case r := <-result:
		return r
	case <-time.After(timeout):
		log.Warning("Geolocation of %s timed out after %s", ip, timeout)
		return network.GeoIPRecord{}
	}
}
