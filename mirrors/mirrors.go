// Copyright (c) 2019-2021 The mirrorselect authors
// Licensed under the MIT license

package mirrors

import (
	"strings"

	"github.com/openmirrors/mirrorselect/utils"
)

// Operational statuses reported by the catalog ingestion job.
// Anything else is an unknown state and is treated as non-operational.
const (
	StatusOK      = "ok"
	StatusExpired = "expired"
)

// Mirrors closer than this are considered at equal distance
// and are ordered by hostname instead.
const DistanceEpsilonKm = 1e-6

// Tier is the partition a mirror was selected from, relative
// to the location of the requesting client.
type Tier uint

const (
	TierNone Tier = iota
	TierCountry
	TierRegion
	TierWorld
)

func (t Tier) String() string {
	switch t {
	case TierCountry:
		return "country"
	case TierRegion:
		return "region"
	case TierWorld:
		return "world"
	default:
		return "none"
	}
}

// Mirror is the structure representing all the information about a mirror
type Mirror struct {
	Name            string  `yaml:"Name"`
	HttpURL         string  `yaml:"HttpURL"`
	HttpsURL        string  `yaml:"HttpsURL"`
	RsyncURL        string  `yaml:"RsyncURL"`
	SponsorName     string  `yaml:"SponsorName"`
	SponsorURL      string  `yaml:"SponsorURL"`
	Email           string  `yaml:"Email"`
	UpdateFrequency string  `yaml:"UpdateFrequency"`
	CountryCode     string  `yaml:"CountryCode"`
	ContinentCode   string  `yaml:"ContinentCode"`
	Latitude        float32 `yaml:"Latitude"`
	Longitude       float32 `yaml:"Longitude"`
	Status          string  `yaml:"Status"`

	Distance      float32 `yaml:"-"`
	Tier          Tier    `yaml:"-" json:",omitempty"`
	ExcludeReason string  `yaml:"-" json:",omitempty"`
}

// Prepare must be called after ingestion to reformat some values
func (m *Mirror) Prepare() {
	m.HttpURL = utils.NormalizeURL(m.HttpURL)
	m.HttpsURL = utils.NormalizeURL(m.HttpsURL)
	m.RsyncURL = utils.NormalizeURL(m.RsyncURL)
	m.CountryCode = strings.ToUpper(m.CountryCode)
	m.ContinentCode = strings.ToUpper(m.ContinentCode)
}

// HasAddress returns true if the mirror has at least one address
func (m *Mirror) HasAddress() bool {
	return m.HttpsURL != "" || m.HttpURL != "" || m.RsyncURL != ""
}

// HasCoordinates returns true if the mirror is geolocated.
// Mirrors without geolocation carry zero coordinates.
func (m *Mirror) HasCoordinates() bool {
	return m.Latitude != 0 || m.Longitude != 0
}

// IsOperational returns true if the mirror can be part of a selection
func (m *Mirror) IsOperational() bool {
	return m.Status == StatusOK
}

// IsHTTPS returns true if the mirror has an HTTPS address
func (m *Mirror) IsHTTPS() bool {
	return m.HttpsURL != ""
}

// Mirrors represents a slice of Mirror
type Mirrors []Mirror

// Len return the number of Mirror in the slice
func (s Mirrors) Len() int { return len(s) }

// Swap swaps mirrors at index i and j
func (s Mirrors) Swap(i, j int) { s[i], s[j] = s[j], s[i] }

// ByDistance is used to sort a slice of Mirror by their distance to
// the client. It must be used with a stable sort so that mirrors
// without coordinates keep their catalog order, after every
// geolocated mirror.
type ByDistance struct {
	Mirrors
}

// Less compares two mirrors based on their distance
func (b ByDistance) Less(i, j int) bool {
	mi, mj := &b.Mirrors[i], &b.Mirrors[j]
	if !mi.HasCoordinates() || !mj.HasCoordinates() {
		return mi.HasCoordinates() && !mj.HasCoordinates()
	}
	d := mi.Distance - mj.Distance
	if d < 0 {
		d = -d
	}
	if d <= DistanceEpsilonKm {
		return mi.Name < mj.Name
	}
	return mi.Distance < mj.Distance
}
