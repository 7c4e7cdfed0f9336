// Copyright (c) 2019-2021 The mirrorselect authors
// Licensed under the MIT license

package network

import (
	"net"
	"os"
	"strings"
	"time"

	"github.com/op/go-logging"
	"github.com/oschwald/maxminddb-golang"

	"github.com/openmirrors/mirrorselect/config"
)

var (
	log = logging.MustGetLogger("main")
)

const (
	geoipUpdatedExt = ".updated"
	cityDBFilename  = "city.mmdb"
)

type database interface {
	Lookup(ipAddress net.IP, result interface{}) error
}

type geoipDB struct {
	filename string
	modTime  time.Time
	db       database
}

// GeoIP contains methods to query the GeoIP database
type GeoIP struct {
	city *geoipDB
}

// GeoIPRecord defines a GeoIP record for a given IP address.
// A zero record means the address could not be classified at all.
type GeoIPRecord struct {
	City          string
	CountryCode   string
	ContinentCode string
	Latitude      float32
	Longitude     float32
}

// IsValid returns true if the record was resolved to a location
func (g *GeoIPRecord) IsValid() bool {
	return g.CountryCode != "" || g.ContinentCode != ""
}

// HasCoordinates returns true if the record carries usable coordinates.
// Some addresses resolve to a country without a precise position.
func (g *GeoIPRecord) HasCoordinates() bool {
	return g.Latitude != 0 || g.Longitude != 0
}

// NewGeoIP instanciates a new instance of GeoIP
func NewGeoIP() *GeoIP {
	return &GeoIP{}
}

// Open the GeoIP database
func (g *GeoIP) openDatabase(file string) (*geoipDB, error) {
	dbpath := config.GetConfig().GeoipDatabasePath
	if len(dbpath) > 0 && dbpath[len(dbpath)-1] != '/' {
		dbpath += "/"
	}

	filename := dbpath + file

	if _, err := os.Stat(filename + geoipUpdatedExt); !os.IsNotExist(err) {
		filename += geoipUpdatedExt
	}

	db, err := maxminddb.Open(filename)
	if err != nil {
		return nil, err
	}

	var modTime time.Time
	if fi, err := os.Stat(filename); err == nil {
		modTime = fi.ModTime()
	}

	return &geoipDB{
		filename: filename,
		modTime:  modTime,
		db:       db,
	}, nil
}

// LoadGeoIP loads the GeoIP city database into memory
func (g *GeoIP) LoadGeoIP() error {
	city, err := g.openDatabase(cityDBFilename)
	if err != nil {
		log.Critical("Could not open the GeoIP city database: %s", err.Error())
		return err
	}
	g.city = city
	return nil
}

type cityDb struct {
	City struct {
		Names map[string]string `maxminddb:"names"`
	} `maxminddb:"city"`
	Country struct {
		IsoCode string `maxminddb:"iso_code"`
	} `maxminddb:"country"`
	Continent struct {
		Code string `maxminddb:"code"`
	} `maxminddb:"continent"`
	Location struct {
		Latitude  float64 `maxminddb:"latitude"`
		Longitude float64 `maxminddb:"longitude"`
	} `maxminddb:"location"`
}

// GetRecord returns the geolocation of the given ip address
// (might be v4 or v6). An unclassified address yields a zero
// record, never an error.
func (g *GeoIP) GetRecord(ip string) (ret GeoIPRecord) {
	addr := net.ParseIP(ip)
	if addr == nil {
		return ret
	}
	if g.city == nil || g.city.db == nil {
		return ret
	}

	var c cityDb
	if err := g.city.db.Lookup(addr, &c); err != nil {
		log.Warning("GeoIP lookup failed for %s: %s", ip, err.Error())
		return ret
	}

	ret.City = c.City.Names["en"]
	ret.CountryCode = c.Country.IsoCode
	ret.ContinentCode = c.Continent.Code
	ret.Latitude = float32(c.Location.Latitude)
	ret.Longitude = float32(c.Location.Longitude)
	return ret
}

// IsIPv6 returns true if the given address is of version 6
func (g *GeoIP) IsIPv6(ip string) bool {
	return strings.Contains(ip, ":")
}
