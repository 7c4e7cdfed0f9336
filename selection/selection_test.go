// Copyright (c) 2019-2021 The mirrorselect authors
// Licensed under the MIT license

package selection

import (
	"encoding/json"
	"fmt"
	"reflect"
	"testing"

	. "github.com/openmirrors/mirrorselect/config"
	"github.com/openmirrors/mirrorselect/mirrors"
	"github.com/openmirrors/mirrorselect/network"
)

// cairoClient is a client resolved to Cairo, Egypt
var cairoClient = network.GeoIPRecord{
	City:          "Cairo",
	CountryCode:   "EG",
	ContinentCode: "AF",
	Latitude:      30.0444,
	Longitude:     31.2357,
}

// egyptCatalog returns 4 mirrors in Egypt, 5 in Africa outside of
// Egypt and 95 in the rest of the world. The Athens mirror is the
// closest mirror outside of Africa by a wide margin.
func egyptCatalog() mirrors.Mirrors {
	mlist := mirrors.Mirrors{
		mirrors.Mirror{Name: "alexandria.mirror", HttpsURL: "https://alexandria.mirror/", CountryCode: "EG", ContinentCode: "AF", Latitude: 31.2001, Longitude: 29.9187, Status: mirrors.StatusOK},
		mirrors.Mirror{Name: "cairo.mirror", HttpsURL: "https://cairo.mirror/", CountryCode: "EG", ContinentCode: "AF", Latitude: 30.0561, Longitude: 31.2394, Status: mirrors.StatusOK},
		mirrors.Mirror{Name: "aswan.mirror", HttpsURL: "https://aswan.mirror/", CountryCode: "EG", ContinentCode: "AF", Latitude: 24.0889, Longitude: 32.8998, Status: mirrors.StatusOK},
		mirrors.Mirror{Name: "luxor.mirror", HttpsURL: "https://luxor.mirror/", CountryCode: "EG", ContinentCode: "AF", Latitude: 25.6872, Longitude: 32.6396, Status: mirrors.StatusOK},

		mirrors.Mirror{Name: "tunis.mirror", HttpsURL: "https://tunis.mirror/", CountryCode: "TN", ContinentCode: "AF", Latitude: 36.8065, Longitude: 10.1815, Status: mirrors.StatusOK},
		mirrors.Mirror{Name: "nairobi.mirror", HttpsURL: "https://nairobi.mirror/", CountryCode: "KE", ContinentCode: "AF", Latitude: -1.2921, Longitude: 36.8219, Status: mirrors.StatusOK},
		mirrors.Mirror{Name: "lagos.mirror", HttpsURL: "https://lagos.mirror/", CountryCode: "NG", ContinentCode: "AF", Latitude: 6.5244, Longitude: 3.3792, Status: mirrors.StatusOK},
		mirrors.Mirror{Name: "johannesburg.mirror", HttpsURL: "https://johannesburg.mirror/", CountryCode: "ZA", ContinentCode: "AF", Latitude: -26.2041, Longitude: 28.0473, Status: mirrors.StatusOK},
		mirrors.Mirror{Name: "casablanca.mirror", HttpsURL: "https://casablanca.mirror/", CountryCode: "MA", ContinentCode: "AF", Latitude: 33.5731, Longitude: -7.5898, Status: mirrors.StatusOK},
	}

	mlist = append(mlist, mirrors.Mirror{
		Name: "athens.mirror", HttpsURL: "https://athens.mirror/",
		CountryCode: "GR", ContinentCode: "EU",
		Latitude: 37.9838, Longitude: 23.7275,
		Status: mirrors.StatusOK,
	})
	for i := 0; i < 94; i++ {
		mlist = append(mlist, mirrors.Mirror{
			Name:          fmt.Sprintf("us%02d.mirror", i),
			HttpsURL:      fmt.Sprintf("https://us%02d.mirror/", i),
			CountryCode:   "US",
			ContinentCode: "NA",
			Latitude:      30 + float32(i%15),
			Longitude:     -120 + float32(i)*0.3,
			Status:        mirrors.StatusOK,
		})
	}
	return mlist
}

func assertNoDuplicates(t *testing.T, mlist mirrors.Mirrors) {
	t.Helper()
	seen := map[string]struct{}{}
	for _, m := range mlist {
		if _, dup := seen[m.Name]; dup {
			t.Fatalf("Duplicate mirror %s in the selection", m.Name)
		}
		seen[m.Name] = struct{}{}
	}
}

func assertTierPattern(t *testing.T, mlist mirrors.Mirrors, pattern []mirrors.Tier) {
	t.Helper()
	if len(mlist) != len(pattern) {
		t.Fatalf("Expected %d mirrors, got %d", len(pattern), len(mlist))
	}
	for i, tier := range pattern {
		if mlist[i].Tier != tier {
			t.Fatalf("Index %d: expected tier %s, got %s", i, tier, mlist[i].Tier)
		}
	}
}

func TestSelection_tieredExample(t *testing.T) {
	SetConfiguration(&Configuration{
		MaxResults: 10,
	})

	accepted, excluded := Filter(egyptCatalog())
	if len(excluded) != 0 {
		t.Fatalf("Expected no excluded mirror, got %d", len(excluded))
	}

	mlist := DefaultEngine{}.Selection(accepted, cairoClient)

	// The documented E E E E A A A A A W pattern
	assertTierPattern(t, mlist, []mirrors.Tier{
		mirrors.TierCountry, mirrors.TierCountry, mirrors.TierCountry, mirrors.TierCountry,
		mirrors.TierRegion, mirrors.TierRegion, mirrors.TierRegion, mirrors.TierRegion, mirrors.TierRegion,
		mirrors.TierWorld,
	})
	assertNoDuplicates(t, mlist)

	// Country mirrors nearest-first from Cairo
	expected := []string{"cairo.mirror", "alexandria.mirror", "luxor.mirror", "aswan.mirror"}
	for i, name := range expected {
		if mlist[i].Name != name {
			t.Fatalf("Index %d: expected %s, got %s", i, name, mlist[i].Name)
		}
	}

	// The single world slot goes to the nearest mirror outside of Africa
	if mlist[9].Name != "athens.mirror" {
		t.Fatalf("Expected athens.mirror, got %s", mlist[9].Name)
	}
}

func TestSelection_emptyRegionTier(t *testing.T) {
	SetConfiguration(&Configuration{
		MaxResults: 10,
	})

	clientInfo := network.GeoIPRecord{
		CountryCode:   "XX",
		ContinentCode: "QQ",
		Latitude:      10,
		Longitude:     10,
	}

	mlist := mirrors.Mirrors{
		mirrors.Mirror{Name: "x1.mirror", HttpsURL: "https://x1.mirror/", CountryCode: "XX", ContinentCode: "QQ", Latitude: 10, Longitude: 11, Status: mirrors.StatusOK},
		mirrors.Mirror{Name: "x2.mirror", HttpsURL: "https://x2.mirror/", CountryCode: "XX", ContinentCode: "QQ", Latitude: 10, Longitude: 12, Status: mirrors.StatusOK},
	}
	for i := 0; i < 50; i++ {
		mlist = append(mlist, mirrors.Mirror{
			Name:          fmt.Sprintf("world%02d.mirror", i),
			HttpsURL:      fmt.Sprintf("https://world%02d.mirror/", i),
			CountryCode:   "US",
			ContinentCode: "NA",
			Latitude:      40 + float32(i%10),
			Longitude:     -100 - float32(i)*0.2,
			Status:        mirrors.StatusOK,
		})
	}

	selected := DefaultEngine{}.Selection(mlist, clientInfo)

	if len(selected) != 10 {
		t.Fatalf("Expected 10 mirrors, got %d", len(selected))
	}
	if selected[0].Name != "x1.mirror" || selected[1].Name != "x2.mirror" {
		t.Fatalf("Expected the country mirrors first, got %s, %s",
			selected[0].Name, selected[1].Name)
	}
	for i := 2; i < 10; i++ {
		if selected[i].Tier != mirrors.TierWorld {
			t.Fatalf("Index %d: expected tier world, got %s", i, selected[i].Tier)
		}
	}
}

func TestSelection_noPadding(t *testing.T) {
	SetConfiguration(&Configuration{
		MaxResults: 10,
	})

	mlist := mirrors.Mirrors{
		mirrors.Mirror{Name: "cairo.mirror", HttpsURL: "https://cairo.mirror/", CountryCode: "EG", ContinentCode: "AF", Latitude: 30.0561, Longitude: 31.2394, Status: mirrors.StatusOK},
		mirrors.Mirror{Name: "tunis.mirror", HttpsURL: "https://tunis.mirror/", CountryCode: "TN", ContinentCode: "AF", Latitude: 36.8065, Longitude: 10.1815, Status: mirrors.StatusOK},
		mirrors.Mirror{Name: "athens.mirror", HttpsURL: "https://athens.mirror/", CountryCode: "GR", ContinentCode: "EU", Latitude: 37.9838, Longitude: 23.7275, Status: mirrors.StatusOK},
	}

	selected := DefaultEngine{}.Selection(mlist, cairoClient)

	// Fewer than MaxResults eligible mirrors, never padded
	assertTierPattern(t, selected, []mirrors.Tier{
		mirrors.TierCountry, mirrors.TierRegion, mirrors.TierWorld,
	})
}

func TestSelection_capPerTier(t *testing.T) {
	SetConfiguration(&Configuration{
		MaxResults: 10,
	})

	var mlist mirrors.Mirrors
	for i := 0; i < 30; i++ {
		mlist = append(mlist, mirrors.Mirror{
			Name:          fmt.Sprintf("eg%02d.mirror", i),
			HttpsURL:      fmt.Sprintf("https://eg%02d.mirror/", i),
			CountryCode:   "EG",
			ContinentCode: "AF",
			Latitude:      22 + float32(i)*0.3,
			Longitude:     31,
			Status:        mirrors.StatusOK,
		})
	}

	selected := DefaultEngine{}.Selection(mlist, cairoClient)

	if len(selected) != 10 {
		t.Fatalf("Expected 10 mirrors, got %d", len(selected))
	}
	for i, m := range selected {
		if m.Tier != mirrors.TierCountry {
			t.Fatalf("Index %d: expected tier country, got %s", i, m.Tier)
		}
		if i > 0 && selected[i-1].Distance > m.Distance {
			t.Fatalf("Distances are not ascending at index %d", i)
		}
	}
}

func TestSelection_determinism(t *testing.T) {
	SetConfiguration(&Configuration{
		MaxResults: 10,
	})

	accepted, _ := Filter(egyptCatalog())

	first := DefaultEngine{}.Selection(append(mirrors.Mirrors{}, accepted...), cairoClient)
	second := DefaultEngine{}.Selection(append(mirrors.Mirrors{}, accepted...), cairoClient)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("Expected identical selections for identical inputs")
	}

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Fatalf("Expected byte-identical selections, got\n%s\n%s", a, b)
	}
}

func TestFilter(t *testing.T) {
	mlist := mirrors.Mirrors{
		mirrors.Mirror{Name: "ok.mirror", HttpsURL: "https://ok.mirror/", CountryCode: "FR", Status: mirrors.StatusOK},
		mirrors.Mirror{Name: "expired.mirror", HttpsURL: "https://expired.mirror/", CountryCode: "FR", Status: mirrors.StatusExpired},
		mirrors.Mirror{Name: "flaky.mirror", HttpsURL: "https://flaky.mirror/", CountryCode: "FR", Status: "maintenance"},
		mirrors.Mirror{Name: "unreachable.mirror", CountryCode: "FR", Status: mirrors.StatusOK},
	}

	accepted, excluded := Filter(mlist)

	if len(accepted) != 1 || accepted[0].Name != "ok.mirror" {
		t.Fatalf("Expected ok.mirror only, got %d mirrors", len(accepted))
	}
	if len(excluded) != 3 {
		t.Fatalf("Expected 3 excluded mirrors, got %d", len(excluded))
	}

	reasons := map[string]string{
		"expired.mirror":     "Expired",
		"flaky.mirror":       "Not operational",
		"unreachable.mirror": "No address",
	}
	for _, m := range excluded {
		if reasons[m.Name] != m.ExcludeReason {
			t.Fatalf("Mirror %s: expected reason %q, got %q", m.Name, reasons[m.Name], m.ExcludeReason)
		}
	}
}
