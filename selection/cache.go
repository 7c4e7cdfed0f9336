// Copyright (c) 2019-2021 The mirrorselect authors
// Licensed under the MIT license

package selection

import (
	"encoding/json"
	"fmt"

	"github.com/gomodule/redigo/redis"
	"github.com/pkg/errors"

	"github.com/openmirrors/mirrorselect/database"
	"github.com/openmirrors/mirrorselect/mirrors"
)

// Cache stores recent selection results in redis, keyed by the client
// IP, so that repeated requests from the same address skip the
// geolocation and ranking work.
type Cache struct {
	r *database.Redis
}

// NewCache constructs a new instance of Cache
func NewCache(r *database.Redis) *Cache {
	if r == nil {
		return nil
	}
	return &Cache{
		r: r,
	}
}

func selectionKey(ip string) string {
	return fmt.Sprintf("SELECTION_%s", ip)
}

// GetSelection returns the cached mirror list for the given client IP.
// A missing entry is reported as redis.ErrNil.
func (c *Cache) GetSelection(ip string) (mirrors.Mirrors, error) {
	conn := c.r.Get()
	defer conn.Close()

	reply, err := redis.Bytes(conn.Do("GET", selectionKey(ip)))
	if err != nil {
		return nil, err
	}

	var mlist mirrors.Mirrors
	if err := json.Unmarshal(reply, &mlist); err != nil {
		return nil, errors.Wrapf(err, "corrupted selection cache entry for %s", ip)
	}
	return mlist, nil
}

// SetSelection stores the mirror list for the given client IP with the
// given TTL in seconds.
func (c *Cache) SetSelection(ip string, mlist mirrors.Mirrors, ttl int) error {
	data, err := json.Marshal(mlist)
	if err != nil {
		return errors.Wrapf(err, "cannot serialize selection for %s", ip)
	}

	conn := c.r.Get()
	defer conn.Close()

	_, err = conn.Do("SETEX", selectionKey(ip), ttl, data)
	return err
}
