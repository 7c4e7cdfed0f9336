// Copyright (c) 2019-2021 The mirrorselect authors
// Licensed under the MIT license

package database

import (
	"errors"
	"time"

	"github.com/gomodule/redigo/redis"
	"github.com/op/go-logging"

	. "github.com/openmirrors/mirrorselect/config"
)

const (
	redisConnectionTimeout = 200 * time.Millisecond
	redisReadWriteTimeout  = 300 * time.Second
)

var (
	log = logging.MustGetLogger("main")

	// ErrUnreachable is returned when the endpoint is not reachable
	ErrUnreachable = errors.New("redis endpoint unreachable")
)

type redisPool interface {
	Get() redis.Conn
	Close() error
}

// Redis is the instance object of the redis database
type Redis struct {
	pool redisPool
}

// NewRedis returns a new instance of the redis database
func NewRedis() *Redis {
	return NewRedisCustomPool(nil)
}

// NewRedisCustomPool returns a new instance of the redis database
// using a custom pool
func NewRedisCustomPool(pool redisPool) *Redis {
	r := &Redis{}

	if pool != nil {
		r.pool = pool
		return r
	}

	r.pool = &redis.Pool{
		MaxIdle:     10,
		IdleTimeout: 240 * time.Second,
		Dial:        r.connect,
		TestOnBorrow: func(c redis.Conn, t time.Time) error {
			_, err := c.Do("PING")
			return err
		},
	}

	return r
}

func (r *Redis) connect() (redis.Conn, error) {
	conn, err := redis.Dial("tcp", GetConfig().RedisAddress,
		redis.DialConnectTimeout(redisConnectionTimeout),
		redis.DialReadTimeout(redisReadWriteTimeout),
		redis.DialWriteTimeout(redisReadWriteTimeout),
		redis.DialPassword(GetConfig().RedisPassword),
		redis.DialDatabase(GetConfig().RedisDB))
	if err != nil {
		log.Error("Redis: %s", err.Error())
		return nil, ErrUnreachable
	}
	return conn, nil
}

// Get returns a redis connection from the pool
func (r *Redis) Get() redis.Conn {
	return r.pool.Get()
}

// Close closes all connections to the redis database
func (r *Redis) Close() {
	log.Debug("Closing database connections")
	r.pool.Close()
}
