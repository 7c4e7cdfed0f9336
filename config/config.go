// Copyright (c) 2019-2021 The mirrorselect authors
// Licensed under the MIT license

package config

import (
	"fmt"
	"io/ioutil"
	"os"
	"sync"

	"github.com/op/go-logging"
	"gopkg.in/yaml.v3"
)

var (
	log = logging.MustGetLogger("main")

	// ConfigFile is the path to the configuration file.
	// It is set by the caller before LoadConfig, or guessed
	// from the default locations.
	ConfigFile string

	defaultConfig = Configuration{
		GeoipDatabasePath: "/usr/share/GeoIP/",
		RedisAddress:      "127.0.0.1:6379",
		RedisPassword:     "",
		RedisDB:           0,
		LogDir:            "",
		MaxResults:        10,
		LocatorTimeout:    500,
		CacheTTL:          3600,
	}
	config      *Configuration
	configMutex sync.RWMutex

	subscribers     []chan bool
	subscribersLock sync.RWMutex
)

// Configuration contains all the option available in the yaml file
type Configuration struct {
	GeoipDatabasePath string `yaml:"GeoipDatabasePath"`
	RedisAddress      string `yaml:"RedisAddress"`
	RedisPassword     string `yaml:"RedisPassword"`
	RedisDB           int    `yaml:"RedisDB"`
	LogDir            string `yaml:"LogDir"`
	MaxResults        int    `yaml:"MaxResults"`
	LocatorTimeout    int    `yaml:"LocatorTimeout"` // milliseconds
	CacheTTL          int    `yaml:"CacheTTL"`       // seconds, 0 disables the selection cache
}

// LoadConfig loads the configuration file if it has not yet been loaded
func LoadConfig() {
	if config != nil {
		return
	}
	err := ReloadConfig()
	if err != nil {
		log.Fatal(err)
	}
}

// ReloadConfig reloads the configuration file and update it globally
func ReloadConfig() error {
	if ConfigFile == "" {
		if fileExists("./mirrorselect.conf") {
			ConfigFile = "./mirrorselect.conf"
		} else if fileExists("/etc/mirrorselect.conf") {
			ConfigFile = "/etc/mirrorselect.conf"
		}
	}

	content, err := ioutil.ReadFile(ConfigFile)
	if err != nil {
		return fmt.Errorf("configuration could not be found: %s", err)
	}

	if os.Getenv("DEBUG") != "" {
		fmt.Println("Reading configuration from", ConfigFile)
	}

	c := defaultConfig

	// Overload the default configuration with the user's one
	err = yaml.Unmarshal(content, &c)
	if err != nil {
		return fmt.Errorf("%s in %s", err, ConfigFile)
	}

	// Sanitize
	if c.MaxResults <= 0 {
		return fmt.Errorf("Config: MaxResults must be > 0")
	}
	if c.LocatorTimeout < 0 {
		return fmt.Errorf("Config: LocatorTimeout must be >= 0")
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("Config: CacheTTL must be >= 0")
	}

	// Lock the pointer during the swap
	configMutex.Lock()
	config = &c
	configMutex.Unlock()

	// Notify all subscribers that the configuration has been reloaded
	notifySubscribers()

	return nil
}

// GetConfig returns a pointer to a configuration object
// FIXME reading from the pointer could cause a race!
func GetConfig() *Configuration {
	configMutex.RLock()
	defer configMutex.RUnlock()

	if config == nil {
		panic("Configuration not loaded")
	}

	return config
}

// SetConfiguration is only used for testing purpose
func SetConfiguration(c *Configuration) {
	config = c
}

// SubscribeConfig allows subscribers to get notified when
// the configuration is updated.
func SubscribeConfig(subscriber chan bool) {
	subscribersLock.Lock()
	defer subscribersLock.Unlock()

	subscribers = append(subscribers, subscriber)
}

func notifySubscribers() {
	subscribersLock.RLock()
	defer subscribersLock.RUnlock()

	for _, subscriber := range subscribers {
		select {
		case subscriber <- true:
		default:
			// Don't block if the subscriber is unavailable
			// and discard the message.
		}
	}
}

func fileExists(filename string) bool {
	_, err := os.Stat(filename)
	return err == nil
}
