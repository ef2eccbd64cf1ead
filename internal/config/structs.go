package config

import (
	"time"

	"github.com/acctmgr/acctmgr/internal/logger"
)

// Session settings.
type Session struct {
	ExpiryTime time.Duration
}

// Activation holds the activation code settings.
type Activation struct {
	CodeLength    int           // length of minted codes, 0 uses the built-in default
	RedeemWindow  time.Duration // expiry set by batch distribution, 0 means no expiry
	StatsSchedule string        // cron spec for refreshing the code gauge
}

// Config overall data structure.
type Config struct {
	DevMode    bool // enable dev mode for development
	DB         DB
	Log        logger.Log
	Title      string
	Webserver  Webserver
	Activation Activation
}

// Webserver implement webserver settings.
type Webserver struct {
	DisableRecover bool    // disable recover middleware
	Port           int     // listening port for the webserver
	ShutDownTime   int     // wait time for shutdown in seconds
	URL            string  // base url for the webserver
	Session        Session // session settings
}
