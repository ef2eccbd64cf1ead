package config

import (
	"errors"
)

var (
	// ErrEmptyURL error if config webserver.URL is empty.
	ErrEmptyURL = errors.New("toml config webserver.url can not be empty")

	// ErrWebServerPortCanNotBeZero error if config webserver listening port is 0.
	ErrWebServerPortCanNotBeZero = errors.New("toml config webserver.port listening port can not be 0")

	// ErrUnknownGormEngine error if config db.gormEngine is not supported.
	ErrUnknownGormEngine = errors.New("toml config db.gormEngine is not supported")

	// ErrNegativeCodeLength error if config activation.codeLength is below 0.
	ErrNegativeCodeLength = errors.New("toml config activation.codeLength can not be negative")

	// ErrNegativeRedeemWindow error if config activation.redeemWindow is below 0.
	ErrNegativeRedeemWindow = errors.New("toml config activation.redeemWindow can not be negative")
)
