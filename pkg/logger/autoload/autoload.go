// Package autoload initializes the global logger from LOG_* environment variables on import.
package autoload

import (
	configx "github.com/tanpawarit/vapi-caller/pkg/config"
	logx "github.com/tanpawarit/vapi-caller/pkg/logger"
)

func init() {
	if err := Reload(); err != nil {
		logx.Init()
	}
}

// Reload re-reads LOG_* with the given options, e.g. once a command knows its env file.
func Reload(opts ...configx.Option) error {
	conf, err := configx.New[logx.Config]("LOG", opts...)
	if err != nil {
		return err
	}
	logx.Init(*conf)
	return nil
}
