// Package autoload configures the global logger from the LOG_* env
// section as a side effect of being imported.
package autoload

import (
	configx "github.com/dataseed/cobranza-agent/pkg/config"
	logx "github.com/dataseed/cobranza-agent/pkg/logger"
)

func init() {
	cfg := configx.MustNew[logx.Config]("LOG")
	logx.Init(*cfg)
}
