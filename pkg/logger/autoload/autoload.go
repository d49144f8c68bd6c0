// Package autoload initializes the global logger from the environment
// when blank-imported.
package autoload

import (
	configx "github.com/tanpawarit/Partwise-Appliance-Support-Dialogue/pkg/config"
	logx "github.com/tanpawarit/Partwise-Appliance-Support-Dialogue/pkg/logger"
)

func init() {
	logx.Init(*configx.MustNew[logx.Config]("LOG"))
}
