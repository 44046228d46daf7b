package core

import glog "github.com/goliatone/go-logger/glog"

var (
	_ Registry       = (*TriggerRegistry)(nil)
	_ TriggerService = (*Service)(nil)

	_ Logger         = glog.Nop()
	_ LoggerProvider = glog.ProviderFromLogger(glog.Nop())
)
