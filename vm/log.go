package vm

import (
	"github.com/tliron/commonlog"
)

// log is the package logger. Cache transitions and shape invalidations are
// reported at debug level; recoverable oddities (removing an unknown name,
// partial `$` matches when enabled) at warning level.
var log = commonlog.GetLogger("ravel.vm")
