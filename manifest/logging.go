package manifest

import (
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("ravel.manifest")

// ConfigureLogging applies the [log] section to commonlog. An empty file
// logs to stderr.
func (m *Manifest) ConfigureLogging() {
	var path *string
	if m.Log.File != "" {
		path = &m.Log.File
	}
	commonlog.Configure(m.Log.Verbosity, path)
	log.Debugf("logging configured at verbosity %d", m.Log.Verbosity)
}
