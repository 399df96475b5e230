package app

import (
	"io"

	"github.com/specialistvlad/tickgrid/internal/registry"
	"github.com/specialistvlad/tickgrid/modules/fail"
	"github.com/specialistvlad/tickgrid/modules/http_request"
	"github.com/specialistvlad/tickgrid/modules/print"
	"github.com/specialistvlad/tickgrid/modules/sleep"
	"github.com/specialistvlad/tickgrid/modules/socketio"
)

// coreModules is the definitive list of job kinds compiled into the
// tickgrid binary. print writes to outW alongside the logs.
func coreModules(outW io.Writer) []registry.Module {
	return []registry.Module{
		&print.Module{Out: outW},
		&sleep.Module{},
		&fail.Module{},
		&http_request.Module{},
		&socketio.Module{},
	}
}
