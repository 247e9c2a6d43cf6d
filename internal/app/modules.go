package app

import (
	"github.com/specialistvlad/yangreactor/internal/registry"
	"github.com/specialistvlad/yangreactor/internal/support"
	"github.com/specialistvlad/yangreactor/modules/nacm"
	"github.com/specialistvlad/yangreactor/modules/semver"
)

// coreModules is the definitive list of all support bundles that are
// compiled into the yangreactor binary.
var coreModules = []registry.Module{
	&support.Module{},
	&semver.Module{},
	&nacm.Module{},
}
