package app

import (
	"github.com/vk/behaviorgo/internal/registry"
	"github.com/vk/behaviorgo/modules/blackboard"
	"github.com/vk/behaviorgo/modules/core"
	"github.com/vk/behaviorgo/modules/env_vars"
	"github.com/vk/behaviorgo/modules/http_request"
	"github.com/vk/behaviorgo/modules/print"
)

// coreModules is the definitive list of all modules that are compiled into
// the behaviorgo binary.
var coreModules = []registry.Module{
	&core.Module{},
	&blackboard.Module{},
	&print.Module{},
	&env_vars.Module{},
	&http_request.Module{},
}
