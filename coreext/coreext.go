// Package coreext registers every core extension. Import it for side effects
// to make each extension's library available in new registries.
package coreext

import (
	// importing for side effects
	_ "github.com/zephyrtronium/reflex/coreext/collector"
	_ "github.com/zephyrtronium/reflex/coreext/date"
	_ "github.com/zephyrtronium/reflex/coreext/debugger"
	_ "github.com/zephyrtronium/reflex/coreext/duration"
	_ "github.com/zephyrtronium/reflex/coreext/file"
	_ "github.com/zephyrtronium/reflex/coreext/path"
	_ "github.com/zephyrtronium/reflex/coreext/text"
)
