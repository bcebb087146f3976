package engine

import "errors"

// ErrUnknownConfigKey is returned by AdaptiveEngine.UpdateConfig for any
// map key outside the module's recognised configuration options.
var ErrUnknownConfigKey = errors.New("unknown adaptive engine config key")

// ErrInvalidConfigValue is returned by AdaptiveEngine.UpdateConfig when
// a recognised key's value has the wrong type.
var ErrInvalidConfigValue = errors.New("invalid adaptive engine config value")
