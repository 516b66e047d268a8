package vial

import "reflect"

// Strategy identifies which resolution layer handled a request.
type Strategy string

const (
	StrategyMock      Strategy = "mock"
	StrategyAlias     Strategy = "alias"
	StrategyFactory   Strategy = "factory"
	StrategyInference Strategy = "inference"
	StrategyBlacklist Strategy = "blacklist"
	StrategyContainer Strategy = "container"
	StrategyNone      Strategy = "none"
)

// ResolveEvent is emitted to the observer once per resolution level,
// including recursive levels, after the level's outcome is known.
type ResolveEvent struct {
	Type     reflect.Type
	Strategy Strategy
	Err      error
}

func (c *Container) observe(t reflect.Type, s Strategy, err error) {
	if c.observer != nil {
		c.observer(ResolveEvent{Type: t, Strategy: s, Err: err})
	}
}
