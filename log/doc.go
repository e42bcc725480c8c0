// Package log is the leveled logging facade shared by the agent loops,
// tools and stores.
//
// Components accept a Logger in their configuration and fall back to the
// package default when none is given:
//
//	logger := log.NewGolog(golog.New(), log.LevelDebug)
//	log.SetDefault(logger)
//
// StdLogger writes through the standard library logger and is the initial
// default. Discard drops everything.
package log
