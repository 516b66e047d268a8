package vial

import (
	"bytes"
	"runtime"
	"strconv"
)

// goroutineID parses the current goroutine's id out of the stack
// header ("goroutine 123 [running]:"). Goroutine ids are unique for
// the lifetime of the process, which makes them usable as keys for the
// mock store, the local singleton cache and the in-flight guard.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	fields := bytes.Fields(buf[:n])
	if len(fields) < 2 {
		panic("vial: unexpected runtime.Stack header")
	}
	id, err := strconv.ParseUint(string(fields[1]), 10, 64)
	if err != nil {
		panic("vial: cannot parse goroutine id: " + err.Error())
	}
	return id
}
