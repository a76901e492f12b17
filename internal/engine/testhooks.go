package engine

// loadHook, when set, runs at the start of every underlying load attempt.
// Tests use it to count loads.
var loadHook func()

// reset clears the shared engine so tests can exercise the load path.
func reset() {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.done = nil
	global.eng = nil
	global.err = nil
}
