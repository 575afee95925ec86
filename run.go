package evrt

// Run constructs a Loop, spawns fut as its root task, drives the loop
// until that task finishes, and tears the loop down (spec.md §4.11).
// It's the entry point most callers use instead of wiring NewLoop,
// Spawn, and Loop.Run together by hand.
func Run[T any](fut Future[T], opts ...LoopOption) (T, error) {
	var zero T

	l, err := NewLoop(opts...)
	if err != nil {
		return zero, err
	}
	defer l.Close()

	handle := Spawn(l, fut)
	root := Spawn(l, FromFunc(func(cx *Context) (struct{}, bool) {
		if _, ok := handle.Poll(cx); ok {
			cx.Loop().RequestStop()
			return struct{}{}, true
		}
		return struct{}{}, false
	}))
	_ = root

	l.Run()

	result, _ := handle.Poll(&Context{loop: l})
	return result.Value, result.Err
}
