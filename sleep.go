package evrt

import "time"

// sleepFuture parks until its deadline, registering a timer on first
// poll rather than at construction time so a Sleep built but never polled
// never touches the timer heap (spec.md §4.10/§4.11).
type sleepFuture struct {
	dur   time.Duration
	entry *timerEntry
	fired bool
}

// Sleep returns a Future that completes once d has elapsed on the loop
// it's polled on.
func Sleep(d time.Duration) Future[struct{}] {
	return &sleepFuture{dur: d}
}

func (s *sleepFuture) Poll(cx *Context) (struct{}, bool) {
	if s.fired {
		return struct{}{}, true
	}
	if s.entry == nil {
		w := cx.waker
		s.entry = cx.loop.timers.schedule(time.Now().Add(s.dur), func() {
			s.fired = true
			w.Wake()
		})
	}
	return struct{}{}, false
}
