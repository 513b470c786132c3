// Package xhr implements a browser compatible XMLHttpRequest for Go programs.
//
// A request object walks the lifecycle Unsent, Opened, HeadersReceived,
// Loading, Done and reports progress through events. Asynchronous requests
// deliver all progress on an eventloop.EventLoop, so every method of
// XMLHttpRequest must be called from the loop goroutine (or before the loop
// starts). Synchronous requests block the caller until the response is
// complete; network I/O for them is delegated to a syncbridge.Runner.
//
//	loop := eventloop.New()
//	req := xhr.New(loop)
//	req.On(events.Load, func(events.Event) { fmt.Println(req.ResponseText()) })
//	err := loop.Start(ctx, func() error {
//		if err := req.Open("GET", "https://example.com/"); err != nil {
//			return err
//		}
//		return req.Send(nil)
//	})
package xhr
