// Package relay builds HTTP API clients from declared Go interfaces.
//
// An interface is described by a declaration table of markers:
//
//	var DemoServiceDecl = relay.Declare[DemoService](relay.Resource("/api"))
//
//	func init() {
//		DemoServiceDecl.Method("GetDemo", relay.GET("/demos/{demoId}")).
//			Params(relay.Path("demoId"))
//	}
//
// Binding the declaration to a Client validates it once and yields a Stub
// that turns method calls into requests:
//
//	stub, err := client.Bind(DemoServiceDecl)
//	demo, err := relay.Call[Demo](ctx, stub, "GetDemo", 42)
//
// The declared result type selects how the response is consumed: a decoded
// value or slice, plain text, the raw body (io.ReadCloser), or a lazily
// parsed server-sent event stream (*Stream[T]). Wrapping any of these in
// *Future[T] makes the call asynchronous.
//
// The relay command generates declaration tables and adapter types from
// //relay:: comments on interfaces.
package relay
