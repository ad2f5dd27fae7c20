// Package audit implements async event dispatching for account and session
// operations (registration, login, logout, rejected tokens).
//
// [Dispatcher] relays [Event] values to a [Sink] on a background goroutine,
// either blocking or dropping when its buffer is full. Which events to emit
// is decided by the engine.
package audit
