// telango package is a modern framework designed to facilitate the creation and management of bots for the Telegram Bot API. Written in Go, this package leverages Go's concurrency capabilities to provide efficient and robust bot interactions.
//
// Key Features:
//   - Bot API Client: A client for calling the Telegram Bot API, over a direct connection or a SOCKS5 proxy.
//   - Update Delivery: Long polling with exponential backoff, or a webhook server for pushed updates.
//   - Handler Groups: Updates flow through numbered handler groups sharing a single context per update.
//   - Shared Data Stores: Thread-safe bot, per-chat and per-user data maps owned by the application.
//   - Persistence: The data stores and the callback data cache survive restarts through a pluggable backend.
//   - Arbitrary Callback Data: Inline keyboards may carry any value, the real payload stays in a local cache.
//   - Job Queue: One-shot, repeating and daily jobs running against the same shared data stores.
//
// Usage Example:
//
//	package main
//
//	import (
//	    "context"
//
//	    tango "github.com/n0h4rt/telango"
//	)
//
//	func main() {
//	    config := &tango.Config{
//	        Token: "1234567890:ABCdefGHIjklMNOpqrSTUvwxYZ",
//	    }
//
//	    app := tango.New(config)
//
//	    // add handlers
//
//	    if err := app.Initialize(); err != nil {
//	        panic(err)
//	    }
//
//	    ctx := context.Background()
//	    if err := app.Start(ctx); err != nil {
//	        panic(err)
//	    }
//
//	    // The `app.Park()` call is blocking, use CTRL + C to stop the application.
//	    // Use this if it is the top layer application.
//	    app.Park()
//	}
//
// The telango package aims to streamline the development of Telegram bots, providing a solid foundation for building advanced and scalable messaging solutions.
package telango
