// Package grid is the interactive cell grid engine.
//
// An [Engine] ties together the sparse cell store, the viewport, the pan and
// zoom controller, the incremental renderer, the animation engine and the
// tick scheduler, and drives them from a [Backend] that supplies input
// events and presents frames.
//
// Collaborators (games, demos) implement [Handler] and draw through the
// [Canvas] each callback receives:
//
//   - render goroutine, no worker running: animated draws, painted at once
//   - worker goroutine (threaded ticks): store writes plus queued paints
//   - render goroutine while a worker runs: immediate, unanimated paints
//
// # Example
//
//	eng, _ := grid.New(myGame, grid.DefaultOptions())
//	err := eng.Run(ctx, headless.New(script))
//
// # Thread Safety
//
// Engine methods must be called from the goroutine running [Engine.Run]
// (or driving [Engine.Frame]). The only exception is the Canvas handed to
// OnTick on the worker goroutine.
package grid
