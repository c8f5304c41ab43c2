// Package demo holds two small collaborators that drive the engine end to
// end: a freehand painter and Conway's game of life.
package demo
