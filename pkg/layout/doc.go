// Package layout assigns 2-D positions to the boxes of a class diagram.
//
// # Strategies
//
// Two strategies implement [Strategy]:
//
//   - [Assignment] ("graph", the default) orders classes breadth-first over
//     the relation graph and solves a minimum-cost assignment of classes to a
//     square grid with [Hungarian]. The result is always a bijection between
//     classes and grid points; with grid spacing derived from the largest
//     box, boxes never overlap.
//   - [Rows] ("rows") packs one row per inheritance level, shifting boxes
//     right past any overlap, then fills orphans into rows with spare width.
//     No two boxes in a row overlap and rows are vertically disjoint.
//
// # Engine
//
// [Engine] runs a strategy and finishes the same way for both: enums go on
// one row below the lowest class, left to right, and the whole diagram is
// optionally recentred so the mean box centre sits at the origin.
//
//	res, err := layout.Engine{Strategy: layout.Rows{}, Recenter: true}.Layout(in)
//
// Positions are top-left corners; y grows downward.
package layout
