// Package decal is the transform and interaction engine of a sticker editor:
// emoji and image stickers placed over a base image, moved, scaled, rotated,
// duplicated and deleted with a mouse, one or two fingers, or the keyboard,
// with bounded undo/redo.
//
// The package is renderer-agnostic and has no Ebitengine dependency, so it
// runs headless in tests and tools. The live view lives in
// decal/ebitenview, decoding in decal/imageload and compositing in
// decal/export.
//
// # Quick start
//
//	ed := decal.NewEditor(decal.DefaultConfig(), decal.WithLogger(logger))
//	if err := ed.SetBaseImage(photo); err != nil {
//		return err
//	}
//	s, _ := ed.AddEmoji("🎉")
//	ed.HandlePointerDown(decal.PointerSample{X: 400, Y: 300})
//	ed.HandlePointerMove(decal.PointerSample{X: 450, Y: 320})
//	ed.HandlePointerUp(decal.PointerSample{X: 450, Y: 320})
//	ed.Undo()
//
// # Stickers
//
// A [Sticker] is an axis-aligned box (X, Y, BaseWidth, BaseHeight) scaled
// uniformly about its center and rotated about its center. Scale is clamped
// to [MinScale, MaxScale], rotation is normalized into (-π, π] and opacity is
// clamped to [0, 1]; the fields are only reachable through setters so these
// hold after every operation.
//
// Hit testing and handle picking rotate the query point into the sticker's
// local frame, so they follow what is drawn on screen. The six handles are
// the four corners (resize), a rotate handle above the top edge and a delete
// handle up-left of the top-left corner.
//
// # Input
//
// Mouse and single-finger touch drive a [PointerMachine] with the modes idle,
// dragging, resizing and rotating. Two fingers drive a [GestureInterpreter]
// that solves one similarity transform per sample from the initial and
// current finger positions. [Editor.HandleTouch] arbitrates between the two
// by touch count. Coordinates are canvas pixels; use a [Viewport] to map from
// display space.
//
// # History
//
// [History] keeps up to Config.HistoryCapacity snapshots. Pointer
// interactions record one snapshot on release if the pointer travelled
// farther than Config.DragThreshold; add, delete, duplicate, nudge and each
// gesture record one snapshot. Snapshots never contain pixels; image payloads
// are re-attached from live stickers or from references held by the history.
//
// # Rendering
//
// [Editor.Draw] issues [Renderer] calls in paint order. [Editor.Record]
// captures them as a [CommandList] that can be replayed into another
// renderer, such as an exporter compositing at a different scale.
//
// # Scripted input
//
// An [Injector] queues synthetic pointer, touch and key events and feeds one
// per frame with a deterministic clock. [LoadScript] parses YAML scripts of
// such steps for tests and the decal CLI.
package decal
