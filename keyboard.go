package decal

import "go.uber.org/zap"

// HandleKey applies a keyboard shortcut and reports whether it was consumed.
//
//	Ctrl/Meta+Z          undo
//	Ctrl/Meta+Shift+Z    redo
//	Ctrl/Meta+Y          redo
//	Ctrl/Meta+D          duplicate selection
//	Delete, Backspace    delete selection
//	Escape               deselect
//	Arrows               nudge 1px (10px with Shift)
//
// Shortcuts that act on the selection are ignored without one.
func (e *Editor) HandleKey(ev KeyEvent) bool {
	mods := ev.Modifiers
	if mods.command() {
		switch ev.Key {
		case KeyZ:
			if mods.Has(ModShift) {
				return e.Redo()
			}
			return e.Undo()
		case KeyY:
			return e.Redo()
		case KeyD:
			_, err := e.DuplicateSelected()
			return err == nil
		}
		return false
	}

	if e.doc.Selected() == nil {
		return false
	}

	switch ev.Key {
	case KeyDelete, KeyBackspace:
		return e.DeleteSelected() == nil
	case KeyEscape:
		e.pointer.Finish()
		e.Deselect()
		return true
	}

	dx, dy, ok := nudgeDir(ev.Key)
	if !ok {
		return false
	}
	step := e.cfg.NudgeStep
	if mods.Has(ModShift) {
		step = e.cfg.NudgeStepLarge
	}
	e.log.Debug("nudge", zap.Float64("dx", dx*step), zap.Float64("dy", dy*step))
	return e.Nudge(dx*step, dy*step) == nil
}

func nudgeDir(k Key) (dx, dy float64, ok bool) {
	switch k {
	case KeyArrowLeft:
		return -1, 0, true
	case KeyArrowRight:
		return 1, 0, true
	case KeyArrowUp:
		return 0, -1, true
	case KeyArrowDown:
		return 0, 1, true
	}
	return 0, 0, false
}
