package decal

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// scriptStep is a single action in an input script.
type scriptStep struct {
	Action string  `yaml:"action"`
	X      float64 `yaml:"x,omitempty"`
	Y      float64 `yaml:"y,omitempty"`
	FromX  float64 `yaml:"fromX,omitempty"`
	FromY  float64 `yaml:"fromY,omitempty"`
	ToX    float64 `yaml:"toX,omitempty"`
	ToY    float64 `yaml:"toY,omitempty"`
	Frames int     `yaml:"frames,omitempty"`

	// key
	Key  string   `yaml:"key,omitempty"`
	Mods []string `yaml:"mods,omitempty"`

	// emoji; At places the top-left instead of centering on the base image
	Emoji string `yaml:"emoji,omitempty"`
	At    bool   `yaml:"at,omitempty"`

	// pinch: distances in px, angles in degrees
	Distance   float64 `yaml:"distance,omitempty"`
	ToDistance float64 `yaml:"toDistance,omitempty"`
	Angle      float64 `yaml:"angle,omitempty"`
	ToAngle    float64 `yaml:"toAngle,omitempty"`

	// opacity
	Value float64 `yaml:"value,omitempty"`

	// image: file decoded through the editor's ImageLoader
	Path string `yaml:"path,omitempty"`
}

// scriptFile is the top-level YAML structure of an input script.
type scriptFile struct {
	Steps []scriptStep `yaml:"steps"`
}

var scriptActions = map[string]bool{
	"press": true, "move": true, "release": true, "click": true, "drag": true,
	"pinch": true, "key": true, "wait": true, "emoji": true, "image": true, "undo": true,
	"redo": true, "select-none": true, "opacity": true,
}

// Script sequences injected input and editor commands across frames, for
// tests and headless replays.
//
//	steps:
//	  - action: emoji
//	    emoji: "🎉"
//	  - action: drag
//	    fromX: 400
//	    fromY: 300
//	    toX: 500
//	    toY: 300
//	    frames: 10
//	  - action: key
//	    key: z
//	    mods: [ctrl]
type Script struct {
	steps     []scriptStep
	cursor    int
	waitCount int
	done      bool
}

// LoadScript parses a YAML input script.
func LoadScript(data []byte) (*Script, error) {
	var f scriptFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse input script: %w", err)
	}
	if len(f.Steps) == 0 {
		return nil, fmt.Errorf("parse input script: no steps")
	}
	for i, st := range f.Steps {
		if !scriptActions[st.Action] {
			return nil, fmt.Errorf("parse input script: step %d: unknown action %q", i, st.Action)
		}
		if st.Action == "key" && ParseKey(st.Key) == KeyUnknown {
			return nil, fmt.Errorf("parse input script: step %d: unknown key %q", i, st.Key)
		}
		if st.Action == "image" && st.Path == "" {
			return nil, fmt.Errorf("parse input script: step %d: image needs a path", i)
		}
	}
	return &Script{steps: f.Steps}, nil
}

// LoadScriptFile reads and parses a YAML input script from disk.
func LoadScriptFile(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input script: %w", err)
	}
	return LoadScript(data)
}

// Len returns the number of steps.
func (sc *Script) Len() int { return len(sc.steps) }

// Done reports whether every step has been executed and its input drained.
func (sc *Script) Done() bool { return sc.done }

// Step advances the script by one frame. Call it once per frame before
// in.Step, the way a game loop would.
func (sc *Script) Step(in *Injector) error {
	if sc.done {
		return nil
	}
	// Wait for pending injections to drain before advancing.
	if in.Pending() > 0 {
		return nil
	}
	if sc.waitCount > 0 {
		sc.waitCount--
		return nil
	}
	if sc.cursor >= len(sc.steps) {
		sc.done = true
		return nil
	}

	i := sc.cursor
	st := sc.steps[i]
	sc.cursor++
	if err := sc.exec(in, st); err != nil {
		return fmt.Errorf("script step %d (%s): %w", i, st.Action, err)
	}

	if sc.cursor >= len(sc.steps) && sc.waitCount == 0 && in.Pending() == 0 {
		sc.done = true
	}
	return nil
}

// Run executes the whole script against e with a fresh injector.
func (sc *Script) Run(e *Editor) error {
	in := NewInjector(e)
	for !sc.done {
		if err := sc.Step(in); err != nil {
			return err
		}
		in.Step()
	}
	in.Flush()
	return nil
}

func (sc *Script) exec(in *Injector, st scriptStep) error {
	e := in.ed
	switch st.Action {
	case "press":
		in.InjectPress(st.X, st.Y)
	case "move":
		in.InjectMove(st.X, st.Y)
	case "release":
		in.InjectRelease(st.X, st.Y)
	case "click":
		in.InjectClick(st.X, st.Y)
	case "drag":
		in.InjectDrag(st.FromX, st.FromY, st.ToX, st.ToY, st.Frames)
	case "pinch":
		toDist := st.ToDistance
		if toDist == 0 {
			toDist = st.Distance
		}
		in.InjectPinch(st.X, st.Y, st.Distance, toDist, degToRad(st.Angle), degToRad(st.ToAngle), st.Frames)
	case "key":
		in.InjectKey(ParseKey(st.Key), ParseModifiers(st.Mods))
	case "wait":
		if st.Frames > 0 {
			sc.waitCount = st.Frames - 1 // this frame counts as one
		}
	case "emoji":
		var err error
		if st.At {
			_, err = e.AddEmojiAt(st.Emoji, st.X, st.Y)
		} else {
			_, err = e.AddEmoji(st.Emoji)
		}
		return err
	case "image":
		f, err := os.Open(st.Path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = e.AddImage(context.Background(), f)
		return err
	case "undo":
		e.Undo()
	case "redo":
		e.Redo()
	case "select-none":
		e.Deselect()
	case "opacity":
		return e.SetOpacity(st.Value)
	}
	return nil
}

// ParseModifiers maps names such as "shift", "ctrl", "alt", "meta" (or
// "cmd") to a modifier set. Unknown names are ignored.
func ParseModifiers(names []string) KeyModifiers {
	var m KeyModifiers
	for _, n := range names {
		switch strings.ToLower(n) {
		case "shift":
			m |= ModShift
		case "ctrl", "control":
			m |= ModCtrl
		case "alt", "option":
			m |= ModAlt
		case "meta", "cmd", "super":
			m |= ModMeta
		}
	}
	return m
}

func degToRad(d float64) float64 { return d * math.Pi / 180 }
