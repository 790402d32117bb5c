package ebitenview

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/gomono"
)

func TestFaceSources(t *testing.T) {
	srcs, err := faceSources(nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(srcs) != 1 {
		t.Errorf("default sources = %d, want 1", len(srcs))
	}

	srcs, err = faceSources(gomono.TTF)
	if err != nil {
		t.Fatal(err)
	}
	if len(srcs) != 2 {
		t.Errorf("sources with a custom font = %d, want 2", len(srcs))
	}

	if _, err := faceSources([]byte("not a font")); err == nil {
		t.Error("unparseable font should fail")
	}
}

func TestEmojiFaceFallsBack(t *testing.T) {
	srcs, err := faceSources(gomono.TTF)
	if err != nil {
		t.Fatal(err)
	}
	r := &Renderer{faceSources: srcs}
	if _, ok := r.emojiFace(32).(*text.MultiFace); !ok {
		t.Error("custom font should be combined with Go Regular")
	}
	r.faceSources = srcs[1:]
	if _, ok := r.emojiFace(32).(*text.GoTextFace); !ok {
		t.Error("single font should be used directly")
	}
}
