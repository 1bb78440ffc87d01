package camera

import (
	"image/color"
	"testing"

	"gocv.io/x/gocv"
)

func TestFakeReplaysFramesThenRepeatsLast(t *testing.T) {
	f := NewFake(10, 10)
	calls := 0
	f.Frames = []func(w, h int) gocv.Mat{
		func(w, h int) gocv.Mat { calls++; return SolidFrame(w, h, color.RGBA{R: 1}) },
		func(w, h int) gocv.Mat { calls++; return SolidFrame(w, h, color.RGBA{R: 2}) },
	}

	var m gocv.Mat
	for i := 0; i < 4; i++ {
		m = gocv.NewMat()
		if !f.Read(&m) {
			t.Fatalf("Read() = false on call %d", i)
		}
		m.Close()
	}
	if calls != 2 {
		t.Errorf("frame funcs called %d times, want 2 (exhausted then repeated)", calls)
	}
}

func TestFakeFrameSizeAndParameters(t *testing.T) {
	f := NewFake(640, 480)
	w, h := f.FrameSize()
	if w != 640 || h != 480 {
		t.Errorf("FrameSize() = (%d,%d), want (640,480)", w, h)
	}
	p := DefaultParameters(2051)
	if err := f.SetParameters(p); err != nil {
		t.Fatalf("SetParameters() error = %v", err)
	}
	if f.LastParameters() != p {
		t.Errorf("LastParameters() = %+v, want %+v", f.LastParameters(), p)
	}
}
