package controller

import (
	"math"
	"testing"

	"github.com/ausocean/orbtracker/config"
)

func TestBGRToHSVPureBlue(t *testing.T) {
	hsv := BGRToHSV(BGR{B: 255, G: 0, R: 0})
	if math.Abs(hsv.H-120) > 1 {
		t.Errorf("H = %v, want close to 120 (OpenCV hue for pure blue)", hsv.H)
	}
	if math.Abs(hsv.S-255) > 1 {
		t.Errorf("S = %v, want close to 255", hsv.S)
	}
	if math.Abs(hsv.V-255) > 1 {
		t.Errorf("V = %v, want close to 255", hsv.V)
	}
}

func TestSubjectiveDiffZeroForIdenticalColors(t *testing.T) {
	a := HSV{H: 60, S: 120, V: 200}
	if d := a.SubjectiveDiff(a); d != 0 {
		t.Errorf("SubjectiveDiff(a, a) = %v, want 0", d)
	}
}

func TestSubjectiveDiffWeighting(t *testing.T) {
	a := HSV{H: 0, S: 0, V: 0}
	b := HSV{H: 10, S: 10, V: 10}
	want := 10.0 + 0.5*10 + 0.5*10
	if d := a.SubjectiveDiff(b); d != want {
		t.Errorf("SubjectiveDiff() = %v, want %v", d, want)
	}
}

func TestNewRecordClampsROIWithinFrame(t *testing.T) {
	rec := NewRecord("h", BGR{}, BGR{}, HSV{}, 100, 100, 40, 40)
	if rec.ROIX < 0 || rec.ROIX+40 > 100 {
		t.Errorf("ROIX = %v, ROI spills outside the frame", rec.ROIX)
	}
	if rec.ROIY < 0 || rec.ROIY+40 > 100 {
		t.Errorf("ROIY = %v, ROI spills outside the frame", rec.ROIY)
	}
}

func TestDistanceDecreasesAsRadiusGrows(t *testing.T) {
	cfg := config.Default()
	near := &Record{R: 40}
	far := &Record{R: 10}
	if near.Distance(cfg) >= far.Distance(cfg) {
		t.Errorf("a bigger blob radius should estimate a closer distance: near=%v far=%v", near.Distance(cfg), far.Distance(cfg))
	}
}
