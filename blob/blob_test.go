package blob

import (
	"image"
	"image/color"
	"testing"

	"gocv.io/x/gocv"
)

func diskMask(w, h int, center image.Point, radius int) gocv.Mat {
	m := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8UC1)
	gocv.Circle(&m, center, radius, color.RGBA{R: 255, G: 255, B: 255, A: 255}, -1)
	return m
}

func TestLargestPicksBiggestContour(t *testing.T) {
	m := diskMask(100, 100, image.Pt(20, 20), 5)
	defer m.Close()
	big := diskMask(100, 100, image.Pt(70, 70), 15)
	defer big.Close()
	gocv.BitwiseOr(m, big, &m)

	ct, area, found := Largest(m)
	defer ct.Close()
	if !found {
		t.Fatal("Largest() found = false, want true")
	}
	br := gocv.BoundingRect(ct)
	if br.Min.X < 50 {
		t.Errorf("Largest() picked the small contour (bounds %v), want the big one near (70,70)", br)
	}
	if area < 500 {
		t.Errorf("area = %v, want the big disk's area (~707)", area)
	}
}

func TestLargestEmptyMask(t *testing.T) {
	m := gocv.NewMatWithSize(50, 50, gocv.MatTypeCV8UC1)
	defer m.Close()

	ct, _, found := Largest(m)
	defer ct.Close()
	if found {
		t.Error("Largest() found = true on an empty mask, want false")
	}
}

func TestEstimateCircleOnDisk(t *testing.T) {
	m := diskMask(200, 200, image.Pt(100, 100), 40)
	defer m.Close()

	ct, _, found := Largest(m)
	defer ct.Close()
	if !found {
		t.Fatal("Largest() found = false")
	}
	cx, cy, r := EstimateCircle(ct)
	if cx < 90 || cx > 110 || cy < 90 || cy > 110 {
		t.Errorf("center = (%v,%v), want close to (100,100)", cx, cy)
	}
	if r < 30 || r > 50 {
		t.Errorf("radius = %v, want close to 40", r)
	}
}

func TestMassCenterOfEmptyMaskNotOK(t *testing.T) {
	m := gocv.NewMatWithSize(50, 50, gocv.MatTypeCV8UC1)
	defer m.Close()
	if _, _, ok := MassCenter(m); ok {
		t.Error("MassCenter() ok = true on an empty mask, want false")
	}
}

func TestRefillKeepsOnlyGivenContour(t *testing.T) {
	m := diskMask(100, 100, image.Pt(20, 20), 5)
	defer m.Close()
	big := diskMask(100, 100, image.Pt(70, 70), 15)
	defer big.Close()
	gocv.BitwiseOr(m, big, &m)

	ct, _, found := Largest(m)
	defer ct.Close()
	if !found {
		t.Fatal("Largest() found = false")
	}
	Refill(&m, ct)

	if n := gocv.CountNonZero(m); n < 500 || n > 900 {
		t.Errorf("CountNonZero after Refill = %d, want roughly the big disk's pixel count", n)
	}
}
