package led

import "testing"

func TestFakeRecordsLastCommandedColor(t *testing.T) {
	f := &Fake{}
	if err := f.SetRGB(10, 20, 30); err != nil {
		t.Fatalf("SetRGB() error = %v", err)
	}
	if f.R != 10 || f.G != 20 || f.B != 30 {
		t.Errorf("Fake = %+v, want (10,20,30)", f)
	}
	if f.Calls != 1 {
		t.Errorf("Calls = %d, want 1", f.Calls)
	}
	f.SetRGB(0, 0, 0)
	if f.Calls != 2 {
		t.Errorf("Calls = %d, want 2 after a second SetRGB", f.Calls)
	}
}
