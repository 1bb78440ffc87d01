package camera

import (
	"path/filepath"
	"testing"
)

func TestBackupFileName(t *testing.T) {
	if got := BackupFileName("windows"); got != "PSEye_backup_win.ini" {
		t.Errorf("BackupFileName(windows) = %q", got)
	}
	if got := BackupFileName("linux"); got != "PSEye_backup_v4l.ini" {
		t.Errorf("BackupFileName(linux) = %q", got)
	}
}

func TestSaveLoadSettingsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.ini")
	want := DefaultParameters(2051)
	want.Gain = 42

	if err := saveSettings(path, want); err != nil {
		t.Fatalf("saveSettings() error = %v", err)
	}
	if !FileExists(path) {
		t.Fatal("FileExists() = false after saveSettings")
	}

	got, err := loadSettings(path)
	if err != nil {
		t.Fatalf("loadSettings() error = %v", err)
	}
	if got != want {
		t.Errorf("loadSettings() = %+v, want %+v", got, want)
	}
}

func TestFileExistsFalseForMissingPath(t *testing.T) {
	if FileExists(filepath.Join(t.TempDir(), "missing.ini")) {
		t.Error("FileExists() = true for a path that was never written")
	}
}
