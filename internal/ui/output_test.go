package ui

import (
	"bytes"
	"testing"
)

func TestOutputPrefixes(t *testing.T) {
	tests := []struct {
		name  string
		print func(u *UI)
		want  string
	}{
		{"info", func(u *UI) { u.Infof("created %s", "note.txt") }, "[INFO] created note.txt\n"},
		{"success", func(u *UI) { u.Successf("wrote %d bytes", 6) }, "[✓] wrote 6 bytes\n"},
		{"warning", func(u *UI) { u.Warningf("chmod 000: %s", "denied") }, "[WARNING] chmod 000: denied\n"},
		{"error", func(u *UI) { u.Errorf("%s is not secure. Ignoring.", "note.txt") }, "[ERROR] note.txt is not secure. Ignoring.\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			u := NewWithWriter(&buf)
			u.SetColor(false)

			tt.print(u)
			if buf.String() != tt.want {
				t.Errorf("output = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestSetColorEnabled(t *testing.T) {
	var buf bytes.Buffer
	u := NewWithWriter(&buf)
	u.SetColor(true)

	u.Error("boom")
	if buf.String() == "[ERROR] boom\n" {
		t.Error("output has no color codes with color forced on")
	}
	if !bytes.Contains(buf.Bytes(), []byte("[ERROR] boom")) {
		t.Errorf("output = %q, want it to contain the message", buf.String())
	}
}
