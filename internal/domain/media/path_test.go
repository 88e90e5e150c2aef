package media

import "testing"

func TestNormalizeUploadName(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"stream.mp4", "stream.mp4"},
		{"  stream.mkv  ", "stream.mkv"},
		{"dir/stream.mp4", "stream.mp4"},
		{"../../etc/stream.webm", "stream.webm"},
		{`windows\path\stream.avi`, "stream.avi"},
		{"UPPER.MP4", "UPPER.MP4"},
	}
	for _, tc := range cases {
		got, err := NormalizeUploadName(tc.raw)
		if err != nil {
			t.Errorf("NormalizeUploadName(%q): %v", tc.raw, err)
			continue
		}
		if got != tc.want {
			t.Errorf("NormalizeUploadName(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestNormalizeUploadName_Rejects(t *testing.T) {
	for _, raw := range []string{"", "   ", "..", "/", "notes.txt", "archive.zip", "no_extension"} {
		if _, err := NormalizeUploadName(raw); err == nil {
			t.Errorf("NormalizeUploadName(%q): expected error", raw)
		}
	}
}

func TestIsSupportedVideoExt(t *testing.T) {
	for _, ext := range []string{".mp4", ".MKV", " .mov", ".ts"} {
		if !IsSupportedVideoExt(ext) {
			t.Errorf("expected %q supported", ext)
		}
	}
	for _, ext := range []string{".txt", "", ".mp3", "mp4"} {
		if IsSupportedVideoExt(ext) {
			t.Errorf("expected %q unsupported", ext)
		}
	}
}
