package youtube

import "testing"

func TestExtractPlaylistID(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"https://www.youtube.com/playlist?list=PLabc123", "PLabc123"},
		{"https://www.youtube.com/watch?v=abcdefgh123&list=PLxyz", "PLxyz"},
		{"PLbare12345", "PLbare12345"},
		{"UUchannel99", "UUchannel99"},
		{"https://www.youtube.com/watch?v=abcdefgh123", ""},
		{"random text", ""},
	}
	for _, tc := range cases {
		if got := ExtractPlaylistID(tc.in); got != tc.want {
			t.Fatalf("ExtractPlaylistID(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestExtractVideoID(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/playlist?list=PLabc", ""},
		{"short", ""},
		{"not a url at all", ""},
	}
	for _, tc := range cases {
		if got := ExtractVideoID(tc.in); got != tc.want {
			t.Fatalf("ExtractVideoID(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseISODuration(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"PT1H2M3S", 3723},
		{"PT15M", 900},
		{"PT45S", 45},
		{"PT2H", 7200},
		{"garbage", 0},
	}
	for _, tc := range cases {
		if got := ParseISODuration(tc.in); got != tc.want {
			t.Fatalf("ParseISODuration(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
