package utils

import (
	"regexp"
	"testing"
)

func TestNewTicketToken(t *testing.T) {
	pattern := regexp.MustCompile(`^t_[a-z0-9]+$`)
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		tok := NewTicketToken(TicketTokenPrefix)
		if !pattern.MatchString(tok) {
			t.Fatalf("token %q does not match t_[a-z0-9]+", tok)
		}
		if seen[tok] {
			t.Fatalf("duplicate token %q", tok)
		}
		seen[tok] = true
	}

	manual := NewTicketToken(ManualTokenPrefix)
	if !regexp.MustCompile(`^m_[a-z0-9]+$`).MatchString(manual) {
		t.Fatalf("manual token %q does not match m_[a-z0-9]+", manual)
	}
}

func TestExtractTicketToken(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"t_abc123", "t_abc123"},
		{"  t_abc123  ", "t_abc123"},
		{"https://atempo.vercel.app/?auth=t_abc123", "t_abc123"},
		{"https://atempo.vercel.app/?token=t_abc123", "t_abc123"},
		{"https://atempo.vercel.app/?auth=t_abc123&x=1", "t_abc123"},
		// A URL without a recognized parameter falls through as raw input.
		{"https://atempo.vercel.app/?other=1", "https://atempo.vercel.app/?other=1"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := ExtractTicketToken(tc.in); got != tc.want {
			t.Errorf("ExtractTicketToken(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTicketURL(t *testing.T) {
	cases := []struct {
		base  string
		token string
		want  string
	}{
		{"https://atempo.vercel.app", "t_abc", "https://atempo.vercel.app/?auth=t_abc"},
		{"https://atempo.vercel.app/", "t_abc", "https://atempo.vercel.app/?auth=t_abc"},
		{"https://atempo.vercel.app//", "t_abc", "https://atempo.vercel.app/?auth=t_abc"},
	}
	for _, tc := range cases {
		if got := TicketURL(tc.base, tc.token); got != tc.want {
			t.Errorf("TicketURL(%q, %q) = %q, want %q", tc.base, tc.token, got, tc.want)
		}
	}
}
