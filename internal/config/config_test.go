package config

import (
	"reflect"
	"testing"
	"time"
)

func TestParseOrigins(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{raw: "", want: nil},
		{raw: "http://a.test", want: []string{"http://a.test"}},
		{raw: " http://a.test , ,http://b.test ", want: []string{"http://a.test", "http://b.test"}},
	}
	for _, tc := range tests {
		if got := parseOrigins(tc.raw); !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("parseOrigins(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SUBMIT_RATE_PER_MINUTE", "5")
	t.Setenv("ANALYSIS_CACHE_TTL_SECONDS", "not-a-number")
	t.Setenv("DRAFT_TTL_HOURS", "2")

	cfg := Load()
	if cfg.ServerPort != "9090" {
		t.Fatalf("ServerPort = %q", cfg.ServerPort)
	}
	if cfg.SubmitRatePerMinute != 5 {
		t.Fatalf("SubmitRatePerMinute = %d", cfg.SubmitRatePerMinute)
	}
	if cfg.AnalysisCacheTTL != 600*time.Second {
		t.Fatalf("invalid int should fall back to default, got %v", cfg.AnalysisCacheTTL)
	}
	if cfg.DraftTTL != 2*time.Hour {
		t.Fatalf("DraftTTL = %v", cfg.DraftTTL)
	}
}

func TestCacheKeys(t *testing.T) {
	if got := CacheKey.DraftAnswersKey("e1", "d1"); got != "exam:e1:draft:d1:answers" {
		t.Fatalf("DraftAnswersKey = %q", got)
	}
	if got := CacheKey.TeacherSessionKey("teacher_abc", "j1"); got != "teacher:teacher_abc:session:j1" {
		t.Fatalf("TeacherSessionKey = %q", got)
	}
}
