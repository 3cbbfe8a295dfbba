package lulustream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"unembed/models"
	"unembed/util"
)

func TestGetVideo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<script>
			jwplayer("vplayer").setup({
				sources: [{file: "https://be4792.lulucdn.example/hls2/01/00443/8qhz50cav97j_o/master.m3u8?t=Qk3vXm&s=1756"}],
				image: "https://be4792.lulucdn.example/i/01/00443/8qhz50cav97j.jpg"
			});
		</script>`)
	}))
	defer server.Close()

	ctx := &models.ResolveContext{
		Context:           context.Background(),
		Extractor:         Extractor,
		MatchedContentID:  "8qhz50cav97j",
		MatchedContentURL: server.URL + "/e/8qhz50cav97j",
	}
	streams, err := GetVideo(ctx)
	if err != nil {
		t.Fatalf("GetVideo() error = %v", err)
	}
	if len(streams) != 1 {
		t.Fatalf("GetVideo() returned %d streams, want 1", len(streams))
	}
	want := "https://be4792.lulucdn.example/hls2/01/00443/8qhz50cav97j_o/master.m3u8?t=Qk3vXm&s=1756"
	if streams[0].URL != want {
		t.Errorf("stream URL = %q, want %q", streams[0].URL, want)
	}
	if !streams[0].IsM3U8 {
		t.Error("IsM3U8 = false, want true for an hls source")
	}
}

func TestGetVideoWithoutFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body>The file is being converted</body></html>`)
	}))
	defer server.Close()

	ctx := &models.ResolveContext{
		Context:           context.Background(),
		Extractor:         Extractor,
		MatchedContentID:  "8qhz50cav97j",
		MatchedContentURL: server.URL + "/e/8qhz50cav97j",
	}
	if _, err := GetVideo(ctx); !errors.Is(err, util.ErrSourceNotFound) {
		t.Errorf("GetVideo() error = %v, want ErrSourceNotFound", err)
	}
}

func TestURLPatterns(t *testing.T) {
	tests := []struct {
		url   string
		match bool
	}{
		{"https://lulustream.com/e/8qhz50cav97j", true},
		{"https://luluvdo.com/d/8qhz50cav97j", true},
		{"https://lulu.st/e/8qhz50cav97j", true},
		{"https://lulu.example/e/8qhz50cav97j", false},
	}
	for _, tt := range tests {
		if _, matches := Extractor.MatchURL(tt.url); (matches != nil) != tt.match {
			t.Errorf("MatchURL(%q) matched = %v, want %v", tt.url, matches != nil, tt.match)
		}
	}
}
