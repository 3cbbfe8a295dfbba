package vidoza

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
			var player = new Clappr.Player({
				sourcesCode: [{ src: "https://str24.vidoza.example/wzkx6kkthvuz/v.mp4", type: "video/mp4", label: "SD", res: 480 }],
			});
		</script>`)
	}))
	defer server.Close()

	ctx := &models.ResolveContext{
		Context:           context.Background(),
		Extractor:         Extractor,
		MatchedContentID:  "wzkx6kkthvuz",
		MatchedContentURL: server.URL + "/embed-wzkx6kkthvuz.html",
	}
	streams, err := GetVideo(ctx)
	if err != nil {
		t.Fatalf("GetVideo() error = %v", err)
	}
	if len(streams) != 1 {
		t.Fatalf("GetVideo() returned %d streams, want 1", len(streams))
	}
	if streams[0].URL != "https://str24.vidoza.example/wzkx6kkthvuz/v.mp4" {
		t.Errorf("stream URL = %q", streams[0].URL)
	}
	if streams[0].Source != "Vidoza" || streams[0].Quality != models.DefaultQuality {
		t.Errorf("source/quality = %q/%q", streams[0].Source, streams[0].Quality)
	}
}

func TestGetVideoWithoutPlayer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body>File was deleted.</body></html>`)
	}))
	defer server.Close()

	ctx := &models.ResolveContext{
		Context:           context.Background(),
		Extractor:         Extractor,
		MatchedContentID:  "gone",
		MatchedContentURL: server.URL + "/embed-gone.html",
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
		{"https://vidoza.net/embed-wzkx6kkthvuz.html", true},
		{"https://videzz.net/embed-wzkx6kkthvuz.html", true},
		{"https://vidoza.net/wzkx6kkthvuz", true},
		{"https://example.com/embed-wzkx6kkthvuz.html", false},
	}
	for _, tt := range tests {
		if _, matches := Extractor.MatchURL(tt.url); (matches != nil) != tt.match {
			t.Errorf("MatchURL(%q) matched = %v, want %v", tt.url, matches != nil, tt.match)
		}
	}
}
