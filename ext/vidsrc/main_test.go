package vidsrc

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

func TestStripPlaceholders(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "segment placeholder",
			in:   "https://tmstr.example/pl/{v1}/h4kz2/list.m3u8",
			want: "https://tmstr.example/pl/h4kz2/list.m3u8",
		},
		{
			name: "inline placeholder",
			in:   "https://{v1}tmstr.example/list.m3u8",
			want: "https://tmstr.example/list.m3u8",
		},
		{
			name: "multiple placeholders",
			in:   "https://tmstr.example/{v1}/pl/{e9x}/list.m3u8",
			want: "https://tmstr.example/pl/list.m3u8",
		},
		{
			name: "clean url untouched",
			in:   "https://tmstr.example/pl/list.m3u8",
			want: "https://tmstr.example/pl/list.m3u8",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripPlaceholders(tt.in); got != tt.want {
				t.Errorf("stripPlaceholders(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCollectMirrors(t *testing.T) {
	ctx := &models.ResolveContext{Context: context.Background(), Extractor: Extractor}
	const origin = "https://cloudnestra.example/"

	rawFile := "https://tmstr.example/pl/{v1}/h4kz2/list.m3u8 or https://mirror.example/cdn/backup.mp4"
	streams := collectMirrors(ctx, rawFile, origin)
	if len(streams) != 2 {
		t.Fatalf("collectMirrors() returned %d streams, want 2", len(streams))
	}
	if streams[0].URL != "https://tmstr.example/pl/h4kz2/list.m3u8" {
		t.Errorf("primary URL = %q", streams[0].URL)
	}
	if !streams[0].IsM3U8 || streams[1].IsM3U8 {
		t.Errorf("IsM3U8 = %v/%v, want true/false", streams[0].IsM3U8, streams[1].IsM3U8)
	}
	if streams[0].Source != "VidSrc" || streams[1].Source != "VidSrc (Backup)" {
		t.Errorf("sources = %q/%q", streams[0].Source, streams[1].Source)
	}
	for _, stream := range streams {
		if stream.Headers["Referer"] != origin {
			t.Errorf("referer = %q, want %q", stream.Headers["Referer"], origin)
		}
	}
}

func TestCollectMirrorsDropsBrokenCandidates(t *testing.T) {
	ctx := &models.ResolveContext{Context: context.Background(), Extractor: Extractor}

	streams := collectMirrors(ctx, "PLAYER_ERROR or https://mirror.example/cdn/backup.mp4", "https://o.example/")
	if len(streams) != 1 {
		t.Fatalf("collectMirrors() returned %d streams, want 1", len(streams))
	}
	// The surviving candidate keeps its mirror position.
	if streams[0].Source != "VidSrc (Backup)" {
		t.Errorf("source = %q, want the backup label", streams[0].Source)
	}

	if got := collectMirrors(ctx, "{v1} or {v2}", "https://o.example/"); len(got) != 0 {
		t.Errorf("collectMirrors() returned %d streams for junk input, want 0", len(got))
	}
}

func TestGetVideo(t *testing.T) {
	const embedPath = "/embed/tt31184028"

	var server *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc(embedPath, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body>
			<iframe id="player_iframe" src="/rcp/M4wzJTI2dGV4dA==" allowfullscreen></iframe>
		</body></html>`)
	})
	mux.HandleFunc("/rcp/M4wzJTI2dGV4dA==", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Referer") != server.URL+embedPath {
			http.Error(w, "bad referer", http.StatusForbidden)
			return
		}
		fmt.Fprint(w, `<script>
			loadIframe({ src: '/prorcp/NmQ1ZDYzY2Rh' });
		</script>`)
	})
	mux.HandleFunc("/prorcp/NmQ1ZDYzY2Rh", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Referer") != server.URL+"/rcp/M4wzJTI2dGV4dA==" {
			http.Error(w, "bad referer", http.StatusForbidden)
			return
		}
		fmt.Fprint(w, `<script>
			new Playerjs({
				id: "player",
				file: 'https://tmstr.example/pl/{v1}/h4kz2/list.m3u8 or https://mirror.example/cdn/backup.mp4',
			});
		</script>`)
	})
	server = httptest.NewServer(mux)
	defer server.Close()

	ctx := &models.ResolveContext{
		Context:           context.Background(),
		Extractor:         Extractor,
		MatchedContentID:  "tt31184028",
		MatchedContentURL: server.URL + embedPath,
	}
	streams, err := GetVideo(ctx)
	if err != nil {
		t.Fatalf("GetVideo() error = %v", err)
	}
	if len(streams) != 2 {
		t.Fatalf("GetVideo() returned %d streams, want 2", len(streams))
	}
	if streams[0].URL != "https://tmstr.example/pl/h4kz2/list.m3u8" {
		t.Errorf("primary URL = %q", streams[0].URL)
	}
	if streams[0].Quality != models.DefaultQuality {
		t.Errorf("quality = %q, want %q", streams[0].Quality, models.DefaultQuality)
	}
	if streams[0].Headers["Referer"] != server.URL+"/" {
		t.Errorf("referer = %q, want the player origin %q", streams[0].Headers["Referer"], server.URL+"/")
	}
	if streams[1].Source != "VidSrc (Backup)" {
		t.Errorf("mirror source = %q", streams[1].Source)
	}
}

func TestGetVideoWithoutIframe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body>Media not found.</body></html>`)
	}))
	defer server.Close()

	ctx := &models.ResolveContext{
		Context:           context.Background(),
		Extractor:         Extractor,
		MatchedContentID:  "tt0000000",
		MatchedContentURL: server.URL + "/embed/tt0000000",
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
		{"https://vidsrc.net/embed/tt31184028", true},
		{"https://vidsrc.xyz/embed/movie?tmdb=786892", true},
		{"https://vidsrc.me/embed/tv/1399/1/1", true},
		{"https://www.vidsrc.in/embed/tt31184028", true},
		{"https://vidsrc.net/api/status", false},
	}
	for _, tt := range tests {
		if _, matches := Extractor.MatchURL(tt.url); (matches != nil) != tt.match {
			t.Errorf("MatchURL(%q) matched = %v, want %v", tt.url, matches != nil, tt.match)
		}
	}
}
