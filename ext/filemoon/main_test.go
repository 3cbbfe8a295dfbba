package filemoon

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

// packedPlayerScript packs a minimal player setup the way the embed
// does, unpacking to: var sources={file:"<masterURL>"};
func packedPlayerScript(masterURL string) string {
	return fmt.Sprintf(`eval(function(p,a,c,k,e,d){e=function(c){return c.toString(36)};if(!''.replace(/^/,String)){while(c--){d[c.toString(a)]=k[c]||c.toString(a)}k=[function(e){return d[e]}];e=function(){return'\w+'};c=1};while(c--){if(k[c]){p=p.replace(new RegExp('\b'+e(c)+'\b','g'),k[c])}}return p}('1 0={file:"2"};',3,3,'sources|var|%s'.split('|'))`, masterURL)
}

func TestGetVideo(t *testing.T) {
	const contentID = "onaumgvqkkb9"

	var server *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/e/"+contentID, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `<html><iframe src="%s/player/%s" frameborder="0"></iframe></html>`,
			server.URL, contentID)
	})
	mux.HandleFunc("/player/"+contentID, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Referer") == "" {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		fmt.Fprintf(w, `<html><script data-cfasync="false" type="text/javascript">%s</script></html>`,
			packedPlayerScript(server.URL+"/hls/master.m3u8"))
	})
	mux.HandleFunc("/hls/master.m3u8", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "#EXTM3U\n"+
			"#EXT-X-STREAM-INF:PROGRAM-ID=1,BANDWIDTH=800000,RESOLUTION=640x360\n"+
			"index-f2-v1-a1.m3u8\n"+
			"#EXT-X-STREAM-INF:PROGRAM-ID=1,BANDWIDTH=2500000,RESOLUTION=1920x1080\n"+
			"index-f1-v1-a1.m3u8\n")
	})
	server = httptest.NewServer(mux)
	defer server.Close()

	ctx := &models.ResolveContext{
		Context:           context.Background(),
		Extractor:         Extractor,
		MatchedContentID:  contentID,
		MatchedContentURL: server.URL + "/e/" + contentID,
	}
	streams, err := GetVideo(ctx)
	if err != nil {
		t.Fatalf("GetVideo() error = %v", err)
	}

	wantURLs := []string{
		server.URL + "/hls/master.m3u8",
		server.URL + "/hls/index-f2-v1-a1.m3u8",
		server.URL + "/hls/index-f1-v1-a1.m3u8",
	}
	if len(streams) != len(wantURLs) {
		t.Fatalf("GetVideo() returned %d streams, want %d", len(streams), len(wantURLs))
	}
	for i, want := range wantURLs {
		if streams[i].URL != want {
			t.Errorf("stream[%d] URL = %q, want %q", i, streams[i].URL, want)
		}
	}
	if !streams[0].IsM3U8 {
		t.Error("master stream should be marked m3u8")
	}
	if streams[1].Quality != "360p" || streams[2].Quality != "1080p" {
		t.Errorf("variant qualities = %q, %q, want 360p, 1080p",
			streams[1].Quality, streams[2].Quality)
	}
	// the referer is the inner player frame, not the outer embed
	wantReferer := server.URL + "/player/" + contentID
	if streams[0].Headers["Referer"] != wantReferer {
		t.Errorf("referer = %q, want %q", streams[0].Headers["Referer"], wantReferer)
	}
}

func TestGetVideoWithoutPlayerScript(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><script data-cfasync="false">var x = 1;</script></html>`)
	}))
	defer server.Close()

	ctx := &models.ResolveContext{
		Context:           context.Background(),
		Extractor:         Extractor,
		MatchedContentURL: server.URL + "/e/gone",
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
		{"https://filemoon.sx/e/onaumgvqkkb9", true},
		{"https://filemoon.to/d/onaumgvqkkb9", true},
		{"https://kerapoxy.cc/e/onaumgvqkkb9", true},
		{"https://filemoon.sx/faq", false},
	}
	for _, tt := range tests {
		if _, matches := Extractor.MatchURL(tt.url); (matches != nil) != tt.match {
			t.Errorf("MatchURL(%q) matched = %v, want %v", tt.url, matches != nil, tt.match)
		}
	}
}
