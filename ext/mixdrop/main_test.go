package mixdrop

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"unembed/models"
	"unembed/util"
)

const packedPlayerScript = `<script>
eval(function(p,a,c,k,e,d){e=function(c){return c};if(!''.replace(/^/,String)){while(c--){d[c]=k[c]||c}k=[function(e){return d[e]}];e=function(){return'\\w+'};c=1};while(c--){if(k[c]){p=p.replace(new RegExp('\\b'+e(c)+'\\b','g'),k[c])}}return p}('MDCore.0="1";',2,2,'wurl|//s-delivery38.mxdcontent.example/v/pkg5l7k3xq.mp4?s=rrwTZk&e=1756'.split('|')))
</script>`

func TestGetVideo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, packedPlayerScript)
	}))
	defer server.Close()

	ctx := &models.ResolveContext{
		Context:           context.Background(),
		Extractor:         Extractor,
		MatchedContentID:  "pkg5l7k3xq",
		MatchedContentURL: server.URL + "/e/pkg5l7k3xq",
	}
	streams, err := GetVideo(ctx)
	if err != nil {
		t.Fatalf("GetVideo() error = %v", err)
	}
	if len(streams) != 1 {
		t.Fatalf("GetVideo() returned %d streams, want 1", len(streams))
	}
	stream := streams[0]

	// the delivery URL is protocol-relative; it picks up the embed
	// page's scheme
	scheme := strings.SplitN(server.URL, ":", 2)[0]
	want := scheme + "://s-delivery38.mxdcontent.example/v/pkg5l7k3xq.mp4?s=rrwTZk&e=1756"
	if stream.URL != want {
		t.Errorf("stream URL = %q, want %q", stream.URL, want)
	}
	if stream.Headers["Referer"] != server.URL+"/" {
		t.Errorf("referer = %q, want %q", stream.Headers["Referer"], server.URL+"/")
	}
}

func TestGetVideoWithoutPackedPlayer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body>WE ARE SORRY<br>The video is unavailable.</body></html>`)
	}))
	defer server.Close()

	ctx := &models.ResolveContext{
		Context:           context.Background(),
		Extractor:         Extractor,
		MatchedContentID:  "gone",
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
		{"https://mixdrop.co/e/pkg5l7k3xq", true},
		{"https://mixdrop.ag/f/pkg5l7k3xq", true},
		{"https://mixdrp.to/e/pkg5l7k3xq", true},
		{"https://mixdrop.co/about", false},
	}
	for _, tt := range tests {
		if _, matches := Extractor.MatchURL(tt.url); (matches != nil) != tt.match {
			t.Errorf("MatchURL(%q) matched = %v, want %v", tt.url, matches != nil, tt.match)
		}
	}
}
