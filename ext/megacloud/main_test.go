package megacloud

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"unembed/models"
	"unembed/util"
	"unembed/util/deobf"
)

func TestFindClientKey(t *testing.T) {
	tests := []struct {
		name string
		page string
		want string
	}{
		{
			name: "meta tag",
			page: `<head><meta name="_gg_fb" content="aB3xY9zQ"></head>`,
			want: "aB3xY9zQ",
		},
		{
			name: "html comment",
			page: `<body><!-- _is_th:Qw12Er34 --></body>`,
			want: "Qw12Er34",
		},
		{
			name: "split key object",
			page: `<script>window._lk_db = {y: "BBBB", x: "AAAA", z: "CCCC"};</script>`,
			want: "AAAABBBBCCCC",
		},
		{
			name: "data attribute",
			page: `<div data-dpi="Zx98Cv76" class="player"></div>`,
			want: "Zx98Cv76",
		},
		{
			name: "script nonce",
			page: `<script nonce="Nm55Kl21">init();</script>`,
			want: "Nm55Kl21",
		},
		{
			name: "window variable",
			page: `<script>window._xy_ws = 'Pp44Oo33';</script>`,
			want: "Pp44Oo33",
		},
		{
			name: "earlier variant wins",
			page: `<meta name="_gg_fb" content="first"><div data-dpi="second">`,
			want: "first",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := findClientKey(tt.page)
			if err != nil {
				t.Fatalf("findClientKey() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("findClientKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFindClientKeyMissing(t *testing.T) {
	if _, err := findClientKey("<html><body>player</body></html>"); !errors.Is(err, util.ErrSourceNotFound) {
		t.Errorf("findClientKey() error = %v, want ErrSourceNotFound", err)
	}
}

func TestFindClientKeyIncompleteSplit(t *testing.T) {
	page := `<script>window._lk_db = {x: "AAAA", y: "BBBB"};</script>`
	if _, err := findClientKey(page); !errors.Is(err, util.ErrSourceNotFound) {
		t.Errorf("findClientKey() error = %v, want ErrSourceNotFound", err)
	}
}

// overrideKeysEndpoint points the key table at a test server and clears
// the cache, restoring both when the test ends.
func overrideKeysEndpoint(t *testing.T, endpoint string) {
	t.Helper()
	savedEndpoint := keysEndpoint
	savedKeys := keyTable.keys
	keysEndpoint = endpoint
	keyTable.keys = nil
	t.Cleanup(func() {
		keysEndpoint = savedEndpoint
		keyTable.keys = savedKeys
	})
}

func TestRemoteKeyCaching(t *testing.T) {
	var calls int
	healthy := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if !healthy {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `{"mega":"m-key","rapid":"r-key"}`)
	}))
	defer server.Close()
	overrideKeysEndpoint(t, server.URL)

	ctx := &models.ResolveContext{Context: context.Background(), Extractor: Extractor}

	if _, err := remoteKey(ctx, "mega"); err == nil {
		t.Fatal("remoteKey() should fail while the endpoint is down")
	}
	healthy = true
	key, err := remoteKey(ctx, "mega")
	if err != nil {
		t.Fatalf("remoteKey() error = %v", err)
	}
	if key != "m-key" {
		t.Errorf("remoteKey() = %q, want %q", key, "m-key")
	}
	if calls != 2 {
		t.Errorf("endpoint fetched %d times, want 2: a failed fetch must not be cached", calls)
	}

	if key, err := remoteKey(ctx, "rapid"); err != nil || key != "r-key" {
		t.Errorf("remoteKey(rapid) = %q, %v, want %q, nil", key, err, "r-key")
	}
	if calls != 2 {
		t.Errorf("endpoint fetched %d times after caching, want 2", calls)
	}

	if _, err := remoteKey(ctx, "missing"); !errors.Is(err, util.ErrKeysUnavailable) {
		t.Errorf("remoteKey(missing) error = %v, want ErrKeysUnavailable", err)
	}
}

func TestGetVideo(t *testing.T) {
	const (
		contentID = "Ab12Cd34Ef56"
		clientKey = "aTo3pXb6HC4BWKuUWyGmQGevLdDxGYeR"
		megaKey   = "Xk29fPqLm48RtUvWyZaB7cDeFgHiJ0Sn"
	)

	var server *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/keys.json", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `{"mega":%q}`, megaKey)
	})
	mux.HandleFunc("/embed-1/v3/e-1/"+contentID, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `<html><head><meta name="_gg_fb" content=%q></head></html>`, clientKey)
	})
	mux.HandleFunc("/embed-1/v3/e-1/getSources", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("id") != contentID || r.URL.Query().Get("_k") != clientKey {
			http.NotFound(w, r)
			return
		}
		sources := fmt.Sprintf(`[{"file":"%s/master.m3u8","type":"hls"}]`, server.URL)
		fmt.Fprintf(w,
			`{"sources":%q,"encrypted":true,"tracks":[`+
				`{"file":%q,"label":"English","kind":"captions"},`+
				`{"file":%q,"kind":"thumbnails"}]}`,
			encryptSources(sources, clientKey, megaKey),
			server.URL+"/subs/eng.vtt",
			server.URL+"/thumbnails.vtt",
		)
	})
	mux.HandleFunc("/master.m3u8", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, "#EXTM3U\n#EXT-X-STREAM-INF:PROGRAM-ID=1,BANDWIDTH=2000000,RESOLUTION=1920x1080\n%s/hls/1080/index.m3u8\n", server.URL)
	})
	server = httptest.NewServer(mux)
	defer server.Close()
	overrideKeysEndpoint(t, server.URL+"/keys.json")

	embedURL := server.URL + "/embed-1/e-1/" + contentID
	ctx := &models.ResolveContext{
		Context:           context.Background(),
		Request:           &models.Request{URL: embedURL},
		Extractor:         Extractor,
		MatchedContentID:  contentID,
		MatchedContentURL: embedURL,
		MatchedGroups:     map[string]string{"prefix": "embed-1", "id": contentID},
	}
	streams, err := GetVideo(ctx)
	if err != nil {
		t.Fatalf("GetVideo() error = %v", err)
	}
	if len(streams) != 2 {
		t.Fatalf("GetVideo() returned %d streams, want master + 1 variant", len(streams))
	}

	master := streams[0]
	if master.URL != server.URL+"/master.m3u8" {
		t.Errorf("master URL = %q, want %q", master.URL, server.URL+"/master.m3u8")
	}
	if !master.IsM3U8 {
		t.Error("master stream should be marked m3u8")
	}
	if master.Source != "MegaCloud" {
		t.Errorf("master source = %q, want %q", master.Source, "MegaCloud")
	}
	if len(master.Subtitles) != 1 {
		t.Fatalf("master has %d subtitles, want 1 (thumbnails track must be dropped)", len(master.Subtitles))
	}
	if sub := master.Subtitles[0]; sub.URL != server.URL+"/subs/eng.vtt" || sub.Name != "English" {
		t.Errorf("subtitle = %q %q, want %q %q", sub.Name, sub.URL, "English", server.URL+"/subs/eng.vtt")
	}

	variant := streams[1]
	if variant.URL != server.URL+"/hls/1080/index.m3u8" {
		t.Errorf("variant URL = %q, want %q", variant.URL, server.URL+"/hls/1080/index.m3u8")
	}
	if variant.Quality != "1080p" {
		t.Errorf("variant quality = %q, want %q", variant.Quality, "1080p")
	}
	if len(variant.Subtitles) != 1 {
		t.Errorf("variant has %d subtitles, want 1", len(variant.Subtitles))
	}
}

func TestGetVideoLegacy(t *testing.T) {
	const (
		contentID = "xYz987AbC654"
		rapidKey  = "legacy-rapid-passphrase"
	)

	var server *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/keys.json", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `{"rapid":%q}`, rapidKey)
	})
	mux.HandleFunc("/ajax/embed-1-v2/getSources", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("id") != contentID {
			http.NotFound(w, r)
			return
		}
		sources := fmt.Sprintf(`[{"file":"%s/video.mp4"}]`, server.URL)
		encrypted, err := deobf.EncryptSaltedAES([]byte(sources), []byte(rapidKey))
		if err != nil {
			t.Errorf("EncryptSaltedAES() error = %v", err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		fmt.Fprintf(w, `{"sources":%q,"encrypted":true,"tracks":[]}`,
			base64.StdEncoding.EncodeToString(encrypted))
	})
	server = httptest.NewServer(mux)
	defer server.Close()
	overrideKeysEndpoint(t, server.URL+"/keys.json")

	embedURL := server.URL + "/embed-1/e-1/" + contentID
	ctx := &models.ResolveContext{
		Context:           context.Background(),
		Request:           &models.Request{URL: embedURL},
		Extractor:         RapidCloudExtractor,
		MatchedContentID:  contentID,
		MatchedContentURL: embedURL,
		MatchedGroups:     map[string]string{"prefix": "embed-1", "id": contentID},
	}
	streams, err := GetVideoLegacy(ctx)
	if err != nil {
		t.Fatalf("GetVideoLegacy() error = %v", err)
	}
	if len(streams) != 1 {
		t.Fatalf("GetVideoLegacy() returned %d streams, want 1", len(streams))
	}
	if streams[0].URL != server.URL+"/video.mp4" {
		t.Errorf("stream URL = %q, want %q", streams[0].URL, server.URL+"/video.mp4")
	}
	if streams[0].IsM3U8 {
		t.Error("plain mp4 stream should not be marked m3u8")
	}
	if streams[0].Source != "RapidCloud" {
		t.Errorf("stream source = %q, want %q", streams[0].Source, "RapidCloud")
	}
}

func TestEmbedPatterns(t *testing.T) {
	tests := []struct {
		url    string
		match  bool
		prefix string
		id     string
	}{
		{"https://megacloud.tv/embed-1/e-1/abc123DEF456?k=1", true, "embed-1", "abc123DEF456"},
		{"https://megacloud.blog/embed-1/v2/e-1/abc123DEF456?z=", true, "embed-1", "abc123DEF456"},
		{"https://rabbitstream.net/ajax/embed-6/e-1/xyz789", true, "embed-6", "xyz789"},
		{"https://rapid-cloud.co/embed-2/e-1/q-W_e", true, "embed-2", "q-W_e"},
		{"https://megacloud.tv/embed/e-1/abc", false, "", ""},
		{"https://example.com/embed-1/e-1/abc", false, "", ""},
	}
	for _, tt := range tests {
		pattern, matches := Extractor.MatchURL(tt.url)
		if (matches != nil) != tt.match {
			t.Errorf("MatchURL(%q) matched = %v, want %v", tt.url, matches != nil, tt.match)
			continue
		}
		if matches == nil {
			continue
		}
		groups := map[string]string{}
		for i, name := range pattern.SubexpNames() {
			if name != "" && i < len(matches) {
				groups[name] = matches[i]
			}
		}
		if groups["prefix"] != tt.prefix || groups["id"] != tt.id {
			t.Errorf("MatchURL(%q) groups = %q/%q, want %q/%q",
				tt.url, groups["prefix"], groups["id"], tt.prefix, tt.id)
		}
	}
}
