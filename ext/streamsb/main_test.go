package streamsb

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"unembed/models"
	"unembed/util"
)

func TestGetVideo(t *testing.T) {
	const contentID = "i9oz8nm3kqvw"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("watchsb") != "sbstream" {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		encoded := strings.TrimPrefix(r.URL.Path, "/sources50/")
		decoded, err := hex.DecodeString(encoded)
		if err != nil || string(decoded) != "||"+contentID+"||||streamsb" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `{
			"stream_data": {
				"file": "https://delivery.sbcdn.example/hls/master.m3u8",
				"backup": "https://mirror.sbcdn.example/hls/master.m3u8"
			},
			"status_code": 200
		}`)
	}))
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
	if len(streams) != 2 {
		t.Fatalf("GetVideo() returned %d streams, want primary + backup", len(streams))
	}
	if streams[0].URL != "https://delivery.sbcdn.example/hls/master.m3u8" {
		t.Errorf("primary URL = %q", streams[0].URL)
	}
	if !streams[0].IsM3U8 || !streams[1].IsM3U8 {
		t.Error("hls streams should be marked m3u8")
	}
	if streams[0].Source != "StreamSB" {
		t.Errorf("primary source = %q, want StreamSB", streams[0].Source)
	}
	if streams[1].Source != "StreamSB (Backup)" {
		t.Errorf("backup source = %q, want StreamSB (Backup)", streams[1].Source)
	}
}

func TestGetVideoWithoutStreamData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"status_code":404,"msg":"file not found"}`)
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
		{"https://streamsb.net/e/i9oz8nm3kqvw", true},
		{"https://sbplay2.xyz/d/i9oz8nm3kqvw", true},
		{"https://ssbstream.net/embed-i9oz8nm3kqvw", true},
		{"https://sbfull.com/v/i9oz8nm3kqvw.html", true},
		{"https://example.com/e/i9oz8nm3kqvw", false},
	}
	for _, tt := range tests {
		if _, matches := Extractor.MatchURL(tt.url); (matches != nil) != tt.match {
			t.Errorf("MatchURL(%q) matched = %v, want %v", tt.url, matches != nil, tt.match)
		}
	}
}
