package parser

import (
	"bytes"
	"context"
	"fmt"
	"net/url"

	gom3u8 "github.com/etherlabsio/go-m3u8/m3u8"
	"github.com/grafov/m3u8"
	"go.uber.org/zap"

	"unembed/models"
	"unembed/util"
)

// ParseM3U8FromURL fetches an HLS playlist and expands it into stream
// entries. Relative variant URIs are resolved against the playlist URL.
func ParseM3U8FromURL(ctx context.Context, playlistURL string, opts *Options) ([]*models.RawStream, error) {
	content, err := util.FetchBytes(ctx, opts.client(), playlistURL, opts.headers())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch m3u8: %w", err)
	}
	return ParseM3U8Content(content, playlistURL, opts)
}

// ParseM3U8Content expands an HLS playlist into stream entries. A
// master playlist yields one stream per variant in playlist order; a
// media playlist yields a single stream pointing at baseURL.
func ParseM3U8Content(content []byte, baseURL string, opts *Options) ([]*models.RawStream, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}

	playlist, listType, err := m3u8.DecodeFrom(bytes.NewReader(content), true)
	if err != nil {
		return nil, fmt.Errorf("failed to decode m3u8: %w", err)
	}

	switch listType {
	case m3u8.MASTER:
		master, ok := playlist.(*m3u8.MasterPlaylist)
		if !ok {
			return nil, util.ErrDecodeFailed
		}
		return parseMasterPlaylist(master, base, opts), nil
	case m3u8.MEDIA:
		inspectMediaPlaylist(content)
		stream := opts.newStream(base.String())
		stream.IsM3U8 = true
		return []*models.RawStream{stream}, nil
	default:
		return nil, fmt.Errorf("unsupported m3u8 playlist type: %d", listType)
	}
}

func parseMasterPlaylist(
	master *m3u8.MasterPlaylist,
	base *url.URL,
	opts *Options,
) []*models.RawStream {
	var streams []*models.RawStream
	for _, variant := range master.Variants {
		if variant == nil || variant.URI == "" {
			continue
		}
		stream := opts.newStream(resolveURL(base, variant.URI))
		stream.IsM3U8 = true
		stream.Quality = variantQuality(variant)
		if codec := getVideoCodec(variant.Codecs); codec != "" {
			zap.S().Debugf(
				"variant %s: codec=%s audio=%s bandwidth=%d",
				stream.Quality, codec,
				getAudioCodec(variant.Codecs), variant.Bandwidth,
			)
		}
		streams = append(streams, stream)
	}
	return streams
}

func variantQuality(variant *m3u8.Variant) string {
	if variant.Resolution != "" {
		var width, height int
		if _, err := fmt.Sscanf(variant.Resolution, "%dx%d", &width, &height); err == nil && height > 0 {
			return fmt.Sprintf("%dp", height)
		}
	}
	return models.DefaultQuality
}

// inspectMediaPlaylist logs segment level details of a media playlist.
func inspectMediaPlaylist(content []byte) {
	playlist, err := gom3u8.ReadString(string(content))
	if err != nil {
		zap.S().Debugf("failed to inspect media playlist: %v", err)
		return
	}
	zap.S().Debugf(
		"media playlist: %d segments, %.1fs total, live=%v",
		playlist.SegmentSize(), playlist.Duration(), playlist.IsLive(),
	)
}
