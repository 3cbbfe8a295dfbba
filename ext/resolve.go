package ext

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"unembed/config"
	"unembed/models"
)

// Resolve turns a page URL into the playable streams behind it. An
// unsupported host resolves to an empty list, and so does every
// failure inside an extractor: errors and panics stop at this
// boundary and only reach the caller as log records.
func Resolve(ctx context.Context, rawURL string) []*models.RawStream {
	return ResolveRequest(ctx, &models.Request{URL: rawURL})
}

func ResolveRequest(ctx context.Context, request *models.Request) (streams []*models.RawStream) {
	if request == nil || request.URL == "" {
		return nil
	}
	log := zap.S().With("request_id", uuid.NewString())
	defer func() {
		if r := recover(); r != nil {
			log.Warnf("recovered from panic while resolving %s: %v", request.URL, r)
			streams = nil
		}
	}()

	// callers without a deadline still get the bounded default
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.Env.RequestTimeout)
		defer cancel()
	}

	start := time.Now()
	ctxs, err := CtxsByURL(ctx, request.URL)
	if err != nil {
		log.Warnf("failed to match %s: %v", request.URL, err)
		return nil
	}
	if len(ctxs) == 0 {
		log.Debugf("no extractor matches %s", request.URL)
		return nil
	}

	for _, resolveCtx := range ctxs {
		extractor := resolveCtx.Extractor
		if cfg := config.GetExtractorConfig(extractor); cfg != nil {
			if cfg.IsDisabled {
				log.Debugf("%s: disabled by config, skipping", extractor.CodeName)
				continue
			}
			if request.Referer == "" && cfg.Referer != "" {
				request.Referer = cfg.Referer
			}
		}
		resolveCtx.Request = request

		log.Debugw("dispatching",
			"extractor", extractor.CodeName,
			"content_id", resolveCtx.MatchedContentID,
		)
		streams = append(streams, runExtractor(log, resolveCtx)...)
	}
	streams = lo.UniqBy(streams, func(stream *models.RawStream) string {
		return stream.URL
	})

	log.Infow("resolved",
		"url", request.URL,
		"streams", len(streams),
		"elapsed", time.Since(start),
	)
	return streams
}

// runExtractor invokes a single extractor and absorbs whatever goes
// wrong inside it.
func runExtractor(
	log *zap.SugaredLogger,
	ctx *models.ResolveContext,
) (streams []*models.RawStream) {
	defer func() {
		if r := recover(); r != nil {
			log.Warnf("%s: recovered from panic: %v", ctx.Extractor.CodeName, r)
			streams = nil
		}
	}()

	response, err := ctx.Extractor.Run(ctx)
	if err != nil {
		log.Warnw("extraction failed",
			"extractor", ctx.Extractor.CodeName,
			"url", ctx.MatchedContentURL,
			"error", err,
		)
		return nil
	}
	if response == nil {
		return nil
	}
	return response.Streams
}
