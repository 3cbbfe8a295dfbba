package ext

import (
	"unembed/ext/doodstream"
	"unembed/ext/filemoon"
	"unembed/ext/gogocdn"
	"unembed/ext/goodstream"
	"unembed/ext/kwik"
	"unembed/ext/lulustream"
	"unembed/ext/megacloud"
	"unembed/ext/mixdrop"
	"unembed/ext/mp4upload"
	"unembed/ext/okru"
	"unembed/ext/sendcm"
	"unembed/ext/sendvid"
	"unembed/ext/sibnet"
	"unembed/ext/speedfiles"
	"unembed/ext/streamlare"
	"unembed/ext/streamsb"
	"unembed/ext/streamtape"
	"unembed/ext/streamvid"
	"unembed/ext/streamwish"
	"unembed/ext/supervideo"
	"unembed/ext/upstream"
	"unembed/ext/uqload"
	"unembed/ext/vidmoly"
	"unembed/ext/vidoza"
	"unembed/ext/vidplay"
	"unembed/ext/vidsrc"
	"unembed/ext/vk"
	"unembed/ext/voe"
	"unembed/ext/vtube"
	"unembed/ext/wolfstream"
	"unembed/ext/yourupload"
	"unembed/models"
)

// List is the extractor catalog. Declaration order is match order: the
// dispatcher walks it top to bottom and the first matching descriptor
// wins, so host-specific entries sit above the generic packed players.
var List = []*models.Extractor{
	voe.Extractor,
	streamtape.Extractor,
	doodstream.Extractor,
	doodstream.ShortExtractor,
	vidoza.Extractor,
	filemoon.Extractor,
	mp4upload.Extractor,
	streamwish.Extractor,
	streamwish.VidHideExtractor,
	streamwish.FileLionsExtractor,
	mixdrop.Extractor,
	okru.Extractor,
	gogocdn.Extractor,
	megacloud.Extractor,
	megacloud.RapidCloudExtractor,
	kwik.Extractor,
	sendvid.Extractor,
	yourupload.Extractor,
	sibnet.Extractor,
	uqload.Extractor,
	vidmoly.Extractor,
	streamlare.Extractor,
	sendcm.Extractor,
	speedfiles.Extractor,
	vk.Extractor,
	vidplay.Extractor,
	vidsrc.Extractor,
	upstream.Extractor,
	vtube.Extractor,
	wolfstream.Extractor,
	goodstream.Extractor,
	lulustream.Extractor,
	supervideo.Extractor,
	streamvid.Extractor,
	streamsb.Extractor,
}

func ByCodeName(codeName string) *models.Extractor {
	for _, extractor := range List {
		if extractor.CodeName == codeName {
			return extractor
		}
	}
	return nil
}
