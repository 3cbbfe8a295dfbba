package enums

type ExtractorCategory string

const (
	ExtractorCategoryVideo ExtractorCategory = "video"
	ExtractorCategoryAudio ExtractorCategory = "audio"
)
