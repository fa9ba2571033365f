package media

// ChapterPage is a single resolved page of a manga chapter.
//
// Page numbers are 1-based. Img is either a direct image URL (with Headers
// required to fetch it) or a data URL carrying the already-decrypted bytes.
type ChapterPage struct {
	Page    int               `json:"page"`
	Img     string            `json:"img"`
	Headers map[string]string `json:"headers,omitempty"`
}

// ChapterPages is the resolved page list for one chapter.
//
// Pages are sorted ascending by page number and contiguous after a complete
// extraction.
type ChapterPages struct {
	ChapterID string        `json:"chapterId"`
	Pages     []ChapterPage `json:"pages"`
}
