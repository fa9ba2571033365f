// Package media defines the unified model every provider response is normalized into.
//
// The types here are pure data contracts. Optional fields use pointers or
// zero values with omitempty so converters can express "the provider did not
// send this" without inventing data.
package media

// Category groups providers by the kind of media they serve.
type Category string

const (
	CategoryAnime  Category = "anime"
	CategoryMovie  Category = "movies"
	CategoryManga  Category = "manga"
	CategoryMeta   Category = "meta"
	CategoryBook   Category = "books"
	CategoryNovel  Category = "light-novels"
	CategoryComic  Category = "comics"
	CategoryNews   Category = "news"
)

// Categories lists every supported provider category.
func Categories() []Category {
	return []Category{
		CategoryAnime,
		CategoryMovie,
		CategoryManga,
		CategoryMeta,
		CategoryBook,
		CategoryNovel,
		CategoryComic,
		CategoryNews,
	}
}

func (c Category) String() string {
	return string(c)
}

// Valid reports whether the category is one of the supported set.
func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// SubOrDub expresses the caller's audio track preference for anime extraction.
type SubOrDub string

const (
	Sub  SubOrDub = "sub"
	Dub  SubOrDub = "dub"
	Raw  SubOrDub = "raw"
	Both SubOrDub = "both"
)

// Status is the airing/publication state of a title.
type Status string

const (
	StatusOngoing    Status = "Ongoing"
	StatusCompleted  Status = "Completed"
	StatusHiatus     Status = "Hiatus"
	StatusCancelled  Status = "Cancelled"
	StatusNotYet     Status = "Not yet aired"
	StatusUnknown    Status = "Unknown"
)

// MediaType distinguishes the broad kind of a title inside a category.
type MediaType string

const (
	TypeTV      MediaType = "TV"
	TypeMovie   MediaType = "MOVIE"
	TypeOVA     MediaType = "OVA"
	TypeONA     MediaType = "ONA"
	TypeSpecial MediaType = "SPECIAL"
	TypeManga   MediaType = "MANGA"
	TypeNovel   MediaType = "NOVEL"
	TypeOneShot MediaType = "ONE_SHOT"
)
