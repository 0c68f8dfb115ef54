package core

// Word is a dictionary headword entry. The surrogate id is minted at import
// time and never reused; one surface form can have several Word rows split by
// part of speech, language and etymology number.
type Word struct {
	ID           int64  `json:"id"`
	Word         string `json:"word"`
	POS          string `json:"pos"`
	Language     string `json:"language"`
	LangCode     string `json:"lang_code"`
	EtymologyNum int    `json:"etymology_num"`
}

// Definition is a single sense of a word
type Definition struct {
	ID       int64    `json:"id"`
	Text     string   `json:"text"`
	Examples []string `json:"examples"`
	Tags     []string `json:"tags"`
}

// Pronunciation holds one pronunciation record for a word. All fields other
// than the id are optional in the source data.
type Pronunciation struct {
	ID       int64   `json:"id"`
	IPA      *string `json:"ipa,omitempty"`
	AudioURL *string `json:"audioUrl,omitempty"`
	Accent   *string `json:"accent,omitempty"`
}

// Etymology is an origin note attached to a word
type Etymology struct {
	ID     int64  `json:"id"`
	WordID int64  `json:"word_id"`
	Text   string `json:"text"`
}

// Translation maps a word into another language
type Translation struct {
	ID             int64  `json:"id"`
	TargetLanguage string `json:"targetLanguage"`
	Translation    string `json:"translation"`
}

// FullDefinition is the denormalized response for a single word id: the word
// row joined with all of its children. Etymology is a single optional value;
// when several rows exist the first inserted one wins.
type FullDefinition struct {
	Word           string          `json:"word"`
	POS            string          `json:"pos"`
	Language       string          `json:"language"`
	LangCode       string          `json:"lang_code"`
	Definitions    []Definition    `json:"definitions"`
	Pronunciations []Pronunciation `json:"pronunciations"`
	Etymology      *string         `json:"etymology,omitempty"`
	Translations   []Translation   `json:"translations"`
}

// SearchResult is one ranked hit from Search. Score is computed at query
// time and never persisted; higher is better.
type SearchResult struct {
	ID      int64   `json:"id"`
	Word    string  `json:"word"`
	POS     string  `json:"pos"`
	Preview string  `json:"preview"`
	Score   float64 `json:"score"`
}
