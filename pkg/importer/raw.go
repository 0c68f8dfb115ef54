package importer

// RawWordEntry is one line of the JSONL input: a single sense-group entry in
// the Wiktionary export format. Only the fields the schema stores are
// declared; everything else in a line is ignored by the decoder.
type RawWordEntry struct {
	Word            string           `json:"word"`
	POS             string           `json:"pos"`
	Lang            string           `json:"lang"`
	LangCode        string           `json:"lang_code"`
	EtymologyNumber int              `json:"etymology_number"`
	EtymologyText   string           `json:"etymology_text"`
	Senses          []RawSense       `json:"senses"`
	Sounds          []RawSound       `json:"sounds"`
	Translations    []RawTranslation `json:"translations"`
}

// RawSense is a single sense/definition of a raw entry
type RawSense struct {
	Glosses    []string     `json:"glosses"`
	RawGlosses []string     `json:"raw_glosses"`
	Examples   []RawExample `json:"examples"`
	Tags       []string     `json:"tags"`
}

// RawExample is an example sentence attached to a sense
type RawExample struct {
	Text string `json:"text"`
}

// RawSound is a pronunciation record of a raw entry
type RawSound struct {
	IPA    string   `json:"ipa"`
	Audio  string   `json:"audio"`
	OggURL string   `json:"ogg_url"`
	MP3URL string   `json:"mp3_url"`
	Tags   []string `json:"tags"`
}

// RawTranslation is a translation record of a raw entry
type RawTranslation struct {
	Lang string `json:"lang"`
	Code string `json:"code"`
	Word string `json:"word"`
}

// definitionText returns the sense's definition, preferring cleaned glosses
// over raw ones. Empty means the sense carries no usable definition and is
// skipped.
func (s *RawSense) definitionText() string {
	if len(s.Glosses) > 0 {
		return s.Glosses[0]
	}
	if len(s.RawGlosses) > 0 {
		return s.RawGlosses[0]
	}
	return ""
}

// exampleTexts flattens the sense's examples into plain strings
func (s *RawSense) exampleTexts() []string {
	if len(s.Examples) == 0 {
		return nil
	}
	texts := make([]string, 0, len(s.Examples))
	for _, e := range s.Examples {
		if e.Text != "" {
			texts = append(texts, e.Text)
		}
	}
	return texts
}

// audioURL picks the best audio reference: ogg, then mp3, then the generic
// audio field.
func (s *RawSound) audioURL() string {
	if s.OggURL != "" {
		return s.OggURL
	}
	if s.MP3URL != "" {
		return s.MP3URL
	}
	return s.Audio
}

// accent is the regional accent tag, taken from the first sound tag
func (s *RawSound) accent() string {
	if len(s.Tags) > 0 {
		return s.Tags[0]
	}
	return ""
}

// language returns the entry language, defaulting to English like the
// upstream export does for untagged entries.
func (e *RawWordEntry) language() string {
	if e.Lang == "" {
		return "English"
	}
	return e.Lang
}

// translationLanguage prefers the language code over the display name
func (t *RawTranslation) translationLanguage() string {
	if t.Code != "" {
		return t.Code
	}
	return t.Lang
}
