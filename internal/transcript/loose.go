package transcript

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

type looseTranscript struct {
	Title    looseString    `json:"title"`
	Language looseString    `json:"language"`
	AudioURL looseString    `json:"audio_url"`
	Segments []looseSegment `json:"segments"`
}

type looseSegment struct {
	Start looseFloat  `json:"start"`
	End   looseFloat  `json:"end"`
	Text  looseString `json:"text"`
	Words []looseWord `json:"words"`
}

type looseWord struct {
	Word  looseString `json:"word"`
	Start looseFloat  `json:"start"`
	End   looseFloat  `json:"end"`
	Score looseFloat  `json:"score"`
}

// looseString accepts a JSON string, or a number rendered as its literal
// text. null, booleans, objects and arrays leave it unset.
type looseString struct {
	value string
	set   bool
}

func (s *looseString) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	switch raw[0] {
	case '"':
		if err := json.Unmarshal(raw, &s.value); err != nil {
			return err
		}
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		s.value = string(raw)
	default:
		return nil
	}
	s.set = true
	return nil
}

// looseFloat accepts a JSON number or a quoted number. Anything else reads as zero.
type looseFloat float64

func (f *looseFloat) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	if len(raw) > 0 && raw[0] == '"' {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return err
		}
		raw = []byte(strings.TrimSpace(text))
	}
	v, err := strconv.ParseFloat(string(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		*f = 0
		return nil
	}
	*f = looseFloat(v)
	return nil
}
