package marksix

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/bububa/marksix-agents/schema"
)

// Extraction Hong Kong Mark Six lottery result read from a results image
type Extraction struct {
	schema.Base
	// DrawNumber Draw number printed on the result
	DrawNumber int `json:"draw_number" jsonschema:"title=draw_number,description=The draw number printed on the result.,minimum=1" validate:"required,gt=0"`
	// DrawDate Draw date in YYYY-MM-DD
	DrawDate string `json:"draw_date" jsonschema:"title=draw_date,description=The draw date in YYYY-MM-DD format." validate:"required,datetime=2006-01-02"`
	// Numbers The 6 main numbers
	Numbers []int `json:"numbers" jsonschema:"title=numbers,description=The 6 main numbers between 1 and 49.,minItems=6,maxItems=6" validate:"len=6,unique,dive,min=1,max=49"`
	// BonusNumber The extra number
	BonusNumber int `json:"bonus_number" jsonschema:"title=bonus_number,description=The bonus (extra) number between 1 and 49.,minimum=1,maximum=49" validate:"min=1,max=49"`
}

// ToDrawResult parses the date and validates the extraction
func (e Extraction) ToDrawResult() (*DrawResult, error) {
	date, err := time.Parse(DateLayout, e.DrawDate)
	if err != nil {
		return nil, fmt.Errorf("invalid draw date %q: %w", e.DrawDate, err)
	}
	return NewDrawResult(e.DrawNumber, date, e.Numbers, e.BonusNumber)
}

// ParseDrawResult decodes a json encoded extraction and validates it
func ParseDrawResult(bs []byte) (*DrawResult, error) {
	var e Extraction
	if err := json.Unmarshal(bs, &e); err != nil {
		return nil, err
	}
	return e.ToDrawResult()
}
