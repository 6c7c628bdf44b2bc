package dto

import (
	"encoding/json"
	"strings"
)

// RankedSymbols decodes a ranked symbol list that arrives either as a bare
// string array or as objects carrying a "symbol" field. Tickers are
// normalized to uppercase and blanks dropped.
type RankedSymbols []string

func (r *RankedSymbols) UnmarshalJSON(data []byte) error {
	var plain []string
	if err := json.Unmarshal(data, &plain); err == nil {
		*r = normalizeSymbols(plain)
		return nil
	}

	var objs []struct {
		Symbol string `json:"symbol"`
	}
	if err := json.Unmarshal(data, &objs); err != nil {
		return err
	}
	out := make([]string, 0, len(objs))
	for _, o := range objs {
		out = append(out, o.Symbol)
	}
	*r = normalizeSymbols(out)
	return nil
}

func normalizeSymbols(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
