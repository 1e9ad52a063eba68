package entity

import "encoding/json"

type Paging struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}

// SearchResult is one logical page of an upstream search. Results stay raw so
// provider response fields pass through to clients untouched.
type SearchResult struct {
	Results []json.RawMessage `json:"results"`
	Paging  Paging            `json:"paging"`
}
