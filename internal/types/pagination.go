package types

// Page is the paginated list envelope: {"count", "next", "previous", "results"}.
type Page[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}
