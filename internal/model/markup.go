package model

// Marker types stored in the recording's markup table. Only the ones this
// workflow touches are listed.
const (
	MarkBookmark  = 2
	MarkCommStart = 4
	MarkCommEnd   = 5
)

// Marker is one typed position in a recording's markup list, ordered by frame.
type Marker struct {
	Type  int   `json:"type"`
	Frame int64 `json:"frame"`
}

// IsCommercial reports whether the marker delimits a commercial break.
func (m Marker) IsCommercial() bool {
	return m.Type == MarkCommStart || m.Type == MarkCommEnd
}

// WithoutCommercials returns the markers that are not commercial-break
// delimiters, preserving order. Used when the breaks have been physically cut
// out of the file and the skip points no longer line up with anything.
func WithoutCommercials(markers []Marker) []Marker {
	kept := make([]Marker, 0, len(markers))
	for _, m := range markers {
		if !m.IsCommercial() {
			kept = append(kept, m)
		}
	}
	return kept
}
