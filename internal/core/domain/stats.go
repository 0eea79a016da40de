package domain

// Stats are display-ready aggregates over a collection.
type Stats struct {
	TotalSources int `json:"total_sources"`
	TotalChars   int `json:"total_chars"`
	TotalWords   int `json:"total_words"`

	// EstimatedTokens is ceil(TotalChars / 4). Approximate only.
	EstimatedTokens int `json:"estimated_tokens"`
}

// ComputeStats recomputes the aggregates from scratch.
func ComputeStats(records []SourceRecord) Stats {
	stats := Stats{TotalSources: len(records)}
	for i := range records {
		stats.TotalChars += records[i].Metadata.CharCount
		stats.TotalWords += records[i].Metadata.WordCount
	}
	stats.EstimatedTokens = EstimateTokens(stats.TotalChars)
	return stats
}

// IsEmpty returns true when there is nothing to analyse yet.
func (s Stats) IsEmpty() bool {
	return s.TotalSources == 0
}
