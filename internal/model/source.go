package model

// SourceID identifies one external geodata provider.
type SourceID string

const (
	// SourceSemasStore is the SEMAS store-directory open API, the only
	// source with authoritative category-coded statistics.
	SourceSemasStore SourceID = "semas_store"

	// SourceKakaoKeyword is Kakao Local keyword search scoped to a locality.
	SourceKakaoKeyword SourceID = "kakao_keyword"

	// SourceKakaoCategory is Kakao Local category (POI group code) search.
	SourceKakaoCategory SourceID = "kakao_category"

	// SourceNaverLocal is Naver local search.
	SourceNaverLocal SourceID = "naver_local"
)

// SourcePriority is the fixed precedence used when merging listings that
// describe the same physical business: earlier sources win field conflicts.
var SourcePriority = []SourceID{
	SourceSemasStore,
	SourceKakaoKeyword,
	SourceKakaoCategory,
	SourceNaverLocal,
}

// PriorityRank returns the source's position in SourcePriority. Unknown
// sources rank after all known ones.
func (s SourceID) PriorityRank() int {
	for i, id := range SourcePriority {
		if id == s {
			return i
		}
	}
	return len(SourcePriority)
}

// Coordinate is a WGS84 point.
type Coordinate struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}
