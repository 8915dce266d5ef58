package models

import "time"

const (
	DefaultResolutionSeconds = 60
	MaxHistogramValue        = 100.0
	DailyKeyLayout           = "2006-01-02"
)

// HistogramResolution is the schema A encoding of a listener histogram's
// sampling interval.
type HistogramResolution string

const (
	ResolutionMinute       HistogramResolution = "1m"
	ResolutionThirtySecond HistogramResolution = "30s"
)

func (r HistogramResolution) Valid() bool {
	return r == ResolutionMinute || r == ResolutionThirtySecond
}

func (r HistogramResolution) Duration() time.Duration {
	if r == ResolutionThirtySecond {
		return 30 * time.Second
	}
	return time.Minute
}

// CommonError is the {"error": "..."} shape used both for a whole response
// and for a single failed query inside a batch.
type CommonError struct {
	Message string
}

// SpcQueryResponse is either a batch of per-query results or a single
// top-level error. Exactly one of Results and Error is set.
type SpcQueryResponse struct {
	Version SchemaVersion
	Results ResultsResponse
	Error   *CommonError
}

func (r *SpcQueryResponse) IsError() bool {
	return r.Error != nil
}

// PartialFailures counts result keys that carry a CommonError.
func (r *SpcQueryResponse) PartialFailures() int {
	n := 0
	for _, res := range r.Results {
		if res.Error != nil {
			n++
		}
	}
	return n
}

// ResultsResponse maps an opaque query keystring to its outcome.
type ResultsResponse map[string]QueryResult

// QueryResult is the outcome of one query in a batch: metrics or an error.
type QueryResult struct {
	Metrics *PodcastMetricsResult
	Error   *CommonError
}

type PodcastMetricsResult struct {
	AsOf           time.Time
	FollowerCount  Optional[int64]
	TotalListeners Optional[int64]
	Episodes       Optional[map[string]EpisodeMetricsResult]
}

// EpisodeMetricsResult carries per-episode metrics. ListenerHistogramResolution
// belongs to schema A and ListenerHistogramResolutionSeconds to schema B; a
// value built for one version leaves the other field absent.
type EpisodeMetricsResult struct {
	TotalListeners                     Optional[int64]
	ListenerHistogramResolution        Optional[HistogramResolution]
	ListenerHistogramResolutionSeconds Optional[int64]
	ListenerHistogram                  Optional[[]float64]
	DailyListeners                     Optional[map[string]int64]
}

// ResolutionFor returns the effective histogram resolution, applying the
// version's default when the field is absent.
func (e EpisodeMetricsResult) ResolutionFor(version SchemaVersion) time.Duration {
	if version == SchemaB {
		return time.Duration(e.ListenerHistogramResolutionSeconds.OrElse(DefaultResolutionSeconds)) * time.Second
	}
	return e.ListenerHistogramResolution.OrElse(ResolutionMinute).Duration()
}
