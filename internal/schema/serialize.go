package schema

import (
	"spc/internal/models"
	"time"
)

// SerializeResponse converts v back into a JSON-like value (map[string]any,
// []any, string, int64, float64). Absent optional fields are omitted. For a
// value that passes Check, ParseResponse(SerializeResponse(v), v.Version)
// yields a value equal to v.
func SerializeResponse(v *models.SpcQueryResponse) map[string]any {
	if v == nil {
		return nil
	}
	if v.Error != nil {
		return serializeError(v.Error)
	}

	results := make(map[string]any, len(v.Results))
	for key, res := range v.Results {
		switch {
		case res.Error != nil:
			results[key] = serializeError(res.Error)
		case res.Metrics != nil:
			results[key] = serializePodcast(res.Metrics, v.Version)
		}
	}
	return map[string]any{keyResults: results}
}

func serializeError(e *models.CommonError) map[string]any {
	return map[string]any{keyError: e.Message}
}

func serializePodcast(m *models.PodcastMetricsResult, version models.SchemaVersion) map[string]any {
	out := map[string]any{
		keyAsOf: m.AsOf.UTC().Format(time.RFC3339Nano),
	}
	putOptional(out, keyFollowerCount, m.FollowerCount)
	putOptional(out, keyTotalListeners, m.TotalListeners)

	if episodes, ok := m.Episodes.Get(); ok {
		eps := make(map[string]any, len(episodes))
		for guid, ep := range episodes {
			eps[guid] = serializeEpisode(ep, version)
		}
		out[keyEpisodes] = eps
	}
	return out
}

func serializeEpisode(ep models.EpisodeMetricsResult, version models.SchemaVersion) map[string]any {
	out := make(map[string]any)
	putOptional(out, keyTotalListeners, ep.TotalListeners)

	switch version {
	case models.SchemaA:
		if r, ok := ep.ListenerHistogramResolution.Get(); ok {
			out[keyResolution] = string(r)
		}
	case models.SchemaB:
		putOptional(out, keyResolutionSecs, ep.ListenerHistogramResolutionSeconds)
	}

	if hist, ok := ep.ListenerHistogram.Get(); ok {
		arr := make([]any, len(hist))
		for i, f := range hist {
			arr[i] = f
		}
		out[keyHistogram] = arr
	}
	if daily, ok := ep.DailyListeners.Get(); ok {
		days := make(map[string]any, len(daily))
		for day, n := range daily {
			days[day] = n
		}
		out[keyDailyListeners] = days
	}
	return out
}

func putOptional[T any](out map[string]any, key string, o models.Optional[T]) {
	if v, ok := o.Get(); ok {
		out[key] = v
	}
}
