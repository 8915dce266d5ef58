package schema

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"spc/internal/models"
	"strconv"
	"time"
)

const (
	keyError          = "error"
	keyResults        = "results"
	keyAsOf           = "asOf"
	keyFollowerCount  = "followerCount"
	keyTotalListeners = "totalListeners"
	keyEpisodes       = "episodes"
	keyResolution     = "listenerHistogramResolution"
	keyResolutionSecs = "listenerHistogramResolutionSeconds"
	keyHistogram      = "listenerHistogram"
	keyDailyListeners = "dailyListeners"
)

// ParseResponse validates raw, a decoded JSON value (map[string]any, []any,
// string, numbers, bool, nil), against the SpcQueryResponse shape of the
// given schema version. On failure the error is Violations listing every
// failed constraint. Safe for concurrent use.
func ParseResponse(raw any, version models.SchemaVersion) (*models.SpcQueryResponse, error) {
	if !version.Valid() {
		return nil, fmt.Errorf("schema: unsupported version %s", version)
	}
	p := &parser{version: version}
	resp := p.response(raw)
	if len(p.violations) > 0 {
		return nil, p.violations
	}
	return resp, nil
}

type parser struct {
	version    models.SchemaVersion
	violations Violations
}

func (p *parser) fail(path string, rule Rule, format string, args ...any) {
	p.violations = append(p.violations, &Violation{
		Path:    path,
		Rule:    rule,
		Message: fmt.Sprintf(format, args...),
	})
}

func field(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func index(path string, i int) string {
	return path + "[" + strconv.Itoa(i) + "]"
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}

func (p *parser) response(raw any) *models.SpcQueryResponse {
	obj, ok := raw.(map[string]any)
	if !ok {
		p.fail("", UnrecognizedShape, "response must be an object, got %s", kindOf(raw))
		return nil
	}

	// A top-level error satisfies the union on its own; results is not read.
	if msg, ok := obj[keyError].(string); ok {
		return &models.SpcQueryResponse{Version: p.version, Error: p.commonError(keyError, msg)}
	}

	results, ok := obj[keyResults].(map[string]any)
	if !ok {
		p.fail("", UnrecognizedShape, "response has neither an error string nor a results object")
		return nil
	}
	return &models.SpcQueryResponse{Version: p.version, Results: p.results(keyResults, results)}
}

func (p *parser) commonError(path, msg string) *models.CommonError {
	if msg == "" {
		p.fail(path, MissingField, "error message is empty")
	}
	return &models.CommonError{Message: msg}
}

func (p *parser) results(path string, obj map[string]any) models.ResultsResponse {
	out := make(models.ResultsResponse, len(obj))
	for _, key := range sortedKeys(obj) {
		keyPath := field(path, key)
		value, ok := obj[key].(map[string]any)
		if !ok {
			p.fail(keyPath, UnrecognizedShape, "result must be an object, got %s", kindOf(obj[key]))
			continue
		}
		if rawMsg, isErr := value[keyError]; isErr {
			msg, ok := rawMsg.(string)
			if !ok {
				p.fail(field(keyPath, keyError), UnrecognizedShape, "error must be a string, got %s", kindOf(rawMsg))
				continue
			}
			out[key] = models.QueryResult{Error: p.commonError(field(keyPath, keyError), msg)}
			continue
		}
		out[key] = models.QueryResult{Metrics: p.podcast(keyPath, value)}
	}
	return out
}

func (p *parser) podcast(path string, obj map[string]any) *models.PodcastMetricsResult {
	res := &models.PodcastMetricsResult{}
	if raw, ok := obj[keyAsOf]; ok {
		res.AsOf = p.timestamp(field(path, keyAsOf), raw)
	} else {
		p.fail(field(path, keyAsOf), MissingField, "asOf is required")
	}
	res.FollowerCount = p.optionalCount(path, obj, keyFollowerCount)
	res.TotalListeners = p.optionalCount(path, obj, keyTotalListeners)

	if raw, ok := obj[keyEpisodes]; ok {
		episodesPath := field(path, keyEpisodes)
		episodes, ok := raw.(map[string]any)
		if !ok {
			p.fail(episodesPath, InvalidType, "episodes must be an object, got %s", kindOf(raw))
		} else {
			res.Episodes = models.Some(p.episodes(episodesPath, episodes))
		}
	}
	return res
}

func (p *parser) timestamp(path string, raw any) time.Time {
	s, ok := raw.(string)
	if !ok {
		p.fail(path, InvalidTimestamp, "timestamp must be a string, got %s", kindOf(raw))
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		p.fail(path, InvalidTimestamp, "%q is not an RFC 3339 timestamp", s)
		return time.Time{}
	}
	if _, offset := t.Zone(); offset != 0 {
		p.fail(path, InvalidTimestamp, "%q is not a UTC timestamp", s)
		return time.Time{}
	}
	// The zero instant marks an absent asOf on typed values.
	if t.IsZero() {
		p.fail(path, InvalidTimestamp, "%q is the zero instant", s)
		return time.Time{}
	}
	return t.UTC()
}

func (p *parser) optionalCount(path string, obj map[string]any, key string) models.Optional[int64] {
	raw, ok := obj[key]
	if !ok {
		return models.None[int64]()
	}
	n, ok := p.count(field(path, key), raw)
	if !ok {
		return models.None[int64]()
	}
	return models.Some(n)
}

func (p *parser) count(path string, raw any) (int64, bool) {
	n, isNumber, isInteger := asInteger(raw)
	switch {
	case !isNumber:
		p.fail(path, InvalidNumber, "expected a non-negative integer, got %s", kindOf(raw))
		return 0, false
	case !isInteger:
		p.fail(path, InvalidNumber, "expected a non-negative integer, got %v", raw)
		return 0, false
	}
	return n, p.checkCount(path, n)
}

func (p *parser) episodes(path string, obj map[string]any) map[string]models.EpisodeMetricsResult {
	out := make(map[string]models.EpisodeMetricsResult, len(obj))
	for _, guid := range sortedKeys(obj) {
		episodePath := field(path, guid)
		value, ok := obj[guid].(map[string]any)
		if !ok {
			p.fail(episodePath, InvalidType, "episode must be an object, got %s", kindOf(obj[guid]))
			continue
		}
		out[guid] = p.episode(episodePath, value)
	}
	return out
}

func (p *parser) episode(path string, obj map[string]any) models.EpisodeMetricsResult {
	var ep models.EpisodeMetricsResult
	ep.TotalListeners = p.optionalCount(path, obj, keyTotalListeners)

	// Each version reads only its own resolution key; the other is ignored
	// like any unknown key.
	switch p.version {
	case models.SchemaA:
		if raw, ok := obj[keyResolution]; ok {
			s, _ := raw.(string)
			r := models.HistogramResolution(s)
			if !r.Valid() {
				p.fail(field(path, keyResolution), InvalidEnum, `must be "1m" or "30s", got %s`, describe(raw))
			} else {
				ep.ListenerHistogramResolution = models.Some(r)
			}
		}
	case models.SchemaB:
		if raw, ok := obj[keyResolutionSecs]; ok {
			n, isNumber, isInteger := asInteger(raw)
			if !isNumber || !isInteger {
				p.fail(field(path, keyResolutionSecs), InvalidResolution, "must be an integer number of seconds, got %s", describe(raw))
			} else if p.checkResolutionSeconds(field(path, keyResolutionSecs), n) {
				ep.ListenerHistogramResolutionSeconds = models.Some(n)
			}
		}
	}

	if raw, ok := obj[keyHistogram]; ok {
		if hist, ok := p.histogram(field(path, keyHistogram), raw); ok {
			ep.ListenerHistogram = models.Some(hist)
		}
	}
	if raw, ok := obj[keyDailyListeners]; ok {
		if daily, ok := p.dailyListeners(field(path, keyDailyListeners), raw); ok {
			ep.DailyListeners = models.Some(daily)
		}
	}
	return ep
}

func (p *parser) histogram(path string, raw any) ([]float64, bool) {
	arr, ok := raw.([]any)
	if !ok {
		p.fail(path, InvalidType, "listenerHistogram must be an array, got %s", kindOf(raw))
		return nil, false
	}
	out := make([]float64, len(arr))
	valid := true
	for i, entry := range arr {
		f, ok := asFloat(entry)
		if !ok {
			p.fail(index(path, i), InvalidType, "histogram entry must be a number, got %s", kindOf(entry))
			valid = false
			continue
		}
		if !p.checkHistogramValue(index(path, i), f) {
			valid = false
			continue
		}
		out[i] = f
	}
	return out, valid
}

func (p *parser) dailyListeners(path string, raw any) (map[string]int64, bool) {
	obj, ok := raw.(map[string]any)
	if !ok {
		p.fail(path, InvalidType, "dailyListeners must be an object, got %s", kindOf(raw))
		return nil, false
	}
	out := make(map[string]int64, len(obj))
	valid := true
	for _, day := range sortedKeys(obj) {
		dayPath := field(path, day)
		if !p.checkDateKey(dayPath, day) {
			valid = false
		}
		n, ok := p.count(dayPath, obj[day])
		if !ok {
			valid = false
			continue
		}
		out[day] = n
	}
	return out, valid
}

func describe(raw any) string {
	switch v := raw.(type) {
	case string:
		return strconv.Quote(v)
	case nil, map[string]any, []any, bool:
		return kindOf(raw)
	}
	return fmt.Sprint(raw)
}

// Rule checks shared by parsing and Check.

func (p *parser) checkCount(path string, n int64) bool {
	if n < 0 {
		p.fail(path, InvalidNumber, "must be non-negative, got %d", n)
		return false
	}
	return true
}

func (p *parser) checkResolutionSeconds(path string, n int64) bool {
	if n <= 0 || n > models.DefaultResolutionSeconds {
		p.fail(path, InvalidResolution, "must be between 1 and %d seconds, got %d", models.DefaultResolutionSeconds, n)
		return false
	}
	return true
}

func (p *parser) checkHistogramValue(path string, f float64) bool {
	if math.IsNaN(f) || f < 0 || f > models.MaxHistogramValue {
		p.fail(path, OutOfRange, "must be within [0, 100], got %v", f)
		return false
	}
	return true
}

func (p *parser) checkDateKey(path, day string) bool {
	if len(day) != len(models.DailyKeyLayout) {
		p.fail(path, InvalidDateKey, "%q is not a yyyy-mm-dd date", day)
		return false
	}
	if _, err := time.Parse(models.DailyKeyLayout, day); err != nil {
		p.fail(path, InvalidDateKey, "%q is not a yyyy-mm-dd date", day)
		return false
	}
	return true
}
