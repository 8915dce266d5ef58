package schema

import (
	"errors"
	"fmt"
	"spc/internal/models"
)

var ErrNilResponse = errors.New("schema: nil response")

// Check validates a typed value built by the caller against the rules
// ParseResponse enforces, so that its serialization re-validates.
func Check(v *models.SpcQueryResponse) error {
	if v == nil {
		return ErrNilResponse
	}
	if !v.Version.Valid() {
		return fmt.Errorf("schema: unsupported version %s", v.Version)
	}

	p := &parser{version: v.Version}
	switch {
	case v.Error != nil && v.Results != nil:
		p.fail("", UnrecognizedShape, "response has both an error and results")
	case v.Error != nil:
		p.commonError(keyError, v.Error.Message)
	case v.Results == nil:
		p.fail("", UnrecognizedShape, "response has neither an error nor results")
	default:
		for _, key := range sortedKeys(v.Results) {
			p.checkResult(field(keyResults, key), v.Results[key])
		}
	}

	if len(p.violations) > 0 {
		return p.violations
	}
	return nil
}

func (p *parser) checkResult(path string, res models.QueryResult) {
	switch {
	case res.Error != nil && res.Metrics != nil:
		p.fail(path, UnrecognizedShape, "result has both an error and metrics")
	case res.Error != nil:
		p.commonError(field(path, keyError), res.Error.Message)
	case res.Metrics == nil:
		p.fail(path, UnrecognizedShape, "result has neither an error nor metrics")
	default:
		p.checkPodcast(path, res.Metrics)
	}
}

func (p *parser) checkPodcast(path string, m *models.PodcastMetricsResult) {
	if m.AsOf.IsZero() {
		p.fail(field(path, keyAsOf), MissingField, "asOf is required")
	}
	p.checkOptionalCount(field(path, keyFollowerCount), m.FollowerCount)
	p.checkOptionalCount(field(path, keyTotalListeners), m.TotalListeners)

	episodes, ok := m.Episodes.Get()
	if !ok {
		return
	}
	if episodes == nil {
		p.failNilContainer(field(path, keyEpisodes))
		return
	}
	for _, guid := range sortedKeys(episodes) {
		p.checkEpisode(field(field(path, keyEpisodes), guid), episodes[guid])
	}
}

func (p *parser) checkOptionalCount(path string, o models.Optional[int64]) {
	if n, ok := o.Get(); ok {
		p.checkCount(path, n)
	}
}

func (p *parser) checkEpisode(path string, ep models.EpisodeMetricsResult) {
	p.checkOptionalCount(field(path, keyTotalListeners), ep.TotalListeners)

	switch p.version {
	case models.SchemaA:
		if ep.ListenerHistogramResolutionSeconds.IsSet() {
			p.fail(field(path, keyResolutionSecs), UnrecognizedShape, "field is not part of schema %s", p.version)
		}
		if r, ok := ep.ListenerHistogramResolution.Get(); ok && !r.Valid() {
			p.fail(field(path, keyResolution), InvalidEnum, `must be "1m" or "30s", got %q`, string(r))
		}
	case models.SchemaB:
		if ep.ListenerHistogramResolution.IsSet() {
			p.fail(field(path, keyResolution), UnrecognizedShape, "field is not part of schema %s", p.version)
		}
		if n, ok := ep.ListenerHistogramResolutionSeconds.Get(); ok {
			p.checkResolutionSeconds(field(path, keyResolutionSecs), n)
		}
	}

	if hist, ok := ep.ListenerHistogram.Get(); ok && hist == nil {
		p.failNilContainer(field(path, keyHistogram))
	} else if ok {
		for i, f := range hist {
			p.checkHistogramValue(index(field(path, keyHistogram), i), f)
		}
	}
	if daily, ok := ep.DailyListeners.Get(); ok && daily == nil {
		p.failNilContainer(field(path, keyDailyListeners))
	} else if ok {
		for _, day := range sortedKeys(daily) {
			dayPath := field(field(path, keyDailyListeners), day)
			p.checkDateKey(dayPath, day)
			p.checkCount(dayPath, daily[day])
		}
	}
}

// Present containers must be non-nil; parsing never yields a nil one.
func (p *parser) failNilContainer(path string) {
	p.fail(path, InvalidType, "present but nil; use None or an empty value")
}
