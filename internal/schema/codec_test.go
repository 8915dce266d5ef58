package schema

import (
	"spc/internal/models"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResponse(version models.SchemaVersion) *models.SpcQueryResponse {
	episode := models.EpisodeMetricsResult{
		TotalListeners:    models.Some[int64](1200),
		ListenerHistogram: models.Some([]float64{100, 87.5, 42.25, 0}),
		DailyListeners: models.Some(map[string]int64{
			"2024-05-01": 700,
			"2024-05-02": 500,
		}),
	}
	if version == models.SchemaA {
		episode.ListenerHistogramResolution = models.Some(models.ResolutionThirtySecond)
	} else {
		episode.ListenerHistogramResolutionSeconds = models.Some[int64](30)
	}

	return &models.SpcQueryResponse{
		Version: version,
		Results: models.ResultsResponse{
			"podcast:guid:abc": {
				Metrics: &models.PodcastMetricsResult{
					AsOf:           time.Date(2024, 5, 3, 12, 30, 15, 250_000_000, time.UTC),
					FollowerCount:  models.Some[int64](3400),
					TotalListeners: models.Some[int64](15000),
					Episodes: models.Some(map[string]models.EpisodeMetricsResult{
						"ep-1": episode,
						"ep-2": {},
					}),
				},
			},
			"feed:https://example.com/feed.xml": {
				Metrics: &models.PodcastMetricsResult{
					AsOf: time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC),
				},
			},
			"podcast:guid:missing": {
				Error: &models.CommonError{Message: "not found"},
			},
		},
	}
}

func TestRoundTrip_JSONLikeValue(t *testing.T) {
	for _, version := range []models.SchemaVersion{models.SchemaA, models.SchemaB} {
		t.Run(version.String(), func(t *testing.T) {
			v := sampleResponse(version)
			require.NoError(t, Check(v))

			got, err := ParseResponse(SerializeResponse(v), version)
			require.NoError(t, err)
			assert.Equal(t, v, got)
		})
	}
}

func TestRoundTrip_Bytes(t *testing.T) {
	for _, version := range []models.SchemaVersion{models.SchemaA, models.SchemaB} {
		t.Run(version.String(), func(t *testing.T) {
			c, err := NewCodec(version)
			require.NoError(t, err)

			v := sampleResponse(version)
			data, err := c.Encode(v)
			require.NoError(t, err)

			got, err := c.Decode(data)
			require.NoError(t, err)
			assert.Equal(t, v, got)
		})
	}
}

func TestRoundTrip_TopLevelError(t *testing.T) {
	v := &models.SpcQueryResponse{Version: models.SchemaA, Error: &models.CommonError{Message: "rate limited"}}

	data, err := Encode(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"rate limited"}`, string(data))

	got, err := Decode(data, models.SchemaA)
	require.NoError(t, err)
	assert.Equal(t, v, got)
}

func TestSerializeResponse_OmitsAbsentFields(t *testing.T) {
	v := &models.SpcQueryResponse{
		Version: models.SchemaA,
		Results: models.ResultsResponse{
			"k": {Metrics: &models.PodcastMetricsResult{
				AsOf:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
				Episodes: models.Some(map[string]models.EpisodeMetricsResult{"g": {}}),
			}},
		},
	}

	data, err := Encode(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"results":{"k":{"asOf":"2024-01-01T00:00:00Z","episodes":{"g":{}}}}}`, string(data))
	assert.NotContains(t, string(data), "null")
}

func TestSerializeResponse_EmitsOnlyTheVersionsResolutionKey(t *testing.T) {
	v := sampleResponse(models.SchemaB)

	out := SerializeResponse(v)
	data, err := json.Marshal(out)
	require.NoError(t, err)

	assert.Contains(t, string(data), `"listenerHistogramResolutionSeconds":30`)
	assert.NotContains(t, string(data), `"listenerHistogramResolution":`)
}

func TestDecode_UsesNumberLiterals(t *testing.T) {
	_, err := Decode([]byte(`{"results":{"k":{"asOf":"2024-01-01T00:00:00Z","followerCount":1.5}}}`), models.SchemaA)
	vs := requireViolations(t, err)
	assert.Equal(t, InvalidNumber, vs[0].Rule)

	resp, err := Decode([]byte(`{"results":{"k":{"asOf":"2024-01-01T00:00:00Z","followerCount":9007199254740993}}}`), models.SchemaA)
	require.NoError(t, err)
	assert.Equal(t, int64(9007199254740993), resp.Results["k"].Metrics.FollowerCount.OrElse(0))
}

func TestDecode_MalformedJSON(t *testing.T) {
	_, err := Decode([]byte(`{"results":`), models.SchemaA)
	require.Error(t, err)
	var vs Violations
	assert.NotErrorAs(t, err, &vs)
}

func TestNewCodec_RejectsUnknownVersion(t *testing.T) {
	_, err := NewCodec(models.SchemaVersion(0))
	assert.Error(t, err)
}

func TestCodec_EncodeRejectsOtherVersion(t *testing.T) {
	c, err := NewCodec(models.SchemaA)
	require.NoError(t, err)

	_, err = c.Encode(sampleResponse(models.SchemaB))
	assert.Error(t, err)
	assert.Equal(t, models.SchemaA, c.Version())
}

func TestDecode_RejectsTrailingData(t *testing.T) {
	for _, doc := range []string{
		`{"error":"x"} {"results":{}} garbage`,
		`{"error":"x"} {"results":{}}`,
		`{"error":"x"}]`,
	} {
		_, err := Decode([]byte(doc), models.SchemaA)
		require.Error(t, err, doc)
		var vs Violations
		assert.NotErrorAs(t, err, &vs)
		assert.EqualError(t, err, "schema: decode json: trailing data")
	}
}

func TestDecode_AllowsTrailingWhitespace(t *testing.T) {
	resp, err := Decode([]byte("{\"error\":\"x\"}\n\t "), models.SchemaA)
	require.NoError(t, err)
	assert.True(t, resp.IsError())
}

func TestDecode_ZeroInstantAsOf(t *testing.T) {
	_, err := Decode([]byte(`{"results":{"k":{"asOf":"0001-01-01T00:00:00Z"}}}`), models.SchemaA)
	vs := requireViolations(t, err)
	require.Len(t, vs, 1)
	assert.Equal(t, "results.k.asOf", vs[0].Path)
	assert.Equal(t, InvalidTimestamp, vs[0].Rule)
}

func TestDecodeThenEncode_EarliestInstant(t *testing.T) {
	resp, err := Decode([]byte(`{"results":{"k":{"asOf":"0001-01-01T00:00:00.000000001Z"}}}`), models.SchemaB)
	require.NoError(t, err)

	out, err := Encode(resp)
	require.NoError(t, err)
	assert.Equal(t, `{"results":{"k":{"asOf":"0001-01-01T00:00:00.000000001Z"}}}`, string(out))
}
