package services

import (
	"errors"
	"spc/internal/models"
	"spc/internal/providers"
	"spc/internal/schema"
	"spc/internal/structures"
)

const (
	OutcomeAccepted  = "accepted"
	OutcomeRejected  = "rejected"
	OutcomeMalformed = "malformed"
)

// ValidationResult is the outcome of validating one document.
type ValidationResult struct {
	Version    models.SchemaVersion
	Response   *models.SpcQueryResponse
	Violations schema.Violations
}

func (r *ValidationResult) Valid() bool {
	return r.Response != nil
}

type ValidationServiceInterface interface {
	Validate(data []byte, version models.SchemaVersion) (*ValidationResult, error)
	Normalize(data []byte, version models.SchemaVersion) ([]byte, *ValidationResult, error)
	DefaultVersion() models.SchemaVersion
	GetSnapshot() *models.StatsSnapshot
	PutSnapshot(snap *models.StatsSnapshot)
	Totals() (accepted, rejected int64)
}

type ValidationService struct {
	logger         providers.Logger
	metrics        providers.MetricsProviderInterface
	stats          *models.ValidationStats
	defaultVersion models.SchemaVersion
}

// Validate decodes data as a document of the given version. A document that
// fails the schema is not an error: the result carries its Violations. The
// returned error is non-nil only when data is not JSON at all.
func (vs *ValidationService) Validate(data []byte, version models.SchemaVersion) (*ValidationResult, error) {
	resp, err := schema.Decode(data, version)
	if err == nil {
		vs.stats.RecordAccepted(version, resp.PartialFailures(), resp.IsError())
		vs.metrics.IncValidations(version.String(), OutcomeAccepted)
		return &ValidationResult{Version: version, Response: resp}, nil
	}

	var violations schema.Violations
	if !errors.As(err, &violations) {
		vs.metrics.IncValidations(version.String(), OutcomeMalformed)
		return nil, err
	}

	rules := violations.Rules()
	vs.stats.RecordRejected(version, rules)
	vs.metrics.IncValidations(version.String(), OutcomeRejected)
	for _, rule := range rules {
		vs.metrics.AddViolations(rule, 1)
	}
	vs.logger.Debugf(providers.TypePost, "schema %s document rejected: %s", version, violations)
	return &ValidationResult{Version: version, Violations: violations}, nil
}

// Normalize validates data and re-encodes it in canonical form: sorted keys,
// UTC timestamps, absent fields omitted.
func (vs *ValidationService) Normalize(data []byte, version models.SchemaVersion) ([]byte, *ValidationResult, error) {
	res, err := vs.Validate(data, version)
	if err != nil || !res.Valid() {
		return nil, res, err
	}
	out, err := schema.Encode(res.Response)
	if err != nil {
		return nil, res, err
	}
	return out, res, nil
}

func (vs *ValidationService) DefaultVersion() models.SchemaVersion {
	return vs.defaultVersion
}

func (vs *ValidationService) GetSnapshot() *models.StatsSnapshot {
	return vs.stats.Snapshot()
}

func (vs *ValidationService) PutSnapshot(snap *models.StatsSnapshot) {
	vs.stats.Restore(snap)
}

func (vs *ValidationService) Totals() (accepted, rejected int64) {
	return vs.stats.Totals()
}

func NewValidationService(conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface) (ValidationServiceInterface, error) {
	version, err := models.ParseSchemaVersion(conf.Codec.DefaultSchema)
	if err != nil {
		return nil, err
	}
	return &ValidationService{
		logger:         logger,
		metrics:        metrics,
		stats:          models.NewValidationStats(),
		defaultVersion: version,
	}, nil
}
