package controllers

import (
	"errors"
	json "github.com/goccy/go-json"
	"io"
	"net/http"
	"spc/internal/models"
	"spc/internal/providers"
	"spc/internal/schema"
	"spc/internal/services"
	"spc/internal/structures"
)

type ApiController struct {
	logger       providers.Logger
	service      services.ValidationServiceInterface
	maxBodyBytes int64
}

type validResponse struct {
	Valid           bool           `json:"valid"`
	Schema          string         `json:"schema"`
	PartialFailures int            `json:"partialFailures"`
	Response        map[string]any `json:"response"`
}

type invalidResponse struct {
	Valid      bool              `json:"valid"`
	Schema     string            `json:"schema"`
	Violations schema.Violations `json:"violations"`
}

func NewApiController(logger providers.Logger, service services.ValidationServiceInterface, conf *structures.Config) *ApiController {
	return &ApiController{
		logger:       logger,
		service:      service,
		maxBodyBytes: conf.Codec.MaxBodyBytes,
	}
}

func (ac *ApiController) getVersion(r *http.Request) (models.SchemaVersion, error) {
	s := r.URL.Query().Get("schema")
	if s == "" {
		return ac.service.DefaultVersion(), nil
	}
	return models.ParseSchemaVersion(s)
}

// readRequest resolves the schema version and reads the body. On failure it
// has already written a 400 and returns ok=false.
func (ac *ApiController) readRequest(w http.ResponseWriter, r *http.Request) (models.SchemaVersion, []byte, bool) {
	version, err := ac.getVersion(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return 0, nil, false
	}

	r.Body = http.MaxBytesReader(w, r.Body, ac.maxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "Request body too large", http.StatusBadRequest)
			return 0, nil, false
		}
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return 0, nil, false
	}
	return version, body, true
}

func (ac *ApiController) writeJSON(w http.ResponseWriter, status int, v any) {
	gson, err := json.Marshal(v)
	if err != nil {
		ac.logger.Errorf(providers.TypeApp, "encode response: %s", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	ac.writeRaw(w, status, gson)
}

func (ac *ApiController) writeRaw(w http.ResponseWriter, status int, gson []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

func (ac *ApiController) writeViolations(w http.ResponseWriter, res *services.ValidationResult) {
	ac.writeJSON(w, http.StatusUnprocessableEntity, invalidResponse{
		Valid:      false,
		Schema:     res.Version.String(),
		Violations: res.Violations,
	})
}

func (ac *ApiController) Validate(w http.ResponseWriter, r *http.Request) {
	version, body, ok := ac.readRequest(w, r)
	if !ok {
		return
	}

	res, err := ac.service.Validate(body, version)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !res.Valid() {
		ac.writeViolations(w, res)
		return
	}

	ac.writeJSON(w, http.StatusOK, validResponse{
		Valid:           true,
		Schema:          version.String(),
		PartialFailures: res.Response.PartialFailures(),
		Response:        schema.SerializeResponse(res.Response),
	})
}

func (ac *ApiController) Normalize(w http.ResponseWriter, r *http.Request) {
	version, body, ok := ac.readRequest(w, r)
	if !ok {
		return
	}

	out, res, err := ac.service.Normalize(body, version)
	if err != nil {
		if res == nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		ac.logger.Errorf(providers.TypePost, "normalize schema %s: %s", version, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if !res.Valid() {
		ac.writeViolations(w, res)
		return
	}

	ac.writeRaw(w, http.StatusOK, out)
}

func (ac *ApiController) GetStats(w http.ResponseWriter, r *http.Request) {
	ac.writeJSON(w, http.StatusOK, ac.service.GetSnapshot())
}
