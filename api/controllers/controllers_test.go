package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DevStdio379/settisfy-web/internal/reviews"
	"github.com/DevStdio379/settisfy-web/internal/settlerservices"
	"github.com/DevStdio379/settisfy-web/internal/systemparams"
	"github.com/DevStdio379/settisfy-web/pkg/config"
	pkgerrors "github.com/DevStdio379/settisfy-web/pkg/errors"
	"github.com/DevStdio379/settisfy-web/pkg/pagination"
)

type pingerFunc func(context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

type stubSettlerServices struct {
	listIDs []uuid.UUID
	item    *settlerservices.ServiceDTO
	err     error
}

func (s *stubSettlerServices) Get(_ context.Context, id uuid.UUID) (*settlerservices.ServiceDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	item := *s.item
	item.ID = id
	return &item, nil
}

func (s *stubSettlerServices) List(_ context.Context, ids []uuid.UUID) ([]settlerservices.ServiceDTO, error) {
	s.listIDs = ids
	return []settlerservices.ServiceDTO{}, nil
}

type stubReviews struct {
	limit int
}

func (s *stubReviews) ListForSettlerService(_ context.Context, _ uuid.UUID, limit int) (*reviews.ListResult, error) {
	s.limit = limit
	return &reviews.ListResult{Items: []reviews.ReviewDTO{}}, nil
}

type stubParams struct {
	updated *systemparams.UpdateInput
}

func (s *stubParams) Get(context.Context) (*systemparams.ParametersDTO, error) {
	return &systemparams.ParametersDTO{PlatformFee: decimal.NewFromInt(5), PlatformFeeIsActive: true}, nil
}

func (s *stubParams) Update(_ context.Context, in systemparams.UpdateInput) (*systemparams.ParametersDTO, error) {
	s.updated = &in
	out := &systemparams.ParametersDTO{}
	if in.PlatformFee != nil {
		out.PlatformFee = *in.PlatformFee
	}
	return out, nil
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body struct {
		Data  map[string]any `json:"data"`
		Error map[string]any `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	if body.Error != nil {
		return body.Error
	}
	return body.Data
}

func TestHealthReadyReportsFailingDependency(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}
	deps := map[string]Pinger{
		"db":    pingerFunc(func(context.Context) error { return nil }),
		"redis": pingerFunc(func(context.Context) error { return errors.New("connection refused") }),
	}

	rec := httptest.NewRecorder()
	HealthReady(cfg, deps, nil)(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "test", rec.Header().Get("X-Settisfy-Env"))
	body := decodeData(t, rec)
	details, ok := body["details"].(map[string]any)
	require.True(t, ok, "expected details in %v", body)
	assert.Equal(t, "down", details["redis"])
	assert.Equal(t, "up", details["db"])
}

func TestHealthReadyAllUp(t *testing.T) {
	cfg := &config.Config{}
	deps := map[string]Pinger{"db": pingerFunc(func(context.Context) error { return nil })}

	rec := httptest.NewRecorder()
	HealthReady(cfg, deps, nil)(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", decodeData(t, rec)["status"])
}

func TestSettlerServicesListParsesIDs(t *testing.T) {
	svc := &stubSettlerServices{}
	a, b := uuid.New(), uuid.New()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/settler-services?ids="+a.String()+",%20,"+b.String(), nil)
	SettlerServicesList(svc, nil)(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []uuid.UUID{a, b}, svc.listIDs)
}

func TestSettlerServicesListRejectsBadID(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/settler-services?ids=not-a-uuid", nil)
	SettlerServicesList(&stubSettlerServices{}, nil)(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(pkgerrors.CodeValidation), decodeData(t, rec)["code"])
}

func TestSettlerServiceDetailNotFound(t *testing.T) {
	svc := &stubSettlerServices{err: pkgerrors.New(pkgerrors.CodeNotFound, "settler service not found")}
	r := chi.NewRouter()
	r.Get("/settler-services/{serviceId}", SettlerServiceDetail(svc, nil))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/settler-services/"+uuid.NewString(), nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSettlerServiceReviewsBoundsLimit(t *testing.T) {
	svc := &stubReviews{}
	r := chi.NewRouter()
	r.Get("/settler-services/{serviceId}/reviews", SettlerServiceReviews(svc, nil))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/settler-services/"+uuid.NewString()+"/reviews", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, pagination.DefaultLimit, svc.limit)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/settler-services/"+uuid.NewString()+"/reviews?limit=100000", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSystemParametersUpdateDecodesPartialBody(t *testing.T) {
	svc := &stubParams{}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/system-parameters", strings.NewReader(`{"platformFee":"7.50"}`))
	SystemParametersUpdate(svc, nil)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.updated)
	require.NotNil(t, svc.updated.PlatformFee)
	assert.True(t, svc.updated.PlatformFee.Equal(decimal.RequireFromString("7.5")))
	assert.Nil(t, svc.updated.PlatformFeeIsActive)
}

func TestSystemParametersUpdateRejectsUnknownField(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/system-parameters", strings.NewReader(`{"platform_fee":"7.50"}`))
	SystemParametersUpdate(&stubParams{}, nil)(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSystemParametersGet(t *testing.T) {
	rec := httptest.NewRecorder()
	SystemParametersGet(&stubParams{}, nil)(rec, httptest.NewRequest(http.MethodGet, "/system-parameters", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeData(t, rec)["platformFeeIsActive"])
}
