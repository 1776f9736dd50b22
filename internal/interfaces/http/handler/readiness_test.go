package handler_test

import (
	"net/http"
	"testing"

	"github.com/printbroker/backend/internal/application/brokerage"
	"github.com/printbroker/backend/internal/domain/job"
	"github.com/printbroker/backend/internal/interfaces/http/dto"
	"github.com/printbroker/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadinessHandler_SendFlow(t *testing.T) {
	a := newAPI(t)
	j := a.createJob("DIRECT", "1000")
	path := "/api/v1/jobs/" + j.ID.String()

	w := a.do(http.MethodGet, path+"/readiness", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := testutil.DecodeData[job.ReadinessResult](t, w)
	assert.Equal(t, job.ReadinessIncomplete, result.Status)
	require.Len(t, result.Blockers, 1)

	w = a.do(http.MethodPost, path+"/send", nil)
	testutil.AssertErrorResponse(t, w, http.StatusConflict, dto.ErrCodeJobBlocked)

	w = a.do(http.MethodPut, path+"/qc", map[string]any{"concern": "ARTWORK", "status": "APPROVED"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, job.ReadinessReady, testutil.DecodeData[job.ReadinessResult](t, w).Status)

	w = a.do(http.MethodPost, path+"/send", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, job.ReadinessSent, testutil.DecodeData[job.ReadinessResult](t, w).Status)
}

func TestReadinessHandler_Components(t *testing.T) {
	a := newAPI(t)
	j := a.createJob("DIRECT", "1000")
	path := "/api/v1/jobs/" + j.ID.String()

	w := a.do(http.MethodPost, path+"/components", map[string]any{"name": "Cover"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = a.do(http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	stored := testutil.DecodeData[brokerage.JobResponse](t, w)
	require.Len(t, stored.Components, 1)
	componentPath := path + "/components/" + stored.Components[0].ID.String() + "/qc"

	w = a.do(http.MethodPut, componentPath, map[string]any{"artwork_status": "APPROVED", "material_status": "NOT_REQUIRED"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = a.do(http.MethodPut, path+"/components/not-a-uuid/qc", map[string]any{"artwork_status": "APPROVED"})
	testutil.AssertErrorResponse(t, w, http.StatusBadRequest, dto.ErrCodeBadRequest)
}

func TestReadinessHandler_InvalidQC(t *testing.T) {
	a := newAPI(t)
	j := a.createJob("DIRECT", "1000")
	path := "/api/v1/jobs/" + j.ID.String() + "/qc"

	w := a.do(http.MethodPut, path, map[string]any{"concern": "COLOR", "status": "APPROVED"})
	testutil.AssertErrorResponse(t, w, http.StatusUnprocessableEntity, dto.ErrCodeInvalidConcern)

	w = a.do(http.MethodPut, path, map[string]any{"concern": "ARTWORK", "status": "MAYBE"})
	testutil.AssertErrorResponse(t, w, http.StatusUnprocessableEntity, dto.ErrCodeInvalidQCStatus)

	w = a.do(http.MethodPut, path, map[string]any{"concern": "ARTWORK"})
	testutil.AssertErrorResponse(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
}
