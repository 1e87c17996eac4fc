/*
 * @module api/controllers/validation_controller_test
 * @description 控制器层测试，通过 httptest 验证检测与调度接口的请求响应行为
 * @architecture 测试层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 构造请求 -> 路由分发 -> 断言响应
 * @rules 使用内存 SQLite，不触发全局服务初始化
 * @dependencies net/http/httptest, github.com/go-chi/chi/v5
 * @refs api/controllers/validation_controller.go, api/controllers/schedule_controller.go
 */

package controllers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dqguard-service/service/loader"
	"dqguard-service/service/models"
	"dqguard-service/service/scheduler"
	"dqguard-service/service/store"
	"dqguard-service/service/validation"
	"dqguard-service/testutil"
)

func newTestRouter(t *testing.T) (*chi.Mux, *testutil.TestDB) {
	tdb := testutil.NewTestDB()
	t.Cleanup(tdb.Close)

	resultStore := store.NewResultStore(tdb.DB)
	validationController := NewValidationController(
		loader.NewLoader(tdb.DB), validation.NewService(resultStore), resultStore)
	scheduleController := NewScheduleController(scheduler.NewRegistry(tdb.DB))
	dashboardController := NewDashboardController(resultStore)

	r := chi.NewRouter()
	r.Post("/validation/upload", validationController.ValidateUpload)
	r.Post("/validation/rules", validationController.ValidateWithRules)
	r.Get("/validation/history", validationController.GetHistory)
	r.Get("/validation/rule-templates", validationController.GetRuleTemplates)
	r.Post("/schedule/validation", scheduleController.CreateJob)
	r.Get("/schedule/jobs", scheduleController.ListJobs)
	r.Delete("/schedule/jobs/{job_id}", scheduleController.CancelJob)
	r.Get("/dashboard/summary", dashboardController.GetSummary)
	return r, tdb
}

func decodeAPIResponse(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestValidateUploadCSV(t *testing.T) {
	router, _ := newTestRouter(t)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "users.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("id,email\n1,a@example.com\n2,\n"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/validation/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := decodeAPIResponse(t, w)
	assert.Equal(t, http.StatusOK, resp.Status)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "users.csv", data["source"])
	assert.Equal(t, float64(2), data["total_rows"])
}

func TestValidateUploadMissingFile(t *testing.T) {
	router, _ := newTestRouter(t)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/validation/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := decodeAPIResponse(t, w)
	assert.Equal(t, http.StatusBadRequest, resp.Status)
}

func TestValidateWithRulesEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	helper := testutil.NewHTTPTestHelper()
	req, err := helper.CreateJSONRequest(http.MethodPost, "/validation/rules", ValidateWithRulesRequest{
		SourceName: "inline",
		Data: []map[string]interface{}{
			{"id": 1, "email": "a@example.com"},
			{"id": 2, "email": nil},
		},
		Rules: []models.Rule{
			{Name: "email_complete", Kind: models.RuleKindNull, Column: "email"},
		},
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := decodeAPIResponse(t, w)
	require.Equal(t, http.StatusOK, resp.Status)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(0), data["quality_score"])
}

func TestValidateWithRulesRejectsUnknownKind(t *testing.T) {
	router, _ := newTestRouter(t)

	helper := testutil.NewHTTPTestHelper()
	req, err := helper.CreateJSONRequest(http.MethodPost, "/validation/rules", ValidateWithRulesRequest{
		Data:  []map[string]interface{}{{"id": 1}},
		Rules: []models.Rule{{Name: "bad", Kind: "made_up"}},
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := decodeAPIResponse(t, w)
	assert.Equal(t, http.StatusBadRequest, resp.Status)
}

func TestHistoryEndpoint(t *testing.T) {
	router, tdb := newTestRouter(t)
	factory := testutil.NewTestDataFactory(tdb.DB)
	factory.CreateValidationResult()
	factory.CreateValidationResult()

	req := httptest.NewRequest(http.MethodGet, "/validation/history?limit=1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := decodeAPIResponse(t, w)
	require.Equal(t, http.StatusOK, resp.Status)
	assert.Len(t, resp.Data, 1)
}

func TestRuleTemplatesEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/validation/rule-templates", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := decodeAPIResponse(t, w)
	require.Equal(t, http.StatusOK, resp.Status)
	assert.NotEmpty(t, resp.Data)
}

func TestScheduleLifecycleEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)
	helper := testutil.NewHTTPTestHelper()

	req, err := helper.CreateJSONRequest(http.MethodPost, "/schedule/validation", models.ScheduleJobRequest{
		Name:     "nightly",
		Schedule: "daily",
		DataSource: models.DataSourceDescriptor{
			Type: models.SourceTypeFile, Location: "/data/users.csv", Format: "csv",
		},
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	resp := decodeAPIResponse(t, w)
	require.Equal(t, http.StatusOK, resp.Status)

	jobData := resp.Data.(map[string]interface{})
	jobID := jobData["job_id"].(string)
	require.NotEmpty(t, jobID)

	// 列表可见
	req = httptest.NewRequest(http.MethodGet, "/schedule/jobs", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	resp = decodeAPIResponse(t, w)
	require.Equal(t, http.StatusOK, resp.Status)
	assert.Len(t, resp.Data, 1)

	// 取消
	req = httptest.NewRequest(http.MethodDelete, "/schedule/jobs/"+jobID, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	resp = decodeAPIResponse(t, w)
	assert.Equal(t, http.StatusOK, resp.Status)

	// 重复取消返回 404
	req = httptest.NewRequest(http.MethodDelete, "/schedule/jobs/"+jobID, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	resp = decodeAPIResponse(t, w)
	assert.Equal(t, http.StatusNotFound, resp.Status)
}

func TestScheduleRejectsInvalidJob(t *testing.T) {
	router, _ := newTestRouter(t)
	helper := testutil.NewHTTPTestHelper()

	req, err := helper.CreateJSONRequest(http.MethodPost, "/schedule/validation", models.ScheduleJobRequest{
		Schedule: "",
		DataSource: models.DataSourceDescriptor{
			Type: models.SourceTypeFile, Location: "/data/users.csv",
		},
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	resp := decodeAPIResponse(t, w)
	assert.Equal(t, http.StatusBadRequest, resp.Status)
}

func TestDashboardSummaryEndpoint(t *testing.T) {
	router, tdb := newTestRouter(t)
	factory := testutil.NewTestDataFactory(tdb.DB)
	factory.CreateValidationResult()

	req := httptest.NewRequest(http.MethodGet, "/dashboard/summary", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := decodeAPIResponse(t, w)
	require.Equal(t, http.StatusOK, resp.Status)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(1), data["total_validations"])
}
