package period_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-payroll/internal/period"
	perioderrors "go-payroll/internal/period/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiEnvelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *apiError       `json:"error"`
}

func mustDecodeEnvelope(t *testing.T, body []byte) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	err := json.Unmarshal(body, &env)
	assert.NoError(t, err)
	return env
}

type fakePeriodService struct {
	createFn          func(ctx context.Context, companyID, actorID string, req period.CreatePeriodRequest) (period.PeriodResponse, error)
	getAllFn          func(ctx context.Context, companyID string) ([]period.PeriodResponse, error)
	getByIDFn         func(ctx context.Context, companyID, id string) (period.PeriodResponse, error)
	startProcessingFn func(ctx context.Context, companyID, id string) (period.PeriodResponse, error)
	closeFn           func(ctx context.Context, companyID, id string) (period.PeriodResponse, error)
	cancelFn          func(ctx context.Context, companyID, id, reason string) (period.PeriodResponse, error)
}

func (f *fakePeriodService) Create(ctx context.Context, companyID, actorID string, req period.CreatePeriodRequest) (period.PeriodResponse, error) {
	return f.createFn(ctx, companyID, actorID, req)
}

func (f *fakePeriodService) GetAll(ctx context.Context, companyID string) ([]period.PeriodResponse, error) {
	return f.getAllFn(ctx, companyID)
}

func (f *fakePeriodService) GetByID(ctx context.Context, companyID, id string) (period.PeriodResponse, error) {
	return f.getByIDFn(ctx, companyID, id)
}

func (f *fakePeriodService) StartProcessing(ctx context.Context, companyID, id string) (period.PeriodResponse, error) {
	return f.startProcessingFn(ctx, companyID, id)
}

func (f *fakePeriodService) Close(ctx context.Context, companyID, id string) (period.PeriodResponse, error) {
	return f.closeFn(ctx, companyID, id)
}

func (f *fakePeriodService) Cancel(ctx context.Context, companyID, id, reason string) (period.PeriodResponse, error) {
	return f.cancelFn(ctx, companyID, id, reason)
}

func TestPeriodHandler_Create(t *testing.T) {
	companyID := uuid.New().String()
	actorID := uuid.New().String()

	svc := &fakePeriodService{
		createFn: func(ctx context.Context, cid, aid string, req period.CreatePeriodRequest) (period.PeriodResponse, error) {
			assert.Equal(t, companyID, cid)
			assert.Equal(t, actorID, aid)
			assert.Equal(t, "March 2026", req.Name)
			assert.Equal(t, "MONTHLY", req.PeriodType)
			return period.PeriodResponse{
				ID:         uuid.New().String(),
				CompanyID:  cid,
				Name:       req.Name,
				PeriodType: req.PeriodType,
				Status:     period.StatusOpen,
			}, nil
		},
	}

	h := period.NewHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body := `{"name":"March 2026","period_type":"MONTHLY","start_date":"2026-03-01","end_date":"2026-03-31","pay_date":"2026-04-05"}`
	c.Request = httptest.NewRequest(http.MethodPost, "/periods", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set("company_id", companyID)
	c.Set("user_id", actorID)

	h.Create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	env := mustDecodeEnvelope(t, w.Body.Bytes())
	assert.True(t, env.Ok)
}

func TestPeriodHandler_Create_BadPeriodType(t *testing.T) {
	svc := &fakePeriodService{
		createFn: func(ctx context.Context, companyID, actorID string, req period.CreatePeriodRequest) (period.PeriodResponse, error) {
			t.Fatal("service must not be called when binding fails")
			return period.PeriodResponse{}, nil
		},
	}

	h := period.NewHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body := `{"name":"March 2026","period_type":"YEARLY","start_date":"2026-03-01","end_date":"2026-03-31"}`
	c.Request = httptest.NewRequest(http.MethodPost, "/periods", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set("company_id", uuid.New().String())
	c.Set("user_id", uuid.New().String())

	h.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := mustDecodeEnvelope(t, w.Body.Bytes())
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}

func TestPeriodHandler_StartProcessing_Conflict(t *testing.T) {
	svc := &fakePeriodService{
		startProcessingFn: func(ctx context.Context, companyID, id string) (period.PeriodResponse, error) {
			return period.PeriodResponse{}, perioderrors.InvalidTransition(period.StatusClosed, period.StatusProcessing)
		},
	}

	h := period.NewHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	id := uuid.New().String()
	c.Request = httptest.NewRequest(http.MethodPost, "/periods/"+id+"/start-processing", nil)
	c.Params = []gin.Param{{Key: "id", Value: id}}
	c.Set("company_id", uuid.New().String())

	h.StartProcessing(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	env := mustDecodeEnvelope(t, w.Body.Bytes())
	assert.Equal(t, "INVALID_STATE_TRANSITION", env.Error.Code)
}

func TestPeriodHandler_Close_NotReady(t *testing.T) {
	svc := &fakePeriodService{
		closeFn: func(ctx context.Context, companyID, id string) (period.PeriodResponse, error) {
			return period.PeriodResponse{}, perioderrors.NotReady(2)
		},
	}

	h := period.NewHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	id := uuid.New().String()
	c.Request = httptest.NewRequest(http.MethodPost, "/periods/"+id+"/close", nil)
	c.Params = []gin.Param{{Key: "id", Value: id}}
	c.Set("company_id", uuid.New().String())

	h.Close(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	env := mustDecodeEnvelope(t, w.Body.Bytes())
	assert.Equal(t, "PERIOD_NOT_READY", env.Error.Code)
	assert.Contains(t, env.Error.Message, "2")
}

func TestPeriodHandler_Cancel(t *testing.T) {
	companyID := uuid.New().String()
	id := uuid.New().String()

	svc := &fakePeriodService{
		cancelFn: func(ctx context.Context, cid, pid, reason string) (period.PeriodResponse, error) {
			assert.Equal(t, companyID, cid)
			assert.Equal(t, id, pid)
			assert.Equal(t, "duplicate period", reason)
			return period.PeriodResponse{ID: pid, Status: period.StatusCancelled}, nil
		},
	}

	h := period.NewHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/periods/"+id+"/cancel", strings.NewReader(`{"reason":"duplicate period"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = []gin.Param{{Key: "id", Value: id}}
	c.Set("company_id", companyID)

	h.Cancel(c)

	assert.Equal(t, http.StatusOK, w.Code)
	env := mustDecodeEnvelope(t, w.Body.Bytes())
	assert.True(t, env.Ok)
}

func TestPeriodHandler_GetById_NotFound(t *testing.T) {
	svc := &fakePeriodService{
		getByIDFn: func(ctx context.Context, companyID, id string) (period.PeriodResponse, error) {
			return period.PeriodResponse{}, perioderrors.ErrPeriodNotFound
		},
	}

	h := period.NewHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	id := uuid.New().String()
	c.Request = httptest.NewRequest(http.MethodGet, "/periods/"+id, nil)
	c.Params = []gin.Param{{Key: "id", Value: id}}
	c.Set("company_id", uuid.New().String())

	h.GetById(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	env := mustDecodeEnvelope(t, w.Body.Bytes())
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}
