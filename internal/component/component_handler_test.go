package component_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-payroll/internal/component"
	componenterrors "go-payroll/internal/component/errors"

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

type fakeComponentService struct {
	registerFn   func(ctx context.Context, companyID string, req component.RegisterComponentRequest) (component.ComponentResponse, error)
	getAllFn     func(ctx context.Context, companyID string) ([]component.ComponentResponse, error)
	listActiveFn func(ctx context.Context, companyID string) ([]component.SalaryComponent, error)
	getByIDFn    func(ctx context.Context, companyID, id string) (component.ComponentResponse, error)
	updateFn     func(ctx context.Context, companyID, id string, req component.UpdateComponentRequest) (component.ComponentResponse, error)
	deactivateFn func(ctx context.Context, companyID, id string) error
}

func (f *fakeComponentService) Register(ctx context.Context, companyID string, req component.RegisterComponentRequest) (component.ComponentResponse, error) {
	return f.registerFn(ctx, companyID, req)
}

func (f *fakeComponentService) GetAll(ctx context.Context, companyID string) ([]component.ComponentResponse, error) {
	return f.getAllFn(ctx, companyID)
}

func (f *fakeComponentService) ListActive(ctx context.Context, companyID string) ([]component.SalaryComponent, error) {
	return f.listActiveFn(ctx, companyID)
}

func (f *fakeComponentService) GetByID(ctx context.Context, companyID, id string) (component.ComponentResponse, error) {
	return f.getByIDFn(ctx, companyID, id)
}

func (f *fakeComponentService) Update(ctx context.Context, companyID, id string, req component.UpdateComponentRequest) (component.ComponentResponse, error) {
	return f.updateFn(ctx, companyID, id, req)
}

func (f *fakeComponentService) Deactivate(ctx context.Context, companyID, id string) error {
	return f.deactivateFn(ctx, companyID, id)
}

func TestComponentHandler_Register(t *testing.T) {
	companyID := uuid.New().String()

	svc := &fakeComponentService{
		registerFn: func(ctx context.Context, cid string, req component.RegisterComponentRequest) (component.ComponentResponse, error) {
			assert.Equal(t, companyID, cid)
			assert.Equal(t, "Housing Allowance", req.Name)
			assert.Equal(t, 10.0, req.Percent)
			assert.True(t, req.IsTaxable)
			return component.ComponentResponse{
				ID:            uuid.New().String(),
				CompanyID:     cid,
				Name:          req.Name,
				ComponentType: req.ComponentType,
				Percent:       req.Percent,
				Active:        true,
			}, nil
		},
	}

	h := component.NewHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body := `{"name":"Housing Allowance","component_type":"EARNING","percent":10,"is_taxable":true,"calculation_order":2}`
	c.Request = httptest.NewRequest(http.MethodPost, "/components", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set("company_id", companyID)

	h.Register(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	env := mustDecodeEnvelope(t, w.Body.Bytes())
	assert.True(t, env.Ok)
}

func TestComponentHandler_Register_BadType(t *testing.T) {
	svc := &fakeComponentService{
		registerFn: func(ctx context.Context, companyID string, req component.RegisterComponentRequest) (component.ComponentResponse, error) {
			t.Fatal("service must not be called when binding fails")
			return component.ComponentResponse{}, nil
		},
	}

	h := component.NewHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body := `{"name":"Broken","component_type":"BONUS","amount":1000}`
	c.Request = httptest.NewRequest(http.MethodPost, "/components", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set("company_id", uuid.New().String())

	h.Register(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := mustDecodeEnvelope(t, w.Body.Bytes())
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}

func TestComponentHandler_Register_DuplicateName(t *testing.T) {
	svc := &fakeComponentService{
		registerFn: func(ctx context.Context, companyID string, req component.RegisterComponentRequest) (component.ComponentResponse, error) {
			return component.ComponentResponse{}, componenterrors.ErrDuplicateName
		},
	}

	h := component.NewHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body := `{"name":"Base Salary","component_type":"EARNING","amount":500000}`
	c.Request = httptest.NewRequest(http.MethodPost, "/components", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set("company_id", uuid.New().String())

	h.Register(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	env := mustDecodeEnvelope(t, w.Body.Bytes())
	assert.Equal(t, "CONFLICT", env.Error.Code)
}

func TestComponentHandler_Update(t *testing.T) {
	companyID := uuid.New().String()
	id := uuid.New().String()

	svc := &fakeComponentService{
		updateFn: func(ctx context.Context, cid, gotID string, req component.UpdateComponentRequest) (component.ComponentResponse, error) {
			assert.Equal(t, companyID, cid)
			assert.Equal(t, id, gotID)
			assert.Equal(t, int64(600000), req.Amount)
			return component.ComponentResponse{ID: gotID, Name: req.Name, Amount: req.Amount}, nil
		},
	}

	h := component.NewHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body := `{"name":"Base Salary","component_type":"EARNING","amount":600000,"is_taxable":true,"calculation_order":1}`
	c.Request = httptest.NewRequest(http.MethodPut, "/components/"+id, strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = []gin.Param{{Key: "id", Value: id}}
	c.Set("company_id", companyID)

	h.Update(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestComponentHandler_Deactivate_NotFound(t *testing.T) {
	svc := &fakeComponentService{
		deactivateFn: func(ctx context.Context, companyID, id string) error {
			return componenterrors.ErrComponentNotFound
		},
	}

	h := component.NewHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	id := uuid.New().String()
	c.Request = httptest.NewRequest(http.MethodDelete, "/components/"+id, nil)
	c.Params = []gin.Param{{Key: "id", Value: id}}
	c.Set("company_id", uuid.New().String())

	h.Deactivate(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	env := mustDecodeEnvelope(t, w.Body.Bytes())
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestComponentHandler_GetAll(t *testing.T) {
	companyID := uuid.New().String()
	svc := &fakeComponentService{
		getAllFn: func(ctx context.Context, cid string) ([]component.ComponentResponse, error) {
			assert.Equal(t, companyID, cid)
			return []component.ComponentResponse{
				{ID: uuid.New().String(), Name: "Base Salary", Active: true},
				{ID: uuid.New().String(), Name: "Income Tax", Active: false},
			}, nil
		},
	}

	h := component.NewHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/components", nil)
	c.Set("company_id", companyID)

	h.GetAll(c)

	assert.Equal(t, http.StatusOK, w.Code)
	env := mustDecodeEnvelope(t, w.Body.Bytes())
	assert.True(t, env.Ok)
	assert.Contains(t, string(env.Data), "Income Tax")
}
