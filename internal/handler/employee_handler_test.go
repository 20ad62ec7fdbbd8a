package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/disdik-dki/anjab-api/internal/middleware"
	"github.com/disdik-dki/anjab-api/internal/models"
)

type fakeEmployeeSrv struct {
	updated bool
}

func (f *fakeEmployeeSrv) List(context.Context, *models.JWTClaims, models.EmployeeFilter) ([]models.Employee, *models.Pagination, error) {
	return []models.Employee{}, &models.Pagination{Page: 1, PageSize: 10}, nil
}

func (f *fakeEmployeeSrv) Get(context.Context, *models.JWTClaims, string) (*models.Employee, error) {
	return &models.Employee{ID: "emp-1"}, nil
}

func (f *fakeEmployeeSrv) Create(context.Context, *models.JWTClaims, map[string]interface{}) (*models.Employee, error) {
	return &models.Employee{ID: "emp-new"}, nil
}

func (f *fakeEmployeeSrv) Update(context.Context, *models.JWTClaims, string, map[string]interface{}) (*models.Employee, error) {
	f.updated = true
	return &models.Employee{ID: "emp-1"}, nil
}

func (f *fakeEmployeeSrv) Delete(context.Context, *models.JWTClaims, string) error { return nil }

func (f *fakeEmployeeSrv) Options(context.Context) (*models.FilterOptions, error) {
	return &models.FilterOptions{}, nil
}

type fakeChangeSubmitter struct {
	submitted bool
}

func (f *fakeChangeSubmitter) Submit(context.Context, *models.JWTClaims, string, map[string]interface{}) (*models.ChangeRequest, error) {
	f.submitted = true
	return &models.ChangeRequest{ID: "req-1", Status: models.ChangeRequestPending}, nil
}

func updateRequest(t *testing.T, role models.UserRole) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPut, "/employees/emp-1",
		bytes.NewBufferString(`{"jabatan":"Guru Kelas"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: "emp-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u-1", Role: role})
	return rec, c
}

func TestEmployeeHandlerUpdateAdminWritesDirectly(t *testing.T) {
	srv := &fakeEmployeeSrv{}
	changes := &fakeChangeSubmitter{}
	handler := NewEmployeeHandler(srv, changes)

	rec, c := updateRequest(t, models.RoleAdmin)
	handler.Update(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, srv.updated)
	assert.False(t, changes.submitted)
}

func TestEmployeeHandlerUpdateProposerFilesRequest(t *testing.T) {
	srv := &fakeEmployeeSrv{}
	changes := &fakeChangeSubmitter{}
	handler := NewEmployeeHandler(srv, changes)

	rec, c := updateRequest(t, models.RoleGuruTendik)
	handler.Update(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.False(t, srv.updated)
	assert.True(t, changes.submitted)
}

func TestEmployeeHandlerUpdateRequiresClaims(t *testing.T) {
	handler := NewEmployeeHandler(&fakeEmployeeSrv{}, &fakeChangeSubmitter{})

	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPut, "/employees/emp-1",
		bytes.NewBufferString(`{"jabatan":"Guru Kelas"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Update(c)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
