package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"mongoprov/internal/domain"
	"mongoprov/internal/handler"
	"mongoprov/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type handlerMocks struct {
	validation *mocks.MockValidationService
	provision  *mocks.MockProvisionService
	updateACL  *mocks.MockUpdateACLService
	reverse    *mocks.MockReverseProvisionService
}

func newProvisionHandler() (*handler.ProvisionHandler, *handlerMocks) {
	m := &handlerMocks{
		validation: new(mocks.MockValidationService),
		provision:  new(mocks.MockProvisionService),
		updateACL:  new(mocks.MockUpdateACLService),
		reverse:    new(mocks.MockReverseProvisionService),
	}
	h := handler.NewProvisionHandler(m.validation, m.provision, m.updateACL, m.reverse)
	return h, m
}

func postJSON(t *testing.T, body interface{}) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	raw, err := json.Marshal(body)
	assert.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/v1/provision", bytes.NewReader(raw))
	c.Request.Header.Set("Content-Type", "application/json")
	return w, c
}

// --- Provision ---

func TestProvisionHandler_Provision_Success(t *testing.T) {
	h, m := newProvisionHandler()

	m.provision.On("Provision", mock.Anything, "descriptor: yaml", "").
		Return(&domain.ProvisioningStatus{Status: domain.StateCompleted}, nil)

	w, c := postJSON(t, map[string]interface{}{
		"descriptorKind": "COMPONENT_DESCRIPTOR",
		"descriptor":     "descriptor: yaml",
	})

	h.Provision(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp handler.APIResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.True(t, resp.Success)
	m.provision.AssertExpectations(t)
}

func TestProvisionHandler_Provision_WrongDescriptorKind(t *testing.T) {
	h, m := newProvisionHandler()

	w, c := postJSON(t, map[string]interface{}{
		"descriptorKind": "DATAPRODUCT_DESCRIPTOR",
		"descriptor":     "descriptor: yaml",
	})

	h.Provision(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp handler.APIResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Contains(t, resp.Error.Errors[0], "DATAPRODUCT_DESCRIPTOR")
	m.provision.AssertNotCalled(t, "Provision", mock.Anything, mock.Anything, mock.Anything)
}

func TestProvisionHandler_Provision_MissingDescriptor(t *testing.T) {
	h, _ := newProvisionHandler()

	w, c := postJSON(t, map[string]interface{}{
		"descriptorKind": "COMPONENT_DESCRIPTOR",
	})

	h.Provision(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProvisionHandler_Provision_ValidationError(t *testing.T) {
	h, m := newProvisionHandler()

	m.provision.On("Provision", mock.Anything, "bad: yaml", "").
		Return(nil, domain.NewValidationError("dataProduct.domain", "missing required field"))

	w, c := postJSON(t, map[string]interface{}{
		"descriptorKind": "COMPONENT_DESCRIPTOR",
		"descriptor":     "bad: yaml",
	})

	h.Provision(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp handler.APIResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Contains(t, resp.Error.Errors[0], "dataProduct.domain")
}

func TestProvisionHandler_Provision_InfrastructureError(t *testing.T) {
	h, m := newProvisionHandler()

	m.provision.On("Provision", mock.Anything, "descriptor: yaml", "").
		Return(nil, fmt.Errorf("createCollection: %w", domain.ErrInfrastructure))

	w, c := postJSON(t, map[string]interface{}{
		"descriptorKind": "COMPONENT_DESCRIPTOR",
		"descriptor":     "descriptor: yaml",
	})

	h.Provision(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp handler.APIResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.Equal(t, "INFRASTRUCTURE_ERROR", resp.Error.Code)
}

// --- Validate ---

func TestProvisionHandler_Validate_ReportsInvalidDescriptor(t *testing.T) {
	h, m := newProvisionHandler()

	m.validation.On("Validate", mock.Anything, "bad: yaml", "").
		Return(&domain.ValidationResult{Valid: false, Errors: []string{"dataProduct.domain: missing required field"}}, nil)

	w, c := postJSON(t, map[string]interface{}{
		"descriptorKind": "COMPONENT_DESCRIPTOR",
		"descriptor":     "bad: yaml",
	})

	h.Validate(c)

	// An invalid descriptor is a successful validation call.
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool                    `json:"success"`
		Data    domain.ValidationResult `json:"data"`
	}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.True(t, resp.Success)
	assert.False(t, resp.Data.Valid)
	assert.Len(t, resp.Data.Errors, 1)
}

// --- Unprovision ---

func TestProvisionHandler_Unprovision_PassesRemoveData(t *testing.T) {
	h, m := newProvisionHandler()

	m.provision.On("Unprovision", mock.Anything, "descriptor: yaml", "", true).
		Return(&domain.ProvisioningStatus{Status: domain.StateCompleted}, nil)

	w, c := postJSON(t, map[string]interface{}{
		"descriptorKind": "COMPONENT_DESCRIPTOR",
		"descriptor":     "descriptor: yaml",
		"removeData":     true,
	})

	h.Unprovision(c)

	assert.Equal(t, http.StatusOK, w.Code)
	m.provision.AssertExpectations(t)
}

// --- UpdateACL ---

func TestProvisionHandler_UpdateACL_Success(t *testing.T) {
	h, m := newProvisionHandler()

	refs := []string{"user:alice_corp.com"}
	m.updateACL.On("UpdateACL", mock.Anything, "descriptor: yaml", "", refs).
		Return(&domain.ProvisioningStatus{Status: domain.StateCompleted}, nil)

	w, c := postJSON(t, map[string]interface{}{
		"refs": refs,
		"provisionInfo": map[string]interface{}{
			"request": "descriptor: yaml",
		},
	})

	h.UpdateACL(c)

	assert.Equal(t, http.StatusOK, w.Code)
	m.updateACL.AssertExpectations(t)
}

func TestProvisionHandler_UpdateACL_MissingRefs(t *testing.T) {
	h, _ := newProvisionHandler()

	w, c := postJSON(t, map[string]interface{}{
		"provisionInfo": map[string]interface{}{
			"request": "descriptor: yaml",
		},
	})

	h.UpdateACL(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --- ReverseProvision ---

func TestProvisionHandler_ReverseProvision_Success(t *testing.T) {
	h, m := newProvisionHandler()

	result := &domain.ReverseImportResult{
		Database:  "finance_orders_1_dev",
		Fragments: []domain.CollectionFragment{{Collection: "orders"}},
	}
	m.reverse.On("Import", mock.Anything, "finance_orders_1_dev", []string{"orders"}).
		Return(result, nil)
	m.reverse.On("Updates", result, "dev").
		Return(map[string]interface{}{"parameters": map[string]interface{}{}})

	w, c := postJSON(t, map[string]interface{}{
		"useCaseTemplateId": "urn:dmb:utm:mongo-outputport-template:0.0.0",
		"environment":       "dev",
		"params": map[string]interface{}{
			"database":    "finance_orders_1_dev",
			"collections": []string{"orders"},
		},
	})

	h.ReverseProvision(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Status  string                 `json:"status"`
			Updates map[string]interface{} `json:"updates"`
		} `json:"data"`
	}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.Equal(t, "COMPLETED", resp.Data.Status)
	assert.Contains(t, resp.Data.Updates, "parameters")
	m.reverse.AssertExpectations(t)
}

func TestProvisionHandler_ReverseProvision_UnknownDatabase(t *testing.T) {
	h, m := newProvisionHandler()

	m.reverse.On("Import", mock.Anything, "nope", []string(nil)).
		Return(nil, fmt.Errorf("database %q: %w", "nope", domain.ErrNotFound))

	w, c := postJSON(t, map[string]interface{}{
		"environment": "dev",
		"params":      map[string]interface{}{"database": "nope"},
	})

	h.ReverseProvision(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
