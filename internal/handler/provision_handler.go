package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mongoprov/internal/domain"
	"mongoprov/internal/service"
)

// ProvisioningRequest is the synchronous request shape sent by the
// orchestration platform. The descriptor itself travels as a YAML string;
// the component to act on is named inside it (componentIdToProvision).
type ProvisioningRequest struct {
	DescriptorKind domain.DescriptorKind `json:"descriptorKind" binding:"required"`
	Descriptor     string                `json:"descriptor" binding:"required"`
	RemoveData     bool                  `json:"removeData"`
}

// ProvisionInfo carries the original provisioning request inside an
// update-ACL call.
type ProvisionInfo struct {
	Request string `json:"request" binding:"required"`
	Result  string `json:"result"`
}

// UpdateACLRequest asks the adapter to make the consumer binding set equal
// to Refs.
type UpdateACLRequest struct {
	Refs          []string      `json:"refs" binding:"required"`
	ProvisionInfo ProvisionInfo `json:"provisionInfo" binding:"required"`
}

// ReverseProvisioningParams selects the import source.
type ReverseProvisioningParams struct {
	Database    string   `json:"database"`
	Collections []string `json:"collections"`
}

// ReverseProvisioningRequest asks the adapter to rebuild descriptor
// fragments from an existing database.
type ReverseProvisioningRequest struct {
	UseCaseTemplateID string                    `json:"useCaseTemplateId"`
	Environment       string                    `json:"environment" binding:"required"`
	Params            ReverseProvisioningParams `json:"params"`
}

// ReverseProvisioningStatus is the synchronous outcome of a reverse
// provisioning call.
type ReverseProvisioningStatus struct {
	Status  domain.ProvisioningState `json:"status"`
	Updates map[string]interface{}   `json:"updates"`
}

// ProvisionHandler handles the provisioning endpoints.
type ProvisionHandler struct {
	validationService service.ValidationService
	provisionService  service.ProvisionService
	updateACLService  service.UpdateACLService
	reverseService    service.ReverseProvisionService
}

// NewProvisionHandler creates a new ProvisionHandler.
func NewProvisionHandler(
	validationService service.ValidationService,
	provisionService service.ProvisionService,
	updateACLService service.UpdateACLService,
	reverseService service.ReverseProvisionService,
) *ProvisionHandler {
	return &ProvisionHandler{
		validationService: validationService,
		provisionService:  provisionService,
		updateACLService:  updateACLService,
		reverseService:    reverseService,
	}
}

// Validate handles POST /v1/validate
// @Summary Validate a component descriptor
// @Tags provisioning
// @Accept json
// @Produce json
// @Param request body ProvisioningRequest true "Descriptor to validate"
// @Success 200 {object} APIResponse "Validation outcome"
// @Router /v1/validate [post]
func (h *ProvisionHandler) Validate(c *gin.Context) {
	req, ok := bindProvisioningRequest(c)
	if !ok {
		return
	}

	result, err := h.validationService.Validate(c.Request.Context(), req.Descriptor, "")
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, result)
}

// Provision handles POST /v1/provision
// @Summary Provision a component
// @Tags provisioning
// @Accept json
// @Produce json
// @Param request body ProvisioningRequest true "Descriptor to provision"
// @Success 200 {object} APIResponse "Provisioning status"
// @Failure 400 {object} APIResponse "Validation error"
// @Router /v1/provision [post]
func (h *ProvisionHandler) Provision(c *gin.Context) {
	req, ok := bindProvisioningRequest(c)
	if !ok {
		return
	}

	status, err := h.provisionService.Provision(c.Request.Context(), req.Descriptor, "")
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, status)
}

// Unprovision handles POST /v1/unprovision
// @Summary Unprovision a component
// @Tags provisioning
// @Accept json
// @Produce json
// @Param request body ProvisioningRequest true "Descriptor to unprovision"
// @Success 200 {object} APIResponse "Provisioning status"
// @Failure 400 {object} APIResponse "Validation error"
// @Router /v1/unprovision [post]
func (h *ProvisionHandler) Unprovision(c *gin.Context) {
	req, ok := bindProvisioningRequest(c)
	if !ok {
		return
	}

	status, err := h.provisionService.Unprovision(c.Request.Context(), req.Descriptor, "", req.RemoveData)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, status)
}

// UpdateACL handles POST /v1/updateacl
// @Summary Reconcile consumer ACLs to the requested identity set
// @Tags provisioning
// @Accept json
// @Produce json
// @Param request body UpdateACLRequest true "Identities and original request"
// @Success 200 {object} APIResponse "Provisioning status"
// @Failure 400 {object} APIResponse "Validation error"
// @Router /v1/updateacl [post]
func (h *ProvisionHandler) UpdateACL(c *gin.Context) {
	var req UpdateACLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	status, err := h.updateACLService.UpdateACL(c.Request.Context(), req.ProvisionInfo.Request, "", req.Refs)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, status)
}

// ReverseProvision handles POST /v1/reverse-provision
// @Summary Import existing database metadata into descriptor fragments
// @Tags provisioning
// @Accept json
// @Produce json
// @Param request body ReverseProvisioningRequest true "Import source"
// @Success 200 {object} APIResponse "Reverse provisioning status"
// @Failure 404 {object} APIResponse "Database not found"
// @Router /v1/reverse-provision [post]
func (h *ProvisionHandler) ReverseProvision(c *gin.Context) {
	var req ReverseProvisioningRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	result, err := h.reverseService.Import(c.Request.Context(), req.Params.Database, req.Params.Collections)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, ReverseProvisioningStatus{
		Status:  domain.StateCompleted,
		Updates: h.reverseService.Updates(result, req.Environment),
	})
}

// bindProvisioningRequest decodes the request body and rejects descriptor
// kinds other than COMPONENT_DESCRIPTOR before any work happens.
func bindProvisioningRequest(c *gin.Context) (*ProvisioningRequest, bool) {
	var req ProvisioningRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return nil, false
	}
	if req.DescriptorKind != domain.KindComponentDescriptor {
		RespondValidationError(c, domain.NewValidationError("descriptorKind",
			"expecting a COMPONENT_DESCRIPTOR but got a "+string(req.DescriptorKind)+" instead; please check with the platform team"))
		return nil, false
	}
	return &req, true
}
