package handler

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestsWithoutTokenAreRejected(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/projects", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/dashboard", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// TestComplianceWorkflow walks the whole lifecycle over HTTP: registration,
// project setup, control tracking, an audit cycle, and the PDF report.
func TestComplianceWorkflow(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "jane@acme.test", "Acme")
	standard := env.seedStandard(t, "SOC2", 10)

	// Create the project.
	rec := env.do(t, http.MethodPost, "/api/projects", token, map[string]string{
		"name":        "SOC2 Prep",
		"description": "Annual certification run",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var project struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	decodeBody(t, rec, &project)
	assert.Equal(t, "ACTIVE", project.Status)
	base := "/api/projects/" + project.ID

	// Attach all ten catalog controls.
	ids := make([]string, 0, len(standard.Controls))
	for _, c := range standard.Controls {
		ids = append(ids, c.ID.String())
	}
	rec = env.do(t, http.MethodPost, base+"/controls", token, map[string]interface{}{
		"controlIds": ids,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var added struct {
		Added   int `json:"added"`
		Skipped int `json:"skipped"`
	}
	decodeBody(t, rec, &added)
	assert.Equal(t, 10, added.Added)
	assert.Equal(t, 0, added.Skipped)

	// A batch where everything is already attached is rejected.
	rec = env.do(t, http.MethodPost, base+"/controls", token, map[string]interface{}{
		"controlIds": ids[:2],
	})
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	// Three implemented, two in progress.
	for _, id := range ids[:3] {
		rec = env.do(t, http.MethodPatch, base+"/controls/"+id, token, map[string]string{
			"implementationStatus": "IMPLEMENTED",
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}
	for _, id := range ids[3:5] {
		rec = env.do(t, http.MethodPatch, base+"/controls/"+id, token, map[string]string{
			"implementationStatus": "IN_PROGRESS",
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	// The project detail reflects the rollup.
	rec = env.do(t, http.MethodGet, base, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var detail struct {
		Progress int `json:"progress"`
		Stats    struct {
			Total       int `json:"total"`
			Implemented int `json:"implemented"`
			InProgress  int `json:"inProgress"`
			NotStarted  int `json:"notStarted"`
		} `json:"stats"`
	}
	decodeBody(t, rec, &detail)
	assert.Equal(t, 30, detail.Progress)
	assert.Equal(t, 10, detail.Stats.Total)
	assert.Equal(t, 3, detail.Stats.Implemented)
	assert.Equal(t, 2, detail.Stats.InProgress)
	assert.Equal(t, 5, detail.Stats.NotStarted)

	// Start an audit: one snapshot per attached control.
	rec = env.do(t, http.MethodPost, base+"/audits", token, map[string]string{
		"startedBy": "Jane Doe",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var audit struct {
		ID            string `json:"id"`
		Status        string `json:"status"`
		Progress      int    `json:"progress"`
		ControlAudits []struct {
			ID                 string `json:"id"`
			VerificationStatus string `json:"verificationStatus"`
		} `json:"controlAudits"`
	}
	decodeBody(t, rec, &audit)
	assert.Equal(t, "IN_PROGRESS", audit.Status)
	assert.Equal(t, 0, audit.Progress)
	require.Len(t, audit.ControlAudits, 10)
	for _, ca := range audit.ControlAudits {
		assert.Equal(t, "NOT_VERIFIED", ca.VerificationStatus)
	}

	// A second open audit is rejected.
	rec = env.do(t, http.MethodPost, base+"/audits", token, map[string]string{
		"startedBy": "Joe",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Verify four controls, flag one.
	auditBase := base + "/audits/" + audit.ID
	for i, ca := range audit.ControlAudits[:5] {
		status := "VERIFIED"
		if i == 4 {
			status = "NEEDS_ATTENTION"
		}
		rec = env.do(t, http.MethodPatch, auditBase+"/controls/"+ca.ID, token, map[string]string{
			"verificationStatus": status,
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodGet, auditBase, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var auditDetail struct {
		Progress int `json:"progress"`
		Stats    struct {
			Verified       int `json:"verified"`
			NeedsAttention int `json:"needsAttention"`
		} `json:"stats"`
	}
	decodeBody(t, rec, &auditDetail)
	assert.Equal(t, 50, auditDetail.Progress)
	assert.Equal(t, 4, auditDetail.Stats.Verified)
	assert.Equal(t, 1, auditDetail.Stats.NeedsAttention)

	// Close the audit.
	rec = env.do(t, http.MethodPatch, auditBase, token, map[string]string{
		"status":      "COMPLETED",
		"completedBy": "Jane Doe",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Completed audits reject every further write.
	rec = env.do(t, http.MethodPatch, auditBase+"/controls/"+audit.ControlAudits[5].ID, token, map[string]string{
		"verificationStatus": "VERIFIED",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// The compliance report downloads as a PDF attachment.
	rec = env.do(t, http.MethodGet, base+"/report", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "soc2_prep_Compliance_Report_")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF"))
}

func TestTenantIsolationOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	acmeToken := env.register(t, "jane@acme.test", "Acme")
	otherToken := env.register(t, "eve@other.test", "Other Org")

	rec := env.do(t, http.MethodPost, "/api/projects", acmeToken, map[string]string{
		"name": "Internal Project",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var project struct {
		ID string `json:"id"`
	}
	decodeBody(t, rec, &project)

	// A foreign project reads as absent, never as forbidden.
	rec = env.do(t, http.MethodGet, "/api/projects/"+project.ID, otherToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// So does a malformed project ID.
	rec = env.do(t, http.MethodGet, "/api/projects/not-a-uuid", acmeToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDPIAWorkflowOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "jane@acme.test", "Acme")

	rec := env.do(t, http.MethodPost, "/api/projects", token, map[string]string{
		"name": "Customer Portal",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var project struct {
		ID string `json:"id"`
	}
	decodeBody(t, rec, &project)
	base := "/api/projects/" + project.ID + "/dpia"

	// No assessment yet.
	rec = env.do(t, http.MethodGet, base, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPost, base, token, map[string]string{
		"processingDescription": "Processing of customer account data",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// One per project.
	rec = env.do(t, http.MethodPost, base, token, map[string]string{})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// The risk register round-trips in order.
	risks := []map[string]interface{}{
		{"description": "Unauthorized access", "likelihood": "MEDIUM", "impact": "HIGH"},
		{"description": "Excessive retention", "likelihood": "LOW", "impact": "MEDIUM", "mitigated": true},
	}
	rec = env.do(t, http.MethodPatch, base, token, map[string]interface{}{
		"identifiedRisks": risks,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodGet, base, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var dpia struct {
		IdentifiedRisks []struct {
			Description string `json:"description"`
			Mitigated   bool   `json:"mitigated"`
		} `json:"identifiedRisks"`
		CompletionPercentage int `json:"completionPercentage"`
	}
	decodeBody(t, rec, &dpia)
	require.Len(t, dpia.IdentifiedRisks, 2)
	assert.Equal(t, "Unauthorized access", dpia.IdentifiedRisks[0].Description)
	assert.Equal(t, "Excessive retention", dpia.IdentifiedRisks[1].Description)
	assert.True(t, dpia.IdentifiedRisks[1].Mitigated)

	// The DPIA report downloads as a PDF attachment.
	rec = env.do(t, http.MethodGet, base+"/report", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "DPIA-Customer-Portal-")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF"))
}
