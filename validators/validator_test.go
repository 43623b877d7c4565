package validators

import (
	"net/http"
	"testing"

	"github.com/anonto42/civic-connect/backend/internal/models"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomTags(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.Validate(models.UpdateStatusRequest{Status: "Acknowledgment"}))
	assert.Error(t, v.Validate(models.UpdateStatusRequest{Status: "acknowledgment"}))

	assert.NoError(t, v.Validate(models.CastVoteRequest{Direction: "down"}))
	assert.Error(t, v.Validate(models.CastVoteRequest{Direction: "sideways"}))
}

func TestValidateReturnsBadRequest(t *testing.T) {
	err := NewValidator().Validate(models.CastVoteRequest{})
	require.Error(t, err)

	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
	assert.Equal(t, "Direction is required", he.Message)
}

func TestCreateIssueRequest(t *testing.T) {
	v := NewValidator()
	req := models.CreateIssueRequest{
		Title:         "Pothole",
		Description:   "Deep pothole near the bus stop.",
		Category:      "Roads",
		State:         "Kerala",
		District:      "Ernakulam",
		StreetAddress: "MG Road",
		CityInfo:      "Kochi",
		ReportType:    "anonymous",
	}
	assert.NoError(t, v.Validate(req))

	req.ReportType = "secret"
	err := v.Validate(req)
	require.Error(t, err)
	assert.Contains(t, err.(*echo.HTTPError).Message, "ReportType must be profiled or anonymous")
}
