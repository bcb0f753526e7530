package catalog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFind(t *testing.T) {
	s, ok := Find("Hair Cut + Beard Trim")
	assert.True(t, ok)
	assert.Equal(t, 90, s.Price)
	assert.Equal(t, "תספורת + זקן", s.Title.Pick("he"))

	assert.False(t, Exists("Manicure"))
}

func TestAllReturnsCopy(t *testing.T) {
	all := All()
	all[0].Name = "changed"
	assert.True(t, Exists("Hair Cut"))
}

func TestListHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	ListHandler(rec, httptest.NewRequest(http.MethodGet, "/api/services", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Services []Service `json:"services"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Len(t, body.Services, len(services))
}
