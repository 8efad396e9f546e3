package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/census-tidy/internal/acs"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

const educationCSV = "\ufeffLabel (Grouping),Texas!!Total!!Estimate,Texas!!Percent!!Estimate,Texas!!Total!!Margin of Error\n" +
	"AGE BY EDUCATIONAL ATTAINMENT,,,\n" +
	"Population 18 to 24 years,\"2,900,000\",(X),1000\n" +
	"Less than high school graduate,\"400,000\",13.8%,500\n" +
	"High school graduate (includes equivalency),\"900,000\",(X),600\n"

func newTestServer() http.Handler {
	return NewRouter(acs.DefaultCatalog(), Options{})
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "text/csv")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealth(t *testing.T) {
	rr := do(t, newTestServer(), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestListFacts(t *testing.T) {
	rr := do(t, newTestServer(), http.MethodGet, "/v1/facts", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var facts []FactInfo
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &facts))
	require.Len(t, facts, 5)
	assert.Equal(t, "age_by_education", facts[0].Name)
	assert.Equal(t, "education", facts[0].Source)
	assert.Equal(t, []string{"state", "year", "education", "age_group"}, facts[0].Key)
}

func TestGetFact(t *testing.T) {
	h := newTestServer()

	rr := do(t, h, http.MethodGet, "/v1/facts/population_by_age", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var info FactInfo
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &info))
	assert.Equal(t, []string{"state", "year", "age_group", "population_percent"}, info.Columns)

	rr = do(t, h, http.MethodGet, "/v1/facts/nope", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestReshape(t *testing.T) {
	rr := do(t, newTestServer(), http.MethodPost, "/v1/facts/age_by_education/reshape?year=2023", educationCSV)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp ReshapeResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "age_by_education", resp.Fact)
	require.Len(t, resp.Rows, 2)

	// JSON numbers decode as float64.
	first := resp.Rows[0]
	assert.Equal(t, "Texas", first[0])
	assert.Equal(t, float64(2023), first[1])
	assert.Equal(t, "Less than high school graduate", first[2])
	assert.Equal(t, "18 to 24 years", first[3])
	assert.Equal(t, float64(400000), first[4])
	assert.InDelta(t, 0.138, first[5], 1e-9)
	assert.Nil(t, first[6])

	second := resp.Rows[1]
	assert.Nil(t, second[5], "(X) is null")
	assert.Equal(t, 1, resp.Stats.ExcludedColumns())
}

func TestReshape_NoYear(t *testing.T) {
	rr := do(t, newTestServer(), http.MethodPost, "/v1/facts/age_by_education/reshape", educationCSV)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp ReshapeResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Rows)
	assert.Nil(t, resp.Rows[0][1])
}

func TestReshape_Errors(t *testing.T) {
	h := newTestServer()

	tests := []struct {
		name   string
		target string
		body   string
		status int
	}{
		{"unknown fact", "/v1/facts/nope/reshape?year=2023", educationCSV, http.StatusNotFound},
		{"bad year", "/v1/facts/age_by_education/reshape?year=latest", educationCSV, http.StatusBadRequest},
		{"empty body", "/v1/facts/age_by_education/reshape?year=2023", "", http.StatusBadRequest},
		{"no metric columns", "/v1/facts/age_by_education/reshape?year=2023", "Label (Grouping),Notes\nx,y\n", http.StatusUnprocessableEntity},
		{"missing label column", "/v1/facts/age_by_education/reshape?year=2023", "Name,Texas!!Total!!Estimate\nx,1\n", http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, h, http.MethodPost, tt.target, tt.body)
			assert.Equal(t, tt.status, rr.Code, rr.Body.String())

			var body map[string]string
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/v1/facts", nil)
	req.Header.Set("Origin", "https://example.org")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	newTestServer().ServeHTTP(rr, req)

	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}
