package common

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "bare object", input: `{"steps":["a"]}`, want: `{"steps":["a"]}`},
		{name: "object with prose", input: "Sure! {\"is_clear\": true, \"reasoning\": \"ok\"} Hope that helps.", want: `{"is_clear": true, "reasoning": "ok"}`},
		{name: "fenced block", input: "```json\n{\"test_code\": \"it()\"}\n```", want: `{"test_code": "it()"}`},
		{name: "array", input: `the list: ["a", "b"]`, want: `["a", "b"]`},
		{name: "no json", input: "nothing to see", wantErr: true},
		{name: "broken json", input: `{"steps": [}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetStringValue(t *testing.T) {
	data := map[string]interface{}{"content": "", "markdown_content": "# Ticket", "n": 3}

	v, ok := GetStringValue(data, "content", "markdown_content")
	assert.True(t, ok)
	assert.Equal(t, "# Ticket", v)

	_, ok = GetStringValue(data, "n", "missing")
	assert.False(t, ok)
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "", Capitalize(""))
	assert.Equal(t, "Reset password", Capitalize("reset password"))
	assert.Equal(t, "Reset password", Capitalize("RESET PASSWORD"))
}

func TestReturnJSONError(t *testing.T) {
	rec := httptest.NewRecorder()
	ReturnJSONError(rec, http.StatusUnauthorized, "Unauthorized")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var body map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Unauthorized", body["error"]["message"])
}
