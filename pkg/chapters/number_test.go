package chapters

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNumber(t *testing.T) {
	tests := []struct {
		input    string
		valid    bool
		integral bool
		str      string
	}{
		{"1", true, true, "1"},
		{"1.0", true, true, "1"},
		{"1.5", true, false, "1.5"},
		{"10.25", true, false, "10.25"},
		{"  3 ", true, true, "3"},
		{"", false, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			n, err := NewNumber(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.valid, n.Valid())
			assert.Equal(t, tt.integral, n.IsIntegral())
			assert.Equal(t, tt.str, n.String())
		})
	}
}

func TestNewNumberInvalid(t *testing.T) {
	_, err := NewNumber("abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid chapter number "abc"`)

	assert.Panics(t, func() { MustNumber("x1") })
}

func TestNumberCmp(t *testing.T) {
	assert.Equal(t, 0, MustNumber("1").Cmp(MustNumber("1.0")))
	assert.Equal(t, -1, MustNumber("1.5").Cmp(MustNumber("2")))
	assert.Equal(t, 1, MustNumber("10").Cmp(MustNumber("9.9")))
	assert.Equal(t, -1, Number{}.Cmp(MustNumber("0")))
	assert.True(t, Number{}.Equal(Number{}))
}

func TestNumberUnmarshalJSON(t *testing.T) {
	var payload struct {
		A Number `json:"a"`
		B Number `json:"b"`
		C Number `json:"c"`
		D Number `json:"d"`
	}

	err := json.Unmarshal([]byte(`{"a":"12.5","b":7,"c":"","d":null}`), &payload)
	require.NoError(t, err)

	assert.Equal(t, "12.5", payload.A.String())
	assert.Equal(t, "7", payload.B.String())
	assert.False(t, payload.C.Valid())
	assert.False(t, payload.D.Valid())
}

func TestNumberUnmarshalJSONInvalid(t *testing.T) {
	var n Number
	assert.Error(t, json.Unmarshal([]byte(`"extra"`), &n))
	assert.Error(t, json.Unmarshal([]byte(`true`), &n))
}

func TestNumberMarshalJSON(t *testing.T) {
	data, err := json.Marshal([]Number{MustNumber("2.50"), {}})
	require.NoError(t, err)
	assert.JSONEq(t, `["2.5", null]`, string(data))
}

func TestNumberFloat64(t *testing.T) {
	assert.InDelta(t, 1.5, MustNumber("1.5").Float64(), 1e-9)
	assert.Zero(t, Number{}.Float64())
}
