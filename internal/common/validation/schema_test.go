package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `{
  "type": "object",
  "properties": {
    "similarityThreshold": {"type": "number", "minimum": 0, "maximum": 1},
    "tts": {
      "type": "object",
      "properties": {"rate": {"type": "integer", "minimum": 1}}
    }
  }
}`

func TestValidateDocument(t *testing.T) {
	t.Run("valid document", func(t *testing.T) {
		res, err := ValidateDocument(testSchema, map[string]interface{}{
			"similarityThreshold": 0.82,
			"unknownKey":          "ignored",
		})
		require.NoError(t, err)
		assert.True(t, res.Valid)
		assert.Empty(t, res.Errors)
	})

	t.Run("out of range and wrong type", func(t *testing.T) {
		res, err := ValidateDocument(testSchema, map[string]interface{}{
			"similarityThreshold": 1.5,
			"tts":                 map[string]interface{}{"rate": "fast"},
		})
		require.NoError(t, err)
		assert.False(t, res.Valid)
		assert.True(t, res.HasErrors("similarityThreshold"))
		assert.True(t, res.HasErrors("tts"))
		assert.Len(t, res.GetErrorMessages(), len(res.Errors))
	})

	t.Run("broken schema", func(t *testing.T) {
		_, err := ValidateDocument(`{"type": 12}`, map[string]interface{}{})
		assert.Error(t, err)
	})
}

func TestPhoneHelpers(t *testing.T) {
	assert.True(t, ValidatePhone("+92 300 1234567"))
	assert.False(t, ValidatePhone("12345"))
	assert.Equal(t, "+923001234567", NormalizePhone(" +92 (300) 123-4567 "))
}
