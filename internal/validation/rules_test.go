package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotBlank(t *testing.T) {
	assert.NoError(t, NotBlank.Validate("value"))
	assert.Error(t, NotBlank.Validate(""))
	assert.Error(t, NotBlank.Validate("   "))
}

func TestNoWhitespace(t *testing.T) {
	assert.NoError(t, NoWhitespace.Validate("value"))
	assert.Error(t, NoWhitespace.Validate(" value"))
	assert.Error(t, NoWhitespace.Validate("value "))
}

func TestKnownTriggerType(t *testing.T) {
	assert.NoError(t, KnownTriggerType.Validate("manual"))
	assert.NoError(t, KnownTriggerType.Validate("webhook"))
	assert.Error(t, KnownTriggerType.Validate("cron"))
}

func TestKnownExpectedType(t *testing.T) {
	assert.NoError(t, KnownExpectedType.Validate("string"))
	assert.NoError(t, KnownExpectedType.Validate("any"))
	assert.Error(t, KnownExpectedType.Validate("blob"))
}

func TestStructuralValue(t *testing.T) {
	rule := StructuralValue{}

	assert.NoError(t, rule.Validate(map[string]any{"text": "hello", "count": 3}))
	assert.NoError(t, rule.Validate(nil))
	assert.Error(t, rule.Validate(map[string]any{"fn": func() {}}))
}

func TestWrapValidationError(t *testing.T) {
	assert.NoError(t, WrapValidationError(nil))

	err := WrapValidationError(assert.AnError)
	assert.Error(t, err)
}
