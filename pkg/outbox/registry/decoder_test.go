package registry

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ParzivalXIII/inventory-management-system/pkg/enums"
)

func TestDecodeDispatchesByEventTypeAndVersion(t *testing.T) {
	reg := NewDecoderRegistry()
	reg.Register(enums.EventProductLowStock, 1, func(payload json.RawMessage) (any, error) {
		var decoded map[string]string
		err := json.Unmarshal(payload, &decoded)
		return decoded, err
	})

	output, err := reg.Decode(enums.EventProductLowStock, 1, json.RawMessage(`{"product_name":"widget"}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"product_name": "widget"}, output)
}

func TestDecodeFailsForUnregisteredDecoder(t *testing.T) {
	reg := NewDecoderRegistry()

	_, err := reg.Decode(enums.EventOrderCreated, 1, json.RawMessage(`{}`))
	require.Error(t, err)

	// A registered type still misses when the version differs.
	reg.Register(enums.EventOrderCreated, 1, func(payload json.RawMessage) (any, error) {
		return payload, nil
	})
	_, err = reg.Decode(enums.EventOrderCreated, 2, json.RawMessage(`{}`))
	assert.Error(t, err)
}
