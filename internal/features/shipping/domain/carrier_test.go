package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCarrierID(t *testing.T) {
	for _, id := range AllCarrierIDs() {
		got, err := ParseCarrierID(string(id))
		require.NoError(t, err)
		assert.Equal(t, id, got)
	}

	_, err := ParseCarrierID("dhl")
	require.ErrorIs(t, err, ErrUnknownCarrier)
	assert.Contains(t, err.Error(), "viettel_post")
}

func TestProfile(t *testing.T) {
	jt, ok := Profile(CarrierJTExpress)
	require.True(t, ok)
	assert.False(t, jt.NativeTracking)
	assert.Equal(t, "jnt", jt.TrackingSlug)
	assert.Equal(t, "Bearer k", jt.Auth.Value("k"))

	ghtk, ok := Profile(CarrierGHTK)
	require.True(t, ok)
	assert.Equal(t, "X-API-Key", ghtk.Auth.Header)
	assert.Equal(t, "k", ghtk.Auth.Value("k"))

	_, ok = Profile(CarrierOther)
	assert.False(t, ok)
}

func TestUnits(t *testing.T) {
	assert.Equal(t, 0.75, GramsToKg(750))
	assert.Equal(t, 1.0, GramsToKg(1000))
	assert.Equal(t, 0.5, GramsToKg(DefaultItemWeightGrams))

	assert.Equal(t, 15, OrDefault(0, DefaultDimensionCM))
	assert.Equal(t, 15, OrDefault(-3, DefaultDimensionCM))
	assert.Equal(t, 10, OrDefault(10, DefaultDimensionCM))

	assert.Equal(t, int64(150001), VND(decimal.RequireFromString("150000.5")))
	assert.Equal(t, int64(0), VND(decimal.Zero))
}

func TestResultCode(t *testing.T) {
	assert.True(t, CodeCarrierError.IsUpstreamFailure())
	assert.True(t, CodeDecodeError.IsUpstreamFailure())
	assert.True(t, CodeTransportError.IsUpstreamFailure())
	assert.False(t, CodeNotConnected.IsUpstreamFailure())
	assert.False(t, CodeInvalidPayload.IsUpstreamFailure())

	r := Failed(CodeNotConfigured, "missing key", nil)
	assert.False(t, r.Success)
	assert.Equal(t, CodeNotConfigured, r.Code)
	assert.Equal(t, 400, r.HTTPStatus())
	assert.Equal(t, 502, Failed(CodeTransportError, "timeout", nil).HTTPStatus())
	assert.Equal(t, 200, Succeeded("ok", nil, 201).HTTPStatus())
}
