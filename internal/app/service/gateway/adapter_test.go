package gateway

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/lintasnet/paygate/internal/models"
	"github.com/lintasnet/paygate/pkg/types"
)

func TestNormalizeMethodAliases(t *testing.T) {
	cases := []struct {
		provider types.PaymentProvider
		in       string
		want     string
	}{
		{types.PaymentProviderTripay, "QRIS", "QRISC"},
		{types.PaymentProviderTripay, "qris", "QRISC"},
		{types.PaymentProviderTripay, " QRIS2 ", "QRISC"},
		{types.PaymentProviderTripay, "SHOPEEPAY", "QRIS_SHOPEEPAY"},
		{types.PaymentProviderMidtrans, "QRIS", "qris"},
		{types.PaymentProviderMidtrans, "VA", "bank_transfer"},
		{types.PaymentProviderXendit, "qris", "QR_CODE"},
		// unknown codes pass through untouched
		{types.PaymentProviderTripay, "BRIVA", "BRIVA"},
		{types.PaymentProviderManual, "QRIS", "QRIS"},
	}
	for _, c := range cases {
		require.Equal(t, c.want, normalizeMethod(c.provider, c.in), "provider=%s in=%q", c.provider, c.in)
	}
}

func TestWildcardMethod(t *testing.T) {
	for _, m := range []string{"", "  ", "*", "all", "ALL", "All"} {
		require.True(t, wildcardMethod(m), "method %q", m)
	}
	for _, m := range []string{"QRISC", "qris", "*x"} {
		require.False(t, wildcardMethod(m), "method %q", m)
	}
}

func TestSanitizeEmail(t *testing.T) {
	require.Equal(t, "a@b.co", sanitizeEmail(" a@b.co "))
	require.Equal(t, "", sanitizeEmail(""))
	require.Equal(t, "", sanitizeEmail("not-an-email"))
	require.Equal(t, "", sanitizeEmail("a@b"))
	require.Equal(t, "", sanitizeEmail("a b@c.id"))
}

func TestValidateRequest(t *testing.T) {
	require.Error(t, validateRequest(nil))
	require.Error(t, validateRequest(&types.PaymentRequest{InvoiceNumber: "1001", Amount: 0}))
	require.Error(t, validateRequest(&types.PaymentRequest{InvoiceNumber: "1001", Amount: -500}))
	require.Error(t, validateRequest(&types.PaymentRequest{Amount: 1000}))
	require.NoError(t, validateRequest(&types.PaymentRequest{InvoiceNumber: "1001", Amount: 1000}))
}

func TestParseAmount(t *testing.T) {
	require.EqualValues(t, 150000, parseAmount("150000.00"))
	require.EqualValues(t, 150001, parseAmount("150000.50"))
	require.EqualValues(t, 0, parseAmount("abc"))
	require.EqualValues(t, 0, parseAmount(""))
}

func TestConfigFromSetting(t *testing.T) {
	creds, _ := json.Marshal(map[string]any{"server_key": "sk", "client_key": "ck"})
	cfg, err := configFromSetting(&models.GatewaySetting{
		Gateway:     "midtrans",
		Enabled:     true,
		Mode:        "production",
		Credentials: datatypes.JSON(creds),
	})
	require.NoError(t, err)
	require.Equal(t, types.PaymentProviderMidtrans, cfg.Provider)
	require.True(t, cfg.Enabled)
	require.True(t, cfg.Production())
	require.Equal(t, "sk", cfg.Credentials.ServerKey)

	// unrecognized mode falls back to sandbox
	cfg, err = configFromSetting(&models.GatewaySetting{Gateway: "tripay", Mode: "staging"})
	require.NoError(t, err)
	require.Equal(t, types.GatewayModeSandbox, cfg.Mode)

	_, err = configFromSetting(&models.GatewaySetting{Gateway: "paypal"})
	require.Error(t, err)

	_, err = configFromSetting(&models.GatewaySetting{
		Gateway:     "xendit",
		Credentials: datatypes.JSON([]byte("{broken")),
	})
	require.Error(t, err)
}
