package midtrans

import (
	"crypto/sha512"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func signatureFor(orderID, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}

func TestVerifySignature_Valid(t *testing.T) {
	c, err := NewClient(ClientOptions{ServerKey: "SB-Mid-server-abc"})
	require.NoError(t, err)

	sig := signatureFor("INV-1001", "200", "150000.00", "SB-Mid-server-abc")
	require.True(t, c.VerifySignature("INV-1001", "200", "150000.00", sig))
}

func TestVerifySignature_TamperedAmount(t *testing.T) {
	c, err := NewClient(ClientOptions{ServerKey: "SB-Mid-server-abc"})
	require.NoError(t, err)

	sig := signatureFor("INV-1001", "200", "150000.00", "SB-Mid-server-abc")
	require.False(t, c.VerifySignature("INV-1001", "200", "999999.00", sig))
}

func TestNewClient_RequiresServerKey(t *testing.T) {
	_, err := NewClient(ClientOptions{})
	require.Error(t, err)
}
