package hdwallet

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSdkFromEntropy(t *testing.T) {
	require.Nil(t, sdkFromEntropy(nil))
	require.Nil(t, sdkFromEntropy([]byte{0x01, 0x02}))
	require.IsType(t, NoProvider{}, ProviderFor(sdkFromEntropy(nil)))

	sdk := sdkFromEntropy(bytes.Repeat([]byte{0x01}, EntropyLength))
	require.NotNil(t, sdk)
	require.IsType(t, ActiveProvider{}, ProviderFor(sdk))
}
