package cmd_test

import (
	"bytes"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/asle-chain/asle/cmd/asled/cmd"
	registrytypes "github.com/asle-chain/asle/x/registry/types"
	"github.com/asle-chain/asle/x/shared/regions"
)

// execute runs asled with args and captures stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	root := cmd.NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	err := root.Execute()
	return strings.TrimSpace(out.String()), err
}

func TestIDCommand(t *testing.T) {
	sig := "swap(poolId,denomIn,amountIn,minAmountOut)"
	want := registrytypes.FunctionIDFromSignature(sig).String()

	out, err := execute(t, "id", sig)
	require.NoError(t, err)
	require.Equal(t, want, out)
}

func TestIDCommandJSON(t *testing.T) {
	out, err := execute(t, "id", "owner()", "--output", "json")
	require.NoError(t, err)
	require.Contains(t, out, `"signature": "owner()"`)
	require.Contains(t, out, registrytypes.FunctionIDFromSignature("owner()").String())
}

func TestRegionCommand(t *testing.T) {
	out, err := execute(t, "region", "pmm")
	require.NoError(t, err)

	key := regions.Derive("pmm")
	require.Equal(t, "pmm "+hex.EncodeToString(key[:]), out)
}

func TestRegionCommandRejectsEmptyTag(t *testing.T) {
	_, err := execute(t, "region", "")
	require.Error(t, err)
}

func TestQuoteCommand(t *testing.T) {
	out, err := execute(t, "quote",
		"--amount-in", "1000",
		"--reserve-in", "10000",
		"--reserve-out", "50000",
		"--virtual-in", "10000",
		"--virtual-out", "50000",
		"--k", "0.5",
		"--oracle-price", "2.0",
	)
	require.NoError(t, err)
	require.Equal(t, "1900", out)
}

func TestQuoteCommandJSON(t *testing.T) {
	out, err := execute(t, "quote",
		"--amount-in", "1000",
		"--reserve-in", "10000",
		"--reserve-out", "50000",
		"--virtual-in", "10000",
		"--virtual-out", "50000",
		"--k", "0.5",
		"--oracle-price", "2.0",
		"--output", "json",
	)
	require.NoError(t, err)
	require.Contains(t, out, `"amount_out": "1900"`)
}

func TestQuoteCommandWithFee(t *testing.T) {
	out, err := execute(t, "quote",
		"--amount-in", "1000",
		"--reserve-in", "10000",
		"--reserve-out", "50000",
		"--virtual-in", "10000",
		"--virtual-out", "50000",
		"--k", "0.5",
		"--oracle-price", "2.0",
		"--fee-bps", "30",
	)
	require.NoError(t, err)
	require.Equal(t, "1895", out)
}

func TestQuoteCommandMissingFlag(t *testing.T) {
	_, err := execute(t, "quote", "--amount-in", "1000")
	require.Error(t, err)
	require.Contains(t, err.Error(), "--reserve-in")
}

func TestQuoteCommandBadInteger(t *testing.T) {
	_, err := execute(t, "quote",
		"--amount-in", "lots",
		"--reserve-in", "10000",
		"--reserve-out", "50000",
		"--virtual-in", "10000",
		"--virtual-out", "50000",
		"--oracle-price", "2.0",
	)
	require.Error(t, err)
	require.Contains(t, err.Error(), "not an integer")
}

func TestPriceCommand(t *testing.T) {
	out, err := execute(t, "price",
		"--oracle-price", "2.0",
		"--k", "0.5",
		"--quote-reserve", "2000",
		"--virtual-quote", "10000",
	)
	require.NoError(t, err)
	require.Equal(t, "1.200000000000000000", out)
}

func TestSharesCommand(t *testing.T) {
	out, err := execute(t, "shares",
		"--base", "100",
		"--quote", "400",
	)
	require.NoError(t, err)
	require.Equal(t, "200", out)
}

func TestSharesCommandFollowOnDeposit(t *testing.T) {
	out, err := execute(t, "shares",
		"--base", "50",
		"--quote", "200",
		"--base-reserve", "100",
		"--quote-reserve", "400",
		"--total-shares", "200",
	)
	require.NoError(t, err)
	require.Equal(t, "100", out)
}

func TestRoutesCommand(t *testing.T) {
	out, err := execute(t, "routes")
	require.NoError(t, err)
	require.Contains(t, out, registrytypes.FunctionIDFromSignature("applyCut(operations,initializer,payload)").String())
	require.Contains(t, out, registrytypes.FunctionIDFromSignature("swap(poolId,denomIn,amountIn,minAmountOut)").String())
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	require.Equal(t, cmd.Version, out)
}

func TestOutputFromEnvironment(t *testing.T) {
	t.Setenv("ASLE_OUTPUT", "json")

	out, err := execute(t, "version")
	require.NoError(t, err)
	require.Contains(t, out, `"version"`)
}

func TestUnknownOutputFormat(t *testing.T) {
	_, err := execute(t, "version", "--output", "yaml")
	require.Error(t, err)
}
