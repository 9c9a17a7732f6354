package cmd

import (
	"fmt"

	"cosmossdk.io/math"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	pmmkeeper "github.com/asle-chain/asle/x/pmm/keeper"
)

const (
	flagAmountIn     = "amount-in"
	flagReserveIn    = "reserve-in"
	flagReserveOut   = "reserve-out"
	flagVirtualIn    = "virtual-in"
	flagVirtualOut   = "virtual-out"
	flagQuoteReserve = "quote-reserve"
	flagVirtualQuote = "virtual-quote"
	flagK            = "k"
	flagOraclePrice  = "oracle-price"
	flagBase         = "base"
	flagQuote        = "quote"
	flagBaseReserve  = "base-reserve"
	flagTotalShares  = "total-shares"
	flagFeeBps       = "fee-bps"
)

const bpsDenominator = 10000

func quoteCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Quote a swap against the pricing curve, offline",
		Long: `Quote the output of a swap for a hypothetical pool state without a
running host. Reserves and anchors describe the side being paid in and the
side being paid out.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			amountIn, err := intFlag(v, flagAmountIn)
			if err != nil {
				return err
			}
			reserveIn, err := intFlag(v, flagReserveIn)
			if err != nil {
				return err
			}
			reserveOut, err := intFlag(v, flagReserveOut)
			if err != nil {
				return err
			}
			vIn, err := intFlag(v, flagVirtualIn)
			if err != nil {
				return err
			}
			vOut, err := intFlag(v, flagVirtualOut)
			if err != nil {
				return err
			}
			k, err := decFlag(v, flagK)
			if err != nil {
				return err
			}
			price, err := decFlag(v, flagOraclePrice)
			if err != nil {
				return err
			}

			gross, err := pmmkeeper.SwapOutput(amountIn, reserveIn, reserveOut, vIn, vOut, k, price)
			if err != nil {
				return err
			}

			feeBps := cast.ToUint32(v.Get(flagFeeBps))
			if feeBps >= bpsDenominator {
				return fmt.Errorf("flag --%s must be below %d", flagFeeBps, bpsDenominator)
			}
			fee := gross.MulRaw(int64(feeBps)).QuoRaw(bpsDenominator)
			net := gross.Sub(fee)

			payload := struct {
				AmountIn  math.Int `json:"amount_in"`
				AmountOut math.Int `json:"amount_out"`
				Fee       math.Int `json:"fee"`
			}{AmountIn: amountIn, AmountOut: net, Fee: fee}
			return emit(cmd, v, payload, net.String())
		},
	}

	cmd.Flags().String(flagAmountIn, "", "input amount")
	cmd.Flags().String(flagReserveIn, "", "real reserve on the input side")
	cmd.Flags().String(flagReserveOut, "", "real reserve on the output side")
	cmd.Flags().String(flagVirtualIn, "", "virtual anchor on the input side")
	cmd.Flags().String(flagVirtualOut, "", "virtual anchor on the output side")
	cmd.Flags().String(flagK, "0", "deviation sensitivity, 0..1")
	cmd.Flags().String(flagOraclePrice, "", "oracle price of the input denom in output denom")
	cmd.Flags().Uint32(flagFeeBps, 0, "trade fee in basis points applied to the gross output")

	return cmd
}

func priceCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "price",
		Short: "Compute a pool's deviation-adjusted mid price, offline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			price, err := decFlag(v, flagOraclePrice)
			if err != nil {
				return err
			}
			k, err := decFlag(v, flagK)
			if err != nil {
				return err
			}
			quoteReserve, err := intFlag(v, flagQuoteReserve)
			if err != nil {
				return err
			}
			virtualQuote, err := intFlag(v, flagVirtualQuote)
			if err != nil {
				return err
			}

			mid, err := pmmkeeper.MidPrice(price, k, quoteReserve, virtualQuote)
			if err != nil {
				return err
			}

			payload := struct {
				MidPrice math.LegacyDec `json:"mid_price"`
			}{MidPrice: mid}
			return emit(cmd, v, payload, mid.String())
		},
	}

	cmd.Flags().String(flagOraclePrice, "", "oracle price of base in quote")
	cmd.Flags().String(flagK, "0", "deviation sensitivity, 0..1")
	cmd.Flags().String(flagQuoteReserve, "", "real quote reserve")
	cmd.Flags().String(flagVirtualQuote, "", "virtual quote anchor")

	return cmd
}

func sharesCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shares",
		Short: "Compute the shares minted for a liquidity deposit, offline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			base, err := intFlag(v, flagBase)
			if err != nil {
				return err
			}
			quote, err := intFlag(v, flagQuote)
			if err != nil {
				return err
			}
			baseReserve, err := intFlag(v, flagBaseReserve)
			if err != nil {
				return err
			}
			quoteReserve, err := intFlag(v, flagQuoteReserve)
			if err != nil {
				return err
			}
			total, err := intFlag(v, flagTotalShares)
			if err != nil {
				return err
			}

			shares, err := pmmkeeper.LPShares(base, quote, baseReserve, quoteReserve, total)
			if err != nil {
				return err
			}

			payload := struct {
				Shares math.Int `json:"shares"`
			}{Shares: shares}
			return emit(cmd, v, payload, shares.String())
		},
	}

	cmd.Flags().String(flagBase, "", "base amount deposited")
	cmd.Flags().String(flagQuote, "", "quote amount deposited")
	cmd.Flags().String(flagBaseReserve, "0", "real base reserve before the deposit")
	cmd.Flags().String(flagQuoteReserve, "0", "real quote reserve before the deposit")
	cmd.Flags().String(flagTotalShares, "0", "share supply before the deposit")

	return cmd
}

func intFlag(v *viper.Viper, name string) (math.Int, error) {
	raw := cast.ToString(v.Get(name))
	if raw == "" {
		return math.Int{}, fmt.Errorf("flag --%s is required", name)
	}
	value, ok := math.NewIntFromString(raw)
	if !ok {
		return math.Int{}, fmt.Errorf("flag --%s: %q is not an integer", name, raw)
	}
	return value, nil
}

func decFlag(v *viper.Viper, name string) (math.LegacyDec, error) {
	raw := cast.ToString(v.Get(name))
	if raw == "" {
		return math.LegacyDec{}, fmt.Errorf("flag --%s is required", name)
	}
	value, err := math.LegacyNewDecFromStr(raw)
	if err != nil {
		return math.LegacyDec{}, fmt.Errorf("flag --%s: %w", name, err)
	}
	return value, nil
}
