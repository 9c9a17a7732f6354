package cmd

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	registrytypes "github.com/asle-chain/asle/x/registry/types"
	"github.com/asle-chain/asle/x/shared/regions"
)

func idCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "id <signature>",
		Short: "Derive the function identifier for an entry point signature",
		Long: `Derive the 4-byte identifier routed by the dispatch registry, e.g.

  asled id "swap(poolId,denomIn,amountIn,minAmountOut)"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := registrytypes.FunctionIDFromSignature(args[0])
			payload := struct {
				Signature  string `json:"signature"`
				FunctionID string `json:"function_id"`
			}{Signature: args[0], FunctionID: id.String()}
			return emit(cmd, v, payload, id.String())
		},
	}
}

func regionCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "region <tag>",
		Short: "Derive the storage region prefix for a module tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tag := args[0]
			if tag == "" {
				return fmt.Errorf("region tag must not be empty")
			}
			derived := regions.Derive(tag)
			key := hex.EncodeToString(derived[:])
			payload := struct {
				Tag string `json:"tag"`
				Key string `json:"key"`
			}{Tag: tag, Key: key}
			return emit(cmd, v, payload, fmt.Sprintf("%s %s", tag, key))
		},
	}
}
