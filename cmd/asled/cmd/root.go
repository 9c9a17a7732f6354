// Package cmd assembles the asled command tree: offline engine math,
// identifier derivation, and inspection of a freshly initialized host.
package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is stamped at link time.
var Version = "dev"

const (
	flagOutput = "output"

	outputText = "text"
	outputJSON = "json"
)

// NewRootCmd builds the asled root command. Every flag can also be supplied
// through the environment with an ASLE_ prefix, e.g. ASLE_OUTPUT=json.
func NewRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("ASLE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	rootCmd := &cobra.Command{
		Use:   "asled",
		Short: "Modular execution host toolkit",
		Long: `asled works against the dispatch host and its market maker engine:
derive function identifiers and storage regions, quote swaps and liquidity
positions offline, and inspect the routing table of a fresh host.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SetOut(cmd.OutOrStdout())
			cmd.SetErr(cmd.ErrOrStderr())
			return v.BindPFlags(cmd.Flags())
		},
	}

	rootCmd.PersistentFlags().String(flagOutput, outputText, "output format (text|json)")

	rootCmd.AddCommand(
		idCmd(v),
		regionCmd(v),
		quoteCmd(v),
		priceCmd(v),
		sharesCmd(v),
		routesCmd(v),
		versionCmd(v),
	)

	return rootCmd
}

func versionCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the asled version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return emit(cmd, v, map[string]string{"version": Version}, Version)
		},
	}
}

// emit prints payload as JSON or the preformatted text line, depending on
// the output flag.
func emit(cmd *cobra.Command, v *viper.Viper, payload any, text string) error {
	switch format := cast.ToString(v.Get(flagOutput)); format {
	case outputJSON:
		bz, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return err
		}
		cmd.Println(string(bz))
		return nil
	case outputText, "":
		cmd.Println(text)
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
