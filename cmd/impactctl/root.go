package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const envPrefix = "IMPACTCTL"

func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "impactctl",
		Short:         "Asteroid impact calculator and catalog checker",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringP("output", "o", "text", "output format: text, json or yaml")
	_ = v.BindPFlag("output", root.PersistentFlags().Lookup("output"))

	root.AddCommand(
		newBasicCmd(v),
		newDetailedCmd(v),
		newMassCmd(v),
		newValidateCmd(v),
	)
	return root
}

// bindFlags makes every local flag of cmd readable through v, so env
// variables override defaults and explicit flags override both.
func bindFlags(v *viper.Viper, cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
	})
}

// render writes v in the selected output format. text falls back to fn.
func render(w io.Writer, format string, v any, text func(io.Writer) error) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(v)
	case "text", "":
		return text(w)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
