package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lixenwraith/eduvoice/audio"
)

func newSfxCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sfx",
		Short: "Inspect the synthesized sound effects",
	}

	names := make([]string, 0, 3)
	for _, k := range audio.EffectKinds() {
		names = append(names, k.String())
	}

	var rate int
	export := &cobra.Command{
		Use:       "export KIND OUT.wav",
		Short:     "Render an effect to a WAV file",
		Long:      "Render an effect to a 16-bit mono WAV file. KIND is one of: " + strings.Join(names, ", "),
		Args:      cobra.ExactArgs(2),
		ValidArgs: names,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := audio.ParseEffectKind(args[0])
			if err != nil {
				return err
			}
			if rate <= 0 {
				rate = c.cfg.Audio.SampleRate
			}

			f, err := os.Create(args[1])
			if err != nil {
				return err
			}
			if err := audio.ExportEffect(cmd.Context(), f, kind, rate); err != nil {
				f.Close()
				os.Remove(args[1])
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s, %d Hz)\n", args[1], kind, rate)
			return nil
		},
	}
	export.Flags().IntVar(&rate, "rate", 0, "sample rate in Hz (default: audio.sample_rate)")

	cmd.AddCommand(export, &cobra.Command{
		Use:   "list",
		Short: "List effect names",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
		},
	})
	return cmd
}
