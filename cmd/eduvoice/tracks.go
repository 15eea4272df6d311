package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lixenwraith/eduvoice/audio"
)

func newTracksCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "tracks",
		Short: "List music tracks",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			active := c.cfg.AudioConfig().ActiveTrack
			tracks := audio.NewCatalog(c.cfg.Audio.Tracks).Tracks()

			idWidth := 0
			for _, t := range tracks {
				idWidth = max(idWidth, len(t.ID))
			}

			out := cmd.OutOrStdout()
			for _, t := range tracks {
				marker := " "
				if t.ID == active {
					marker = "*"
				}
				detail := t.Kind.String()
				switch t.Kind {
				case audio.KindSynth:
					detail += ", " + t.Mood.String()
				case audio.KindAsset:
					detail += ", " + t.Path
				case audio.KindUpload:
					if f := c.cfg.Audio.CustomFile; f != "" {
						detail += ", " + f
					}
				}
				fmt.Fprintf(out, "%s %-*s  %-14s  %s\n", marker, idWidth, t.ID, t.Title, detail)
			}
		},
	}
}
