package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ayusman/signova/internal/classifier"
	"github.com/ayusman/signova/internal/sentence"
	"github.com/ayusman/signova/internal/store"
)

func newLabelsCmd() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "labels",
		Short: "Print a classifier label table",
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := store.ParseKind(kind)
			if err != nil {
				return err
			}

			e, err := loadEnv(false)
			if err != nil {
				return err
			}

			path := e.cfg.Classifier.PoseLabels
			if k == store.KindMotion {
				path = e.cfg.Classifier.MotionLabels
			}
			labels, err := classifier.LoadLabelTable(path)
			if err != nil {
				return err
			}

			dict, err := sentence.LoadDictionary(e.cfg.Sentence.Dictionary)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for i, l := range labels.Labels() {
				if k == store.KindPose {
					fmt.Fprintf(out, "%d\t%s\t%s\n", i, l, dict.Display(l))
				} else {
					fmt.Fprintf(out, "%d\t%s\n", i, l)
				}
			}
			return nil
		},
	}
	kindFlag(cmd, &kind)
	return cmd
}
