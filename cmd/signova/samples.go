package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ayusman/signova/internal/store"
)

func newSamplesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "samples",
		Short: "Manage recorded training samples",
	}
	cmd.AddCommand(newSamplesExportCmd(), newSamplesCountCmd(), newSamplesClearCmd())
	return cmd
}

func kindFlag(cmd *cobra.Command, kind *string) {
	cmd.Flags().StringVarP(kind, "kind", "k", string(store.KindPose), "sample kind (pose, motion)")
}

func newSamplesExportCmd() *cobra.Command {
	var kind, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write samples as classID,v1,...,vn CSV rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := store.ParseKind(kind)
			if err != nil {
				return err
			}

			e, err := loadEnv(true)
			if err != nil {
				return err
			}
			defer e.Close()

			samples, err := e.store.Samples().List(k)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out != "" && out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			if err := writeSamplesCSV(w, samples); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "exported %d %s samples\n", len(samples), k)
			return nil
		},
	}
	kindFlag(cmd, &kind)
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

// writeSamplesCSV writes one row per sample: the class id followed by the
// vector components.
func writeSamplesCSV(w io.Writer, samples []store.Sample) error {
	cw := csv.NewWriter(w)
	for _, s := range samples {
		row := make([]string, 0, len(s.Vector)+1)
		row = append(row, strconv.Itoa(s.ClassID))
		for _, v := range s.Vector {
			row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func newSamplesCountCmd() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "count",
		Short: "Print the number of recorded samples",
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := store.ParseKind(kind)
			if err != nil {
				return err
			}
			e, err := loadEnv(true)
			if err != nil {
				return err
			}
			defer e.Close()

			n, err := e.store.Samples().Count(k)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}
	kindFlag(cmd, &kind)
	return cmd
}

func newSamplesClearCmd() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded samples of a kind",
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := store.ParseKind(kind)
			if err != nil {
				return err
			}
			e, err := loadEnv(true)
			if err != nil {
				return err
			}
			defer e.Close()

			return e.store.Samples().DeleteByKind(k)
		},
	}
	kindFlag(cmd, &kind)
	return cmd
}
