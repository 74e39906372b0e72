package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ayusman/signova/internal/gesture"
	"github.com/ayusman/signova/internal/sentence"
)

func newCaptureCmd() *cobra.Command {
	var (
		language string
		noStore  bool
	)

	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Recognize signs from the camera until interrupted",
		Long: `Runs a capture session without the web interface and prints each
recognized word. The finished sentence is printed and saved on exit.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			lang, err := sentence.ParseLanguage(language)
			if err != nil {
				return err
			}

			e, err := loadEnv(!noStore)
			if err != nil {
				return err
			}
			defer e.Close()

			a, err := e.newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.SetLanguage(lang); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			a.OnCommit(func(c gesture.Commit) {
				fmt.Fprintf(out, "%s (%.2f)\n", strings.Join(c.Words, " "), c.Confidence)
			})

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s, err := a.Start()
			if err != nil {
				return err
			}

			select {
			case <-ctx.Done():
			case <-s.Done():
				fmt.Fprintln(cmd.ErrOrStderr(), "camera closed")
			}

			st := a.Status(lang)
			if text, _ := s.ClearSentence(); text != "" {
				fmt.Fprintf(out, "\nSentence: %s\n", text)
				if lang != sentence.English {
					fmt.Fprintf(out, "Translation: %s\n", st.Translation)
				}
			}
			s.Stop()
			return nil
		},
	}
	cmd.Flags().StringVarP(&language, "language", "l", string(sentence.English), "translation language (english, kinyarwanda)")
	cmd.Flags().BoolVar(&noStore, "no-store", false, "do not save sentences")
	return cmd
}
