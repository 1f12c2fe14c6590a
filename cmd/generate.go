package main

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/mediareach/press-cli/pkg/anthropic"
)

var generateCmd = &cobra.Command{
	Use:   "generate <topic>",
	Short: "Generate a press release without distributing it",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("generate"); err != nil {
			return err
		}

		topic := strings.Join(args, " ")
		client := anthropic.NewClient(cfg.Anthropic.Key)
		gen := anthropic.NewTextGenerator(client, cfg.Anthropic.Model, int64(cfg.Anthropic.MaxTokens), 0.7)

		text, err := gen.Generate(cmd.Context(), fmt.Sprintf(
			"Scrivi un comunicato stampa professionale in italiano sul seguente argomento: %s. Usa un tono formale e giornalistico.",
			topic,
		))
		if err != nil {
			return eris.Wrap(err, "generate press release")
		}

		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
}
