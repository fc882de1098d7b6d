package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ivlev/quizreel/internal/bank"
)

func newValidateCommand(ctx *commandContext) *cobra.Command {
	var bankPath string

	cmd := &cobra.Command{
		Use:   "validate [bank]",
		Short: "Check a question bank without rendering",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				bankPath = args[0]
			}
			questions, err := bank.Load(bankPath)
			if err != nil {
				return err
			}
			if err := bank.Validate(questions, cfg.Layout.MaxOptions); err != nil {
				return fmt.Errorf("question bank %s: %w", bankPath, err)
			}

			rows := make([][]string, 0, len(questions))
			for _, q := range questions {
				correct := "-"
				if i := q.CorrectIndex(); i >= 0 {
					correct = strconv.Itoa(i + 1)
				}
				rows = append(rows, []string{q.ID, strconv.Itoa(len(q.Options)), correct, truncate(q.Prompt, 60)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Options", "Correct", "Question"},
				rows,
				[]columnAlignment{alignRight, alignRight, alignRight, alignLeft},
			))
			fmt.Fprintf(cmd.OutOrStdout(), "[+++] %s: %d вопросов, ошибок нет\n", bankPath, len(questions))
			return nil
		},
	}
	cmd.Flags().StringVar(&bankPath, "bank", "data/questions.json", "Question bank (.json, .yaml or .yml)")
	return cmd
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
