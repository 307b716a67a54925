package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/bewatu/internal/network"
)

const PromptCandidatesToFile = "Dump candidates to file"

var candidatesCmd = &cobra.Command{
	Use:   "candidates [query]",
	Short: "Search the session's candidates and order them by mutual success potential",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		candidates(cmd, strings.Join(args, " "))
	},
}

func init() {
	rootCmd.AddCommand(candidatesCmd)

	candidatesCmd.Flags().BoolP("no-prompt", "n", false, "print the ranked candidates once and exit")
}

func candidates(cmd *cobra.Command, query string) {
	ctx := context.Background()

	rt := setup(ctx, nil)
	defer rt.close()

	rt.logger.Info("starting the search", zap.String("query", query))

	matches, err := rt.service.SearchCandidates(ctx, rt.config.Session, query)
	if err != nil {
		rt.logger.Fatal("searching candidates", zap.Error(err))
	}

	rt.logger.Info("found candidates", zap.Int("count", len(matches)))

	if len(matches) == 0 {
		rt.logger.Info("exiting", zap.String("reason", "no candidates found"))
		return
	}

	if cmd.Flag("no-prompt").Value.String() == "true" {
		printMatches(matches)
		return
	}

	if err := browseMatches(rt, matches); err != nil {
		rt.logger.Fatal("exiting", zap.Error(err))
	}
}

func browseMatches(rt *runtime, matches []*network.CandidateMatch) error {
	for {
		items := make([]string, 0, len(matches)+2)
		for _, m := range matches {
			items = append(items, matchLabel(m))
		}

		matchPrompt := promptui.Select{
			Label: "Choose a candidate and press ENTER",
			Items: append(items, PromptCandidatesToFile, PromptExit),
			Size:  10,
		}

		_, selected, err := matchPrompt.Run()
		if err != nil {
			return err
		}

		switch selected {
		case PromptExit:
			return nil
		case PromptCandidatesToFile:
			pretty, _ := json.MarshalIndent(matches, "", "  ")
			rt.logger.Info(string(pretty), zap.Int("candidates count", len(matches)))
		default:
			userID, err := strconv.Atoi(strings.Split(selected, " ")[0])
			if err != nil {
				return fmt.Errorf("there is no such candidate %s", selected)
			}

			for _, m := range matches {
				if m.User.ID == userID {
					printMatchDetails(m)
				}
			}
		}
	}
}

func matchLabel(m *network.CandidateMatch) string {
	scores := m.Analysis.PredictiveScores
	return fmt.Sprintf("%d %s / %s / success %d / role %d / culture %d",
		m.User.ID, m.User.Name, m.User.Headline,
		scores.MutualSuccessPotential, scores.RoleFit, scores.CultureFit,
	)
}

func printMatches(matches []*network.CandidateMatch) {
	for i, m := range matches {
		fmt.Printf("%2d. %s\n", i+1, matchLabel(m))
	}
}

func printMatchDetails(m *network.CandidateMatch) {
	fmt.Println(matchLabel(m))
	fmt.Printf("  reasoning: %s\n", m.Analysis.MatchReasoning)
	if len(m.Analysis.Strengths) > 0 {
		fmt.Printf("  strengths: %s\n", strings.Join(m.Analysis.Strengths, ", "))
	}
	if len(m.Analysis.PotentialRedFlags) > 0 {
		fmt.Printf("  red flags: %s\n", strings.Join(m.Analysis.PotentialRedFlags, ", "))
	}
	if m.Analysis.CultureFitAnalysis != "" {
		fmt.Printf("  culture: %s\n", m.Analysis.CultureFitAnalysis)
	}
	for _, q := range m.Analysis.InterviewQuestions {
		fmt.Printf("  ask: %s\n", q)
	}
}
