package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/lectern/lectern/internal/config"
	"github.com/lectern/lectern/internal/domain"
	"github.com/lectern/lectern/internal/services"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	config.Load()

	svcs, err := services.InitializeServices()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}

	root := &cobra.Command{
		Use:   "lectern",
		Short: "Study assistant client: chat, notes, question sets, and paper Q&A",
	}
	root.AddCommand(
		chatCmd(svcs),
		askCmd(svcs),
		papersCmd(svcs),
		uploadCmd(svcs),
		quizCmd(svcs),
		setsCmd(svcs),
		notesCmd(svcs),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func chatCmd(svcs *services.Services) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Interactive agent chat",
		RunE: func(cmd *cobra.Command, args []string) error {
			conv := svcs.NewConversation()
			for _, msg := range conv.Display() {
				printMessage(msg)
			}

			scanner := bufio.NewScanner(os.Stdin)
			fmt.Print("> ")
			for scanner.Scan() {
				line := strings.TrimSpace(scanner.Text())
				if line == "/quit" {
					return nil
				}
				if att, ok := strings.CutPrefix(line, "/attach "); ok {
					data, err := os.ReadFile(att)
					if err != nil {
						fmt.Println("cannot read file:", err)
					} else {
						conv.AddAttachment(att, string(data))
						fmt.Println("attached", att)
					}
					fmt.Print("> ")
					continue
				}

				if err := conv.Submit(cmd.Context(), line); err != nil {
					fmt.Println("error:", err)
				}
				display := conv.Display()
				if len(display) > 0 {
					printMessage(display[len(display)-1])
				}
				fmt.Print("> ")
			}
			return scanner.Err()
		},
	}
}

func askCmd(svcs *services.Services) *cobra.Command {
	var scope string
	var paperID int64

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a question over indexed papers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			papers, err := svcs.GetLibraryService().Papers(cmd.Context())
			if err != nil {
				return err
			}

			subjects := services.SubjectsFor(papers, paperID)
			coordinator := svcs.NewAskCoordinator(fmt.Sprintf("paper-%d", paperID))

			result, err := coordinator.Ask(cmd.Context(), args[0], domain.Scope(scope), subjects)
			if err != nil {
				return err
			}
			if result.Warning != "" {
				fmt.Fprintln(os.Stderr, "warning:", result.Warning)
			}

			fmt.Println(result.Entry.Answer)
			for i, src := range result.Entry.Sources {
				fmt.Printf("  [%d] %s %s\n", i+1, src.Title, src.URL)
			}
			if result.PersistErr != nil {
				fmt.Fprintln(os.Stderr, "note: answer was not saved to history:", result.PersistErr)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&scope, "scope", "all", "query scope: selected or all")
	cmd.Flags().Int64Var(&paperID, "paper", 0, "paper id for selected scope")
	return cmd
}

func papersCmd(svcs *services.Services) *cobra.Command {
	return &cobra.Command{
		Use:   "papers",
		Short: "List uploaded papers",
		RunE: func(cmd *cobra.Command, args []string) error {
			papers, err := svcs.GetLibraryService().Papers(cmd.Context())
			if err != nil {
				return err
			}
			for _, p := range papers {
				fmt.Printf("%d\t%s\t%s\n", p.ID, p.Status, p.DisplayTitle())
			}
			return nil
		},
	}
}

func uploadCmd(svcs *services.Services) *cobra.Command {
	return &cobra.Command{
		Use:   "upload [files...]",
		Short: "Upload papers for indexing",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, res := range svcs.GetLibraryService().Upload(cmd.Context(), args) {
				if res.Err != nil {
					fmt.Printf("%s\trejected: %v\n", res.Path, res.Err)
					continue
				}
				fmt.Printf("%s\tuploaded as %d\n", res.Path, res.Paper.ID)
			}
			return nil
		},
	}
}

func quizCmd(svcs *services.Services) *cobra.Command {
	var count int
	var save string

	cmd := &cobra.Command{
		Use:   "quiz [paper-id]",
		Short: "Generate a question set from a paper",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var paperID int64
			if _, err := fmt.Sscanf(args[0], "%d", &paperID); err != nil {
				return fmt.Errorf("invalid paper id: %s", args[0])
			}

			lib := svcs.GetLibraryService()
			questions, _, err := lib.GenerateQuestions(cmd.Context(), paperID, count, func(chunk string) {
				fmt.Print(chunk)
			})
			fmt.Println()
			if err != nil {
				return err
			}

			if save != "" {
				if err := lib.SaveQuestionSet(cmd.Context(), save, paperID, questions); err != nil {
					return err
				}
				fmt.Printf("saved %d questions as %q\n", len(questions), save)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&count, "count", 10, "number of questions to generate")
	cmd.Flags().StringVar(&save, "save", "", "save the generated set under this title")
	return cmd
}

func setsCmd(svcs *services.Services) *cobra.Command {
	return &cobra.Command{
		Use:   "sets",
		Short: "List saved question sets",
		RunE: func(cmd *cobra.Command, args []string) error {
			sets, err := svcs.GetLibraryService().QuestionSets(cmd.Context())
			if err != nil {
				return err
			}
			for _, set := range sets {
				fmt.Printf("%d\t%s\t%d questions\n", set.ID, set.Title, len(set.Questions))
			}
			return nil
		},
	}
}

func notesCmd(svcs *services.Services) *cobra.Command {
	return &cobra.Command{
		Use:   "notes",
		Short: "List notes with their inferred types",
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := svcs.GetLibraryService().Notes(cmd.Context())
			if err != nil {
				return err
			}
			for _, d := range docs {
				fmt.Printf("%d\t%s\t%s\n", d.ID, d.Type, d.Title)
			}
			return nil
		},
	}
}

func printMessage(msg domain.DisplayMessage) {
	fmt.Printf("[%s] %s\n", msg.Role, msg.Content)
}
