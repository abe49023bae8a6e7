package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"yupp-live-quiz/internal/player"
)

// NewPlayCmd builds the terminal player client.
func NewPlayCmd() *cobra.Command {
	var serverURL string
	cmd := &cobra.Command{
		Use:   "play <pin> <name>",
		Short: "Join a quiz session from the terminal",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlayer(cmd.Context(), serverURL, args[0], args[1])
		},
	}
	cmd.Flags().StringVar(&serverURL, "server", "ws://localhost:8080", "host server base URL (ws:// or wss://)")
	return cmd
}

func runPlayer(ctx context.Context, serverURL, pin, name string) error {
	client, err := player.Dial(ctx, serverURL, pin, name, zap.NewNop())
	if err != nil {
		return err
	}
	defer client.Leave()

	answers := make(chan int)
	go readAnswers(answers)

	for {
		select {
		case ev, ok := <-client.Events():
			if !ok {
				return nil
			}
			printEvent(ev)
			switch ev.Type {
			case player.EventRejected, player.EventGameOver, player.EventDisconnected:
				return nil
			}
		case choice := <-answers:
			if err := client.Submit(choice); err != nil {
				fmt.Println("cannot answer:", err)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// readAnswers turns stdin lines into zero-based answer choices. Answers are
// displayed one-based.
func readAnswers(out chan<- int) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		n, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
		if err != nil {
			fmt.Println("type the number of an answer")
			continue
		}
		out <- n - 1
	}
}

func printEvent(ev player.Event) {
	switch ev.Type {
	case player.EventJoined:
		fmt.Printf("joined %q (%d questions), waiting for the host to start\n", ev.QuizTitle, ev.Count)
	case player.EventRejected:
		fmt.Println("join rejected:", ev.Message)
	case player.EventRoster:
		fmt.Println("players:", strings.Join(ev.Players, ", "))
	case player.EventGameStarting:
		fmt.Println("game starting...")
	case player.EventQuestion:
		q := ev.Question
		fmt.Printf("\nquestion %d/%d: %s\n", q.QuestionNumber, q.TotalQuestions, q.Question)
		for i, answer := range q.Answers {
			fmt.Printf("  %d) %s\n", i+1, answer)
		}
		fmt.Printf("%d seconds on the clock\n", q.TimeLimit)
	case player.EventRoundResult:
		fmt.Printf("\ncorrect answer: %d\n", ev.Result.CorrectAnswer+1)
		for i, entry := range ev.Result.Leaderboard {
			fmt.Printf("  %d. %s  %d\n", i+1, entry.Name, entry.Score)
		}
	case player.EventGameOver:
		fmt.Println("\nfinal standings:")
		for i, entry := range ev.Leaderboard {
			fmt.Printf("  %d. %s  %d\n", i+1, entry.Name, entry.Score)
		}
	case player.EventDisconnected:
		fmt.Println("connection lost")
	}
}
