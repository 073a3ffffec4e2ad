package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	verifyQuestion string
	verifyTitle    string
	verifyTimeout  time.Duration
	verifyJSON     bool
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify <argument text>",
	Short: "Fact-check a single argument without storing it",
	Long: `Verify runs the fact-checking pipeline on an ad-hoc argument:
- Distill the checkable claim from the argument
- Retrieve web evidence for the claim
- Filter evidence by relevance
- Produce a 1-5 validity verdict with reasoning and key URLs

Example:
  agora verify --question "Should cities ban cars?" \
    --title "Air quality improves" \
    "Cities that restricted downtown traffic saw NO2 levels drop by 30%."`,
	Args: cobra.MinimumNArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().StringVar(&verifyQuestion, "question", "", "debate question the argument addresses (required)")
	verifyCmd.Flags().StringVar(&verifyTitle, "title", "", "argument title (defaults to the first words of the text)")
	verifyCmd.Flags().DurationVar(&verifyTimeout, "timeout", 2*time.Minute, "overall verification timeout")
	verifyCmd.Flags().BoolVar(&verifyJSON, "json", false, "print the verdict as JSON")
	_ = verifyCmd.MarkFlagRequired("question")
}

func runVerify(cmd *cobra.Command, args []string) error {
	content := strings.Join(args, " ")
	title := verifyTitle
	if title == "" {
		title = defaultTitle(content)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	checker, err := buildChecker(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), verifyTimeout)
	defer cancel()

	if verbose {
		fmt.Fprintf(os.Stderr, "Question: %s\n", verifyQuestion)
		fmt.Fprintf(os.Stderr, "Title: %s\n", title)
		fmt.Fprintln(os.Stderr)
	}

	verdict, err := checker.VerifyArgument(ctx, title, content, verifyQuestion)
	if err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}

	if verifyJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(verdict)
	}

	fmt.Printf("Relevant:  %v\n", verdict.IsRelevant)
	fmt.Printf("Validity:  %d/5\n", verdict.ValidityScore)
	fmt.Printf("Sources:   %d considered\n", verdict.SourceCount)
	fmt.Printf("Reasoning: %s\n", verdict.Reasoning)
	if len(verdict.KeyURLs) > 0 {
		fmt.Println("Key URLs:")
		for _, u := range verdict.KeyURLs {
			fmt.Printf("  - %s\n", u)
		}
	}
	return nil
}

func defaultTitle(content string) string {
	words := strings.Fields(content)
	if len(words) > 8 {
		words = words[:8]
	}
	return strings.Join(words, " ")
}
