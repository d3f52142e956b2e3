package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// AskRequest represents the query API request.
type AskRequest struct {
	Query        string `json:"query"`
	SystemPrompt string `json:"system_prompt,omitempty"`
	TargetDomain string `json:"target_domain,omitempty"`
	ModelID      string `json:"model_id,omitempty"`
	MaxResults   *int   `json:"max_results,omitempty"`
	MaxChunks    *int   `json:"max_chunks,omitempty"`
	LogLevel     string `json:"log_level,omitempty"`
}

// AskSourceDetail describes one ranked chunk behind the answer.
type AskSourceDetail struct {
	Rank            int     `json:"rank"`
	SimilarityScore float64 `json:"similarity_score"`
	URL             string  `json:"url"`
	ContentPreview  string  `json:"content_preview"`
}

// AskMetadata summarizes how the query was processed.
type AskMetadata struct {
	ChunksProcessed int    `json:"chunks_processed"`
	URLsScraped     int    `json:"urls_scraped"`
	TotalTimeMs     int64  `json:"total_time_ms"`
	TargetDomain    string `json:"target_domain"`
	ModelID         string `json:"model_id"`
}

// AskResponse represents the query API response.
type AskResponse struct {
	Answer        string            `json:"answer"`
	Sources       []string          `json:"sources"`
	SourceDetails []AskSourceDetail `json:"source_details,omitempty"`
	Metadata      AskMetadata       `json:"metadata"`
}

// AskCmd creates the ask command.
func AskCmd() *cobra.Command {
	var (
		targetDomain string
		modelID      string
		maxResults   int
		maxChunks    int
		showSources  bool
		verbose      bool
	)

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question answered from web search",
		Long:  "Searches the configured domain, reads the top pages, and answers the question from their content.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")

			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			req := AskRequest{
				Query:        args[0],
				TargetDomain: targetDomain,
				ModelID:      modelID,
			}
			if cmd.Flags().Changed("max-results") {
				req.MaxResults = &maxResults
			}
			if cmd.Flags().Changed("max-chunks") {
				req.MaxChunks = &maxChunks
			}
			if verbose {
				req.LogLevel = "DEBUG"
			}

			return runAsk(api, req, outputJSON, showSources)
		},
	}

	cmd.Flags().StringVarP(&targetDomain, "domain", "d", "", "Domain to search (defaults to the server's configured domain)")
	cmd.Flags().StringVarP(&modelID, "model", "m", "", "Model to answer with (defaults to the server's configured model)")
	cmd.Flags().IntVarP(&maxResults, "max-results", "n", 5, "Maximum search results to read")
	cmd.Flags().IntVar(&maxChunks, "max-chunks", 10, "Maximum content chunks used for the answer")
	cmd.Flags().BoolVarP(&showSources, "sources", "s", false, "Print source URLs after the answer")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Request debug-level processing logs")

	return cmd
}

func runAsk(api *APIClient, req AskRequest, outputJSON, showSources bool) error {
	resp, err := api.Post("/query", req)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	var result AskResponse
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}
		fmt.Println(string(out))
		return nil
	}

	fmt.Println(result.Answer)

	if showSources && len(result.Sources) > 0 {
		fmt.Println()
		fmt.Println("Sources:")
		for _, src := range result.Sources {
			fmt.Printf("  %s\n", src)
		}
	}

	return nil
}
