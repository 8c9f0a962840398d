package oracle

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"dsa-interview-service/internal/domain"
)

const analysisPrompt = `You are a senior software engineer evaluating a DSA interview answer. Analyze the response for technical accuracy, depth, and coverage of key concepts.

Question: %s
Expected key concepts: %s
Candidate's answer: %s

Provide a score from 0 to 10 (0-3 poor, 4-7 fair, 8-10 good or excellent), the concepts the candidate covered, and the expected concepts they missed.

Respond in this EXACT format:
SCORE: [0-10]
CONCEPTS_COVERED: [comma-separated list, or "none"]
MISSING_CONCEPTS: [comma-separated list, or "none"]
QUALITY: [excellent/good/fair/poor]
DEPTH: [deep/adequate/shallow]
DETAILED_ANALYSIS: [one-line explanation of strengths and weaknesses]`

const feedbackPrompt = `You are providing constructive feedback for a DSA interview candidate. Be encouraging, specific, and technical.

Question: %s
Candidate's answer: %s
Analysis: %s
Score: %d/10

Acknowledge strengths, highlight areas for improvement with specific DSA concepts, and offer actionable advice. Be concise and do not use the candidate's name.`

// Client is the LLM-backed oracle. It degrades to heuristic scoring when the
// completion call fails so a flaky upstream does not fail the whole answer
// cycle; hard timeouts are enforced by the caller's context.
type Client struct {
	client   *openai.Client
	model    string
	fallback *Heuristic
}

func NewClient(apiKey, baseURL, model string) *Client {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &Client{
		client:   openai.NewClient(opts...),
		model:    model,
		fallback: NewHeuristic(),
	}
}

func (c *Client) Analyze(ctx context.Context, q domain.Question, answer string) (domain.AnswerAnalysis, error) {
	prompt := fmt.Sprintf(analysisPrompt, q.Text, strings.Join(q.KeyConcepts, ", "), answer)
	raw, err := c.complete(ctx, prompt)
	if err != nil {
		if ctx.Err() != nil {
			// A timed-out or canceled call is a real oracle failure; the
			// state machine rolls the cycle back.
			return domain.AnswerAnalysis{}, fmt.Errorf("%w: %v", domain.ErrOracleFailure, err)
		}
		return c.fallback.Analyze(ctx, q, answer)
	}
	return ParseAnalysis(raw), nil
}

func (c *Client) Feedback(ctx context.Context, q domain.Question, answer string, analysis domain.AnswerAnalysis) (string, error) {
	prompt := fmt.Sprintf(feedbackPrompt, q.Text, answer, analysis.Raw, analysis.Score)
	feedback, err := c.complete(ctx, prompt)
	if err != nil {
		return c.fallback.Feedback(ctx, q, answer, analysis)
	}
	return strings.TrimSpace(strings.TrimPrefix(feedback, "FEEDBACK:")), nil
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		}),
		Model:       openai.F(c.model),
		Temperature: openai.F(0.4),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}
