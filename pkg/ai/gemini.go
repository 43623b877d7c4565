package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"google.golang.org/genai"
)

const descriptionPrompt = `You are a helpful AI assistant that specializes in generating realistic issue descriptions for a civic issue reporting application.

Given the category of a civic issue, generate a detailed and contextually relevant description of the issue.

Category: %s

Description:`

// GeminiWriter drafts issue descriptions with the Gemini API.
type GeminiWriter struct {
	client *genai.Client
	model  string
}

// NewGeminiWriter creates a new Gemini-backed description writer.
func NewGeminiWriter(ctx context.Context, apiKey, model string) (*GeminiWriter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create GenAI client")
	}

	return &GeminiWriter{client: client, model: model}, nil
}

// DescribeIssue returns a draft description for an issue of the given category.
func (w *GeminiWriter) DescribeIssue(ctx context.Context, category string) (string, error) {
	resp, err := w.client.Models.GenerateContent(ctx, w.model, genai.Text(DescriptionPrompt(category)), nil)
	if err != nil {
		return "", errors.Wrap(err, "gemini generate content")
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("gemini returned an empty description")
	}
	return text, nil
}

// DescriptionPrompt renders the prompt sent for a category.
func DescriptionPrompt(category string) string {
	return fmt.Sprintf(descriptionPrompt, strings.TrimSpace(category))
}
