package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
)

// NotProvided is the reply the model is told to give when the documents do
// not hold the answer.
const NotProvided = "Not provided in the documents"

const answerSystemPrompt = "You are a helpful assistant."

// ErrNoAnswer is returned when the model produced no choices.
var ErrNoAnswer = errors.New("model returned no answer")

// Answer is the outcome of a one-off question.
type Answer struct {
	Text      string
	Documents []schema.Document
}

// BuildPrompt combines the question with the retrieved documents.
func BuildPrompt(question string, docs []schema.Document) string {
	contents := make([]string, len(docs))
	for i, d := range docs {
		contents[i] = d.PageContent
	}
	return "Here are some documents that might help answer the question: " + question +
		"\n\nRelevant documents:\n" + strings.Join(contents, "\n") +
		"\n\nPlease provide a rough answer based only on the provided documents. " +
		"If the answer is not in the documents, respond with '" + NotProvided + "'."
}

// Ask retrieves documents for question and has model answer from them
// alone.
func Ask(ctx context.Context, model llms.Model, retriever schema.Retriever, question string, options ...llms.CallOption) (*Answer, error) {
	docs, err := retriever.GetRelevantDocuments(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve documents: %w", err)
	}

	resp, err := model.GenerateContent(ctx, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, answerSystemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, BuildPrompt(question, docs)),
	}, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return nil, ErrNoAnswer
	}
	return &Answer{Text: resp.Choices[0].Content, Documents: docs}, nil
}
