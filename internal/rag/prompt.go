package rag

import (
	"fmt"
	"strings"

	"github.com/akolanti/PaperRAG/internal/domain/commonModels"
	"github.com/akolanti/PaperRAG/internal/rag/llm"
)

const answerInstruction = `You are an assistant for scientific articles. Give a short, precise and unambiguous answer to the question using only the provided context. If the context does not contain the answer, say that the article does not provide it. Do not continue the conversation, do not ask questions back and do not repeat yourself. Finish the answer after one paragraph.`

const summaryInstruction = `You are an assistant for scientific articles. Write a short and accurate summary of the text below in one paragraph. Use only the provided text.`

const noPassages = "(no passages from the article matched this question)"

const summaryQuestion = "Summarize the article."

var cutoffPhrases = []string{"Question:", "Now,", "Also,", "Let's", "Finally,"}

func answerPrompt(question string, chunks []commonModels.ScoredChunk) llm.Prompt {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	return llm.Prompt{System: answerInstruction, User: userBlock(question, strings.Join(texts, "\n\n"))}
}

func summaryPrompt(article commonModels.ArticleMeta) llm.Prompt {
	var parts []string
	if article.Abstract != "" {
		parts = append(parts, "Abstract:\n"+article.Abstract)
	}
	if article.Conclusion != "" {
		parts = append(parts, "Conclusion:\n"+article.Conclusion)
	}
	if len(parts) == 0 && article.Title != "" {
		parts = append(parts, "Title:\n"+article.Title)
	}
	return llm.Prompt{System: summaryInstruction, User: userBlock(summaryQuestion, strings.Join(parts, "\n\n"))}
}

func userBlock(question string, context string) string {
	if strings.TrimSpace(context) == "" {
		context = noPassages
	}
	return fmt.Sprintf("### Question\n%s\n\n### Context\n%s\n\n### Answer\n", question, context)
}

// TrimResponse keeps the first paragraph of a generation and cuts it where the model starts a new turn.
func TrimResponse(raw string) string {
	if i := strings.Index(raw, "\n\n"); i >= 0 {
		raw = raw[:i]
	}
	for _, phrase := range cutoffPhrases {
		if i := strings.Index(raw, phrase); i >= 0 {
			// a cut that leaves nothing would turn a real answer into an empty one
			if cut := strings.TrimSpace(raw[:i]); cut != "" {
				return cut
			}
		}
	}
	return strings.TrimSpace(raw)
}
