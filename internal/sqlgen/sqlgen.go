// Package sqlgen translates natural-language questions into read-only SQL
// via the Anthropic Messages API and executes them against the store.
package sqlgen

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/sirupsen/logrus"

	"github.com/finwell-io/wellness-service/internal/models"
)

// Executor runs an already-validated SELECT against the store.
type Executor interface {
	RunReadOnly(ctx context.Context, query string) (columns []string, rows []map[string]interface{}, err error)
}

// UsageRecorder receives token usage for every model call. May be nil.
type UsageRecorder interface {
	Record(ctx context.Context, model, operation string, inputTokens, outputTokens int64) error
}

const systemPromptTemplate = `You translate analyst questions about a banking dataset into a single PostgreSQL SELECT statement.

%s

Rules:
- Output ONLY the SQL statement, no explanation, no Markdown, no code fences.
- SELECT (or WITH ... SELECT) statements only. Never modify data.
- One statement. Limit result sets to 100 rows unless the question asks otherwise.`

// Generator is the AI-SQL fallback capability handed to the interpreter.
type Generator struct {
	executor  Executor
	usage     UsageRecorder
	schema    string
	model     string
	maxTokens int64
	log       *logrus.Logger

	// complete performs one model call; swapped out in tests.
	complete func(ctx context.Context, system, user string) (text string, inTokens, outTokens int64, err error)
}

// New builds a generator backed by the Anthropic API. usage may be nil.
func New(apiKey, model string, maxTokens int64, schema string, executor Executor, usage UsageRecorder, log *logrus.Logger) *Generator {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	g := &Generator{
		executor:  executor,
		usage:     usage,
		schema:    schema,
		model:     model,
		maxTokens: maxTokens,
		log:       log,
	}
	g.complete = func(ctx context.Context, system, user string) (string, int64, int64, error) {
		msg, err := client.Messages.New(ctx, anthropic.MessageNewParams{
			Model:     anthropic.Model(g.model),
			MaxTokens: g.maxTokens,
			System:    []anthropic.TextBlockParam{{Text: system}},
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
			},
		})
		if err != nil {
			return "", 0, 0, err
		}
		var sb strings.Builder
		for _, block := range msg.Content {
			if block.Type == "text" {
				sb.WriteString(block.Text)
			}
		}
		return sb.String(), msg.Usage.InputTokens, msg.Usage.OutputTokens, nil
	}
	return g
}

// ExecuteGeneratedQuery translates the question to SQL, enforces the
// read-only guard and runs the statement. A failure here is always
// distinguishable from a success with zero rows.
func (g *Generator) ExecuteGeneratedQuery(ctx context.Context, query string) (*models.AIGeneratedResult, error) {
	system := fmt.Sprintf(systemPromptTemplate, g.schema)

	text, inTokens, outTokens, err := g.complete(ctx, system, query)
	if err != nil {
		return nil, fmt.Errorf("generate sql: %w", err)
	}
	if g.usage != nil {
		if uerr := g.usage.Record(ctx, g.model, "sqlgen", inTokens, outTokens); uerr != nil {
			g.log.WithError(uerr).Warn("failed to record model usage")
		}
	}

	sql := CleanSQL(text)
	if err := ValidateReadOnly(sql); err != nil {
		return nil, fmt.Errorf("generated statement rejected: %w", err)
	}

	g.log.WithField("sql", sql).Debug("executing generated statement")
	columns, rows, err := g.executor.RunReadOnly(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("execute generated sql: %w", err)
	}
	if rows == nil {
		rows = []map[string]interface{}{}
	}
	return &models.AIGeneratedResult{
		Type:     models.ResultTypeAIGenerated,
		SQL:      sql,
		Columns:  columns,
		Rows:     rows,
		RowCount: len(rows),
	}, nil
}
