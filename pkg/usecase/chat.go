package usecase

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/insight-lab/mnemosyne/pkg/agent"
)

// Chat answers one natural-language question over the stored memory
// via the reasoning agent. The returned trace holds the agent's
// intermediate messages in order.
func (uc *UseCases) Chat(ctx context.Context, question string) (*agent.Result, error) {
	if strings.TrimSpace(question) == "" {
		return nil, goerr.New("question is empty")
	}

	result, err := uc.agent.Execute(ctx, question)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to answer question")
	}

	return result, nil
}
