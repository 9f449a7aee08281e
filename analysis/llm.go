package analysis

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/JoelJacobStephen/litxplore"
	"github.com/JoelJacobStephen/litxplore/errors"
)

const jsonAttempts = 3

// generateJSON asks the model for a JSON document and decodes it into dst.
// Models regularly wrap JSON in markdown fences or prepend prose, so the
// reply is cleaned first and the whole call retried a few times.
func (s *Service) generateJSON(ctx context.Context, prompt string, dst interface{}) error {
	var lastErr error
	for attempt := 0; attempt < jsonAttempts; attempt++ {
		reply, err := s.Generator.Generate(ctx, prompt, litxplore.GenerateOptions{Temperature: 0.2})
		if err != nil {
			lastErr = err
			continue
		}

		if err := json.Unmarshal([]byte(stripFences(reply)), dst); err != nil {
			lastErr = err
			continue
		}
		return nil
	}

	return errors.New("model did not produce valid JSON", errors.BadGateway(), errors.WithCause(lastErr))
}

// stripFences removes a surrounding markdown code fence and anything
// outside the outermost JSON braces.
func stripFences(reply string) string {
	reply = strings.TrimSpace(reply)

	if strings.HasPrefix(reply, "```") {
		reply = strings.TrimPrefix(reply, "```json")
		reply = strings.TrimPrefix(reply, "```")
		if i := strings.LastIndex(reply, "```"); i >= 0 {
			reply = reply[:i]
		}
		reply = strings.TrimSpace(reply)
	}

	start := strings.IndexAny(reply, "{[")
	if start < 0 {
		return reply
	}

	var end int
	if reply[start] == '{' {
		end = strings.LastIndex(reply, "}")
	} else {
		end = strings.LastIndex(reply, "]")
	}
	if end <= start {
		return reply
	}
	return reply[start : end+1]
}
