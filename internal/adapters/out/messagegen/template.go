package messagegen

import (
	"context"

	"delaynotify/internal/core/domain/services"
)

// Template always renders the fallback message.
type Template struct{}

func NewTemplate() Template { return Template{} }

func (Template) Generate(ctx context.Context, in services.MessageInput) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return services.FallbackMessage(in), nil
}
