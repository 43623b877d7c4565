package services

import (
	"context"
	"strings"

	"github.com/anonto42/civic-connect/backend/internal/apperrors"
	"github.com/pkg/errors"
)

// DescriptionWriter drafts an issue description for a category.
type DescriptionWriter interface {
	DescribeIssue(ctx context.Context, category string) (string, error)
}

// ErrWriterDisabled is returned when no text generator is configured.
var ErrWriterDisabled = errors.New("description drafting is not configured")

type Describer struct {
	writer DescriptionWriter
}

func NewDescriber(writer DescriptionWriter) *Describer {
	return &Describer{writer: writer}
}

func (d *Describer) Describe(ctx context.Context, category string) (string, error) {
	if d.writer == nil {
		return "", ErrWriterDisabled
	}
	category = strings.TrimSpace(category)
	if category == "" {
		return "", apperrors.Invalid("category is required")
	}
	text, err := d.writer.DescribeIssue(ctx, category)
	if err != nil {
		return "", apperrors.Upstream(err, "draft description")
	}
	return strings.TrimSpace(text), nil
}
