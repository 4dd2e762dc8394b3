package google

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/api/tasks/v1"

	"github.com/harrisonrobin/workbench/pkg/auth"
	"github.com/harrisonrobin/workbench/pkg/index"
)

// NewClient creates a Mirror backed by an authenticated Google Tasks service.
func NewClient(ctx context.Context, idx *index.MirrorIndex, listPrefix string, logger *zap.Logger) (*Mirror, error) {
	client, err := auth.GetClient(ctx, []string{tasks.TasksScope}, logger)
	if err != nil {
		return nil, err
	}

	srv, err := tasks.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve Tasks client: %w", err)
	}
	return NewMirror(srv, idx, listPrefix, logger), nil
}
