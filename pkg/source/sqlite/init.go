package sqlite

import (
	"context"

	"github.com/biblioworks/marcflow/pkg/config"
	"github.com/biblioworks/marcflow/pkg/source"
)

func init() {
	source.Register("sqlite", func(ctx context.Context, cfg *config.SourceConfig) (source.Source, error) {
		return New(ctx, cfg)
	})
}
