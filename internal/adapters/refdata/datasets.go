package refdata

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/okian/buildlab/internal/domain/model"
	"github.com/okian/buildlab/pkg/logger"
	"github.com/okian/buildlab/pkg/metrics"
)

// Dataset labels used in logs and metrics.
const (
	DatasetWeights      = "attribute_weights"
	DatasetRequirements = "badge_requirements"
	DatasetBuildNames   = "build_names"
	DatasetBadgeTiers   = "badge_tiers"
)

// Source yields a consistent set of reference datasets.
type Source interface {
	FetchAll(ctx context.Context) (model.Datasets, error)
}

type envelope struct {
	PageProps map[string]json.RawMessage `json:"pageProps"`
}

// FetchAll issues the four GETs concurrently. The first failure cancels the
// rest and nothing partial is returned.
func (c *Client) FetchAll(ctx context.Context) (model.Datasets, error) {
	var out model.Datasets
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		raw, err := c.section(gctx, DatasetWeights, c.paths.Weights, "attributeCalculatedWeights")
		if err != nil {
			return err
		}
		if err := json.Unmarshal(raw, &out.AttributeWeights); err != nil {
			return fmt.Errorf("%w: %s: %v", model.ErrUpstreamData, DatasetWeights, err)
		}
		return nil
	})
	g.Go(func() error {
		raw, err := c.section(gctx, DatasetRequirements, c.paths.Requirements, "badgeUnlocks", "badgeRequirements")
		if err != nil {
			return err
		}
		out.BadgeRequirements = decodeOrDegrade[model.BadgeRequirement](gctx, c.logger, DatasetRequirements, raw)
		return nil
	})
	g.Go(func() error {
		raw, err := c.section(gctx, DatasetBuildNames, c.paths.BuildNames, "buildNames")
		if err != nil {
			return err
		}
		out.BuildNames = decodeOrDegrade[model.CatalogEntry](gctx, c.logger, DatasetBuildNames, raw)
		return nil
	})
	g.Go(func() error {
		raw, err := c.section(gctx, DatasetBadgeTiers, c.paths.BadgeTiers, "badgeTiers")
		if err != nil {
			return err
		}
		out.BadgeCeilings = decodeOrDegrade[model.BadgeCeiling](gctx, c.logger, DatasetBadgeTiers, raw)
		return nil
	})

	if err := g.Wait(); err != nil {
		return model.Datasets{}, err
	}
	c.logger.Debug(ctx, "datasets fetched", logger.String("summary", out.String()))
	return out, nil
}

// section fetches one dataset and returns the first present pageProps key.
func (c *Client) section(ctx context.Context, dataset, path string, keys ...string) (json.RawMessage, error) {
	body, err := c.get(ctx, dataset, c.baseURL+path)
	if err != nil {
		return nil, err
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", model.ErrUpstreamData, dataset, err)
	}
	for _, k := range keys {
		if raw, ok := env.PageProps[k]; ok && !isNull(raw) {
			return raw, nil
		}
	}
	return nil, fmt.Errorf("%w: %s: missing pageProps.%s", model.ErrUpstreamData, dataset, keys[0])
}

// decodeOrDegrade returns nil for data that is present but not a list.
// Rows that fail to decode are skipped one by one.
func decodeOrDegrade[T any](ctx context.Context, log logger.Logger, dataset string, raw json.RawMessage) []T {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		metrics.RecordDegradation(dataset)
		log.Warn(ctx, "dataset has unexpected shape, ignoring it",
			logger.String("dataset", dataset),
			logger.Error(err),
		)
		return nil
	}

	rows := make([]T, 0, len(items))
	skipped := 0
	for i, item := range items {
		var row T
		if err := json.Unmarshal(item, &row); err != nil {
			skipped++
			log.Debug(ctx, "skipping malformed dataset row",
				logger.String("dataset", dataset),
				logger.Int("row", i),
				logger.Error(err),
			)
			continue
		}
		rows = append(rows, row)
	}
	if skipped > 0 {
		metrics.RecordDegradation(dataset)
		log.Warn(ctx, "skipped malformed dataset rows",
			logger.String("dataset", dataset),
			logger.Int("skipped", skipped),
			logger.Int("kept", len(rows)),
		)
	}
	return rows
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}
