package integration

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/DaHaiz/plentymarkets-shopware-connector/internal/domain/integration"
	"github.com/DaHaiz/plentymarkets-shopware-connector/internal/infrastructure/logger"
	"github.com/DaHaiz/plentymarkets-shopware-connector/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultCategoryLockTTL bounds how long a crashed run blocks the next one
const DefaultCategoryLockTTL = 30 * time.Minute

// CategoryReconciler exports the shop category tree into the ERP catalog
// and rebuilds the category mapping with remote paths.
type CategoryReconciler struct {
	client     integration.CategoryClient
	categories integration.CategoryReader
	shops      integration.ShopReader
	mappings   integration.MappingStore
	language   string
	lock       integration.ExportLock
	lockTTL    time.Duration
	metrics    *telemetry.ExportMetrics
	logger     *zap.Logger
	now        func() time.Time
}

// NewCategoryReconciler creates a new CategoryReconciler
func NewCategoryReconciler(
	client integration.CategoryClient,
	categories integration.CategoryReader,
	shops integration.ShopReader,
	mappings integration.MappingStore,
	settings ExportSettings,
	logger *zap.Logger,
) *CategoryReconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	lang := settings.PrimaryLanguage
	if lang == "" {
		lang = DefaultPrimaryLanguage
	}
	return &CategoryReconciler{
		client:     client,
		categories: categories,
		shops:      shops,
		mappings:   mappings,
		language:   lang,
		lockTTL:    DefaultCategoryLockTTL,
		logger:     logger,
		now:        time.Now,
	}
}

// WithLock serializes runs through lock
func (r *CategoryReconciler) WithLock(lock integration.ExportLock, ttl time.Duration) *CategoryReconciler {
	r.lock = lock
	if ttl > 0 {
		r.lockTTL = ttl
	}
	return r
}

// WithMetrics records run outcomes
func (r *CategoryReconciler) WithMetrics(metrics *telemetry.ExportMetrics) *CategoryReconciler {
	r.metrics = metrics
	return r
}

// Run performs one reconciliation: index the remote catalog, create or
// reuse remote categories, then store the remote path of every exported
// category. A failing remote call aborts the run.
func (r *CategoryReconciler) Run(ctx context.Context) (*CategoryRunResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "category_export", "run")
	defer span.End()

	runID := uuid.NewString()
	ctx, log := logger.WithRunID(ctx, r.logger, runID)
	result := &CategoryRunResult{RunID: runID, StartedAt: r.now()}

	if r.lock != nil {
		release, err := r.lock.TryAcquire(ctx, integration.LockKeyCategories, r.lockTTL)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to acquire category lock: %w", err)
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				log.Warn("failed to release category lock", zap.Error(err))
			}
		}()
	}

	index, err := r.buildIndex(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		log.Error("category catalog could not be indexed", zap.Error(err))
		return nil, err
	}
	result.IndexedRemote = index.Len()

	nodes, err := r.categories.FindAll(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	roots, languages, err := r.loadShops(ctx, log)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	exported, err := r.export(ctx, log, nodes, roots, languages, index, result)
	if err != nil {
		telemetry.RecordError(span, err)
		log.Error("category export aborted", zap.Error(err))
		return nil, err
	}

	rebuilt, err := r.rebuildMapping(ctx, nodes, exported)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	result.PathsRebuilt = rebuilt
	result.FinishedAt = r.now()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrCreated, result.Created,
		telemetry.SpanAttrReused, result.Reused,
		telemetry.SpanAttrSkipped, len(result.Skipped),
	)
	r.metrics.RecordCategoryOutcomes(ctx, result.Created, result.Reused, len(result.Skipped))
	r.metrics.RecordRunDuration(ctx, "categories", result.FinishedAt.Sub(result.StartedAt))

	log.Info("category export finished",
		zap.Int("indexed_remote", result.IndexedRemote),
		zap.Int("created", result.Created),
		zap.Int("reused", result.Reused),
		zap.Int("translated", result.Translated),
		zap.Int("skipped", len(result.Skipped)),
		zap.Int("paths_rebuilt", result.PathsRebuilt),
	)
	return result, nil
}

// buildIndex pages through the remote catalog in the primary language.
// Any failed page discards the whole index.
func (r *CategoryReconciler) buildIndex(ctx context.Context) (*integration.RemoteCategoryIndex, error) {
	index := integration.NewRemoteCategoryIndex()
	req := integration.CatalogPageRequest{Lang: r.language, Page: 0}

	for {
		page, err := r.client.GetCategoryCatalogPage(ctx, req)
		if err != nil || !page.Success {
			return nil, &integration.RemoteOperationError{
				Operation: "GetItemCategoryCatalogBase",
				Subject:   fmt.Sprintf("catalog page %d", req.Page),
				Code:      integration.CodeCatalogPageFailed,
				Err:       err,
			}
		}
		for _, category := range page.Categories {
			index.Add(category)
		}
		req.Page++
		if req.Page >= page.Pages {
			break
		}
	}
	return index, nil
}

// loadShops returns the category roots of the active shops and the
// languages other than the primary one, in shop order.
func (r *CategoryReconciler) loadShops(ctx context.Context, log *zap.Logger) (map[int64]bool, []string, error) {
	shops, err := r.shops.FindActive(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load shops: %w", err)
	}

	roots := make(map[int64]bool, len(shops))
	var languages []string
	for _, shop := range shops {
		roots[shop.RootCategoryID] = true

		lang, ok := integration.LocaleLanguage(shop.Locale)
		if !ok {
			log.Warn("shop locale has no language", zap.Int64("shop_id", shop.ID), zap.String("locale", shop.Locale))
			continue
		}
		if lang != r.language && !slices.Contains(languages, lang) {
			languages = append(languages, lang)
		}
	}
	return roots, languages, nil
}

func (r *CategoryReconciler) export(
	ctx context.Context,
	log *zap.Logger,
	nodes []integration.CategoryNode,
	roots map[int64]bool,
	languages []string,
	index *integration.RemoteCategoryIndex,
	result *CategoryRunResult,
) (map[int64]int64, error) {
	candidates := make([]integration.CategoryNode, 0, len(nodes))
	for _, node := range nodes {
		if node.Blog || !node.HasPath() {
			continue
		}
		candidates = append(candidates, node)
	}
	slices.SortStableFunc(candidates, func(a, b integration.CategoryNode) int {
		if c := cmp.Compare(a.Level(), b.Level()); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Position, b.Position); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	exported := make(map[int64]int64, len(candidates))
	for _, node := range candidates {
		root, _ := node.Root()
		if !roots[root] {
			r.skip(log, result, node, "not connected to a shop")
			continue
		}
		level := node.Level()
		if level > integration.MaxCategoryDepth {
			r.skip(log, result, node, fmt.Sprintf("deeper than level %d", integration.MaxCategoryDepth))
			continue
		}

		remoteID, found := index.Lookup(level, node.Name)
		if found {
			result.Reused++
		} else {
			id, err := r.create(ctx, node, level)
			if err != nil {
				return nil, err
			}
			remoteID = id
			index.Put(level, node.Name, remoteID)
			result.Created++
			log.Debug("category created",
				zap.Int64("category_id", node.ID),
				zap.Int64("remote_id", remoteID),
				zap.Int("level", level),
			)
		}

		for _, lang := range languages {
			if err := r.translate(ctx, node, remoteID, lang); err != nil {
				return nil, err
			}
			result.Translated++
		}

		entry, err := integration.NewMappingEntry(integration.EntityCategory, integration.FormatID(node.ID), integration.FormatID(remoteID))
		if err != nil {
			return nil, err
		}
		if err := r.mappings.Replace(ctx, entry); err != nil {
			return nil, fmt.Errorf("failed to store mapping of category %d: %w", node.ID, err)
		}
		exported[node.ID] = remoteID
	}
	return exported, nil
}

func (r *CategoryReconciler) skip(log *zap.Logger, result *CategoryRunResult, node integration.CategoryNode, reason string) {
	log.Warn("category skipped",
		zap.Int64("category_id", node.ID),
		zap.String("name", node.Name),
		zap.String("reason", reason),
		zap.Int("code", integration.CodeCategoryNotConnected),
	)
	result.Skipped = append(result.Skipped, SkippedCategory{
		CategoryID: node.ID,
		Name:       node.Name,
		Code:       integration.CodeCategoryNotConnected,
		Reason:     reason,
	})
}

func (r *CategoryReconciler) create(ctx context.Context, node integration.CategoryNode, level int) (int64, error) {
	res, err := r.client.AddCategory(ctx, TranslateCategory(node, level, r.language))
	if err == nil && res.Success {
		if value, ok := res.FirstValue(); ok {
			if id, perr := integration.ParseRemoteID(value); perr == nil && id > 0 {
				return id, nil
			}
		}
		err = integration.ErrRemoteInvalidResponse
	}
	return 0, &integration.RemoteOperationError{
		Operation: "AddItemCategory",
		Subject:   fmt.Sprintf("category %q", node.Name),
		Code:      integration.CodeCategoryCreateFailed,
		Err:       err,
	}
}

func (r *CategoryReconciler) translate(ctx context.Context, node integration.CategoryNode, remoteID int64, lang string) error {
	res, err := r.client.AddCategoryTranslation(ctx, TranslateCategoryTranslation(node, remoteID, lang))
	if err != nil || !res.Success {
		return &integration.RemoteOperationError{
			Operation: "AddItemCategory",
			Subject:   fmt.Sprintf("category %q (%s)", node.Name, lang),
			Code:      integration.CodeCategoryTranslationFailed,
			Err:       err,
		}
	}
	return nil
}

// rebuildMapping walks down from every shop root and stores the remote path
// of each exported category. Categories that were not exported end their
// branch.
func (r *CategoryReconciler) rebuildMapping(ctx context.Context, nodes []integration.CategoryNode, exported map[int64]int64) (int, error) {
	children := make(map[int64][]integration.CategoryNode)
	var tops []integration.CategoryNode
	for _, node := range nodes {
		if !node.HasPath() && node.ParentID != 0 {
			tops = append(tops, node)
		}
		if node.ParentID != 0 {
			children[node.ParentID] = append(children[node.ParentID], node)
		}
	}
	childrenOf := func(node integration.CategoryNode) []integration.CategoryNode {
		return children[node.ID]
	}

	rebuilt := 0
	for _, top := range tops {
		err := integration.Walk(childrenOf(top), childrenOf, integration.MaxCategoryDepth, []string(nil),
			func(node integration.CategoryNode, _ int, path []string) ([]string, bool, error) {
				remoteID, ok := exported[node.ID]
				if node.Blog || !ok {
					return nil, false, nil
				}
				path = append(slices.Clip(path), integration.FormatID(remoteID))
				entry, err := integration.NewPathMappingEntry(integration.EntityCategory, integration.FormatID(node.ID), path)
				if err != nil {
					return nil, false, err
				}
				if err := r.mappings.Replace(ctx, entry); err != nil {
					return nil, false, fmt.Errorf("failed to store path of category %d: %w", node.ID, err)
				}
				rebuilt++
				return path, true, nil
			})
		if err != nil {
			return rebuilt, err
		}
	}
	return rebuilt, nil
}
