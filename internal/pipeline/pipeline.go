// Package pipeline orchestrates a discovery run: search seeds, fetch and
// harvest pages, score candidates, resolve duplicates, persist accepted
// organizations to the ledger, and write run artifacts.
package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/keystone-gtm/icp-discovery/internal/config"
	"github.com/keystone-gtm/icp-discovery/internal/dedupe"
	"github.com/keystone-gtm/icp-discovery/internal/extract"
	"github.com/keystone-gtm/icp-discovery/internal/harvest"
	"github.com/keystone-gtm/icp-discovery/internal/ledger"
	"github.com/keystone-gtm/icp-discovery/internal/model"
	"github.com/keystone-gtm/icp-discovery/internal/output"
	"github.com/keystone-gtm/icp-discovery/internal/scoring"
	"github.com/keystone-gtm/icp-discovery/pkg/firmographics"
	"github.com/keystone-gtm/icp-discovery/pkg/websearch"
)

// harvestMultiple controls how many candidates to harvest per target
// slot before deduplication and tier filtering thin the pool.
const harvestMultiple = 3

// seedSearchSize is the result count requested per search query.
const seedSearchSize = 10

// Pipeline wires the discovery stages together.
type Pipeline struct {
	cfg       config.Config
	search    websearch.Client
	enrich    firmographics.Client
	harvester *harvest.Harvester
	scorers   map[model.Segment]scoring.Scorer
	resolver  *dedupe.Resolver
	extractor *extract.Extractor
	store     ledger.Store
	writer    *output.Writer
}

// New assembles a Pipeline. enrich may be nil when enrichment is
// disabled.
func New(cfg config.Config, search websearch.Client, enrich firmographics.Client, store ledger.Store) (*Pipeline, error) {
	harvester, err := harvest.New()
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		cfg:       cfg,
		search:    search,
		enrich:    enrich,
		harvester: harvester,
		scorers:   scoring.NewScorers(scoring.Config{HealthcareRelaxed: cfg.Scoring.HealthcareRelaxed}),
		resolver:  dedupe.NewResolver(cfg.Dedupe.SimilarityThreshold),
		extractor: extract.NewExtractor(),
		store:     store,
		writer:    output.NewWriter(cfg.Output.Dir, cfg.Output.SchemaDir),
	}, nil
}

// Result summarizes a completed run.
type Result struct {
	RunID    string
	RunDir   string
	Accepted map[model.Segment]int
	Searches int
	Fetches  int
	Enriches int
}

// Run executes discovery for the given segments and writes one run
// directory. Region annotates output rows only; queries come from
// config.
func (p *Pipeline) Run(ctx context.Context, segments []model.Segment, region string) (*Result, error) {
	runID := newRunID()
	budget := NewBudget(p.cfg.Pipeline.MaxSearches, p.cfg.Pipeline.MaxFetches, p.cfg.Pipeline.MaxEnrich)
	zap.L().Info("starting discovery run",
		zap.String("run_id", runID),
		zap.Int("segments", len(segments)))

	rows := make(map[model.Segment][]model.OutputRow, len(segments))
	var entries []model.LedgerEntry

	for _, seg := range SortSegments(segments) {
		segRows, err := p.runSegment(ctx, seg, region, budget)
		if err != nil {
			return nil, eris.Wrapf(err, "pipeline: segment %s", seg)
		}
		rows[seg] = segRows
		for _, row := range segRows {
			entries = append(entries, model.LedgerEntry{
				Organization: row.Organization,
				Segment:      seg,
				Region:       row.Region,
				Status:       "active",
				Tier:         row.Tier,
				Score:        row.Score,
				EvidenceURL:  row.EvidenceURL,
				Notes:        row.Notes,
			})
		}
	}

	if err := p.store.Upsert(ctx, entries); err != nil {
		return nil, err
	}

	runDir, err := p.writer.WriteRun(runID, rows)
	if err != nil {
		return nil, err
	}

	res := &Result{RunID: runID, RunDir: runDir, Accepted: make(map[model.Segment]int, len(rows))}
	for seg, segRows := range rows {
		res.Accepted[seg] = len(segRows)
	}
	res.Searches, res.Fetches, res.Enriches = budget.Snapshot()
	zap.L().Info("discovery run complete",
		zap.String("run_id", runID),
		zap.String("dir", runDir),
		zap.Int("searches", res.Searches),
		zap.Int("fetches", res.Fetches),
		zap.Int("enriches", res.Enriches))
	return res, nil
}

func (p *Pipeline) runSegment(ctx context.Context, seg model.Segment, region string, budget *Budget) ([]model.OutputRow, error) {
	target := p.cfg.Pipeline.TargetCount
	if target <= 0 {
		target = 50
	}

	seeds, err := p.collectSeeds(ctx, seg, budget)
	if err != nil {
		return nil, err
	}
	zap.L().Info("collected seeds", zap.String("segment", string(seg)), zap.Int("count", len(seeds)))

	candidates := p.harvestSeeds(ctx, seg, seeds, region, budget, target*harvestMultiple)

	members, err := p.store.Members(ctx, seg)
	if err != nil {
		return nil, err
	}

	rows := p.scoreCandidates(ctx, seg, candidates, members, budget, target)

	resolution := p.resolver.Resolve(rows)
	unique := resolution.Unique
	if resolution.DuplicatesRemoved > 0 {
		zap.L().Info("resolved duplicates",
			zap.String("segment", string(seg)),
			zap.Int("removed", resolution.DuplicatesRemoved))
	}
	if len(unique) > target {
		unique = unique[:target]
	}
	return unique, nil
}

// collectSeeds runs the configured queries and returns deduplicated
// hits, interleaved across queries so no single query dominates.
func (p *Pipeline) collectSeeds(ctx context.Context, seg model.Segment, budget *Budget) ([]websearch.Hit, error) {
	queries := p.cfg.Pipeline.Queries[string(seg)]
	if len(queries) == 0 {
		return nil, eris.Errorf("pipeline: no queries configured for segment %s", seg)
	}

	maxSeeds := p.cfg.Pipeline.MaxSeeds
	if maxSeeds <= 0 {
		maxSeeds = 50
	}

	perQuery := make([][]websearch.Hit, 0, len(queries))
	for _, q := range queries {
		if !budget.AllowSearch() {
			zap.L().Warn("search budget exhausted", zap.String("segment", string(seg)))
			break
		}
		hits, err := p.search.Search(ctx, q, seedSearchSize)
		if err != nil {
			zap.L().Warn("search failed", zap.String("query", q), zap.Error(err))
			continue
		}
		perQuery = append(perQuery, hits)
	}

	seen := make(map[string]bool)
	var seeds []websearch.Hit
	for i := 0; len(seeds) < maxSeeds; i++ {
		advanced := false
		for _, hits := range perQuery {
			if i >= len(hits) {
				continue
			}
			advanced = true
			hit := hits[i]
			if hit.URL == "" || seen[hit.URL] {
				continue
			}
			seen[hit.URL] = true
			seeds = append(seeds, hit)
			if len(seeds) >= maxSeeds {
				break
			}
		}
		if !advanced {
			break
		}
	}
	return seeds, nil
}

// harvestSeeds fetches seed pages concurrently and turns them into
// candidates, preserving seed order in the result.
func (p *Pipeline) harvestSeeds(ctx context.Context, seg model.Segment, seeds []websearch.Hit, region string, budget *Budget, limit int) []model.Candidate {
	concurrency := p.cfg.Pipeline.FetchConcurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	slots := make([]*model.Candidate, len(seeds))
	var mu sync.Mutex

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, seed := range seeds {
		if !budget.AllowFetch() {
			zap.L().Warn("fetch budget exhausted", zap.String("segment", string(seg)))
			break
		}
		g.Go(func() error {
			page, err := p.search.Fetch(gCtx, seed.URL)
			if err != nil {
				zap.L().Debug("fetch failed", zap.String("url", seed.URL), zap.Error(err))
				return nil
			}
			cand := p.harvester.Candidate(seg, page, seed.Title, region)
			mu.Lock()
			slots[i] = &cand
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	candidates := make([]model.Candidate, 0, len(seeds))
	for _, c := range slots {
		if c == nil {
			continue
		}
		candidates = append(candidates, *c)
		if len(candidates) >= limit {
			break
		}
	}
	return candidates
}

// scoreCandidates scores harvested candidates in order, skipping
// organizations already in the ledger or already seen this run, and
// stops once the target is reached.
func (p *Pipeline) scoreCandidates(ctx context.Context, seg model.Segment, candidates []model.Candidate, members map[string]struct{}, budget *Budget, target int) []model.OutputRow {
	scorer := p.scorers[seg]
	seen := make(map[string]bool)
	var rows []model.OutputRow

	for _, cand := range candidates {
		key := dedupe.Normalize(cand.Organization)
		if key == "" || seen[key] {
			continue
		}
		if _, ok := members[key]; ok {
			zap.L().Debug("skipping ledger member", zap.String("organization", cand.Organization))
			continue
		}
		seen[key] = true

		ev := cand.Evidence
		var enriched *firmographics.Result
		if p.enrich != nil && p.cfg.Enrich.Enabled && budget.AllowEnrich() {
			res, err := p.enrich.Firmographics(ctx, cand.Organization)
			if err != nil {
				zap.L().Debug("enrichment failed", zap.String("organization", cand.Organization), zap.Error(err))
			} else if res != nil {
				enriched = res
				if res.LargeScale() {
					ev = ev.Clone()
					ev["large_scale"] = true
				}
			}
		}

		result, derived := scorer.Score(ev)
		result = scoring.ApplyDomainAuthority(result, cand.Organization, ev.Text("evidence_url"), p.cfg.Scoring.AggregatorDomains)
		if !result.Tier.Accepted() {
			continue
		}

		row := model.OutputRow{
			Organization: cand.Organization,
			Segment:      seg,
			Region:       cand.Region,
			Tier:         result.Tier,
			Score:        result.Score,
			EvidenceURL:  ev.Text("evidence_url"),
			Notes:        buildNotes(result),
			Extra:        map[string]string{},
		}
		applyDerived(row.Extra, derived)
		if enriched != nil && enriched.EmployeeRange != "" {
			row.Extra["Employee_Range"] = enriched.EmployeeRange
		}
		if seg == model.SegmentHealthcare {
			applyEntities(row.Extra, p.extractor.Extract(ev.Text("full_text")))
		}

		rows = append(rows, row)
		if len(rows) >= target {
			break
		}
	}
	return rows
}

// derivedColumns maps scorer-derived evidence keys to output headers.
var derivedColumns = map[string]string{
	"academy_name":      "Academy_Name",
	"academy_url":       "Academy_URL",
	"vilt_sessions_90d": "VILT_Sessions_90d",
	"vilt_schedule_url": "Schedule_URL",
	"accreditations":    "Accreditations",
	"instructor_bench":  "Instructor_Bench",
}

func applyDerived(extra map[string]string, derived scoring.Derived) {
	for key, header := range derivedColumns {
		v, ok := derived[key]
		if !ok {
			continue
		}
		switch val := v.(type) {
		case string:
			if val != "" {
				extra[header] = val
			}
		case int:
			extra[header] = strconv.Itoa(val)
		default:
			extra[header] = fmt.Sprintf("%v", val)
		}
	}
}

func applyEntities(extra map[string]string, ents extract.Entities) {
	if ents.EHRVendor != "" {
		extra["EHR_Vendor"] = ents.EHRVendor
	}
	if ents.LifecyclePhase != "" {
		extra["EHR_Lifecycle_Phase"] = ents.LifecyclePhase
	}
	if ents.OrgType != "" {
		extra["Type"] = ents.OrgType
	}
	if ents.GoLiveDate != "" {
		extra["GoLive_Date"] = ents.GoLiveDate
	}
}

func buildNotes(result model.ScoreResult) string {
	if len(result.Missing) == 0 {
		return ""
	}
	note := "missing=" + strings.Join(result.Missing, ",")
	if result.Tier == model.TierNeeds || result.Tier == model.TierThree {
		note += "; confirm before outreach"
	}
	return note
}

func newRunID() string {
	return fmt.Sprintf("run_%d_%s", time.Now().Unix(), uuid.New().String()[:8])
}

// SortSegments returns segments in canonical order for deterministic
// iteration over run output.
func SortSegments(segments []model.Segment) []model.Segment {
	out := make([]model.Segment, len(segments))
	copy(out, segments)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
