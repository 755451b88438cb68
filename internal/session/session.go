// Package session implements the orchestrator: a single logical actor
// that sequences pack loads, removals, reorders, and edits into repeated
// quick (priority-only) analysis passes, gates and runs an optional deep
// (metadata-enriched) analysis pass under a bounded-batch fetch/parse
// pipeline, and drives the final merge emit. The pack list, file list,
// metadata cache, and analysis latch are owned by the Session exclusively
// — nothing here is safe for concurrent event dispatch from more than one
// caller goroutine, matching the core's single-writer scheduling model.
package session

import (
	"context"
	"fmt"
	"io"
	"sync"

	"modpack-merger/internal/cache"
	"modpack-merger/internal/compat"
	"modpack-merger/internal/depcheck"
	"modpack-merger/internal/emit"
	"modpack-merger/internal/fetch"
	"modpack-merger/internal/manifest"
	"modpack-merger/internal/modpack"
	"modpack-merger/internal/resolve"
	"modpack-merger/ui"
)

// Sink receives non-fatal diagnostics; logger.ZapSink is the production
// implementation.
type Sink interface {
	Log(message string, severity ui.Severity)
}

// Direction is the argument to Reorder: a pack moves one slot up or down.
type Direction int

const (
	DirectionUp   Direction = -1
	DirectionDown Direction = 1
)

const defaultBatchSize = 5

// Session is the orchestrator's entire process-wide state.
type Session struct {
	mu sync.Mutex

	Packs []*modpack.Pack

	cache   *cache.Cache
	fetcher fetch.Fetcher
	sink    Sink

	batchSize int
	nextPackID int

	deepAnalysisPerformed bool
	analysisInProgress    bool
	generation            int

	CompatIssues     []compat.Issue
	DependencyIssues []depcheck.Issue
	QuickResult      resolve.Result
	DeepResult       resolve.Result
}

// New creates an empty session. batchSize <= 0 falls back to the core's
// default bounded-batch size of 5.
func New(c *cache.Cache, f fetch.Fetcher, sink Sink, batchSize int) *Session {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Session{cache: c, fetcher: f, sink: sink, batchSize: batchSize}
}

func (s *Session) log(message string, severity ui.Severity) {
	if s.sink != nil {
		s.sink.Log(message, severity)
	}
}

// invalidate resets the deep-analysis cache and bumps the generation
// counter, which causes any in-flight deep analysis to discard its
// partial progress the next time it checks in.
func (s *Session) invalidate() {
	s.deepAnalysisPerformed = false
	s.generation++
	s.DependencyIssues = nil
	s.DeepResult = resolve.Result{}
}

// runQuickAnalysis re-runs the priority-only resolver pass and the
// compatibility validator over the current pack order. Called after
// every state-changing event.
func (s *Session) runQuickAnalysis() {
	s.QuickResult = resolve.Run(s.Packs)
	s.CompatIssues = compat.Check(s.Packs)
}

// LoadPack ingests a new pack archive. A pack whose name matches an
// already-loaded pack is a soft-skip with a warning, not an error.
func (s *Session) LoadPack(name string, raw []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.Packs {
		if p.Name == name {
			s.log(fmt.Sprintf("skipping %q: a pack with this name is already loaded", name), ui.SeverityWarning)
			return nil
		}
	}

	var head *modpack.Pack
	if len(s.Packs) > 0 {
		head = s.Packs[0]
	}

	s.nextPackID++
	id := fmt.Sprintf("pack-%d", s.nextPackID)
	pack, err := modpack.Load(id, name, raw, head)
	if err != nil {
		return fmt.Errorf("session: loading pack %q: %w", name, err)
	}

	s.Packs = append(s.Packs, pack)
	s.invalidate()
	s.runQuickAnalysis()
	return nil
}

// RemovePack destroys the pack with the given ID and every file record
// that belonged to it.
func (s *Session) RemovePack(packID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, p := range s.Packs {
		if p.ID == packID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return fmt.Errorf("session: no pack with id %q", packID)
	}

	s.Packs = append(s.Packs[:idx], s.Packs[idx+1:]...)
	s.invalidate()
	s.runQuickAnalysis()
	return nil
}

// Reorder moves the pack at index one slot in the given direction,
// preserving the total order invariant everything else depends on.
func (s *Session) Reorder(index int, dir Direction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	target := index + int(dir)
	if index < 0 || index >= len(s.Packs) || target < 0 || target >= len(s.Packs) {
		return fmt.Errorf("session: reorder index %d direction %d out of range for %d packs", index, dir, len(s.Packs))
	}

	s.Packs[index], s.Packs[target] = s.Packs[target], s.Packs[index]
	s.invalidate()
	s.runQuickAnalysis()
	return nil
}

// EditHeadLoaderOrVersion corrects an undetected or misdetected
// minecraft version/loader on a standard pack, then forces re-analysis.
func (s *Session) EditHeadLoaderOrVersion(packID, mcVersion string, loader modpack.Loader) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var target *modpack.Pack
	for _, p := range s.Packs {
		if p.ID == packID {
			target = p
			break
		}
	}
	if target == nil {
		return fmt.Errorf("session: no pack with id %q", packID)
	}
	if err := target.EditHeadVersionLoader(mcVersion, loader); err != nil {
		return fmt.Errorf("session: %w", err)
	}

	s.invalidate()
	s.runQuickAnalysis()
	return nil
}

// RequestQuickAnalysis re-runs the cheap pass on demand, without any
// other state change having occurred.
func (s *Session) RequestQuickAnalysis() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runQuickAnalysis()
}

// enrichmentTarget is one file slated for bounded-batch fetch+parse.
type enrichmentTarget struct {
	pack *modpack.Pack
	file *modpack.FileRecord
}

// RequestDeepAnalysis populates metadata for every enabled mod-category
// file via the bounded-batch fetch/parse pipeline (batch size B), then
// re-runs the resolver's rich pass and the dependency validator. Refuses
// to start if a deep analysis is already in flight or if outstanding
// compatibility issues exist. A concurrent state-changing event
// discards all partial progress the next time a batch completes.
func (s *Session) RequestDeepAnalysis(ctx context.Context) error {
	s.mu.Lock()
	if s.analysisInProgress {
		s.mu.Unlock()
		return fmt.Errorf("session: a deep analysis is already in progress")
	}
	if len(s.CompatIssues) > 0 {
		s.mu.Unlock()
		return fmt.Errorf("session: deep analysis refused: unresolved compatibility issues")
	}
	s.analysisInProgress = true
	myGeneration := s.generation

	var targets []enrichmentTarget
	for _, pack := range s.Packs {
		for i := range pack.Files {
			f := &pack.Files[i]
			if f.Enabled && f.Category == modpack.CategoryMods {
				targets = append(targets, enrichmentTarget{pack: pack, file: f})
			}
		}
	}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.analysisInProgress = false
		s.mu.Unlock()
	}()

	if err := s.enrichInBatches(ctx, targets, myGeneration); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != myGeneration {
		return fmt.Errorf("session: deep analysis aborted: session state changed mid-run")
	}

	s.DeepResult = resolve.Run(s.Packs)
	s.DependencyIssues = depcheck.Check(s.Packs)
	s.deepAnalysisPerformed = true
	return nil
}

// enrichInBatches runs fetch+parse for targets in fixed-size batches,
// awaiting each full batch before dispatching the next — this bounds
// peak memory and peak inbound connections to batchSize concurrent
// operations.
func (s *Session) enrichInBatches(ctx context.Context, targets []enrichmentTarget, myGeneration int) error {
	for start := 0; start < len(targets); start += s.batchSize {
		s.mu.Lock()
		stale := s.generation != myGeneration
		s.mu.Unlock()
		if stale {
			return nil
		}

		end := start + s.batchSize
		if end > len(targets) {
			end = len(targets)
		}
		batch := targets[start:end]

		var wg sync.WaitGroup
		for _, t := range batch {
			wg.Add(1)
			go func(t enrichmentTarget) {
				defer wg.Done()
				s.enrichOne(ctx, t)
			}(t)
		}
		wg.Wait()
	}
	return nil
}

// enrichOne fetches/reads and parses a single file's manifest, writing
// the result (or the fallback, on any parse failure) back into the file
// record. Failures are reported through the sink and never abort the
// batch.
func (s *Session) enrichOne(ctx context.Context, t enrichmentTarget) {
	var (
		md    manifest.ModMetadata
		diags []manifest.Diagnostic
		err   error
	)

	if t.file.Origin.Local != nil {
		md, diags, err = s.cache.GetOrFetchLocal(t.pack.ID, t.file.Origin.Local.EntryPath, t.file.FileName, t.pack.Archive)
	} else if t.file.Origin.Remote != nil {
		md, diags, err = s.cache.GetOrFetchRemote(ctx, s.fetcher, t.file.Origin.Remote.URLs, t.file.FileName)
	} else {
		return
	}

	if err != nil {
		s.log(fmt.Sprintf("failed to analyze %s: %v", t.file.FileName, err), ui.SeverityDanger)
	}
	for _, d := range diags {
		s.log(fmt.Sprintf("%s: %s", d.ArchiveName, d.Reason), ui.SeverityWarning)
	}
	if len(md.Mods) == 0 {
		// Same fallback entry manifest.Parse yields for a jar without a
		// manifest: the file name as id, version "unknown".
		md = manifest.ModMetadata{Mods: []manifest.ModEntry{{ID: t.file.FileName, Version: "unknown", Depends: map[string]string{}}}}
	}

	s.mu.Lock()
	t.file.Metadata = &md
	s.mu.Unlock()
}

// RequestEmit streams the current resolved file set to w in the
// requested mode. Export is blocked while outstanding compatibility
// issues exist, mirroring the deep-analysis gate.
func (s *Session) RequestEmit(ctx context.Context, opts emit.Options, w io.Writer) error {
	s.mu.Lock()
	if len(s.CompatIssues) > 0 {
		s.mu.Unlock()
		return fmt.Errorf("session: emit refused: unresolved compatibility issues")
	}
	packs := make([]*modpack.Pack, len(s.Packs))
	copy(packs, s.Packs)
	s.mu.Unlock()

	if err := emit.Run(ctx, packs, opts, s.cache, s.fetcher, w, nil); err != nil {
		return fmt.Errorf("session: emit failed: %w", err)
	}
	return nil
}

// DeepAnalysisPerformed reports whether the cached deep-analysis result
// is current (no state-changing event has occurred since).
func (s *Session) DeepAnalysisPerformed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deepAnalysisPerformed
}
