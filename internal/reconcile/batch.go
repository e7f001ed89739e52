package reconcile

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"offerbridge/internal/logging"
	"offerbridge/internal/offer"
)

// Item is one input row of a batch. Rows the mapper already rejected carry
// their SkipReason and no Record; they are counted but never touch the store.
type Item struct {
	Line       int
	Record     offer.Record
	SkipReason string
}

// Observer is told about every row outcome, for metrics.
type Observer interface {
	Observe(o Outcome, err error)
}

// Options controls a batch run.
type Options struct {
	// Workers bounds how many rows are in flight. Values below 1 mean 1.
	Workers int
	// ContinueOnError logs and counts store failures instead of stopping
	// the run at the first one.
	ContinueOnError bool
	// Locker is shared with other writers to the same store, such as the
	// live ingest path. A nil Locker gets a private one.
	Locker   *KeyLocker
	Observer Observer
}

// DefaultOptions returns the options used by the import command.
func DefaultOptions() Options {
	return Options{Workers: 4, ContinueOnError: true}
}

// Stats are the counters of one batch run.
type Stats struct {
	Processed int            `json:"processed"`
	Written   int            `json:"written"`
	Inserted  int            `json:"inserted"`
	Skipped   int            `json:"skipped"`
	Failed    int            `json:"failed"`
	Reasons   map[string]int `json:"reasons,omitempty"`
}

// Batch runs many rows through an Engine with bounded concurrency.
type Batch struct {
	engine *Engine
	opts   Options
}

func NewBatch(engine *Engine, opts Options) *Batch {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Locker == nil {
		opts.Locker = NewKeyLocker()
	}
	return &Batch{engine: engine, opts: opts}
}

// Run processes items. Rows sharing a key are applied in input order, so the
// last row for a key wins every field it carries. Rows already written stay
// written when a later row fails. With ContinueOnError unset the first store
// error stops the run before the next row starts and is returned alongside
// the partial Stats.
func (b *Batch) Run(ctx context.Context, items []Item) (Stats, error) {
	log := logging.FromContext(ctx)
	var c counters

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.opts.Workers)
	for _, group := range groupByKey(items) {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			for _, item := range group {
				if err := b.runItem(gctx, item, &c); err != nil {
					return err
				}
			}
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	stats := c.snapshot()
	ev := log.Info()
	if err != nil {
		ev = log.Warn().Err(err)
	}
	ev.Int("processed", stats.Processed).
		Int("written", stats.Written).
		Int("inserted", stats.Inserted).
		Int("skipped", stats.Skipped).
		Int("failed", stats.Failed).
		Msg("batch finished")
	return stats, err
}

// groupByKey splits items into runs that must be applied one after another:
// all rows of one key, in input order. Rows without a usable key touch no
// stored state and get a group of their own. Groups keep the order in which
// their first row appears.
func groupByKey(items []Item) [][]Item {
	var groups [][]Item
	index := make(map[offer.Key]int)
	for _, item := range items {
		key := item.Record.Key()
		if item.SkipReason != "" || !key.Valid() {
			groups = append(groups, []Item{item})
			continue
		}
		if i, ok := index[key]; ok {
			groups[i] = append(groups[i], item)
			continue
		}
		index[key] = len(groups)
		groups = append(groups, []Item{item})
	}
	return groups
}

func (b *Batch) runItem(ctx context.Context, item Item, c *counters) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	log := logging.FromContext(ctx)

	if item.SkipReason != "" {
		c.skip(item.SkipReason)
		b.observe(Outcome{Reason: item.SkipReason}, nil)
		log.Debug().Int("line", item.Line).Str("reason", item.SkipReason).Msg("row skipped")
		return nil
	}

	key := item.Record.Key()
	unlock := b.opts.Locker.Lock(key.String())
	out, err := b.engine.Apply(ctx, item.Record)
	unlock()
	b.observe(out, err)

	if err != nil {
		c.fail()
		logging.KeyFields(log.Error().Err(err).Int("line", item.Line), key).Msg("row failed")
		if b.opts.ContinueOnError {
			return nil
		}
		return fmt.Errorf("line %d: %w", item.Line, err)
	}
	if out.Skipped() {
		c.skip(out.Reason)
		logging.KeyFields(log.Debug().Int("line", item.Line), key).Str("reason", out.Reason).Msg("row skipped")
		return nil
	}
	c.written(out.Inserted)
	return nil
}

func (b *Batch) observe(o Outcome, err error) {
	if b.opts.Observer != nil {
		b.opts.Observer.Observe(o, err)
	}
}

type counters struct {
	mu sync.Mutex
	s  Stats
}

func (c *counters) skip(reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.s.Processed++
	c.s.Skipped++
	if c.s.Reasons == nil {
		c.s.Reasons = make(map[string]int)
	}
	c.s.Reasons[reason]++
}

func (c *counters) fail() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.s.Processed++
	c.s.Failed++
}

func (c *counters) written(inserted bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.s.Processed++
	c.s.Written++
	if inserted {
		c.s.Inserted++
	}
}

func (c *counters) snapshot() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.s
	if c.s.Reasons != nil {
		out.Reasons = make(map[string]int, len(c.s.Reasons))
		for k, v := range c.s.Reasons {
			out.Reasons[k] = v
		}
	}
	return out
}
