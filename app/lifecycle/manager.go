// Package lifecycle creates, updates and deletes catalog records that own an
// optional image asset, keeping the record and the asset store consistent.
//
// A record never points at an asset that was deleted, and a failed write never
// leaves behind an asset that the same call uploaded. The database write and
// the asset write are not one transaction: cleanup after a failure is best
// effort, and two concurrent updates of the same record may interleave their
// cleanup decisions.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mytheresa/parts-catalog/app/assets"
	"github.com/mytheresa/parts-catalog/app/events"
)

// ErrAssetCleanup wraps failures to remove an orphaned or superseded asset.
// These are logged and never returned to callers.
var ErrAssetCleanup = errors.New("asset cleanup failed")

// Entity is a record that may own one asset.
type Entity interface {
	ImageRef() string
	PrimaryKey() uint
}

// Input is the set of writable fields of an entity. WithImage returns a copy
// whose image reference is ref (nil clears it).
type Input[F any] interface {
	WithImage(ref *string) F
}

type Repository[E Entity, F any] interface {
	GetByID(ctx context.Context, id uint) (*E, error)
	Create(ctx context.Context, in F) (*E, error)
	Update(ctx context.Context, id uint, in F) (*E, error)
	Delete(ctx context.Context, id uint) (*E, error)
}

type options struct {
	logger    *log.Logger
	publisher events.Publisher
	now       func() time.Time
}

type Option func(*options)

func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithPublisher announces every committed change on p.
func WithPublisher(p events.Publisher) Option {
	return func(o *options) { o.publisher = p }
}

// Manager orchestrates the writes of one entity kind.
type Manager[E Entity, F Input[F]] struct {
	entity string
	repo   Repository[E, F]
	assets assets.Store
	opts   options
}

func NewManager[E Entity, F Input[F]](entity string, repo Repository[E, F], store assets.Store, opts ...Option) *Manager[E, F] {
	o := options{
		logger:    log.Default(),
		publisher: events.Nop{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Manager[E, F]{
		entity: entity,
		repo:   repo,
		assets: store,
		opts:   o,
	}
}

// CreateWithAsset stores the upload, if any, and creates the record
// referencing it. When the record cannot be created the upload is removed
// again and the repository error is returned.
func (m *Manager[E, F]) CreateWithAsset(ctx context.Context, in F, up *assets.Upload) (*E, error) {
	var pending string
	if up != nil {
		ref, err := m.assets.Store(ctx, up.Field, up.Body, up.Filename)
		if err != nil {
			return nil, err
		}
		pending = ref
	}
	in = in.WithImage(refPtr(pending))

	m.opts.logger.Printf("creating %s, image %q", m.entity, pending)
	rec, err := m.repo.Create(ctx, in)
	if err != nil {
		m.discard(ctx, pending, "orphaned upload")
		return nil, err
	}

	m.publish(ctx, events.ActionCreated, *rec)
	return rec, nil
}

// UpdateWithAsset replaces the writable fields of the record. With an upload
// the new asset replaces the old one, which is deleted only after the update
// committed; without one the current image is kept.
func (m *Manager[E, F]) UpdateWithAsset(ctx context.Context, id uint, in F, up *assets.Upload) (*E, error) {
	current, err := m.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := (*current).ImageRef()

	ref := previous
	var pending string
	if up != nil {
		pending, err = m.assets.Store(ctx, up.Field, up.Body, up.Filename)
		if err != nil {
			return nil, err
		}
		ref = pending
	}
	in = in.WithImage(refPtr(ref))

	m.opts.logger.Printf("updating %s %d, image %q", m.entity, id, ref)
	rec, err := m.repo.Update(ctx, id, in)
	if err != nil {
		m.discard(ctx, pending, "orphaned upload")
		return nil, err
	}

	if pending != "" && previous != "" && previous != pending {
		m.discard(ctx, previous, "superseded image")
	}

	m.publish(ctx, events.ActionUpdated, *rec)
	return rec, nil
}

// DeleteWithAsset removes the record and then the asset it owned.
func (m *Manager[E, F]) DeleteWithAsset(ctx context.Context, id uint) (*E, error) {
	if _, err := m.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	m.opts.logger.Printf("deleting %s %d", m.entity, id)
	rec, err := m.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	m.discard(ctx, (*rec).ImageRef(), "image of deleted "+m.entity)
	m.publish(ctx, events.ActionDeleted, *rec)
	return rec, nil
}

// discard deletes ref, logging instead of returning any failure. It runs even
// if ctx was cancelled so a failed request still cleans up after itself.
func (m *Manager[E, F]) discard(ctx context.Context, ref, reason string) {
	if ref == "" {
		return
	}
	if err := m.assets.Delete(context.WithoutCancel(ctx), ref); err != nil {
		m.opts.logger.Printf("%s: %v", reason, fmt.Errorf("%w: %s: %w", ErrAssetCleanup, ref, err))
		return
	}
	m.opts.logger.Printf("removed %s %s", reason, ref)
}

func (m *Manager[E, F]) publish(ctx context.Context, action string, rec E) {
	e := events.Event{
		Entity:     m.entity,
		Action:     action,
		ID:         rec.PrimaryKey(),
		ImageURL:   rec.ImageRef(),
		OccurredAt: m.opts.now().UTC(),
	}
	if err := m.opts.publisher.Publish(context.WithoutCancel(ctx), e); err != nil {
		m.opts.logger.Printf("publish %s.%s %d: %v", e.Entity, e.Action, e.ID, err)
	}
}

func refPtr(ref string) *string {
	if ref == "" {
		return nil
	}
	return &ref
}
