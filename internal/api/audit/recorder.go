package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/aussiebroadwan/storefront/internal/api/domain"
	"github.com/aussiebroadwan/storefront/internal/api/store"
	"github.com/aussiebroadwan/storefront/pkg/idx"
	"github.com/aussiebroadwan/storefront/pkg/slogx"
)

// Entry describes what happened. Object and Change are optional; when a
// Change is given and it is empty nothing is recorded.
type Entry struct {
	Activity string
	Type     domain.AuditType
	Object   Object
	Change   *Change
}

// Recorder persists audit entries.
type Recorder struct {
	Store store.Store
	Now   func() time.Time
}

func NewRecorder(st store.Store) *Recorder {
	return &Recorder{Store: st, Now: time.Now}
}

// WithStore returns a copy of r writing to st, typically the transaction
// the audited change is made in.
func (r *Recorder) WithStore(st store.Store) *Recorder {
	cp := *r
	cp.Store = st
	return &cp
}

// Append writes one entry for e made by the request rc. It reports
// whether an entry was written.
func (r *Recorder) Append(ctx context.Context, rc RequestContext, e Entry) (bool, error) {
	log := slogx.FromContext(ctx)

	if e.Change != nil && e.Change.Empty() {
		log.Debug("audit: no watched field changed, skipping", "activity", e.Activity)
		return false, nil
	}

	entry := domain.AuditEntry{
		ID:                  idx.New().String(),
		Activity:            e.Activity,
		Type:                e.Type,
		RequestMethod:       rc.Method,
		RequestURL:          rc.URL,
		RouteNormalizedPath: rc.RouteTemplate,
		RoutePrefix:         rc.RoutePrefix,
		UserID:              rc.ActorID,
		CreatedAt:           r.Now().UTC(),
	}
	if entry.Type == "" {
		entry.Type = domain.AuditTypeUser
	}
	if e.Object != nil {
		entry.ObjectID = e.Object.AuditObjectID()
		entry.ObjectType = e.Object.AuditObjectType()
	}
	if e.Change != nil {
		entry.ObjectBefore = e.Change.Before
		entry.ObjectAfter = e.Change.After
	}

	if err := r.Store.AuditEntries().CreateAuditEntry(ctx, entry); err != nil {
		log.Error("audit: failed to record entry", "activity", e.Activity, "err", err)
		return false, fmt.Errorf("record audit entry: %w", err)
	}

	log.Info("audit entry recorded", "activity", e.Activity, "object_id", entry.ObjectID)
	return true, nil
}
