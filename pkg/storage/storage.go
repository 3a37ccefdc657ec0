// Package storage persists computed layouts and atlas manifests so the HTTP
// API can serve them by id.
//
// [MongoStore] is the production backend. [MemoryStore] keeps documents in
// process and is used by tests and when no MongoDB URI is configured.
package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/mondrian/pkg/atlas"
	"github.com/matzehuels/mondrian/pkg/trace"
)

// LayoutDoc is a stored lane layout.
type LayoutDoc struct {
	ID        string             `json:"id" bson:"_id"`
	TraceHash string             `json:"trace_hash" bson:"trace_hash"`
	Lanes     []trace.Renderable `json:"lanes" bson:"lanes"`
	LaneCount int                `json:"lane_count" bson:"lane_count"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// AtlasDoc is a stored atlas manifest.
type AtlasDoc struct {
	ID         string       `json:"id" bson:"_id"`
	PageWidth  int          `json:"page_width" bson:"page_width"`
	PageHeight int          `json:"page_height" bson:"page_height"`
	Pages      []atlas.Page `json:"pages" bson:"pages"`
	CreatedAt  time.Time    `json:"created_at" bson:"created_at"`
}

// Store saves and loads documents. Save assigns an ID and CreatedAt when
// they are empty. Get returns a NOT_FOUND error for unknown ids.
type Store interface {
	SaveLayout(ctx context.Context, doc *LayoutDoc) error
	GetLayout(ctx context.Context, id string) (*LayoutDoc, error)
	SaveAtlas(ctx context.Context, doc *AtlasDoc) error
	GetAtlas(ctx context.Context, id string) (*AtlasDoc, error)
	Close(ctx context.Context) error
}

func stamp(id *string, created *time.Time) {
	if *id == "" {
		*id = uuid.NewString()
	}
	if created.IsZero() {
		*created = time.Now().UTC()
	}
}
