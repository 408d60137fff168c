package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/magpielabs/magpie/pkg/model"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	collectionMemories = "memories"
	collectionTopics   = "topics"
	collectionRuns     = "runs"
	collectionSettings = "settings"
	docSettings        = "settings"
)

// Firestore implements Repository on Cloud Firestore
type Firestore struct {
	client *firestore.Client
}

// NewFirestore creates a Firestore-backed repository
func NewFirestore(ctx context.Context, projectID, databaseID string) (*Firestore, error) {
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("project", projectID), goerr.V("database", databaseID))
	}
	return &Firestore{client: client}, nil
}

// Close releases the underlying client
func (r *Firestore) Close() error {
	return r.client.Close()
}

func (r *Firestore) PutEntry(ctx context.Context, entry *model.MemoryEntry) error {
	_, err := r.client.Collection(collectionMemories).Doc(string(entry.ID)).Set(ctx, entry)
	if err != nil {
		return goerr.Wrap(err, "failed to put memory entry", goerr.V("id", entry.ID))
	}
	return nil
}

func (r *Firestore) GetEntry(ctx context.Context, id model.MemoryID) (*model.MemoryEntry, error) {
	doc, err := r.client.Collection(collectionMemories).Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "memory entry not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get memory entry", goerr.V("id", id))
	}

	var entry model.MemoryEntry
	if err := doc.DataTo(&entry); err != nil {
		return nil, goerr.Wrap(err, "failed to decode memory entry", goerr.V("id", id))
	}
	return &entry, nil
}

func (r *Firestore) ListEntries(ctx context.Context) ([]*model.MemoryEntry, error) {
	iter := r.client.Collection(collectionMemories).OrderBy("created_at", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var entries []*model.MemoryEntry
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate memory entries")
		}
		var entry model.MemoryEntry
		if err := doc.DataTo(&entry); err != nil {
			return nil, goerr.Wrap(err, "failed to decode memory entry")
		}
		entries = append(entries, &entry)
	}
	return entries, nil
}

func (r *Firestore) DeleteEntry(ctx context.Context, id model.MemoryID) error {
	if _, err := r.client.Collection(collectionMemories).Doc(string(id)).Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete memory entry", goerr.V("id", id))
	}
	return nil
}

func (r *Firestore) ClearEntries(ctx context.Context) error {
	iter := r.client.Collection(collectionMemories).Documents(ctx)
	defer iter.Stop()

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return goerr.Wrap(err, "failed to iterate memory entries")
		}
		if _, err := doc.Ref.Delete(ctx); err != nil {
			return goerr.Wrap(err, "failed to delete memory entry", goerr.V("id", doc.Ref.ID))
		}
	}
	return nil
}

func (r *Firestore) PutTopic(ctx context.Context, topic *model.LearningTopic) error {
	_, err := r.client.Collection(collectionTopics).Doc(string(topic.ID)).Set(ctx, topic)
	if err != nil {
		return goerr.Wrap(err, "failed to put topic", goerr.V("id", topic.ID))
	}
	return nil
}

func (r *Firestore) GetTopic(ctx context.Context, id model.TopicID) (*model.LearningTopic, error) {
	doc, err := r.client.Collection(collectionTopics).Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "topic not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get topic", goerr.V("id", id))
	}

	var topic model.LearningTopic
	if err := doc.DataTo(&topic); err != nil {
		return nil, goerr.Wrap(err, "failed to decode topic", goerr.V("id", id))
	}
	return &topic, nil
}

func (r *Firestore) ListTopics(ctx context.Context) ([]*model.LearningTopic, error) {
	iter := r.client.Collection(collectionTopics).OrderBy("created_at", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var topics []*model.LearningTopic
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate topics")
		}
		var topic model.LearningTopic
		if err := doc.DataTo(&topic); err != nil {
			return nil, goerr.Wrap(err, "failed to decode topic")
		}
		topics = append(topics, &topic)
	}
	return topics, nil
}

func (r *Firestore) DeleteTopic(ctx context.Context, id model.TopicID) error {
	if _, err := r.client.Collection(collectionTopics).Doc(string(id)).Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete topic", goerr.V("id", id))
	}
	return nil
}

func (r *Firestore) PutRun(ctx context.Context, run *model.LearningRun) error {
	_, err := r.client.Collection(collectionRuns).Doc(string(run.ID)).Set(ctx, run)
	if err != nil {
		return goerr.Wrap(err, "failed to put run", goerr.V("id", run.ID))
	}
	return nil
}

func (r *Firestore) GetRun(ctx context.Context, id model.RunID) (*model.LearningRun, error) {
	doc, err := r.client.Collection(collectionRuns).Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "run not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get run", goerr.V("id", id))
	}

	var run model.LearningRun
	if err := doc.DataTo(&run); err != nil {
		return nil, goerr.Wrap(err, "failed to decode run", goerr.V("id", id))
	}
	return &run, nil
}

func (r *Firestore) ListRuns(ctx context.Context) ([]*model.LearningRun, error) {
	iter := r.client.Collection(collectionRuns).OrderBy("started_at", firestore.Desc).Documents(ctx)
	defer iter.Stop()

	var runs []*model.LearningRun
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate runs")
		}
		var run model.LearningRun
		if err := doc.DataTo(&run); err != nil {
			return nil, goerr.Wrap(err, "failed to decode run")
		}
		runs = append(runs, &run)
	}
	return runs, nil
}

func (r *Firestore) DeleteRun(ctx context.Context, id model.RunID) error {
	if _, err := r.client.Collection(collectionRuns).Doc(string(id)).Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete run", goerr.V("id", id))
	}
	return nil
}

func (r *Firestore) GetSettings(ctx context.Context) (*model.Settings, error) {
	doc, err := r.client.Collection(collectionSettings).Doc(docSettings).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return model.DefaultSettings(), nil
		}
		return nil, goerr.Wrap(err, "failed to get settings")
	}

	var settings model.Settings
	if err := doc.DataTo(&settings); err != nil {
		return nil, goerr.Wrap(err, "failed to decode settings")
	}
	return &settings, nil
}

func (r *Firestore) PutSettings(ctx context.Context, settings *model.Settings) error {
	_, err := r.client.Collection(collectionSettings).Doc(docSettings).Set(ctx, settings)
	if err != nil {
		return goerr.Wrap(err, "failed to put settings")
	}
	return nil
}
