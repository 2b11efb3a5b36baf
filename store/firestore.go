package store

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// DefaultCollection is the Firestore collection FirestoreStore writes to.
const DefaultCollection = "editor-content"

// FirestoreStore is a Firestore-backed implementation of Store. Each key is
// one document holding the value and its update time.
type FirestoreStore struct {
	client     *firestore.Client
	collection string
}

// NewFirestoreStore creates a new FirestoreStore using the given Firestore
// client. An empty collection selects DefaultCollection.
func NewFirestoreStore(client *firestore.Client, collection string) *FirestoreStore {
	if collection == "" {
		collection = DefaultCollection
	}
	return &FirestoreStore{
		client:     client,
		collection: collection,
	}
}

// docRef maps key to a document ID. Firestore IDs cannot contain '/'.
func (s *FirestoreStore) docRef(key string) *firestore.DocumentRef {
	return s.client.Collection(s.collection).Doc(url.PathEscape(key))
}

func (s *FirestoreStore) Get(ctx context.Context, key string) (string, bool, error) {
	snap, err := s.docRef(key).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return "", false, nil
	}
	if err != nil {
		return "", false, unavailable("get", key, err)
	}
	e, err := snapshotToEntry(snap)
	if err != nil {
		return "", false, err
	}
	return e.Value, true, nil
}

func (s *FirestoreStore) Set(ctx context.Context, key, value string) error {
	_, err := s.docRef(key).Set(ctx, map[string]interface{}{
		"key":       key,
		"value":     value,
		"updatedAt": time.Now(),
	})
	if err != nil {
		return unavailable("set", key, err)
	}
	return nil
}

func (s *FirestoreStore) Delete(ctx context.Context, key string) error {
	_, err := s.docRef(key).Delete(ctx)
	if err != nil && status.Code(err) != codes.NotFound {
		return unavailable("delete", key, err)
	}
	return nil
}

func (s *FirestoreStore) List(ctx context.Context) ([]Entry, error) {
	iter := s.client.Collection(s.collection).OrderBy(firestore.DocumentID, firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var result []Entry
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, unavailable("list", s.collection, err)
		}
		e, err := snapshotToEntry(snap)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, nil
}

func snapshotToEntry(snap *firestore.DocumentSnapshot) (Entry, error) {
	data := snap.Data()
	value, ok := data["value"].(string)
	if !ok {
		return Entry{}, fmt.Errorf("invalid value field in document %s", snap.Ref.ID)
	}
	key, _ := data["key"].(string)
	if key == "" {
		key, _ = url.PathUnescape(snap.Ref.ID)
	}
	updatedAt, _ := data["updatedAt"].(time.Time)
	return Entry{Key: key, Value: value, UpdatedAt: updatedAt}, nil
}

// unavailable marks transport and permission failures so callers can tell
// them apart with errors.Is(err, ErrUnavailable).
func unavailable(op, key string, err error) error {
	return fmt.Errorf("firestore %s %q: %w: %v", op, key, ErrUnavailable, err)
}
