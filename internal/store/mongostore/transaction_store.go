package mongostore

import (
	"context"
	"fmt"

	"github.com/NomadCrew/nomad-split-backend/internal/store"
	"github.com/NomadCrew/nomad-split-backend/types"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Ensure TransactionStore implements store.TransactionStore interface.
var _ store.TransactionStore = (*TransactionStore)(nil)

var unsettledStatuses = []string{
	string(types.TransactionStatusPending),
	string(types.TransactionStatusApproved),
}

type TransactionStore struct {
	coll *mongo.Collection
}

func (s *TransactionStore) Create(ctx context.Context, t *types.Transaction) error {
	_, err := s.coll.InsertOne(ctx, newTransactionDoc(t))
	return mapError(err)
}

func (s *TransactionStore) GetByID(ctx context.Context, id string) (*types.Transaction, error) {
	var doc transactionDoc
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, mapError(err)
	}
	return doc.toTransaction(), nil
}

func (s *TransactionStore) Update(ctx context.Context, t *types.Transaction) error {
	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": t.ID}, newTransactionDoc(t))
	if err != nil {
		return mapError(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *TransactionStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mapError(err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func involves(userID string) bson.A {
	return bson.A{
		bson.M{"payerId": userID},
		bson.M{"participants.userId": userID},
	}
}

// filterDocument translates a listing filter into a query document.
func filterDocument(f types.TransactionFilter) bson.M {
	q := bson.M{}
	if f.VisibleTo != "" {
		q["$or"] = append(involves(f.VisibleTo), bson.M{"createdBy": f.VisibleTo})
	}
	if f.GroupID != "" {
		q["groupId"] = f.GroupID
	}
	if f.PayerID != "" {
		q["payerId"] = f.PayerID
	}
	if f.ParticipantID != "" {
		q["participants.userId"] = f.ParticipantID
	}
	if f.Status != "" {
		q["status"] = string(f.Status)
	}
	if f.Category != "" {
		q["category"] = string(f.Category)
	}
	if f.StartDate != nil || f.EndDate != nil {
		created := bson.M{}
		if f.StartDate != nil {
			created["$gte"] = *f.StartDate
		}
		if f.EndDate != nil {
			created["$lte"] = *f.EndDate
		}
		q["createdAt"] = created
	}
	return q
}

func (s *TransactionStore) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*types.Transaction, error) {
	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	var docs []transactionDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode transactions: %w", err)
	}

	txs := make([]*types.Transaction, 0, len(docs))
	for _, d := range docs {
		txs = append(txs, d.toTransaction())
	}
	return txs, nil
}

func newestFirst() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
}

func (s *TransactionStore) List(ctx context.Context, f types.TransactionFilter) ([]*types.Transaction, int, error) {
	filter := filterDocument(f)

	total, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	opts := newestFirst()
	if f.Limit > 0 {
		opts.SetSkip(int64(f.Offset())).SetLimit(int64(f.Limit))
	}
	txs, err := s.find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return txs, int(total), nil
}

func (s *TransactionStore) ListForBalance(ctx context.Context, userID string, groupID *string) ([]*types.Transaction, error) {
	filter := bson.M{
		"status": bson.M{"$ne": string(types.TransactionStatusCancelled)},
		"$or":    involves(userID),
	}
	if groupID != nil {
		filter["groupId"] = *groupID
	} else {
		filter["groupId"] = nil
	}
	return s.find(ctx, filter, nil)
}

func (s *TransactionStore) ListRecentByGroup(ctx context.Context, groupID string, limit int) ([]*types.Transaction, error) {
	return s.find(ctx, bson.M{"groupId": groupID}, newestFirst().SetLimit(int64(limit)))
}

func (s *TransactionStore) GroupTotals(ctx context.Context, groupID string) (store.GroupTotals, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"groupId": groupID,
			"status":  bson.M{"$ne": string(types.TransactionStatusCancelled)},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$totalAmount"},
			"settled": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{"$status", string(types.TransactionStatusSettled)}},
				"$totalAmount",
				primitive.NewDecimal128(0, 0),
			}}},
			"count": bson.M{"$sum": 1},
		}}},
	}

	cur, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return store.GroupTotals{}, fmt.Errorf("failed to aggregate group totals: %w", err)
	}
	var out []struct {
		Total   primitive.Decimal128 `bson:"total"`
		Settled primitive.Decimal128 `bson:"settled"`
		Count   int                  `bson:"count"`
	}
	if err := cur.All(ctx, &out); err != nil {
		return store.GroupTotals{}, fmt.Errorf("failed to decode group totals: %w", err)
	}
	if len(out) == 0 {
		return store.GroupTotals{}, nil
	}
	return store.GroupTotals{
		Total:   fromDecimal128(out[0].Total),
		Settled: fromDecimal128(out[0].Settled),
		Count:   out[0].Count,
	}, nil
}

func (s *TransactionStore) CountUnsettled(ctx context.Context, groupID, userID string) (int, error) {
	filter := bson.M{
		"groupId": groupID,
		"status":  bson.M{"$in": unsettledStatuses},
	}
	if userID != "" {
		filter["$or"] = involves(userID)
	}
	n, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count unsettled transactions: %w", err)
	}
	return int(n), nil
}
