package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nannyslm/platform-api/internal/core/domain"
	"github.com/nannyslm/platform-api/internal/core/ports"
)

const bankAccountsCollection = "bank_accounts"

// BankAccountRepository implements ports.BankAccountRepository using MongoDB.
type BankAccountRepository struct {
	db   *mongo.Database
	coll *mongo.Collection
}

func NewBankAccountRepository(db *mongo.Database) *BankAccountRepository {
	return &BankAccountRepository{db: db, coll: db.Collection(bankAccountsCollection)}
}

// Insert persists a new record with a sequence-assigned id. The only unique
// index on this collection is the partial one on (nanny_id, active=true), so
// a duplicate-key error here means the nanny already holds an active account.
func (r *BankAccountRepository) Insert(ctx context.Context, account *domain.BankAccount) (*domain.BankAccount, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := nextSequence(ctx, r.db, bankAccountsCollection)
	if err != nil {
		return nil, err
	}

	created := *account
	created.ID = id

	if _, err := r.coll.InsertOne(ctx, &created); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateActiveAccount
		}
		return nil, fmt.Errorf("insert bank account: %w", err)
	}
	return &created, nil
}

// FindByID retrieves a record by id, regardless of its active flag.
func (r *BankAccountRepository) FindByID(ctx context.Context, id int64) (*domain.BankAccount, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var a domain.BankAccount
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrBankAccountNotFound
		}
		return nil, fmt.Errorf("find bank account: %w", err)
	}
	return &a, nil
}

// FindActiveByNannyID returns the single active record for a nanny.
func (r *BankAccountRepository) FindActiveByNannyID(ctx context.Context, nannyID int64) (*domain.BankAccount, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"nanny_id": nannyID, "active": true}

	var a domain.BankAccount
	if err := r.coll.FindOne(ctx, filter).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrBankAccountNotFound
		}
		return nil, fmt.Errorf("find active bank account: %w", err)
	}
	return &a, nil
}

// Update applies the non-nil fields of upd and bumps updated_at.
func (r *BankAccountRepository) Update(ctx context.Context, id int64, upd ports.BankAccountUpdate) (*domain.BankAccount, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.HolderName != nil {
		set["holder_name"] = *upd.HolderName
	}
	if upd.AccountNumber != nil {
		set["account_number"] = *upd.AccountNumber
	}
	if upd.BankName != nil {
		set["bank_name"] = *upd.BankName
	}
	if upd.ClearingCode != nil {
		set["clearing_code"] = *upd.ClearingCode
	}
	if upd.Kind != nil {
		set["kind"] = string(*upd.Kind)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var a domain.BankAccount
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&a)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrBankAccountNotFound
		}
		return nil, fmt.Errorf("update bank account: %w", err)
	}
	return &a, nil
}

// SoftDelete sets active=false. The write is applied even when the record is
// already inactive, so the operation is idempotent in effect.
func (r *BankAccountRepository) SoftDelete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{"active": false, "updated_at": time.Now().UTC()}}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("soft delete bank account: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrBankAccountNotFound
	}
	return nil
}

// ownedRow is the shape produced by the $lookup pipelines below.
type ownedRow struct {
	Account domain.BankAccount `bson:",inline"`
	Owner   struct {
		FirstName string `bson:"first_name"`
		LastName  string `bson:"last_name"`
		Email     string `bson:"email"`
		Verified  bool   `bson:"verified"`
	} `bson:"owner"`
}

// ListWithOwner returns nanny-owned records joined with the owner's public
// data, newest first.
func (r *BankAccountRepository) ListWithOwner(ctx context.Context, skip, limit int64) ([]ports.OwnedBankAccount, error) {
	pipeline := mongo.Pipeline{
		ownerLookupStage(),
		bson.D{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}},
		bson.D{{Key: "$skip", Value: skip}},
		bson.D{{Key: "$limit", Value: limit}},
	}
	return r.aggregateOwned(ctx, pipeline)
}

// SearchByBank returns nanny-owned records whose bank name contains the given
// substring, case-insensitively, ordered by holder name.
func (r *BankAccountRepository) SearchByBank(ctx context.Context, bank string) ([]ports.OwnedBankAccount, error) {
	pattern := regexp.QuoteMeta(bank)
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{
			"bank_name": bson.M{"$regex": pattern, "$options": "i"},
		}}},
		ownerLookupStage(),
		bson.D{{Key: "$sort", Value: bson.D{{Key: "holder_name", Value: 1}}}},
	}
	return r.aggregateOwned(ctx, pipeline)
}

// ownerLookupStage joins the owning user and keeps only nanny-owned rows.
func ownerLookupStage() bson.D {
	return bson.D{{Key: "$lookup", Value: bson.M{
		"from": usersCollection,
		"let":  bson.M{"nid": "$nanny_id"},
		"pipeline": mongo.Pipeline{
			bson.D{{Key: "$match", Value: bson.M{
				"$expr": bson.M{"$eq": bson.A{"$_id", "$$nid"}},
				"role":  string(domain.RoleNanny),
			}}},
		},
		"as": "owner",
	}}}
}

func (r *BankAccountRepository) aggregateOwned(ctx context.Context, pipeline mongo.Pipeline) ([]ports.OwnedBankAccount, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	// Rows without a nanny owner are dropped, mirroring an inner join.
	pipeline = append(mongo.Pipeline{}, pipeline...)
	pipeline = append(pipeline, bson.D{{Key: "$unwind", Value: "$owner"}})

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate bank accounts: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []ownedRow
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode bank accounts: %w", err)
	}

	owned := make([]ports.OwnedBankAccount, 0, len(rows))
	for _, row := range rows {
		owned = append(owned, ports.OwnedBankAccount{
			Account: row.Account,
			Owner: ports.BankAccountOwner{
				Name:     row.Owner.FirstName + " " + row.Owner.LastName,
				Email:    row.Owner.Email,
				Verified: row.Owner.Verified,
			},
		})
	}
	return owned, nil
}

// Stats computes account counts and ranks banks by active accounts. The
// nannies-without-account figure is filled in by the service layer.
func (r *BankAccountRepository) Stats(ctx context.Context, topBanks int64) (*ports.BankStats, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	active, err := r.coll.CountDocuments(ctx, bson.M{"active": true})
	if err != nil {
		return nil, fmt.Errorf("count active accounts: %w", err)
	}
	inactive, err := r.coll.CountDocuments(ctx, bson.M{"active": false})
	if err != nil {
		return nil, fmt.Errorf("count inactive accounts: %w", err)
	}

	owners, err := r.coll.Distinct(ctx, "nanny_id", bson.M{"active": true})
	if err != nil {
		return nil, fmt.Errorf("distinct nannies with account: %w", err)
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"active": true}}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":   "$bank_name",
			"count": bson.M{"$sum": 1},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{
			{Key: "count", Value: -1},
			{Key: "_id", Value: 1},
		}}},
		bson.D{{Key: "$limit", Value: topBanks}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate top banks: %w", err)
	}
	defer cursor.Close(ctx)

	var buckets []struct {
		Bank  string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &buckets); err != nil {
		return nil, fmt.Errorf("decode top banks: %w", err)
	}

	top := make([]ports.BankUsage, 0, len(buckets))
	for _, b := range buckets {
		top = append(top, ports.BankUsage{Bank: b.Bank, Count: b.Count})
	}

	return &ports.BankStats{
		NanniesWithAccount: int64(len(owners)),
		ActiveAccounts:     active,
		InactiveAccounts:   inactive,
		TopBanks:           top,
	}, nil
}

// EnsureIndexes creates the indexes the payout flow relies on. The unique
// partial index enforces at most one active record per nanny at the store,
// closing the pre-check race under concurrent creates.
func (r *BankAccountRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "nanny_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"active": true}),
		},
		{Keys: bson.D{{Key: "bank_name", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
