package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/spec-kit/society-waste-service/internal/domain"
)

// Collection names used by the document store backend.
const (
	AccountsCollection     = "accounts"
	AdminsCollection       = "admins"
	IssuesCollection       = "issues"
	IssueHistoryCollection = "issue_status_changes"
)

type accountDocument struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Name          string             `bson:"name"`
	Email         string             `bson:"email"`
	PasswordHash  string             `bson:"password"`
	SocietyName   string             `bson:"societyName"`
	Address       string             `bson:"address"`
	ContactPerson string             `bson:"contactPerson"`
	ContactNumber string             `bson:"contactNumber"`
	TotalFamilies int                `bson:"totalFamilies"`
	CreatedAt     time.Time          `bson:"createdAt"`
}

func (d accountDocument) toDomain() domain.Account {
	return domain.Account{
		ID:            d.ID.Hex(),
		Name:          d.Name,
		Email:         d.Email,
		PasswordHash:  d.PasswordHash,
		SocietyName:   d.SocietyName,
		Address:       d.Address,
		ContactPerson: d.ContactPerson,
		ContactNumber: d.ContactNumber,
		TotalFamilies: d.TotalFamilies,
		CreatedAt:     d.CreatedAt,
	}
}

type adminDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password"`
	CreatedAt    time.Time          `bson:"createdAt"`
}

func (d adminDocument) toDomain() domain.AdminAccount {
	return domain.AdminAccount{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt,
	}
}

type issueDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Owner       primitive.ObjectID `bson:"user"`
	Description string             `bson:"description"`
	Location    string             `bson:"location"`
	Address     string             `bson:"address"`
	ImageURL    *string            `bson:"imageUrl,omitempty"`
	Status      domain.IssueStatus `bson:"status"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d issueDocument) toDomain() domain.Issue {
	return domain.Issue{
		ID:          d.ID.Hex(),
		OwnerID:     d.Owner.Hex(),
		Description: d.Description,
		Location:    d.Location,
		Address:     d.Address,
		ImageURL:    d.ImageURL,
		Status:      d.Status,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type statusChangeDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	IssueID   primitive.ObjectID `bson:"issue"`
	AdminID   *string            `bson:"admin,omitempty"`
	OldStatus domain.IssueStatus `bson:"oldStatus"`
	NewStatus domain.IssueStatus `bson:"newStatus"`
	CreatedAt time.Time          `bson:"createdAt"`
}

// NewMongoStore wires every repository onto one database and ensures the unique indexes exist.
func NewMongoStore(ctx context.Context, db *mongo.Database) (*Store, error) {
	if err := ensureMongoIndexes(ctx, db); err != nil {
		return nil, err
	}
	return &Store{
		Accounts: &mongoAccountRepository{coll: db.Collection(AccountsCollection)},
		Admins:   &mongoAdminRepository{coll: db.Collection(AdminsCollection)},
		Issues:   &mongoIssueRepository{coll: db.Collection(IssuesCollection)},
		History:  &mongoIssueHistoryRepository{coll: db.Collection(IssueHistoryCollection)},
	}, nil
}

func ensureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	unique := options.Index().SetUnique(true)
	for _, name := range []string{AccountsCollection, AdminsCollection} {
		_, err := db.Collection(name).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: unique,
		})
		if err != nil {
			return err
		}
	}
	_, err := db.Collection(IssuesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return err
	}
	_, err = db.Collection(IssueHistoryCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "issue", Value: 1}, {Key: "createdAt", Value: 1}},
	})
	return err
}

func mapMongoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateEmail
	}
	return err
}

// objectID parses a hex id; malformed ids can never match a document.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrNotFound
	}
	return oid, nil
}

type mongoAccountRepository struct {
	coll *mongo.Collection
}

func (r *mongoAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	doc := accountDocument{
		ID:            primitive.NewObjectID(),
		Name:          account.Name,
		Email:         account.Email,
		PasswordHash:  account.PasswordHash,
		SocietyName:   account.SocietyName,
		Address:       account.Address,
		ContactPerson: account.ContactPerson,
		ContactNumber: account.ContactNumber,
		TotalFamilies: account.TotalFamilies,
		CreatedAt:     time.Now().UTC(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return mapMongoError(err)
	}
	account.ID = doc.ID.Hex()
	account.CreatedAt = doc.CreatedAt
	return nil
}

func (r *mongoAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *mongoAccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *mongoAccountRepository) findOne(ctx context.Context, filter bson.M) (*domain.Account, error) {
	var doc accountDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, mapMongoError(err)
	}
	account := doc.toDomain()
	return &account, nil
}

func (r *mongoAccountRepository) List(ctx context.Context) ([]domain.Account, error) {
	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []accountDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	result := make([]domain.Account, 0, len(docs))
	for _, doc := range docs {
		result = append(result, doc.toDomain())
	}
	return result, nil
}

type mongoAdminRepository struct {
	coll *mongo.Collection
}

func (r *mongoAdminRepository) Create(ctx context.Context, admin *domain.AdminAccount) error {
	doc := adminDocument{
		ID:           primitive.NewObjectID(),
		Name:         admin.Name,
		Email:        admin.Email,
		PasswordHash: admin.PasswordHash,
		CreatedAt:    time.Now().UTC(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return mapMongoError(err)
	}
	admin.ID = doc.ID.Hex()
	admin.CreatedAt = doc.CreatedAt
	return nil
}

func (r *mongoAdminRepository) GetByID(ctx context.Context, id string) (*domain.AdminAccount, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *mongoAdminRepository) GetByEmail(ctx context.Context, email string) (*domain.AdminAccount, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *mongoAdminRepository) findOne(ctx context.Context, filter bson.M) (*domain.AdminAccount, error) {
	var doc adminDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, mapMongoError(err)
	}
	admin := doc.toDomain()
	return &admin, nil
}

type mongoIssueRepository struct {
	coll *mongo.Collection
}

func (r *mongoIssueRepository) Create(ctx context.Context, issue *domain.Issue) error {
	owner, err := objectID(issue.OwnerID)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	doc := issueDocument{
		ID:          primitive.NewObjectID(),
		Owner:       owner,
		Description: issue.Description,
		Location:    issue.Location,
		Address:     issue.Address,
		ImageURL:    issue.ImageURL,
		Status:      issue.Status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return mapMongoError(err)
	}
	issue.ID = doc.ID.Hex()
	issue.CreatedAt = now
	issue.UpdatedAt = now
	return nil
}

func (r *mongoIssueRepository) GetByID(ctx context.Context, id string) (*domain.Issue, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var doc issueDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, mapMongoError(err)
	}
	issue := doc.toDomain()
	return &issue, nil
}

func (r *mongoIssueRepository) UpdateStatus(ctx context.Context, id string, status domain.IssueStatus) (*domain.Issue, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	update := bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc issueDocument
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc); err != nil {
		return nil, mapMongoError(err)
	}
	issue := doc.toDomain()
	return &issue, nil
}

func (r *mongoIssueRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Issue, error) {
	owner, err := objectID(ownerID)
	if err != nil {
		return []domain.Issue{}, nil
	}
	return r.find(ctx, bson.M{"user": owner})
}

func (r *mongoIssueRepository) ListAll(ctx context.Context) ([]domain.Issue, error) {
	return r.find(ctx, bson.M{})
}

func (r *mongoIssueRepository) find(ctx context.Context, filter bson.M) ([]domain.Issue, error) {
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var docs []issueDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	result := make([]domain.Issue, 0, len(docs))
	for _, doc := range docs {
		result = append(result, doc.toDomain())
	}
	return result, nil
}

type mongoIssueHistoryRepository struct {
	coll *mongo.Collection
}

func (r *mongoIssueHistoryRepository) Create(ctx context.Context, change *domain.IssueStatusChange) error {
	issueID, err := objectID(change.IssueID)
	if err != nil {
		return err
	}
	doc := statusChangeDocument{
		ID:        primitive.NewObjectID(),
		IssueID:   issueID,
		AdminID:   change.AdminID,
		OldStatus: change.OldStatus,
		NewStatus: change.NewStatus,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return mapMongoError(err)
	}
	change.ID = doc.ID.Hex()
	change.CreatedAt = doc.CreatedAt
	return nil
}

func (r *mongoIssueHistoryRepository) ListByIssue(ctx context.Context, issueID string) ([]domain.IssueStatusChange, error) {
	oid, err := objectID(issueID)
	if err != nil {
		return []domain.IssueStatusChange{}, nil
	}
	cursor, err := r.coll.Find(ctx, bson.M{"issue": oid}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []statusChangeDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	result := make([]domain.IssueStatusChange, 0, len(docs))
	for _, doc := range docs {
		result = append(result, domain.IssueStatusChange{
			ID:        doc.ID.Hex(),
			IssueID:   doc.IssueID.Hex(),
			AdminID:   doc.AdminID,
			OldStatus: doc.OldStatus,
			NewStatus: doc.NewStatus,
			CreatedAt: doc.CreatedAt,
		})
	}
	return result, nil
}
