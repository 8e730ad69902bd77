package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/medicare/hospital-system/internal/core/domain"
)

const collectionUsers = "users"

// AccountRepository implements ports.AccountRepository on the users collection.
type AccountRepository struct {
	col *mongo.Collection
}

func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{col: db.Collection(collectionUsers)}
}

type mongoAvatar struct {
	PublicID string `bson:"public_id"`
	URL      string `bson:"url"`
}

type mongoAccount struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	FirstName        string             `bson:"firstName"`
	LastName         string             `bson:"lastName"`
	Email            string             `bson:"email"`
	Phone            string             `bson:"phone"`
	NIC              string             `bson:"nic"`
	DOB              time.Time          `bson:"dob"`
	Gender           string             `bson:"gender"`
	Password         string             `bson:"password"`
	Role             string             `bson:"role"`
	DoctorDepartment string             `bson:"doctorDepartment,omitempty"`
	DocAvatar        *mongoAvatar       `bson:"docAvatar,omitempty"`
	CreatedAt        time.Time          `bson:"createdAt"`
}

func toMongoAccount(a *domain.Account) mongoAccount {
	doc := mongoAccount{
		FirstName:        a.FirstName,
		LastName:         a.LastName,
		Email:            a.Email,
		Phone:            a.Phone,
		NIC:              a.NIC,
		DOB:              a.DOB.UTC(),
		Gender:           a.Gender,
		Password:         a.PasswordHash,
		Role:             a.Role,
		DoctorDepartment: a.DoctorDepartment,
		CreatedAt:        a.CreatedAt.UTC(),
	}
	if a.DocAvatar != nil {
		doc.DocAvatar = &mongoAvatar{PublicID: a.DocAvatar.PublicID, URL: a.DocAvatar.URL}
	}
	return doc
}

func (m mongoAccount) toDomain() *domain.Account {
	a := &domain.Account{
		ID:               m.ID.Hex(),
		FirstName:        m.FirstName,
		LastName:         m.LastName,
		Email:            m.Email,
		Phone:            m.Phone,
		NIC:              m.NIC,
		DOB:              m.DOB.UTC(),
		Gender:           m.Gender,
		PasswordHash:     m.Password,
		Role:             m.Role,
		DoctorDepartment: m.DoctorDepartment,
		CreatedAt:        m.CreatedAt.UTC(),
	}
	if m.DocAvatar != nil {
		a.DocAvatar = &domain.Avatar{PublicID: m.DocAvatar.PublicID, URL: m.DocAvatar.URL}
	}
	return a
}

// Create inserts the account. A duplicate email surfaces as domain.ErrEmailTaken.
func (r *AccountRepository) Create(ctx context.Context, a *domain.Account) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toMongoAccount(a)
	doc.ID = primitive.NewObjectID()

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// FindByID treats a malformed id the same as a missing account.
func (r *AccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrAccountNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *AccountRepository) ListByRole(ctx context.Context, role string) ([]*domain.Account, error) {
	return r.find(ctx, bson.M{"role": role})
}

func (r *AccountRepository) FindDoctors(ctx context.Context, firstName, lastName, department string) ([]*domain.Account, error) {
	return r.find(ctx, bson.M{
		"role":             domain.RoleDoctor,
		"firstName":        firstName,
		"lastName":         lastName,
		"doctorDepartment": department,
	})
}

// EnsureIndexes creates the unique email index and the doctor lookup index.
func (r *AccountRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_email"),
		},
		{
			Keys: bson.D{
				{Key: "role", Value: 1},
				{Key: "doctorDepartment", Value: 1},
				{Key: "firstName", Value: 1},
				{Key: "lastName", Value: 1},
			},
		},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *AccountRepository) findOne(ctx context.Context, filter bson.M) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoAccount
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *AccountRepository) find(ctx context.Context, filter bson.M) ([]*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find accounts: %w", err)
	}

	var docs []mongoAccount
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode accounts: %w", err)
	}

	out := make([]*domain.Account, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}
